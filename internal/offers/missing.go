package offers

import (
	"strings"

	"freightdesk/quote/internal/models"
)

// MissingFields lists the human-readable names of required request fields that are absent.
func MissingFields(customer models.Contact, lane models.Lane) []string {
	var missing []string
	if !lane.Direction.Valid() {
		missing = append(missing, "trade direction (import, export or transit)")
	}
	required := []struct {
		name  string
		value string
	}{
		{"loading country", lane.LoadCountry},
		{"loading city", lane.LoadCity},
		{"delivery country", lane.DeliveryCountry},
		{"delivery city", lane.DeliveryCity},
		{"cargo description", lane.CargoDescription},
		{"customer email", customer.Email},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

func normalizeLane(l models.Lane) models.Lane {
	l.Direction = models.ParseTradeDirection(string(l.Direction))
	l.LoadCountry = strings.ToUpper(strings.TrimSpace(l.LoadCountry))
	l.DeliveryCountry = strings.ToUpper(strings.TrimSpace(l.DeliveryCountry))
	l.LoadCity = strings.TrimSpace(l.LoadCity)
	l.DeliveryCity = strings.TrimSpace(l.DeliveryCity)
	l.CargoDescription = strings.TrimSpace(l.CargoDescription)
	return l
}

func normalizeContact(c models.Contact) models.Contact {
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	c.Language = models.ParseLanguage(string(c.Language))
	return c
}

// mergeContact overwrites the fields of current that are set in correction.
func mergeContact(current, correction models.Contact) models.Contact {
	if strings.TrimSpace(correction.Name) != "" {
		current.Name = correction.Name
	}
	if strings.TrimSpace(correction.Email) != "" {
		current.Email = correction.Email
	}
	if strings.TrimSpace(string(correction.Language)) != "" {
		current.Language = correction.Language
	}
	return normalizeContact(current)
}
