package models

import (
	"strings"
	"time"
)

// TradeDirection is the direction of a shipment relative to the forwarder's market.
type TradeDirection string

const (
	DirectionImport  TradeDirection = "IMPORT"
	DirectionExport  TradeDirection = "EXPORT"
	DirectionTransit TradeDirection = "TRANSIT"
)

// Code returns the two-letter segment used inside offer numbers.
func (d TradeDirection) Code() string {
	switch d {
	case DirectionImport:
		return "IM"
	case DirectionExport:
		return "EX"
	case DirectionTransit:
		return "TR"
	}
	return ""
}

// Valid reports whether d is one of the known directions.
func (d TradeDirection) Valid() bool {
	return d.Code() != ""
}

// ParseTradeDirection accepts either the full name or the two-letter code.
func ParseTradeDirection(s string) TradeDirection {
	s = strings.ToUpper(strings.TrimSpace(s))
	for _, d := range []TradeDirection{DirectionImport, DirectionExport, DirectionTransit} {
		if s == string(d) || s == d.Code() {
			return d
		}
	}
	return ""
}

// OfferStatus is a state of the offer workflow.
type OfferStatus string

const (
	StatusCreated            OfferStatus = "CREATED"
	StatusMissingInformation OfferStatus = "MISSING_INFORMATION"
	StatusFeeRequested       OfferStatus = "FEE_REQUESTED"
	StatusNoSupplier         OfferStatus = "NO_SUPPLIER"
	StatusWaitingCompletion  OfferStatus = "WAITING_COMPLETION"
	StatusCompleted          OfferStatus = "COMPLETED"
)

// Contact is a customer's contact data as extracted from the request mail.
type Contact struct {
	Name     string   `bson:"name" json:"name"`
	Email    string   `bson:"email" json:"email"`
	Language Language `bson:"language" json:"language"`
}

// Lane holds the trade-lane and cargo fields of a shipment request.
type Lane struct {
	Direction        TradeDirection `bson:"direction" json:"direction"`
	LoadCountry      string         `bson:"load_country" json:"load_country"`
	LoadCity         string         `bson:"load_city" json:"load_city"`
	DeliveryCountry  string         `bson:"delivery_country" json:"delivery_country"`
	DeliveryCity     string         `bson:"delivery_city" json:"delivery_city"`
	CargoDescription string         `bson:"cargo_description" json:"cargo_description"`
	CargoWeightKg    string         `bson:"cargo_weight_kg,omitempty" json:"cargo_weight_kg,omitempty"`
	CargoVolumeM3    string         `bson:"cargo_volume_m3,omitempty" json:"cargo_volume_m3,omitempty"`
	PackageCount     string         `bson:"package_count,omitempty" json:"package_count,omitempty"`
	Incoterm         string         `bson:"incoterm,omitempty" json:"incoterm,omitempty"`
}

// Merge overwrites the fields of l that are set in correction.
func (l Lane) Merge(correction Lane) Lane {
	pick := func(current, corrected string) string {
		if strings.TrimSpace(corrected) != "" {
			return strings.TrimSpace(corrected)
		}
		return current
	}
	if correction.Direction != "" {
		l.Direction = correction.Direction
	}
	l.LoadCountry = pick(l.LoadCountry, correction.LoadCountry)
	l.LoadCity = pick(l.LoadCity, correction.LoadCity)
	l.DeliveryCountry = pick(l.DeliveryCountry, correction.DeliveryCountry)
	l.DeliveryCity = pick(l.DeliveryCity, correction.DeliveryCity)
	l.CargoDescription = pick(l.CargoDescription, correction.CargoDescription)
	l.CargoWeightKg = pick(l.CargoWeightKg, correction.CargoWeightKg)
	l.CargoVolumeM3 = pick(l.CargoVolumeM3, correction.CargoVolumeM3)
	l.PackageCount = pick(l.PackageCount, correction.PackageCount)
	l.Incoterm = pick(l.Incoterm, correction.Incoterm)
	return l
}

// StatusChange is one entry of an offer's status history.
type StatusChange struct {
	From   OfferStatus `bson:"from" json:"from"`
	To     OfferStatus `bson:"to" json:"to"`
	At     time.Time   `bson:"at" json:"at"`
	Reason string      `bson:"reason,omitempty" json:"reason,omitempty"`
}

// Offer is one customer shipment-quote request.
type Offer struct {
	Base            `bson:",inline"`
	OfferNo         string          `bson:"offer_no" json:"offer_no"`
	PreviousOfferNo string          `bson:"previous_offer_no,omitempty" json:"previous_offer_no,omitempty"` // set by the one allowed rewrite
	Status          OfferStatus     `bson:"status" json:"status"`
	Customer        Contact         `bson:"customer" json:"customer"`
	Lane            Lane            `bson:"lane" json:"lane"`
	SupplierOffers  []SupplierOffer `bson:"supplier_offers" json:"supplier_offers"`
	Transitions     []StatusChange  `bson:"transitions" json:"transitions"`
	FinalPrice      string          `bson:"final_price,omitempty" json:"final_price,omitempty"`
	CreatedAt       time.Time       `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time       `bson:"updated_at" json:"updated_at"`
	StatusChangedAt time.Time       `bson:"status_changed_at" json:"status_changed_at"`
}

// Age is the time elapsed since the offer was created.
func (o *Offer) Age(now time.Time) time.Duration {
	return now.Sub(o.CreatedAt)
}
