package offers

import (
	"fmt"
	"regexp"
	"time"

	"freightdesk/quote/internal/models"
	"freightdesk/quote/internal/utils"
)

// UnknownDirectionCode stands in for the direction segment until a correction supplies one.
const UnknownDirectionCode = "XX"

var offerNoPattern = regexp.MustCompile(`^(\d{2})([A-Z]{2})(\d{4})$`)

// WeekOfMonth is 1 for days 1-7, 2 for days 8-14 and so on.
func WeekOfMonth(t time.Time) int {
	return (t.Day()-1)/7 + 1
}

func directionCode(d models.TradeDirection) string {
	if code := d.Code(); code != "" {
		return code
	}
	return UnknownDirectionCode
}

// NewOfferNo builds <week of month><direction code><4 random digits>, e.g. 03EX0417.
func NewOfferNo(now time.Time, direction models.TradeDirection) string {
	return fmt.Sprintf("%02d%s%s", WeekOfMonth(now), directionCode(direction), utils.RandomDigits(4))
}

// RewriteDirection replaces only the direction segment of offerNo.
func RewriteDirection(offerNo string, direction models.TradeDirection) (string, error) {
	m := offerNoPattern.FindStringSubmatch(offerNo)
	if m == nil {
		return "", fmt.Errorf("malformed offer number %q", offerNo)
	}
	return m[1] + directionCode(direction) + m[3], nil
}
