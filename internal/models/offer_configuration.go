package models

import "time"

const OfferConfigurationID = "default"

// OfferConfiguration is the singleton pricing and kill-switch record.
type OfferConfiguration struct {
	ID           string    `bson:"_id" json:"-"`
	IsEnabled    bool      `bson:"is_enabled" json:"is_enabled"`
	Rate         string    `bson:"rate" json:"rate"`                   // percentage
	ProfitMargin string    `bson:"profit_margin" json:"profit_margin"` // percentage
	UpdatedAt    time.Time `bson:"updated_at" json:"updated_at"`
}

// DefaultOfferConfiguration is what a missing configuration record is created with.
func DefaultOfferConfiguration() OfferConfiguration {
	return OfferConfiguration{
		ID:           OfferConfigurationID,
		IsEnabled:    true,
		Rate:         "10",
		ProfitMargin: "0",
	}
}
