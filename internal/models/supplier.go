package models

import "time"

// SupplierContact is a person at a supplier who receives price requests.
type SupplierContact struct {
	ID         string   `bson:"id" json:"id"`
	SupplierID string   `bson:"supplier_id" json:"supplier_id"`
	Name       string   `bson:"name" json:"name"`
	Email      string   `bson:"email" json:"email"`
	Language   Language `bson:"language" json:"language"`
	Deleted    bool     `bson:"deleted" json:"deleted"`
}

// SupplierLane is a trade lane a supplier serves. Empty countries match any country.
type SupplierLane struct {
	Direction       TradeDirection `bson:"direction" json:"direction"`
	LoadCountry     string         `bson:"load_country,omitempty" json:"load_country,omitempty"`
	DeliveryCountry string         `bson:"delivery_country,omitempty" json:"delivery_country,omitempty"`
}

// Supplier is a carrier or agent that can be solicited for prices.
type Supplier struct {
	Base     `bson:",inline"`
	Name     string            `bson:"name" json:"name"`
	Lanes    []SupplierLane    `bson:"lanes" json:"lanes"`
	Contacts []SupplierContact `bson:"contacts" json:"contacts"`
	Deleted  bool              `bson:"deleted" json:"-"`
}

// BidPrice is the parsed form of a supplier's free-text price.
type BidPrice struct {
	Amount string `bson:"amount" json:"amount"` // decimal string
	Unit   string `bson:"unit" json:"unit"`
}

// SupplierOffer is one price line of a supplier's reply to an offer.
type SupplierOffer struct {
	ID        string          `bson:"id" json:"id"`
	OfferID   string          `bson:"offer_id" json:"offer_id"`
	ReplyID   string          `bson:"reply_id" json:"reply_id"`
	PriceRaw  string          `bson:"price_raw" json:"price_raw"`
	Price     *BidPrice       `bson:"price,omitempty" json:"price,omitempty"`
	Note      string          `bson:"note,omitempty" json:"note,omitempty"`
	Contact   SupplierContact `bson:"contact" json:"contact"`
	CreatedAt time.Time       `bson:"created_at" json:"created_at"`
}
