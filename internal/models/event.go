package models

import "time"

// EventKind tags a structured record produced by the text-extraction collaborator.
type EventKind string

const (
	EventCustomerNewRequest EventKind = "CUSTOMER_NEW_REQUEST"
	EventCustomerCorrection EventKind = "CUSTOMER_CORRECTION"
	EventSupplierNewOffer   EventKind = "SUPPLIER_NEW_OFFER"
	EventOther              EventKind = "OTHER"
)

// RawMessage is the mail the event was extracted from.
type RawMessage struct {
	From       string    `json:"from"`
	To         []string  `json:"to"`
	Cc         []string  `json:"cc,omitempty"`
	Subject    string    `json:"subject"`
	Body       string    `json:"body"`
	ReceivedAt time.Time `json:"received_at"`
}

// PriceLine is one price quoted in a supplier reply.
type PriceLine struct {
	Price string `json:"price"`
	Note  string `json:"note,omitempty"`
}

// InboundEvent is a parsed mail handed to the offer workflow.
type InboundEvent struct {
	Kind           EventKind           `json:"kind"`
	Message        RawMessage          `json:"message"`
	OfferNo        string              `json:"offer_no,omitempty"`
	Customer       Contact             `json:"customer"`
	Lane           Lane                `json:"lane"`
	PriceLines     []PriceLine         `json:"price_lines,omitempty"`
	SupplierBodies map[Language]string `json:"supplier_bodies,omitempty"`
}
