package models

import "time"

// MailLogType is the closed vocabulary of mail events tied to an offer or file event.
type MailLogType string

const (
	// Inbound
	LogCustomerRequest    MailLogType = "customer_request"
	LogCustomerCorrection MailLogType = "customer_correction"
	LogSupplierOffer      MailLogType = "supplier_offer"

	// Outbound to customers and suppliers
	LogMissingInformation         MailLogType = "missing_information"
	LogMissingInformationReminder MailLogType = "missing_information_reminder"
	LogNoSupplier                 MailLogType = "no_supplier"
	LogPriceRequest               MailLogType = "price_request"
	LogSupplierReminder           MailLogType = "supplier_reminder"
	LogFinalPrice                 MailLogType = "final_price"
	LogFileReadyNotification      MailLogType = "file_ready_notification"

	// Outbound to internal staff
	LogPriceCalculated    MailLogType = "price_calculated"
	LogExpiredCorrection  MailLogType = "expired_correction"
	LogLateSupplierOffer  MailLogType = "late_supplier_offer"
	LogCorrectionRejected MailLogType = "correction_rejected"
	LogNoValidBids        MailLogType = "no_valid_bids"
	LogOfferExpired       MailLogType = "offer_expired"
)

// ExternalTypes are the outbound types addressed to customers and suppliers.
var ExternalTypes = []MailLogType{
	LogMissingInformation,
	LogMissingInformationReminder,
	LogNoSupplier,
	LogPriceRequest,
	LogSupplierReminder,
	LogFinalPrice,
	LogFileReadyNotification,
}

// InternalTypes are the outbound types addressed to internal staff.
var InternalTypes = []MailLogType{
	LogPriceCalculated,
	LogExpiredCorrection,
	LogLateSupplierOffer,
	LogCorrectionRejected,
	LogNoValidBids,
	LogOfferExpired,
}

type MailDirection string

const (
	MailInbound  MailDirection = "inbound"
	MailOutbound MailDirection = "outbound"
)

// MailLog is the append-only record of a mail sent or received.
type MailLog struct {
	Base       `bson:",inline"`
	Type       MailLogType   `bson:"type" json:"type"`
	ExternalID string        `bson:"external_id" json:"external_id"`
	Direction  MailDirection `bson:"direction" json:"direction"`
	From       string        `bson:"from" json:"from"`
	To         []string      `bson:"to" json:"to"`
	Recipient  string        `bson:"recipient" json:"recipient"`
	Subject    string        `bson:"subject" json:"subject"`
	Body       string        `bson:"body" json:"body"`
	CreatedAt  time.Time     `bson:"created_at" json:"created_at"`
}
