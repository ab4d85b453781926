package models

// EmailTemplate is a subject/body pair for one mail type in one language.
// Stored overrides live in the `email_templates` collection.
type EmailTemplate struct {
	Base     `bson:",inline"`
	Type     MailLogType `bson:"type" json:"type"`
	Language Language    `bson:"language" json:"language"`
	Subject  string      `bson:"subject" json:"subject"` // text/template
	Body     string      `bson:"body" json:"body"`       // text/template
}
