package notify

import "freightdesk/quote/internal/models"

const laneEN = `{{.Lane.Direction}} {{.Lane.LoadCity}}, {{.Lane.LoadCountry}} -> {{.Lane.DeliveryCity}}, {{.Lane.DeliveryCountry}}
Cargo: {{.Lane.CargoDescription}}{{if .Lane.CargoWeightKg}}, {{.Lane.CargoWeightKg}} kg{{end}}{{if .Lane.CargoVolumeM3}}, {{.Lane.CargoVolumeM3}} m3{{end}}`

const laneDE = `{{.Lane.Direction}} {{.Lane.LoadCity}}, {{.Lane.LoadCountry}} -> {{.Lane.DeliveryCity}}, {{.Lane.DeliveryCountry}}
Ware: {{.Lane.CargoDescription}}{{if .Lane.CargoWeightKg}}, {{.Lane.CargoWeightKg}} kg{{end}}{{if .Lane.CargoVolumeM3}}, {{.Lane.CargoVolumeM3}} m3{{end}}`

var defaultTemplates = []models.EmailTemplate{
	// Customer and supplier mails, one per supported language.
	{Type: models.LogMissingInformation, Language: models.LanguageEN,
		Subject: "Your transport request {{.OfferNo}}: information missing",
		Body: `Dear {{if .CustomerName}}{{.CustomerName}}{{else}}customer{{end}},

thank you for your request. To quote a price we still need:
{{range .MissingFields}}- {{.}}
{{end}}
Please reply to this mail keeping {{.OfferNo}} in the subject.
`},
	{Type: models.LogMissingInformation, Language: models.LanguageDE,
		Subject: "Ihre Transportanfrage {{.OfferNo}}: fehlende Angaben",
		Body: `Guten Tag {{.CustomerName}},

vielen Dank für Ihre Anfrage. Für ein Angebot benötigen wir noch:
{{range .MissingFields}}- {{.}}
{{end}}
Bitte antworten Sie auf diese E-Mail und behalten Sie {{.OfferNo}} im Betreff.
`},
	{Type: models.LogMissingInformationReminder, Language: models.LanguageEN,
		Subject: "Reminder: your transport request {{.OfferNo}}",
		Body: `Dear {{if .CustomerName}}{{.CustomerName}}{{else}}customer{{end}},

we are still waiting for the missing details of request {{.OfferNo}}.
Without them we cannot ask our partners for prices.
`},
	{Type: models.LogMissingInformationReminder, Language: models.LanguageDE,
		Subject: "Erinnerung: Ihre Transportanfrage {{.OfferNo}}",
		Body: `Guten Tag {{.CustomerName}},

wir warten noch auf die fehlenden Angaben zu Anfrage {{.OfferNo}}.
Ohne diese können wir keine Preise anfragen.
`},
	{Type: models.LogNoSupplier, Language: models.LanguageEN,
		Subject: "Your transport request {{.OfferNo}}",
		Body: `Dear {{if .CustomerName}}{{.CustomerName}}{{else}}customer{{end}},

unfortunately we cannot offer this lane at the moment:
` + laneEN + `
`},
	{Type: models.LogNoSupplier, Language: models.LanguageDE,
		Subject: "Ihre Transportanfrage {{.OfferNo}}",
		Body: `Guten Tag {{.CustomerName}},

leider können wir diese Relation derzeit nicht anbieten:
` + laneDE + `
`},
	{Type: models.LogPriceRequest, Language: models.LanguageEN,
		Subject: "Price request {{.OfferNo}}",
		Body: `Hello {{.ContactName}},

{{.SupplierBody}}

` + laneEN + `

Please quote your price replying to this mail with {{.OfferNo}} in the subject.
`},
	{Type: models.LogPriceRequest, Language: models.LanguageDE,
		Subject: "Preisanfrage {{.OfferNo}}",
		Body: `Hallo {{.ContactName}},

{{.SupplierBody}}

` + laneDE + `

Bitte senden Sie uns Ihren Preis als Antwort mit {{.OfferNo}} im Betreff.
`},
	{Type: models.LogSupplierReminder, Language: models.LanguageEN,
		Subject: "Reminder: price request {{.OfferNo}}",
		Body: `Hello {{.ContactName}},

we have not received your price for {{.OfferNo}} yet.

` + laneEN + `
`},
	{Type: models.LogSupplierReminder, Language: models.LanguageDE,
		Subject: "Erinnerung: Preisanfrage {{.OfferNo}}",
		Body: `Hallo {{.ContactName}},

zu {{.OfferNo}} liegt uns noch kein Preis von Ihnen vor.

` + laneDE + `
`},
	{Type: models.LogFinalPrice, Language: models.LanguageEN,
		Subject: "Your offer {{.OfferNo}}",
		Body: `Dear {{if .CustomerName}}{{.CustomerName}}{{else}}customer{{end}},

we are pleased to offer:
` + laneEN + `

Price: {{.Price}}
`},
	{Type: models.LogFinalPrice, Language: models.LanguageDE,
		Subject: "Ihr Angebot {{.OfferNo}}",
		Body: `Guten Tag {{.CustomerName}},

gerne bieten wir Ihnen an:
` + laneDE + `

Preis: {{.Price}}
`},
	{Type: models.LogFileReadyNotification, Language: models.LanguageEN,
		Subject: "Document {{.FileID}} is ready",
		Body: `Hello,

document {{.FileID}} is ready for you.
`},
	{Type: models.LogFileReadyNotification, Language: models.LanguageDE,
		Subject: "Dokument {{.FileID}} ist bereit",
		Body: `Guten Tag,

das Dokument {{.FileID}} steht für Sie bereit.
`},

	// Internal staff mails.
	{Type: models.LogPriceCalculated, Language: models.LanguageEN,
		Subject: "[{{.OfferNo}}] price calculated: {{.Price}}",
		Body: `Offer {{.OfferNo}} is waiting for completion.
Lowest bid: {{.BidPrice}} from {{.SupplierName}}
Rate: {{.Rate}}%, margin: {{.Margin}}%
Final price: {{.Price}}
`},
	{Type: models.LogExpiredCorrection, Language: models.LanguageEN,
		Subject: "[{{.OfferNo}}] correction received after expiry",
		Body: `A correction for {{.OfferNo}} arrived {{.Age}} after creation and was not applied.
`},
	{Type: models.LogLateSupplierOffer, Language: models.LanguageEN,
		Subject: "[{{.OfferNo}}] late supplier offer",
		Body: `{{.SupplierName}} replied to {{.OfferNo}} {{.Age}} after creation. The reply was not recorded.
`},
	{Type: models.LogCorrectionRejected, Language: models.LanguageEN,
		Subject: "[{{.OfferNo}}] correction rejected",
		Body: `A correction for {{.OfferNo}} could not be applied: {{.Reason}}
`},
	{Type: models.LogNoValidBids, Language: models.LanguageEN,
		Subject: "[{{.OfferNo}}] no valid bids",
		Body: `The bidding window of {{.OfferNo}} closed without a usable price.
` + laneEN + `
`},
	{Type: models.LogOfferExpired, Language: models.LanguageEN,
		Subject: "[{{.OfferNo}}] request still incomplete",
		Body: `Offer {{.OfferNo}} has been missing information for {{.Age}}. Missing:
{{range .MissingFields}}- {{.}}
{{end}}`},
}
