package notify

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/template"

	"freightdesk/quote/internal/models"
)

var ErrMissingTemplate = errors.New("missing email template")

// TemplateData is what every mail template renders from. Unused fields stay empty.
type TemplateData struct {
	OfferNo       string
	CustomerName  string
	ContactName   string
	Lane          models.Lane
	MissingFields []string
	Price         string
	BidPrice      string
	Rate          string
	Margin        string
	SupplierName  string
	SupplierBody  string
	Reason        string
	Age           string
	FileID        string
	FileKey       string
}

type templateKey struct {
	kind     models.MailLogType
	language models.Language
}

type compiled struct {
	subject *template.Template
	body    *template.Template
}

// Catalog maps (mail type, language) to parsed subject and body templates.
type Catalog struct {
	templates map[templateKey]compiled
}

// NewCatalog parses the built-in templates and applies stored overrides on top.
func NewCatalog(overrides []models.EmailTemplate) (*Catalog, error) {
	c := &Catalog{templates: make(map[templateKey]compiled)}
	for _, t := range defaultTemplates {
		if err := c.add(t); err != nil {
			return nil, err
		}
	}
	for _, t := range overrides {
		t.Language = models.ParseLanguage(string(t.Language))
		if err := c.add(t); err != nil {
			return nil, fmt.Errorf("override: %w", err)
		}
	}
	return c, nil
}

// DefaultCatalog returns the built-in templates only.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(nil)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Catalog) add(t models.EmailTemplate) error {
	name := fmt.Sprintf("%s/%s", t.Type, t.Language)
	subject, err := template.New(name + "/subject").Parse(t.Subject)
	if err != nil {
		return fmt.Errorf("template %s subject: %w", name, err)
	}
	body, err := template.New(name + "/body").Parse(t.Body)
	if err != nil {
		return fmt.Errorf("template %s body: %w", name, err)
	}
	c.templates[templateKey{t.Type, t.Language}] = compiled{subject: subject, body: body}
	return nil
}

// Validate checks that every external type exists in every supported language
// and every internal type exists in the default language.
func (c *Catalog) Validate() error {
	var missing []string
	for _, kind := range models.ExternalTypes {
		for _, lang := range models.SupportedLanguages {
			if _, ok := c.templates[templateKey{kind, lang}]; !ok {
				missing = append(missing, fmt.Sprintf("%s/%s", kind, lang))
			}
		}
	}
	for _, kind := range models.InternalTypes {
		if _, ok := c.templates[templateKey{kind, models.DefaultLanguage}]; !ok {
			missing = append(missing, fmt.Sprintf("%s/%s", kind, models.DefaultLanguage))
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingTemplate, strings.Join(missing, ", "))
	}
	// Unknown fields only fail at execution time.
	for key, t := range c.templates {
		if err := t.subject.Execute(io.Discard, TemplateData{}); err != nil {
			return fmt.Errorf("template %s/%s subject: %w", key.kind, key.language, err)
		}
		if err := t.body.Execute(io.Discard, TemplateData{}); err != nil {
			return fmt.Errorf("template %s/%s body: %w", key.kind, key.language, err)
		}
	}
	return nil
}

// Render produces the subject and body of kind in language.
func (c *Catalog) Render(kind models.MailLogType, language models.Language, data TemplateData) (string, string, error) {
	t, ok := c.templates[templateKey{kind, language}]
	if !ok {
		return "", "", fmt.Errorf("%w: %s/%s", ErrMissingTemplate, kind, language)
	}
	var subject, body bytes.Buffer
	if err := t.subject.Execute(&subject, data); err != nil {
		return "", "", fmt.Errorf("render %s/%s subject: %w", kind, language, err)
	}
	if err := t.body.Execute(&body, data); err != nil {
		return "", "", fmt.Errorf("render %s/%s body: %w", kind, language, err)
	}
	return strings.TrimSpace(subject.String()), body.String(), nil
}
