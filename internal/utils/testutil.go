package utils

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"

	"freightdesk/quote/internal/models"
	"freightdesk/quote/internal/services"
)

// In-memory stand-ins for the Mongo-backed services. They honour the same
// contracts (conditional updates, append-only logs) so workflow tests can
// run without a database.

// MemoryOffers implements services.IOfferService.
type MemoryOffers struct {
	mu     sync.Mutex
	offers map[string]*models.Offer
	// BeforeUpdate, when set, runs before every Update. Tests use it to
	// simulate a concurrent writer.
	BeforeUpdate func(offerID string)
	// FailCreate, when set, is returned by Create instead of storing.
	FailCreate func(offer *models.Offer) error
}

func NewMemoryOffers() *MemoryOffers {
	return &MemoryOffers{offers: make(map[string]*models.Offer)}
}

func cloneOffer(o *models.Offer) *models.Offer {
	c := *o
	c.SupplierOffers = append([]models.SupplierOffer{}, o.SupplierOffers...)
	c.Transitions = append([]models.StatusChange{}, o.Transitions...)
	return &c
}

func (m *MemoryOffers) Create(ctx context.Context, offer *models.Offer) error {
	if m.FailCreate != nil {
		if err := m.FailCreate(offer); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.offers {
		if o.OfferNo == offer.OfferNo {
			return fmt.Errorf("failed to insert offer %s: %w", offer.OfferNo, mongo.WriteException{WriteErrors: []mongo.WriteError{{
				Code:    11000,
				Message: "E11000 duplicate key error collection: offers index: offer_no_1",
			}}})
		}
	}
	offer.GenIDIfEmpty()
	m.offers[offer.ID] = cloneOffer(offer)
	return nil
}

func (m *MemoryOffers) FindByOfferNo(ctx context.Context, offerNo string) (*models.Offer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.offers {
		if o.OfferNo == offerNo || (o.PreviousOfferNo != "" && o.PreviousOfferNo == offerNo) {
			return cloneOffer(o), nil
		}
	}
	return nil, fmt.Errorf("offer %s: %w", offerNo, services.ErrNotFound)
}

func (m *MemoryOffers) FindByStatus(ctx context.Context, status models.OfferStatus, filter services.OfferFilter) ([]models.Offer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Offer
	for _, o := range m.offers {
		if o.Status != status {
			continue
		}
		if !filter.CreatedBefore.IsZero() && !o.CreatedAt.Before(filter.CreatedBefore) {
			continue
		}
		if !filter.StatusChangedBefore.IsZero() && !o.StatusChangedAt.Before(filter.StatusChangedBefore) {
			continue
		}
		out = append(out, *cloneOffer(o))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryOffers) Update(ctx context.Context, offerID string, expected models.OfferStatus, change services.OfferChange) (*models.Offer, error) {
	if m.BeforeUpdate != nil {
		m.BeforeUpdate(offerID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.offers[offerID]
	if !ok || o.Status != expected {
		return nil, fmt.Errorf("offer %s not in %s: %w", offerID, expected, services.ErrStaleStatus)
	}
	at := change.At
	if at.IsZero() {
		at = time.Now().UTC()
	}
	o.UpdatedAt = at
	if change.Status != "" {
		o.Transitions = append(o.Transitions, models.StatusChange{From: expected, To: change.Status, At: at, Reason: change.Reason})
		o.Status = change.Status
		o.StatusChangedAt = at
	}
	if change.OfferNo != "" {
		o.OfferNo = change.OfferNo
		o.PreviousOfferNo = change.PreviousOfferNo
	}
	if change.Customer != nil {
		o.Customer = *change.Customer
	}
	if change.Lane != nil {
		o.Lane = *change.Lane
	}
	if change.FinalPrice != "" {
		o.FinalPrice = change.FinalPrice
	}
	o.SupplierOffers = append(o.SupplierOffers, change.AppendBids...)
	return cloneOffer(o), nil
}

// Put stores offer as-is, bypassing Create. Handy for arranging fixtures.
func (m *MemoryOffers) Put(offer *models.Offer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	offer.GenIDIfEmpty()
	m.offers[offer.ID] = cloneOffer(offer)
}

// SetStatus forces a status without recording a transition.
func (m *MemoryOffers) SetStatus(offerID string, status models.OfferStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if o, ok := m.offers[offerID]; ok {
		o.Status = status
	}
}

// MemoryMailLogs implements services.IMailLogService.
type MemoryMailLogs struct {
	mu      sync.Mutex
	entries []models.MailLog
	Now     func() time.Time
}

func NewMemoryMailLogs() *MemoryMailLogs {
	return &MemoryMailLogs{Now: func() time.Time { return time.Now().UTC() }}
}

func (m *MemoryMailLogs) Append(ctx context.Context, entry *models.MailLog) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = m.Now()
	}
	entry.Recipient = strings.ToLower(strings.TrimSpace(entry.Recipient))
	if entry.Recipient == "" && len(entry.To) > 0 {
		entry.Recipient = strings.ToLower(strings.TrimSpace(entry.To[0]))
	}
	m.entries = append(m.entries, *entry)
	return entry.ID, nil
}

func (m *MemoryMailLogs) HasLogOfKind(ctx context.Context, externalID string, kind models.MailLogType, recipient string) (bool, error) {
	recipient = strings.ToLower(strings.TrimSpace(recipient))
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.entries {
		if e.ExternalID == externalID && e.Type == kind && (recipient == "" || e.Recipient == recipient) {
			return true, nil
		}
	}
	return false, nil
}

func (m *MemoryMailLogs) Latest(ctx context.Context, externalID string, kind models.MailLogType) (*models.MailLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var latest *models.MailLog
	for i := range m.entries {
		e := m.entries[i]
		if e.ExternalID == externalID && e.Type == kind && (latest == nil || !e.CreatedAt.Before(latest.CreatedAt)) {
			latest = &e
		}
	}
	return latest, nil
}

func (m *MemoryMailLogs) Find(ctx context.Context, externalID string, kind models.MailLogType, since, until time.Time) ([]models.MailLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.MailLog
	for _, e := range m.entries {
		if e.ExternalID != externalID || e.Type != kind {
			continue
		}
		if !since.IsZero() && e.CreatedAt.Before(since) {
			continue
		}
		if !until.IsZero() && e.CreatedAt.After(until) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// OfKind returns every entry of kind, in append order.
func (m *MemoryMailLogs) OfKind(kind models.MailLogType) []models.MailLog {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.MailLog
	for _, e := range m.entries {
		if e.Type == kind {
			out = append(out, e)
		}
	}
	return out
}

// All returns every entry, in append order.
func (m *MemoryMailLogs) All() []models.MailLog {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.MailLog{}, m.entries...)
}

// StaticSuppliers implements services.ISupplierService over a fixed directory.
type StaticSuppliers struct {
	Suppliers []models.Supplier
}

func (s *StaticSuppliers) Match(ctx context.Context, lane models.Lane) ([]models.Supplier, error) {
	var out []models.Supplier
	for _, sup := range s.Suppliers {
		if sup.Deleted {
			continue
		}
		for _, l := range sup.Lanes {
			if l.Direction == lane.Direction &&
				(l.LoadCountry == "" || strings.EqualFold(l.LoadCountry, lane.LoadCountry)) &&
				(l.DeliveryCountry == "" || strings.EqualFold(l.DeliveryCountry, lane.DeliveryCountry)) {
				out = append(out, sup)
				break
			}
		}
	}
	return out, nil
}

func (s *StaticSuppliers) FindContactByEmail(ctx context.Context, email string) (*models.SupplierContact, error) {
	for _, sup := range s.Suppliers {
		for _, c := range sup.Contacts {
			if strings.EqualFold(c.Email, strings.TrimSpace(email)) {
				contact := c
				contact.SupplierID = sup.ID
				return &contact, nil
			}
		}
	}
	return nil, fmt.Errorf("supplier contact %s: %w", email, services.ErrNotFound)
}

func (s *StaticSuppliers) FindContactsByIDs(ctx context.Context, ids []string) (map[string]models.SupplierContact, error) {
	out := make(map[string]models.SupplierContact)
	for _, sup := range s.Suppliers {
		for _, c := range sup.Contacts {
			for _, id := range ids {
				if c.ID == id {
					c.SupplierID = sup.ID
					out[id] = c
				}
			}
		}
	}
	return out, nil
}

// StaticConfig serves a fixed offer configuration, kill switch included.
type StaticConfig struct {
	mu     sync.Mutex
	Config models.OfferConfiguration
	Err    error
}

func NewStaticConfig() *StaticConfig {
	return &StaticConfig{Config: models.DefaultOfferConfiguration()}
}

func (s *StaticConfig) Get(ctx context.Context) (*models.OfferConfiguration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	c := s.Config
	return &c, nil
}

func (s *StaticConfig) Enabled(ctx context.Context) (bool, error) {
	cfg, err := s.Get(ctx)
	if err != nil {
		return false, err
	}
	return cfg.IsEnabled, nil
}

// SetEnabled flips the kill switch.
func (s *StaticConfig) SetEnabled(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Config.IsEnabled = on
}

// SentMail is one message captured by RecordingSender.
type SentMail struct {
	To      []string
	Subject string
	Raw     string
}

// RecordingSender captures sent mail. Addresses listed in FailFor make Send fail.
type RecordingSender struct {
	mu      sync.Mutex
	Sent    []SentMail
	FailFor map[string]error
}

func (s *RecordingSender) Send(ctx context.Context, to []string, subject string, rawMessage []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, addr := range to {
		if err, ok := s.FailFor[strings.ToLower(addr)]; ok {
			return err
		}
	}
	s.Sent = append(s.Sent, SentMail{To: to, Subject: subject, Raw: string(rawMessage)})
	return nil
}

// Count is the number of captured messages.
func (s *RecordingSender) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Sent)
}

var (
	_ services.IOfferService    = (*MemoryOffers)(nil)
	_ services.IMailLogService  = (*MemoryMailLogs)(nil)
	_ services.ISupplierService = (*StaticSuppliers)(nil)
)
