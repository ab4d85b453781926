package offers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"freightdesk/quote/internal/db"
	"freightdesk/quote/internal/logger"
	"freightdesk/quote/internal/models"
	"freightdesk/quote/internal/notify"
	"freightdesk/quote/internal/pricing"
	"freightdesk/quote/internal/services"
)

// maxStaleRetries bounds how often a transition re-reads an offer that changed underneath it.
const maxStaleRetries = 3

// Switch is the global kill switch for offer processing.
type Switch interface {
	Enabled(ctx context.Context) (bool, error)
}

// RateSource provides the current markup rate and profit margin.
type RateSource interface {
	Get(ctx context.Context) (*models.OfferConfiguration, error)
}

// Configuration is what the offer configuration service offers the controller.
type Configuration interface {
	Switch
	RateSource
}

// Notifier renders and dispatches outbound mail.
type Notifier interface {
	Render(kind models.MailLogType, language models.Language, data notify.TemplateData) (string, string, error)
	Dispatch(ctx context.Context, n notify.Notification) (string, error)
}

// Settings are the workflow windows and thresholds.
type Settings struct {
	CorrectionExpiry       time.Duration
	SupplierResponseExpiry time.Duration
	CompletionPercentage   int
	OpsEmail               string
}

// Controller drives offers through their lifecycle.
type Controller struct {
	offers    services.IOfferService
	logs      services.IMailLogService
	suppliers services.ISupplierService
	notifier  Notifier
	config    Configuration
	settings  Settings
	now       func() time.Time
}

// NewController creates a new Controller.
func NewController(
	offers services.IOfferService,
	logs services.IMailLogService,
	suppliers services.ISupplierService,
	notifier Notifier,
	config Configuration,
	settings Settings,
) *Controller {
	return &Controller{
		offers:    offers,
		logs:      logs,
		suppliers: suppliers,
		notifier:  notifier,
		config:    config,
		settings:  settings,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// SetClock replaces the controller's time source.
func (c *Controller) SetClock(now func() time.Time) {
	c.now = now
}

// Settings returns the workflow windows the controller runs with.
func (c *Controller) Settings() Settings {
	return c.settings
}

// CheckEnabled returns ErrDisabled when the kill switch is off.
func (c *Controller) CheckEnabled(ctx context.Context) error {
	on, err := c.config.Enabled(ctx)
	if err != nil {
		return fmt.Errorf("failed to read kill switch: %w", err)
	}
	if !on {
		return ErrDisabled
	}
	return nil
}

// HandleEvent routes an extracted mail event to its handler. OTHER events are ignored.
func (c *Controller) HandleEvent(ctx context.Context, ev models.InboundEvent) error {
	var err error
	switch ev.Kind {
	case models.EventCustomerNewRequest:
		_, err = c.HandleNewRequest(ctx, ev)
	case models.EventCustomerCorrection:
		_, err = c.HandleCorrection(ctx, ev)
	case models.EventSupplierNewOffer:
		_, err = c.HandleSupplierReply(ctx, ev)
	case models.EventOther:
		logger.Debug(ctx, "ignoring unrelated mail", "from", ev.Message.From, "subject", ev.Message.Subject)
	default:
		err = fmt.Errorf("unknown event kind %q", ev.Kind)
	}
	return err
}

// plan is the outcome of the missing-info and supplier-matching checks.
type plan struct {
	status   models.OfferStatus
	reason   string
	missing  []string
	contacts []models.SupplierContact
}

func (c *Controller) plan(ctx context.Context, customer models.Contact, lane models.Lane) (plan, error) {
	if missing := MissingFields(customer, lane); len(missing) > 0 {
		return plan{status: models.StatusMissingInformation, reason: "required fields missing", missing: missing}, nil
	}
	suppliers, err := c.suppliers.Match(ctx, lane)
	if err != nil {
		return plan{}, err
	}
	seen := make(map[string]bool)
	var contacts []models.SupplierContact
	for _, s := range suppliers {
		for _, contact := range s.Contacts {
			if contact.Deleted || contact.Email == "" || seen[contact.Email] {
				continue
			}
			seen[contact.Email] = true
			if contact.SupplierID == "" {
				contact.SupplierID = s.ID
			}
			contacts = append(contacts, contact)
		}
	}
	if len(contacts) == 0 {
		return plan{status: models.StatusNoSupplier, reason: "no supplier serves the lane"}, nil
	}
	return plan{status: models.StatusFeeRequested, reason: "suppliers asked for prices", contacts: contacts}, nil
}

// HandleNewRequest stores a new offer and starts its workflow.
func (c *Controller) HandleNewRequest(ctx context.Context, ev models.InboundEvent) (*models.Offer, error) {
	if err := c.CheckEnabled(ctx); err != nil {
		return nil, err
	}
	now := c.now()

	customer := ev.Customer
	if strings.TrimSpace(customer.Email) == "" {
		customer.Email = ev.Message.From
	}
	customer = normalizeContact(customer)
	lane := normalizeLane(ev.Lane)

	p, err := c.plan(ctx, customer, lane)
	if err != nil {
		return nil, fmt.Errorf("failed to plan new offer: %w", err)
	}

	offer := &models.Offer{
		Status:   p.status,
		Customer: customer,
		Lane:     lane,
		Transitions: []models.StatusChange{
			{From: "", To: models.StatusCreated, At: now, Reason: "customer request received"},
			{From: models.StatusCreated, To: p.status, At: now, Reason: p.reason},
		},
		CreatedAt:       now,
		UpdatedAt:       now,
		StatusChangedAt: now,
	}
	err = db.Try(func() error {
		offer.OfferNo = NewOfferNo(now, lane.Direction)
		return c.offers.Create(ctx, offer)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create offer: %w", err)
	}

	ctx = logger.WithOfferNo(ctx, offer.OfferNo)
	logger.Info(ctx, "offer created", "status", offer.Status, "direction", lane.Direction)
	c.logInbound(ctx, offer.OfferNo, models.LogCustomerRequest, ev)

	c.carryOut(ctx, offer, p, ev.SupplierBodies)
	return offer, nil
}

// HandleCorrection applies a customer's corrected fields to an open offer.
func (c *Controller) HandleCorrection(ctx context.Context, ev models.InboundEvent) (*models.Offer, error) {
	if err := c.CheckEnabled(ctx); err != nil {
		return nil, err
	}
	offer, err := c.findOffer(ctx, ev.OfferNo)
	if err != nil {
		return nil, err
	}
	ctx = logger.WithOfferNo(ctx, offer.OfferNo)
	c.logInbound(ctx, offer.OfferNo, models.LogCustomerCorrection, ev)

	now := c.now()
	if age := offer.Age(now); age > c.settings.CorrectionExpiry {
		logger.Warn(ctx, "correction arrived after expiry", "age", age)
		c.alert(ctx, offer, models.LogExpiredCorrection, notify.TemplateData{Age: formatAge(age)})
		return offer, nil
	}

	for attempt := 0; ; attempt++ {
		updated, err := c.applyCorrection(ctx, offer, ev, now)
		if !errors.Is(err, services.ErrStaleStatus) || attempt >= maxStaleRetries {
			return updated, err
		}
		logger.Info(ctx, "offer changed during correction, retrying", "attempt", attempt+1)
		if offer, err = c.findOffer(ctx, offer.OfferNo); err != nil {
			return nil, err
		}
	}
}

func (c *Controller) applyCorrection(ctx context.Context, offer *models.Offer, ev models.InboundEvent, now time.Time) (*models.Offer, error) {
	if offer.Status != models.StatusMissingInformation && offer.Status != models.StatusFeeRequested {
		c.rejectCorrection(ctx, offer, fmt.Sprintf("the offer is %s and no longer accepts corrections", offer.Status))
		return offer, nil
	}

	lane := offer.Lane.Merge(normalizeLane(ev.Lane))
	customer := mergeContact(offer.Customer, ev.Customer)

	change := services.OfferChange{Lane: &lane, Customer: &customer, At: now, Reason: "customer correction"}
	if lane.Direction != offer.Lane.Direction {
		switch {
		case offer.Status == models.StatusFeeRequested:
			c.rejectCorrection(ctx, offer, "the trade direction cannot change once suppliers were asked for prices")
			return offer, nil
		case offer.PreviousOfferNo != "":
			c.rejectCorrection(ctx, offer, "the offer number was already rewritten once")
			return offer, nil
		}
		newNo, err := RewriteDirection(offer.OfferNo, lane.Direction)
		if err != nil {
			return nil, err
		}
		change.OfferNo = newNo
		change.PreviousOfferNo = offer.OfferNo
	}

	p, err := c.plan(ctx, customer, lane)
	if err != nil {
		return nil, fmt.Errorf("failed to plan correction: %w", err)
	}
	if err := checkTransition(offer.Status, p.status); err != nil {
		c.rejectCorrection(ctx, offer, fmt.Sprintf("the correction would move the offer from %s to %s", offer.Status, p.status))
		return offer, nil
	}
	change.Status = p.status

	updated, err := c.offers.Update(ctx, offer.ID, offer.Status, change)
	if err != nil {
		return nil, err
	}
	if change.OfferNo != "" {
		ctx = logger.WithOfferNo(ctx, updated.OfferNo)
		logger.Info(ctx, "offer number rewritten", "previous", change.PreviousOfferNo)
	}
	logger.Info(ctx, "correction applied", "from", offer.Status, "to", updated.Status)

	c.carryOut(ctx, updated, p, ev.SupplierBodies)
	return updated, nil
}

// HandleSupplierReply records the price lines of a supplier's reply.
func (c *Controller) HandleSupplierReply(ctx context.Context, ev models.InboundEvent) (*models.Offer, error) {
	if err := c.CheckEnabled(ctx); err != nil {
		return nil, err
	}
	offer, err := c.findOffer(ctx, ev.OfferNo)
	if err != nil {
		return nil, err
	}
	ctx = logger.WithOfferNo(ctx, offer.OfferNo)
	sender := strings.ToLower(strings.TrimSpace(ev.Message.From))

	now := c.now()
	if age := offer.Age(now); age > c.settings.SupplierResponseExpiry {
		logger.Warn(ctx, "supplier replied after the response window", "sender", sender, "age", age)
		c.alert(ctx, offer, models.LogLateSupplierOffer, notify.TemplateData{SupplierName: sender, Age: formatAge(age)})
		return offer, nil
	}

	contact, err := c.suppliers.FindContactByEmail(ctx, sender)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownSupplier, sender)
		}
		return nil, fmt.Errorf("failed to resolve supplier contact: %w", err)
	}
	c.logInbound(ctx, offer.OfferNo, models.LogSupplierOffer, ev)

	replyID := uuid.NewString()
	var bids []models.SupplierOffer
	for _, line := range ev.PriceLines {
		bid := models.SupplierOffer{
			ID:        uuid.NewString(),
			OfferID:   offer.ID,
			ReplyID:   replyID,
			PriceRaw:  strings.TrimSpace(line.Price),
			Note:      strings.TrimSpace(line.Note),
			Contact:   *contact,
			CreatedAt: now,
		}
		if price, err := pricing.ParsePrice(line.Price); err == nil {
			bid.Price = price.Bid()
		} else {
			logger.Warn(ctx, "storing supplier price without amount", "raw", line.Price, "error", err)
		}
		bids = append(bids, bid)
	}
	if len(bids) == 0 {
		logger.Warn(ctx, "supplier reply carries no price lines", "sender", sender)
		return offer, nil
	}

	for attempt := 0; ; attempt++ {
		updated, err := c.recordBids(ctx, offer, bids, now)
		if !errors.Is(err, services.ErrStaleStatus) || attempt >= maxStaleRetries {
			return updated, err
		}
		logger.Info(ctx, "offer changed while recording bids, retrying", "attempt", attempt+1)
		if offer, err = c.findOffer(ctx, offer.OfferNo); err != nil {
			return nil, err
		}
	}
}

func (c *Controller) recordBids(ctx context.Context, offer *models.Offer, bids []models.SupplierOffer, now time.Time) (*models.Offer, error) {
	change := services.OfferChange{AppendBids: bids, At: now}
	switch offer.Status {
	case models.StatusFeeRequested:
		requests, err := c.CountPriceRequests(ctx, offer)
		if err != nil {
			return nil, err
		}
		all, err := c.hydrateBids(ctx, append(append([]models.SupplierOffer{}, offer.SupplierOffers...), bids...))
		if err != nil {
			return nil, err
		}
		if IsComplete(requests, all, c.settings.CompletionPercentage) {
			change.Status = models.StatusWaitingCompletion
			change.Reason = "enough supplier prices received"
		}
	case models.StatusWaitingCompletion:
	default:
		return nil, fmt.Errorf("%w: %s does not accept supplier bids", ErrInvalidTransition, offer.Status)
	}

	updated, err := c.offers.Update(ctx, offer.ID, offer.Status, change)
	if err != nil {
		return nil, err
	}
	logger.Info(ctx, "supplier bids recorded", "count", len(bids), "status", updated.Status)
	if change.Status == models.StatusWaitingCompletion {
		c.reportCalculatedPrice(ctx, updated)
	}
	return updated, nil
}

// AdvanceToCompletion closes bidding on an offer whose response window is over.
func (c *Controller) AdvanceToCompletion(ctx context.Context, offerNo string) (*models.Offer, error) {
	if err := c.CheckEnabled(ctx); err != nil {
		return nil, err
	}
	offer, err := c.findOffer(ctx, offerNo)
	if err != nil {
		return nil, err
	}
	ctx = logger.WithOfferNo(ctx, offer.OfferNo)
	if offer.Status == models.StatusWaitingCompletion {
		return offer, nil
	}
	if err := checkTransition(offer.Status, models.StatusWaitingCompletion); err != nil {
		return nil, err
	}

	bids, err := c.hydrateBids(ctx, offer.SupplierOffers)
	if err != nil {
		return nil, err
	}
	if _, _, ok := pricing.SelectLowest(ActiveBids(bids)); !ok {
		return offer, ErrNoValidBids
	}

	updated, err := c.offers.Update(ctx, offer.ID, offer.Status, services.OfferChange{
		Status: models.StatusWaitingCompletion,
		Reason: "supplier response window closed",
		At:     c.now(),
	})
	if err != nil {
		return nil, err
	}
	logger.Info(ctx, "bidding closed", "bids", len(offer.SupplierOffers))
	c.reportCalculatedPrice(ctx, updated)
	return updated, nil
}

// Finalize completes an offer with its lowest active bid and sends the final price to the customer.
func (c *Controller) Finalize(ctx context.Context, offerNo string) (*models.Offer, error) {
	if err := c.CheckEnabled(ctx); err != nil {
		return nil, err
	}
	offer, err := c.findOffer(ctx, offerNo)
	if err != nil {
		return nil, err
	}
	ctx = logger.WithOfferNo(ctx, offer.OfferNo)
	if offer.Status == models.StatusCompleted {
		return offer, nil
	}
	if err := checkTransition(offer.Status, models.StatusCompleted); err != nil {
		return nil, err
	}

	quote, _, err := c.quote(ctx, offer)
	if err != nil {
		return offer, err
	}
	final := withUnit(quote.FinalPrice, quote.Base.Unit)

	updated, err := c.offers.Update(ctx, offer.ID, offer.Status, services.OfferChange{
		Status:     models.StatusCompleted,
		Reason:     "final price " + final,
		FinalPrice: final,
		At:         c.now(),
	})
	if err != nil {
		return nil, err
	}
	logger.Info(ctx, "offer completed", "final_price", final)

	to := updated.Customer.Email
	if req, err := LatestOfferLog(ctx, c.logs, updated, models.LogCustomerRequest); err != nil {
		logger.Warn(ctx, "failed to read original request, using stored customer email", "error", err)
	} else if req != nil && req.From != "" {
		to = req.From
	}
	c.notifyAddress(ctx, updated, to, updated.Customer.Language, models.LogFinalPrice, notify.TemplateData{Price: final})
	return updated, nil
}

// quote selects the lowest active bid and applies the configured markup.
func (c *Controller) quote(ctx context.Context, offer *models.Offer) (pricing.Quote, models.SupplierOffer, error) {
	bids, err := c.hydrateBids(ctx, offer.SupplierOffers)
	if err != nil {
		return pricing.Quote{}, models.SupplierOffer{}, err
	}
	best, price, ok := pricing.SelectLowest(ActiveBids(bids))
	if !ok {
		return pricing.Quote{}, models.SupplierOffer{}, ErrNoValidBids
	}
	cfg, err := c.config.Get(ctx)
	if err != nil {
		return pricing.Quote{}, models.SupplierOffer{}, fmt.Errorf("failed to read offer configuration: %w", err)
	}
	q, err := pricing.CalculateFrom(price, cfg.Rate, cfg.ProfitMargin)
	if err != nil {
		return pricing.Quote{}, models.SupplierOffer{}, err
	}
	return q, best, nil
}

// reportCalculatedPrice tells staff which price an offer is about to be completed with.
func (c *Controller) reportCalculatedPrice(ctx context.Context, offer *models.Offer) {
	sent, err := HasOfferLog(ctx, c.logs, offer, models.LogPriceCalculated, "")
	if err != nil || sent {
		return
	}
	q, best, err := c.quote(ctx, offer)
	if err != nil {
		logger.Warn(ctx, "cannot calculate price", "error", err)
		return
	}
	c.alert(ctx, offer, models.LogPriceCalculated, notify.TemplateData{
		Price:        withUnit(q.FinalPrice, q.Base.Unit),
		BidPrice:     q.Base.String(),
		Rate:         q.Rate,
		Margin:       q.Margin,
		SupplierName: best.Contact.Name + " <" + best.Contact.Email + ">",
	})
}

// CountPriceRequests counts distinct contacts asked for a price within the offer's response window.
func (c *Controller) CountPriceRequests(ctx context.Context, offer *models.Offer) (int, error) {
	recipients, err := c.PriceRequestRecipients(ctx, offer)
	return len(recipients), err
}

// PriceRequestRecipients lists the distinct addresses asked for a price within the response window.
func (c *Controller) PriceRequestRecipients(ctx context.Context, offer *models.Offer) ([]string, error) {
	entries, err := FindOfferLogs(ctx, c.logs, offer, models.LogPriceRequest, offer.CreatedAt, offer.CreatedAt.Add(c.settings.SupplierResponseExpiry))
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var recipients []string
	for _, e := range entries {
		if e.Recipient != "" && !seen[e.Recipient] {
			seen[e.Recipient] = true
			recipients = append(recipients, e.Recipient)
		}
	}
	return recipients, nil
}

// HydrateBids is hydrateBids for sweeps.
func (c *Controller) HydrateBids(ctx context.Context, bids []models.SupplierOffer) ([]models.SupplierOffer, error) {
	return c.hydrateBids(ctx, bids)
}

// hydrateBids refreshes the deleted flag of every bid's contact from the supplier directory.
// Contacts that vanished from the directory count as deleted.
func (c *Controller) hydrateBids(ctx context.Context, bids []models.SupplierOffer) ([]models.SupplierOffer, error) {
	if len(bids) == 0 {
		return bids, nil
	}
	var ids []string
	seen := make(map[string]bool)
	for _, b := range bids {
		if !seen[b.Contact.ID] {
			seen[b.Contact.ID] = true
			ids = append(ids, b.Contact.ID)
		}
	}
	current, err := c.suppliers.FindContactsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load bid contacts: %w", err)
	}
	out := make([]models.SupplierOffer, len(bids))
	for i, b := range bids {
		contact, ok := current[b.Contact.ID]
		b.Contact.Deleted = !ok || contact.Deleted
		out[i] = b
	}
	return out, nil
}

// carryOut sends the mails that follow a planned status.
func (c *Controller) carryOut(ctx context.Context, offer *models.Offer, p plan, bodies map[models.Language]string) {
	switch p.status {
	case models.StatusMissingInformation:
		c.notifyCustomer(ctx, offer, models.LogMissingInformation, notify.TemplateData{MissingFields: p.missing})
	case models.StatusNoSupplier:
		c.notifyCustomer(ctx, offer, models.LogNoSupplier, notify.TemplateData{})
	case models.StatusFeeRequested:
		c.solicit(ctx, offer, p.contacts, bodies)
	}
}

// solicit sends a price request to every contact not asked yet. When the event
// carries supplier texts, contacts whose language has none are skipped.
func (c *Controller) solicit(ctx context.Context, offer *models.Offer, contacts []models.SupplierContact, bodies map[models.Language]string) {
	for _, contact := range contacts {
		lang := models.ParseLanguage(string(contact.Language))
		body, ok := bodies[lang]
		if len(bodies) > 0 && !ok {
			logger.Info(ctx, "no supplier text in contact language, skipping", "contact", contact.Email, "language", lang)
			continue
		}
		asked, err := HasOfferLog(ctx, c.logs, offer, models.LogPriceRequest, contact.Email)
		if err != nil {
			logger.Error(ctx, "failed to check earlier price requests", "contact", contact.Email, "error", err)
			continue
		}
		if asked {
			continue
		}
		c.notifyAddress(ctx, offer, contact.Email, lang, models.LogPriceRequest, notify.TemplateData{
			ContactName:  contact.Name,
			SupplierBody: body,
		})
	}
}

// Notify sends kind to address in language. The offer's own fields are filled into data.
func (c *Controller) Notify(ctx context.Context, offer *models.Offer, address string, language models.Language, kind models.MailLogType, data notify.TemplateData) error {
	return c.notifyAddress(ctx, offer, address, language, kind, data)
}

// Alert sends an internal escalation about offer.
func (c *Controller) Alert(ctx context.Context, offer *models.Offer, kind models.MailLogType, data notify.TemplateData) error {
	return c.alert(ctx, offer, kind, data)
}

func (c *Controller) rejectCorrection(ctx context.Context, offer *models.Offer, reason string) {
	logger.Warn(ctx, "correction rejected", "reason", reason)
	c.alert(ctx, offer, models.LogCorrectionRejected, notify.TemplateData{Reason: reason})
}

func (c *Controller) alert(ctx context.Context, offer *models.Offer, kind models.MailLogType, data notify.TemplateData) error {
	return c.notifyAddress(ctx, offer, c.settings.OpsEmail, models.DefaultLanguage, kind, data)
}

func (c *Controller) notifyCustomer(ctx context.Context, offer *models.Offer, kind models.MailLogType, data notify.TemplateData) error {
	return c.notifyAddress(ctx, offer, offer.Customer.Email, offer.Customer.Language, kind, data)
}

// notifyAddress renders and dispatches one mail. Failures are logged and returned, never undone.
func (c *Controller) notifyAddress(ctx context.Context, offer *models.Offer, address string, language models.Language, kind models.MailLogType, data notify.TemplateData) error {
	if strings.TrimSpace(address) == "" {
		logger.Warn(ctx, "no address to notify", "type", kind)
		return fmt.Errorf("no address for %s", kind)
	}
	data.OfferNo = offer.OfferNo
	data.Lane = offer.Lane
	if data.CustomerName == "" {
		data.CustomerName = offer.Customer.Name
	}
	subject, body, err := c.notifier.Render(kind, language, data)
	if err != nil {
		logger.Error(ctx, "failed to render notification", "type", kind, "language", language, "error", err)
		return err
	}
	if _, err := c.notifier.Dispatch(ctx, notify.Notification{
		To:         []string{address},
		Subject:    subject,
		Body:       body,
		Kind:       kind,
		ExternalID: offer.OfferNo,
	}); err != nil {
		logger.Error(ctx, "failed to dispatch notification", "type", kind, "to", address, "error", err)
		return err
	}
	return nil
}

func (c *Controller) logInbound(ctx context.Context, offerNo string, kind models.MailLogType, ev models.InboundEvent) {
	at := ev.Message.ReceivedAt
	if at.IsZero() {
		at = c.now()
	}
	from := strings.ToLower(strings.TrimSpace(ev.Message.From))
	if _, err := c.logs.Append(ctx, &models.MailLog{
		Type:       kind,
		ExternalID: offerNo,
		Direction:  models.MailInbound,
		From:       from,
		To:         ev.Message.To,
		Recipient:  from,
		Subject:    ev.Message.Subject,
		Body:       ev.Message.Body,
		CreatedAt:  at,
	}); err != nil {
		logger.Error(ctx, "failed to log inbound mail", "type", kind, "error", err)
	}
}

func (c *Controller) findOffer(ctx context.Context, offerNo string) (*models.Offer, error) {
	offerNo = strings.ToUpper(strings.TrimSpace(offerNo))
	if offerNo == "" {
		return nil, fmt.Errorf("%w: no offer number", ErrOfferNotFound)
	}
	offer, err := c.offers.FindByOfferNo(ctx, offerNo)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrOfferNotFound, offerNo)
		}
		return nil, err
	}
	return offer, nil
}

func withUnit(amount, unit string) string {
	if unit == "" {
		return amount
	}
	return amount + " " + unit
}

func formatAge(d time.Duration) string {
	return d.Round(time.Minute).String()
}
