package reconcile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"freightdesk/quote/internal/logger"
	"freightdesk/quote/internal/models"
	"freightdesk/quote/internal/notify"
	"freightdesk/quote/internal/offers"
	"freightdesk/quote/internal/services"
	"freightdesk/quote/internal/storage"
)

const (
	SweepNewFiles            = "new_files"
	SweepMissingInfoReminder = "missing_info_reminder"
	SweepSupplierReminder    = "supplier_reminder"
	SweepCompletion          = "completion"
	SweepOfferExpiry         = "offer_expiry"
)

// Handler runs one pass of a sweep as of now.
type Handler func(ctx context.Context, now time.Time) error

// Sweep is a periodic reconciliation job.
type Sweep struct {
	Name      string
	Interval  time.Duration
	Threshold time.Duration
	Handler   Handler
}

// Settings are the sweep intervals and age thresholds.
type Settings struct {
	NewFilesInterval         time.Duration
	OfferSweepInterval       time.Duration
	NewFilesLookback         time.Duration
	MissingInfoReminderAfter time.Duration
	SupplierReminderAfter    time.Duration
	CompletionGrace          time.Duration
}

// Reconciler finds offers and file events whose next step is due and performs it.
type Reconciler struct {
	ctrl      *offers.Controller
	offers    services.IOfferService
	logs      services.IMailLogService
	suppliers services.ISupplierService
	files     storage.IFileEventSource
	notifier  offers.Notifier
	settings  Settings
}

// NewReconciler creates a new Reconciler. files may be nil when no file bucket is configured.
func NewReconciler(
	ctrl *offers.Controller,
	offerService services.IOfferService,
	logs services.IMailLogService,
	suppliers services.ISupplierService,
	files storage.IFileEventSource,
	notifier offers.Notifier,
	settings Settings,
) *Reconciler {
	return &Reconciler{
		ctrl:      ctrl,
		offers:    offerService,
		logs:      logs,
		suppliers: suppliers,
		files:     files,
		notifier:  notifier,
		settings:  settings,
	}
}

// Sweeps lists every sweep with its schedule.
func (r *Reconciler) Sweeps() []Sweep {
	return []Sweep{
		{Name: SweepNewFiles, Interval: r.settings.NewFilesInterval, Threshold: r.settings.NewFilesLookback, Handler: r.NewFiles},
		{Name: SweepMissingInfoReminder, Interval: r.settings.OfferSweepInterval, Threshold: r.settings.MissingInfoReminderAfter, Handler: r.MissingInfoReminders},
		{Name: SweepSupplierReminder, Interval: r.settings.OfferSweepInterval, Threshold: r.settings.SupplierReminderAfter, Handler: r.SupplierReminders},
		{Name: SweepCompletion, Interval: r.settings.OfferSweepInterval, Threshold: r.settings.CompletionGrace, Handler: r.Completion},
		{Name: SweepOfferExpiry, Interval: r.settings.OfferSweepInterval, Threshold: r.ctrl.Settings().CorrectionExpiry, Handler: r.OfferExpiry},
	}
}

// Lookup finds a sweep by name.
func (r *Reconciler) Lookup(name string) (Sweep, bool) {
	for _, s := range r.Sweeps() {
		if s.Name == name {
			return s, true
		}
	}
	return Sweep{}, false
}

// enabled reports whether sweeps may act. A disabled switch is not an error.
func (r *Reconciler) enabled(ctx context.Context, sweep string) (bool, error) {
	err := r.ctrl.CheckEnabled(ctx)
	if errors.Is(err, offers.ErrDisabled) {
		logger.Debug(ctx, "offer processing disabled, skipping sweep", "sweep", sweep)
		return false, nil
	}
	return err == nil, err
}

// NewFiles notifies the recipients of every file that became ready within the lookback window.
func (r *Reconciler) NewFiles(ctx context.Context, now time.Time) error {
	if ok, err := r.enabled(ctx, SweepNewFiles); !ok {
		return err
	}
	if r.files == nil {
		logger.Debug(ctx, "no file event source configured")
		return nil
	}

	events, err := r.files.ListReady(ctx, now.Add(-r.settings.NewFilesLookback))
	if err != nil {
		return fmt.Errorf("failed to list file events: %w", err)
	}

	sent := 0
	for _, ev := range events {
		done, err := r.logs.HasLogOfKind(ctx, ev.ExternalID, models.LogFileReadyNotification, "")
		if err != nil {
			logger.Error(ctx, "failed to check file notification log", "external_id", ev.ExternalID, "error", err)
			continue
		}
		if done {
			continue
		}
		if len(ev.Recipients) == 0 {
			logger.Warn(ctx, "file event has no recipients", "external_id", ev.ExternalID, "key", ev.Key)
			continue
		}

		subject, body, err := r.notifier.Render(models.LogFileReadyNotification, models.DefaultLanguage, notify.TemplateData{
			FileID:  ev.ExternalID,
			FileKey: ev.Key,
		})
		if err != nil {
			logger.Error(ctx, "failed to render file notification", "external_id", ev.ExternalID, "error", err)
			continue
		}
		if _, err := r.notifier.Dispatch(ctx, notify.Notification{
			To:         ev.Recipients,
			Subject:    subject,
			Body:       body,
			Kind:       models.LogFileReadyNotification,
			ExternalID: ev.ExternalID,
		}); err != nil {
			logger.Error(ctx, "failed to notify file recipients", "external_id", ev.ExternalID, "error", err)
			continue
		}
		sent++
	}
	logger.Info(ctx, "new files sweep finished", "events", len(events), "notified", sent)
	return nil
}

// MissingInfoReminders reminds customers once whose request is still incomplete.
func (r *Reconciler) MissingInfoReminders(ctx context.Context, now time.Time) error {
	if ok, err := r.enabled(ctx, SweepMissingInfoReminder); !ok {
		return err
	}
	pending, err := r.offers.FindByStatus(ctx, models.StatusMissingInformation, services.OfferFilter{})
	if err != nil {
		return fmt.Errorf("failed to list incomplete offers: %w", err)
	}

	cutoff := now.Add(-r.settings.MissingInfoReminderAfter)
	for i := range pending {
		offer := &pending[i]
		octx := logger.WithOfferNo(ctx, offer.OfferNo)

		reminded, err := offers.HasOfferLog(octx, r.logs, offer, models.LogMissingInformationReminder, "")
		if err != nil {
			logger.Error(octx, "failed to check reminder log", "error", err)
			continue
		}
		if reminded {
			continue
		}
		first, err := offers.LatestOfferLog(octx, r.logs, offer, models.LogMissingInformation)
		if err != nil {
			logger.Error(octx, "failed to read missing information log", "error", err)
			continue
		}
		if first == nil || first.CreatedAt.After(cutoff) {
			continue
		}

		current, err := r.reread(octx, offer.OfferNo, models.StatusMissingInformation)
		if err != nil || current == nil {
			continue
		}
		to := first.Recipient
		if to == "" {
			to = current.Customer.Email
		}
		if err := r.ctrl.Notify(octx, current, to, current.Customer.Language, models.LogMissingInformationReminder, notify.TemplateData{
			MissingFields: offers.MissingFields(current.Customer, current.Lane),
		}); err != nil {
			continue
		}
		logger.Info(octx, "missing information reminder sent", "to", to)
	}
	return nil
}

// SupplierReminders chases contacts that have not answered a price request and,
// once the response window is over, closes bidding.
func (r *Reconciler) SupplierReminders(ctx context.Context, now time.Time) error {
	if ok, err := r.enabled(ctx, SweepSupplierReminder); !ok {
		return err
	}
	pending, err := r.offers.FindByStatus(ctx, models.StatusFeeRequested, services.OfferFilter{})
	if err != nil {
		return fmt.Errorf("failed to list solicited offers: %w", err)
	}

	window := r.ctrl.Settings().SupplierResponseExpiry
	for i := range pending {
		offer := &pending[i]
		octx := logger.WithOfferNo(ctx, offer.OfferNo)

		if offer.Age(now) > window {
			r.closeBidding(octx, offer)
			continue
		}
		if err := r.remindSuppliers(octx, offer, now); err != nil {
			logger.Error(octx, "supplier reminders failed", "error", err)
		}
	}
	return nil
}

func (r *Reconciler) remindSuppliers(ctx context.Context, offer *models.Offer, now time.Time) error {
	latest, err := offers.LatestOfferLog(ctx, r.logs, offer, models.LogPriceRequest)
	if err != nil {
		return err
	}
	if latest == nil || latest.CreatedAt.After(now.Add(-r.settings.SupplierReminderAfter)) {
		return nil
	}

	recipients, err := r.ctrl.PriceRequestRecipients(ctx, offer)
	if err != nil {
		return err
	}
	bids, err := r.ctrl.HydrateBids(ctx, offer.SupplierOffers)
	if err != nil {
		return err
	}
	answered := make(map[string]bool)
	for _, b := range offers.ActiveBids(bids) {
		answered[b.Contact.Email] = true
	}

	for _, to := range recipients {
		if answered[to] {
			continue
		}
		reminded, err := offers.HasOfferLog(ctx, r.logs, offer, models.LogSupplierReminder, to)
		if err != nil {
			logger.Error(ctx, "failed to check supplier reminder log", "contact", to, "error", err)
			continue
		}
		if reminded {
			continue
		}
		contact, err := r.suppliers.FindContactByEmail(ctx, to)
		if err != nil {
			logger.Warn(ctx, "price request recipient not in supplier directory", "contact", to, "error", err)
			continue
		}
		if contact.Deleted {
			continue
		}

		current, err := r.reread(ctx, offer.OfferNo, models.StatusFeeRequested)
		if err != nil || current == nil {
			return err
		}
		if err := r.ctrl.Notify(ctx, current, to, contact.Language, models.LogSupplierReminder, notify.TemplateData{
			ContactName: contact.Name,
		}); err == nil {
			logger.Info(ctx, "supplier reminder sent", "contact", to)
		}
	}
	return nil
}

func (r *Reconciler) closeBidding(ctx context.Context, offer *models.Offer) {
	_, err := r.ctrl.AdvanceToCompletion(ctx, offer.OfferNo)
	switch {
	case err == nil:
	case errors.Is(err, offers.ErrNoValidBids):
		r.alertOnce(ctx, offer, models.LogNoValidBids, notify.TemplateData{})
	default:
		logger.Error(ctx, "failed to close bidding", "error", err)
	}
}

// Completion finalizes offers that have waited for completion longer than the grace period.
func (r *Reconciler) Completion(ctx context.Context, now time.Time) error {
	if ok, err := r.enabled(ctx, SweepCompletion); !ok {
		return err
	}
	due, err := r.offers.FindByStatus(ctx, models.StatusWaitingCompletion, services.OfferFilter{
		StatusChangedBefore: now.Add(-r.settings.CompletionGrace),
	})
	if err != nil {
		return fmt.Errorf("failed to list offers waiting for completion: %w", err)
	}

	for i := range due {
		offer := &due[i]
		octx := logger.WithOfferNo(ctx, offer.OfferNo)
		_, err := r.ctrl.Finalize(octx, offer.OfferNo)
		switch {
		case err == nil:
		case errors.Is(err, offers.ErrNoValidBids):
			r.alertOnce(octx, offer, models.LogNoValidBids, notify.TemplateData{})
		default:
			logger.Error(octx, "failed to complete offer", "error", err)
		}
	}
	return nil
}

// OfferExpiry escalates, once, requests that stayed incomplete past the correction window.
func (r *Reconciler) OfferExpiry(ctx context.Context, now time.Time) error {
	if ok, err := r.enabled(ctx, SweepOfferExpiry); !ok {
		return err
	}
	expired, err := r.offers.FindByStatus(ctx, models.StatusMissingInformation, services.OfferFilter{
		CreatedBefore: now.Add(-r.ctrl.Settings().CorrectionExpiry),
	})
	if err != nil {
		return fmt.Errorf("failed to list expired offers: %w", err)
	}

	for i := range expired {
		offer := &expired[i]
		octx := logger.WithOfferNo(ctx, offer.OfferNo)
		r.alertOnce(octx, offer, models.LogOfferExpired, notify.TemplateData{
			Age:           offer.Age(now).Round(time.Hour).String(),
			MissingFields: offers.MissingFields(offer.Customer, offer.Lane),
		})
	}
	return nil
}

func (r *Reconciler) alertOnce(ctx context.Context, offer *models.Offer, kind models.MailLogType, data notify.TemplateData) {
	sent, err := offers.HasOfferLog(ctx, r.logs, offer, kind, "")
	if err != nil {
		logger.Error(ctx, "failed to check alert log", "type", kind, "error", err)
		return
	}
	if sent {
		return
	}
	if err := r.ctrl.Alert(ctx, offer, kind, data); err == nil {
		logger.Info(ctx, "staff alerted", "type", kind)
	}
}

// reread loads the offer again and returns nil when it left status meanwhile.
func (r *Reconciler) reread(ctx context.Context, offerNo string, status models.OfferStatus) (*models.Offer, error) {
	current, err := r.offers.FindByOfferNo(ctx, offerNo)
	if err != nil {
		logger.Error(ctx, "failed to re-read offer", "error", err)
		return nil, err
	}
	if current.Status != status {
		logger.Debug(ctx, "offer moved on, skipping", "status", current.Status)
		return nil, nil
	}
	return current, nil
}
