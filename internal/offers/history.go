package offers

import (
	"context"
	"sort"
	"time"

	"freightdesk/quote/internal/models"
	"freightdesk/quote/internal/services"
)

// logKeys are the external ids an offer's mail logs are filed under. Logs written
// before a direction rewrite keep the previous number.
func logKeys(offer *models.Offer) []string {
	if offer.PreviousOfferNo == "" || offer.PreviousOfferNo == offer.OfferNo {
		return []string{offer.OfferNo}
	}
	return []string{offer.OfferNo, offer.PreviousOfferNo}
}

// HasOfferLog reports whether a log of kind exists for the offer under any of its numbers.
// An empty recipient matches any recipient.
func HasOfferLog(ctx context.Context, logs services.IMailLogService, offer *models.Offer, kind models.MailLogType, recipient string) (bool, error) {
	for _, key := range logKeys(offer) {
		found, err := logs.HasLogOfKind(ctx, key, kind, recipient)
		if err != nil || found {
			return found, err
		}
	}
	return false, nil
}

// LatestOfferLog returns the newest log of kind for the offer under any of its numbers, or nil.
func LatestOfferLog(ctx context.Context, logs services.IMailLogService, offer *models.Offer, kind models.MailLogType) (*models.MailLog, error) {
	var latest *models.MailLog
	for _, key := range logKeys(offer) {
		entry, err := logs.Latest(ctx, key, kind)
		if err != nil {
			return nil, err
		}
		if entry != nil && (latest == nil || entry.CreatedAt.After(latest.CreatedAt)) {
			latest = entry
		}
	}
	return latest, nil
}

// FindOfferLogs lists the offer's logs of kind in [since, until], oldest first.
func FindOfferLogs(ctx context.Context, logs services.IMailLogService, offer *models.Offer, kind models.MailLogType, since, until time.Time) ([]models.MailLog, error) {
	var entries []models.MailLog
	for _, key := range logKeys(offer) {
		found, err := logs.Find(ctx, key, kind, since, until)
		if err != nil {
			return nil, err
		}
		entries = append(entries, found...)
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].CreatedAt.Before(entries[j].CreatedAt) })
	return entries, nil
}
