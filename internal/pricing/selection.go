package pricing

import (
	"freightdesk/quote/internal/models"
)

// SelectLowest returns the bid with the numerically lowest price among bids
// that carry a price and whose contact is not deleted. Exact ties keep the
// bid seen first. ok is false when no bid qualifies.
func SelectLowest(bids []models.SupplierOffer) (best models.SupplierOffer, price Price, ok bool) {
	for _, bid := range bids {
		if bid.Price == nil || bid.Contact.Deleted {
			continue
		}
		p, err := FromBid(bid.Price)
		if err != nil {
			continue
		}
		if !ok || p.Amount.LessThan(price.Amount) {
			best, price, ok = bid, p, true
		}
	}
	return best, price, ok
}
