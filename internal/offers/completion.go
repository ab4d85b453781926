package offers

import (
	"freightdesk/quote/internal/models"
)

// ActiveBids keeps, for every contact, only the bids of that contact's latest
// reply and drops contacts that are soft-deleted. Input order is preserved.
func ActiveBids(bids []models.SupplierOffer) []models.SupplierOffer {
	latestReply := make(map[string]string)
	for _, b := range bids {
		latestReply[b.Contact.ID] = b.ReplyID
	}
	var active []models.SupplierOffer
	for _, b := range bids {
		if b.Contact.Deleted || latestReply[b.Contact.ID] != b.ReplyID {
			continue
		}
		active = append(active, b)
	}
	return active
}

// IsComplete decides whether an offer has enough answers to be priced.
//
// requests is the number of distinct contacts asked for a price. The offer is
// complete when every asked contact answered and every active bid carries a
// price, or when the share of answering contacts reaches percentage and at
// least one active bid carries a price.
func IsComplete(requests int, bids []models.SupplierOffer, percentage int) bool {
	if requests <= 0 {
		return false
	}
	active := ActiveBids(bids)
	responders := make(map[string]bool)
	allPriced, anyPriced := true, false
	for _, b := range active {
		responders[b.Contact.ID] = true
		if b.Price == nil {
			allPriced = false
		} else {
			anyPriced = true
		}
	}
	n := len(responders)
	if n >= requests && allPriced {
		return true
	}
	return anyPriced && n*100 >= percentage*requests
}
