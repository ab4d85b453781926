package offers

import (
	"errors"
	"fmt"

	"freightdesk/quote/internal/models"
)

var (
	ErrDisabled          = errors.New("offer processing is disabled")
	ErrOfferNotFound     = errors.New("offer not found")
	ErrUnknownSupplier   = errors.New("unknown supplier contact")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrNoValidBids       = errors.New("no valid supplier bids")
)

// allowedTransitions is the workflow graph. The empty status is "not yet stored".
var allowedTransitions = map[models.OfferStatus][]models.OfferStatus{
	"":                              {models.StatusCreated},
	models.StatusCreated:            {models.StatusMissingInformation, models.StatusFeeRequested, models.StatusNoSupplier},
	models.StatusMissingInformation: {models.StatusMissingInformation, models.StatusFeeRequested, models.StatusNoSupplier},
	models.StatusFeeRequested:       {models.StatusFeeRequested, models.StatusNoSupplier, models.StatusWaitingCompletion},
	models.StatusWaitingCompletion:  {models.StatusCompleted},
}

// CanTransition reports whether the workflow allows moving from one status to another.
func CanTransition(from, to models.OfferStatus) bool {
	for _, allowed := range allowedTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

func checkTransition(from, to models.OfferStatus) error {
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %q -> %q", ErrInvalidTransition, from, to)
	}
	return nil
}

// IsTerminal reports whether no transition leaves status.
func IsTerminal(status models.OfferStatus) bool {
	return len(allowedTransitions[status]) == 0
}
