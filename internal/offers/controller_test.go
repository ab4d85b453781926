package offers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"freightdesk/quote/internal/models"
	"freightdesk/quote/internal/notify"
	"freightdesk/quote/internal/utils"
)

var t0 = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

const (
	opsEmail   = "ops@forwarder.test"
	buyerEmail = "buyer@example.com"
)

type fixture struct {
	offers    *utils.MemoryOffers
	logs      *utils.MemoryMailLogs
	suppliers *utils.StaticSuppliers
	config    *utils.StaticConfig
	sender    *utils.RecordingSender
	ctrl      *Controller
	now       time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	forceDigits(t, "0417")

	f := &fixture{
		offers:    utils.NewMemoryOffers(),
		logs:      utils.NewMemoryMailLogs(),
		suppliers: &utils.StaticSuppliers{Suppliers: directory()},
		config:    utils.NewStaticConfig(),
		sender:    &utils.RecordingSender{},
		now:       t0,
	}
	clock := func() time.Time { return f.now }
	f.logs.Now = clock

	d := notify.NewDispatcher(f.sender, f.logs, notify.DefaultCatalog(), "desk@forwarder.test")
	d.SetClock(clock)

	f.ctrl = NewController(f.offers, f.logs, f.suppliers, d, f.config, Settings{
		CorrectionExpiry:       72 * time.Hour,
		SupplierResponseExpiry: 48 * time.Hour,
		CompletionPercentage:   50,
		OpsEmail:               opsEmail,
	})
	f.ctrl.SetClock(clock)
	return f
}

func directory() []models.Supplier {
	return []models.Supplier{
		{
			Base:  models.Base{ID: "sup-ocean"},
			Name:  "Ocean Lines",
			Lanes: []models.SupplierLane{{Direction: models.DirectionImport, LoadCountry: "CN", DeliveryCountry: "DE"}},
			Contacts: []models.SupplierContact{
				{ID: "c1", Name: "Anna", Email: "anna@ocean.test", Language: models.LanguageEN},
				{ID: "c2", Name: "Bernd", Email: "bernd@ocean.test", Language: models.LanguageDE},
			},
		},
		{
			Base:  models.Base{ID: "sup-rail"},
			Name:  "Rail Co",
			Lanes: []models.SupplierLane{{Direction: models.DirectionImport}},
			Contacts: []models.SupplierContact{
				{ID: "c3", Name: "Carla", Email: "carla@rail.test", Language: models.LanguageEN},
				{ID: "c4", Name: "Dave", Email: "dave@rail.test", Language: models.LanguageEN, Deleted: true},
			},
		},
	}
}

func (f *fixture) contact(id string) models.SupplierContact {
	for _, s := range f.suppliers.Suppliers {
		for _, c := range s.Contacts {
			if c.ID == id {
				c.SupplierID = s.ID
				return c
			}
		}
	}
	panic("no contact " + id)
}

func completeLane() models.Lane {
	return models.Lane{
		Direction:        models.DirectionImport,
		LoadCountry:      "CN",
		LoadCity:         "Ningbo",
		DeliveryCountry:  "DE",
		DeliveryCity:     "Hamburg",
		CargoDescription: "furniture, 12 pallets",
	}
}

func newRequest() models.InboundEvent {
	return models.InboundEvent{
		Kind: models.EventCustomerNewRequest,
		Message: models.RawMessage{
			From:    "Buyer@Example.com",
			To:      []string{"desk@forwarder.test"},
			Subject: "Quote Ningbo - Hamburg",
			Body:    "Please quote 12 pallets of furniture.",
		},
		Customer: models.Contact{Name: "Bea Buyer", Email: buyerEmail, Language: "en"},
		Lane: models.Lane{
			Direction:        "import",
			LoadCountry:      "cn",
			LoadCity:         "Ningbo",
			DeliveryCountry:  "de",
			DeliveryCity:     "Hamburg",
			CargoDescription: "furniture, 12 pallets",
		},
	}
}

func supplierReply(offerNo, from string, prices ...string) models.InboundEvent {
	ev := models.InboundEvent{
		Kind:    models.EventSupplierNewOffer,
		OfferNo: offerNo,
		Message: models.RawMessage{From: from, Subject: "RE: Price request " + offerNo, Body: "see below"},
	}
	for _, p := range prices {
		ev.PriceLines = append(ev.PriceLines, models.PriceLine{Price: p})
	}
	return ev
}

func correction(offerNo string, lane models.Lane) models.InboundEvent {
	return models.InboundEvent{
		Kind:    models.EventCustomerCorrection,
		OfferNo: offerNo,
		Message: models.RawMessage{From: buyerEmail, Subject: "RE: " + offerNo},
		Lane:    lane,
	}
}

// put stores an offer created at f.now in status.
func (f *fixture) put(status models.OfferStatus, bids ...models.SupplierOffer) *models.Offer {
	o := &models.Offer{
		OfferNo:         "02IM0417",
		Status:          status,
		Customer:        models.Contact{Name: "Bea Buyer", Email: buyerEmail, Language: models.LanguageEN},
		Lane:            completeLane(),
		SupplierOffers:  bids,
		CreatedAt:       f.now,
		UpdatedAt:       f.now,
		StatusChangedAt: f.now,
	}
	f.offers.Put(o)
	return o
}

func (f *fixture) bid(contactID, raw string) models.SupplierOffer {
	b := models.SupplierOffer{ID: contactID + raw, ReplyID: contactID + "-reply", PriceRaw: raw, Contact: f.contact(contactID)}
	b.Contact.Deleted = false
	if amount, unit, ok := cutPrice(raw); ok {
		b.Price = &models.BidPrice{Amount: amount, Unit: unit}
	}
	return b
}

func cutPrice(raw string) (string, string, bool) {
	for i, r := range raw {
		if r == ' ' {
			return raw[:i], raw[i+1:], raw[0] >= '0' && raw[0] <= '9'
		}
	}
	return raw, "", false
}

func recipients(entries []models.MailLog) []string {
	var out []string
	for _, e := range entries {
		out = append(out, e.Recipient)
	}
	return out
}

func TestHandleNewRequest_SolicitsMatchingContacts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	offer, err := f.ctrl.HandleNewRequest(ctx, newRequest())
	require.NoError(t, err)

	assert.Equal(t, "02IM0417", offer.OfferNo)
	assert.Equal(t, models.StatusFeeRequested, offer.Status)
	require.Len(t, offer.Transitions, 2)
	assert.Equal(t, models.OfferStatus(""), offer.Transitions[0].From)
	assert.Equal(t, models.StatusCreated, offer.Transitions[0].To)
	assert.Equal(t, models.StatusCreated, offer.Transitions[1].From)
	assert.Equal(t, models.StatusFeeRequested, offer.Transitions[1].To)
	assert.Equal(t, "CN", offer.Lane.LoadCountry)

	requests := f.logs.OfKind(models.LogPriceRequest)
	assert.ElementsMatch(t, []string{"anna@ocean.test", "bernd@ocean.test", "carla@rail.test"}, recipients(requests))

	inbound := f.logs.OfKind(models.LogCustomerRequest)
	require.Len(t, inbound, 1)
	assert.Equal(t, buyerEmail, inbound[0].From)
	assert.Equal(t, models.MailInbound, inbound[0].Direction)
	assert.Equal(t, 3, f.sender.Count())
}

func TestHandleNewRequest_SupplierBodiesSelectLanguages(t *testing.T) {
	f := newFixture(t)
	ev := newRequest()
	ev.SupplierBodies = map[models.Language]string{models.LanguageEN: "Please quote door to door."}

	_, err := f.ctrl.HandleNewRequest(context.Background(), ev)
	require.NoError(t, err)

	requests := f.logs.OfKind(models.LogPriceRequest)
	assert.ElementsMatch(t, []string{"anna@ocean.test", "carla@rail.test"}, recipients(requests))
	assert.Contains(t, requests[0].Body, "Please quote door to door.")
}

func TestHandleNewRequest_MissingInformation(t *testing.T) {
	f := newFixture(t)
	ev := newRequest()
	ev.Lane.Direction = ""
	ev.Lane.LoadCity = ""

	offer, err := f.ctrl.HandleNewRequest(context.Background(), ev)
	require.NoError(t, err)

	assert.Equal(t, "02XX0417", offer.OfferNo)
	assert.Equal(t, models.StatusMissingInformation, offer.Status)
	assert.Equal(t, models.StatusCreated, offer.Transitions[0].To)

	sent := f.logs.OfKind(models.LogMissingInformation)
	require.Len(t, sent, 1)
	assert.Equal(t, buyerEmail, sent[0].Recipient)
	assert.Contains(t, sent[0].Body, "loading city")
	assert.Empty(t, f.logs.OfKind(models.LogPriceRequest))
}

func TestHandleNewRequest_NoSupplier(t *testing.T) {
	f := newFixture(t)
	ev := newRequest()
	ev.Lane.Direction = "export"

	offer, err := f.ctrl.HandleNewRequest(context.Background(), ev)
	require.NoError(t, err)

	assert.Equal(t, models.StatusNoSupplier, offer.Status)
	assert.Len(t, f.logs.OfKind(models.LogNoSupplier), 1)
	assert.True(t, IsTerminal(offer.Status))
}

func TestHandleNewRequest_RetriesOfferNoCollision(t *testing.T) {
	f := newFixture(t)
	f.put(models.StatusFeeRequested)

	digits := []string{"0417", "0417", "9021"}
	utils.RandomDigitsHook = func(n int) (string, bool) {
		d := digits[0]
		if len(digits) > 1 {
			digits = digits[1:]
		}
		return d, true
	}

	offer, err := f.ctrl.HandleNewRequest(context.Background(), newRequest())
	require.NoError(t, err)
	assert.Equal(t, "02IM9021", offer.OfferNo)
}

func TestHandleNewRequest_Disabled(t *testing.T) {
	f := newFixture(t)
	f.config.SetEnabled(false)

	_, err := f.ctrl.HandleNewRequest(context.Background(), newRequest())
	assert.ErrorIs(t, err, ErrDisabled)
	assert.Empty(t, f.logs.All())
	assert.Zero(t, f.sender.Count())
}

func TestHandleNewRequest_SwitchReadErrorIsNotDisabled(t *testing.T) {
	f := newFixture(t)
	f.config.Err = errors.New("mongo unavailable")

	_, err := f.ctrl.HandleNewRequest(context.Background(), newRequest())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrDisabled)
}

func TestHandleCorrection_CompletesAndRewritesDirection(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ev := newRequest()
	ev.Lane.Direction = ""
	ev.Lane.LoadCity = ""
	created, err := f.ctrl.HandleNewRequest(ctx, ev)
	require.NoError(t, err)
	require.Equal(t, "02XX0417", created.OfferNo)

	f.now = t0.Add(2 * time.Hour)
	updated, err := f.ctrl.HandleCorrection(ctx, correction("02xx0417", models.Lane{Direction: "IMPORT", LoadCity: "Ningbo"}))
	require.NoError(t, err)

	assert.Equal(t, "02IM0417", updated.OfferNo)
	assert.Equal(t, "02XX0417", updated.PreviousOfferNo)
	assert.Equal(t, models.StatusFeeRequested, updated.Status)
	assert.Equal(t, "Ningbo", updated.Lane.LoadCity)
	assert.Equal(t, "furniture, 12 pallets", updated.Lane.CargoDescription)
	last := updated.Transitions[len(updated.Transitions)-1]
	assert.Equal(t, models.StatusMissingInformation, last.From)
	assert.Equal(t, models.StatusFeeRequested, last.To)

	assert.Len(t, f.logs.OfKind(models.LogCustomerCorrection), 1)
	assert.Len(t, f.logs.OfKind(models.LogPriceRequest), 3)

	byOld, err := f.offers.FindByOfferNo(ctx, "02XX0417")
	require.NoError(t, err)
	assert.Equal(t, updated.ID, byOld.ID)
}

func TestHandleCorrection_ExpiredEscalatesWithoutChange(t *testing.T) {
	f := newFixture(t)
	offer := f.put(models.StatusMissingInformation)

	f.now = t0.Add(73 * time.Hour)
	got, err := f.ctrl.HandleCorrection(context.Background(), correction(offer.OfferNo, models.Lane{LoadCity: "Shanghai"}))
	require.NoError(t, err)

	assert.Equal(t, models.StatusMissingInformation, got.Status)
	alerts := f.logs.OfKind(models.LogExpiredCorrection)
	require.Len(t, alerts, 1)
	assert.Equal(t, opsEmail, alerts[0].Recipient)

	stored, err := f.offers.FindByOfferNo(context.Background(), offer.OfferNo)
	require.NoError(t, err)
	assert.Equal(t, "Ningbo", stored.Lane.LoadCity)
	assert.Len(t, stored.Transitions, 0)
}

func TestHandleCorrection_DirectionChangeRejectedAfterSolicitation(t *testing.T) {
	f := newFixture(t)
	offer := f.put(models.StatusFeeRequested)

	got, err := f.ctrl.HandleCorrection(context.Background(), correction(offer.OfferNo, models.Lane{Direction: "export"}))
	require.NoError(t, err)

	assert.Equal(t, "02IM0417", got.OfferNo)
	assert.Equal(t, models.DirectionImport, got.Lane.Direction)
	assert.Len(t, f.logs.OfKind(models.LogCorrectionRejected), 1)
}

func TestHandleCorrection_SecondRewriteRejected(t *testing.T) {
	f := newFixture(t)
	o := &models.Offer{
		OfferNo:         "02EX0417",
		PreviousOfferNo: "02XX0417",
		Status:          models.StatusMissingInformation,
		Customer:        models.Contact{Email: buyerEmail},
		Lane:            models.Lane{Direction: models.DirectionExport},
		CreatedAt:       t0,
	}
	f.offers.Put(o)

	got, err := f.ctrl.HandleCorrection(context.Background(), correction("02EX0417", models.Lane{Direction: "transit"}))
	require.NoError(t, err)
	assert.Equal(t, "02EX0417", got.OfferNo)
	assert.Len(t, f.logs.OfKind(models.LogCorrectionRejected), 1)
}

func TestHandleCorrection_ClosedOfferRejected(t *testing.T) {
	f := newFixture(t)
	offer := f.put(models.StatusCompleted)

	got, err := f.ctrl.HandleCorrection(context.Background(), correction(offer.OfferNo, models.Lane{LoadCity: "Shanghai"}))
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, got.Status)
	assert.Len(t, f.logs.OfKind(models.LogCorrectionRejected), 1)
}

func TestHandleCorrection_UnknownOffer(t *testing.T) {
	f := newFixture(t)
	_, err := f.ctrl.HandleCorrection(context.Background(), correction("02IM9999", models.Lane{}))
	assert.ErrorIs(t, err, ErrOfferNotFound)
}

func TestSupplierReplies_ReachCompletionThenFinalize(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	offer, err := f.ctrl.HandleNewRequest(ctx, newRequest())
	require.NoError(t, err)

	f.now = t0.Add(3 * time.Hour)
	got, err := f.ctrl.HandleSupplierReply(ctx, supplierReply(offer.OfferNo, "Anna@Ocean.test", "59 euro"))
	require.NoError(t, err)
	assert.Equal(t, models.StatusFeeRequested, got.Status, "1 of 3 is below 50%")

	got, err = f.ctrl.HandleSupplierReply(ctx, supplierReply(offer.OfferNo, "carla@rail.test", "75 euro", "on request"))
	require.NoError(t, err)
	assert.Equal(t, models.StatusWaitingCompletion, got.Status)
	require.Len(t, got.SupplierOffers, 3)
	assert.Nil(t, got.SupplierOffers[2].Price)
	assert.Equal(t, "on request", got.SupplierOffers[2].PriceRaw)
	assert.Equal(t, got.SupplierOffers[1].ReplyID, got.SupplierOffers[2].ReplyID)

	calculated := f.logs.OfKind(models.LogPriceCalculated)
	require.Len(t, calculated, 1)
	assert.Equal(t, opsEmail, calculated[0].Recipient)
	assert.Contains(t, calculated[0].Body, "65.00 euro")
	assert.Len(t, f.logs.OfKind(models.LogSupplierOffer), 2)

	// a late reply in WAITING_COMPLETION is appended without another price report
	got, err = f.ctrl.HandleSupplierReply(ctx, supplierReply(offer.OfferNo, "bernd@ocean.test", "80 euro"))
	require.NoError(t, err)
	assert.Len(t, got.SupplierOffers, 4)
	assert.Len(t, f.logs.OfKind(models.LogPriceCalculated), 1)

	f.now = t0.Add(5 * time.Hour)
	done, err := f.ctrl.Finalize(ctx, offer.OfferNo)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, done.Status)
	assert.Equal(t, "65.00 euro", done.FinalPrice)

	final := f.logs.OfKind(models.LogFinalPrice)
	require.Len(t, final, 1)
	assert.Equal(t, buyerEmail, final[0].Recipient)

	_, err = f.ctrl.Finalize(ctx, offer.OfferNo)
	require.NoError(t, err)
	assert.Len(t, f.logs.OfKind(models.LogFinalPrice), 1)
}

func TestHandleSupplierReply_UnpricedReplyKeepsBiddingOpen(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	offer, err := f.ctrl.HandleNewRequest(ctx, newRequest())
	require.NoError(t, err)

	f.now = t0.Add(time.Hour)
	_, err = f.ctrl.HandleSupplierReply(ctx, supplierReply(offer.OfferNo, "anna@ocean.test", "on request"))
	require.NoError(t, err)
	got, err := f.ctrl.HandleSupplierReply(ctx, supplierReply(offer.OfferNo, "carla@rail.test", "price on request"))
	require.NoError(t, err)

	assert.Equal(t, models.StatusFeeRequested, got.Status, "2 of 3 answered but nothing to price")
	assert.Empty(t, f.logs.OfKind(models.LogPriceCalculated))
}

func TestHandleSupplierReply_LateReplyEscalates(t *testing.T) {
	f := newFixture(t)
	offer := f.put(models.StatusFeeRequested)

	f.now = t0.Add(49 * time.Hour)
	got, err := f.ctrl.HandleSupplierReply(context.Background(), supplierReply(offer.OfferNo, "anna@ocean.test", "10 euro"))
	require.NoError(t, err)

	assert.Empty(t, got.SupplierOffers)
	assert.Len(t, f.logs.OfKind(models.LogLateSupplierOffer), 1)
	assert.Empty(t, f.logs.OfKind(models.LogSupplierOffer))
}

func TestHandleSupplierReply_UnknownSender(t *testing.T) {
	f := newFixture(t)
	offer := f.put(models.StatusFeeRequested)

	_, err := f.ctrl.HandleSupplierReply(context.Background(), supplierReply(offer.OfferNo, "stranger@nowhere.test", "10 euro"))
	assert.ErrorIs(t, err, ErrUnknownSupplier)
}

func TestHandleSupplierReply_ClosedOffer(t *testing.T) {
	f := newFixture(t)
	offer := f.put(models.StatusCompleted)

	_, err := f.ctrl.HandleSupplierReply(context.Background(), supplierReply(offer.OfferNo, "anna@ocean.test", "10 euro"))
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestHandleSupplierReply_RetriesOnStaleStatus(t *testing.T) {
	f := newFixture(t)
	offer := f.put(models.StatusFeeRequested)

	raced := false
	f.offers.BeforeUpdate = func(id string) {
		if !raced {
			raced = true
			f.offers.SetStatus(id, models.StatusWaitingCompletion)
		}
	}

	got, err := f.ctrl.HandleSupplierReply(context.Background(), supplierReply(offer.OfferNo, "anna@ocean.test", "10 euro"))
	require.NoError(t, err)
	assert.Equal(t, models.StatusWaitingCompletion, got.Status)
	assert.Len(t, got.SupplierOffers, 1)
}

func TestAdvanceToCompletion(t *testing.T) {
	f := newFixture(t)
	offer := f.put(models.StatusFeeRequested, f.bid("c1", "100 euro"))

	got, err := f.ctrl.AdvanceToCompletion(context.Background(), offer.OfferNo)
	require.NoError(t, err)
	assert.Equal(t, models.StatusWaitingCompletion, got.Status)
	assert.Len(t, f.logs.OfKind(models.LogPriceCalculated), 1)
}

func TestAdvanceToCompletion_NoValidBids(t *testing.T) {
	f := newFixture(t)
	offer := f.put(models.StatusFeeRequested, f.bid("c1", "on request"), f.bid("c4", "10 euro"))

	got, err := f.ctrl.AdvanceToCompletion(context.Background(), offer.OfferNo)
	assert.ErrorIs(t, err, ErrNoValidBids)
	assert.Equal(t, models.StatusFeeRequested, got.Status)
}

func TestFinalize_IgnoresDeletedContactsAndUsesRequestSender(t *testing.T) {
	f := newFixture(t)
	offer := f.put(models.StatusWaitingCompletion, f.bid("c4", "10 euro"), f.bid("c1", "100 euro"))
	_, err := f.logs.Append(context.Background(), &models.MailLog{
		Type:       models.LogCustomerRequest,
		ExternalID: offer.OfferNo,
		Direction:  models.MailInbound,
		From:       "purchasing@example.com",
	})
	require.NoError(t, err)

	got, err := f.ctrl.Finalize(context.Background(), offer.OfferNo)
	require.NoError(t, err)
	assert.Equal(t, "110.00 euro", got.FinalPrice)

	final := f.logs.OfKind(models.LogFinalPrice)
	require.Len(t, final, 1)
	assert.Equal(t, "purchasing@example.com", final[0].Recipient)
}

func TestFinalize_FindsRequestSenderUnderPreviousNumber(t *testing.T) {
	f := newFixture(t)
	offer := f.put(models.StatusWaitingCompletion, f.bid("c1", "100 euro"))
	offer.PreviousOfferNo = "02XX0417"
	f.offers.Put(offer)
	_, err := f.logs.Append(context.Background(), &models.MailLog{
		Type:       models.LogCustomerRequest,
		ExternalID: "02XX0417",
		Direction:  models.MailInbound,
		From:       "purchasing@example.com",
	})
	require.NoError(t, err)

	_, err = f.ctrl.Finalize(context.Background(), offer.OfferNo)
	require.NoError(t, err)

	final := f.logs.OfKind(models.LogFinalPrice)
	require.Len(t, final, 1)
	assert.Equal(t, "purchasing@example.com", final[0].Recipient)
	assert.Equal(t, "02IM0417", final[0].ExternalID)
}

func TestFinalize_NoValidBids(t *testing.T) {
	f := newFixture(t)
	offer := f.put(models.StatusWaitingCompletion, f.bid("c1", "on request"))

	_, err := f.ctrl.Finalize(context.Background(), offer.OfferNo)
	assert.ErrorIs(t, err, ErrNoValidBids)
	assert.Empty(t, f.logs.OfKind(models.LogFinalPrice))
}

func TestFinalize_WrongStatus(t *testing.T) {
	f := newFixture(t)
	offer := f.put(models.StatusMissingInformation)

	_, err := f.ctrl.Finalize(context.Background(), offer.OfferNo)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestHandleEvent_Routing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assert.NoError(t, f.ctrl.HandleEvent(ctx, models.InboundEvent{Kind: models.EventOther}))
	assert.Error(t, f.ctrl.HandleEvent(ctx, models.InboundEvent{Kind: "SPAM"}))

	require.NoError(t, f.ctrl.HandleEvent(ctx, newRequest()))
	assert.Len(t, f.logs.OfKind(models.LogCustomerRequest), 1)
}
