package booking

import (
	"fmt"
	"slices"

	"github.com/Alijeyrad/salonora_backend/internal/model"
	"github.com/Alijeyrad/salonora_backend/internal/service/promotion"
)

// Stage is a step of a booking submission. A submission only ever moves
// forward along stageEdges; Persisted is the hand-off to the status lifecycle.
type Stage int

const (
	StageDraft Stage = iota
	StageSlotReserved
	StagePromotionApplied
	StagePriceFinalized
	StagePersisted
)

var stageNames = [...]string{"draft", "slot_reserved", "promotion_applied", "price_finalized", "persisted"}

func (s Stage) String() string {
	if int(s) < len(stageNames) {
		return stageNames[s]
	}
	return fmt.Sprintf("stage(%d)", int(s))
}

var stageEdges = map[Stage][]Stage{
	StageDraft:            {StageSlotReserved},
	StageSlotReserved:     {StagePromotionApplied, StagePriceFinalized},
	StagePromotionApplied: {StagePriceFinalized},
	StagePriceFinalized:   {StagePersisted},
}

// transaction carries one submission through its stages.
type transaction struct {
	stage Stage
	req   SubmitRequest

	offering *model.ServiceOffering
	slot     model.Slot

	promo    *model.Promotion
	discount promotion.Discount
	usage    *model.PromotionUsage

	price   int64
	split   model.PaymentSplit
	booking *model.Booking
}

func (t *transaction) advance(to Stage) error {
	if !slices.Contains(stageEdges[t.stage], to) {
		return fmt.Errorf("%w: %s -> %s", errStageOrder, t.stage, to)
	}
	t.stage = to
	return nil
}

// lifecycleEdges lists, for each target status, the statuses it may be
// reached from once a booking is persisted.
var lifecycleEdges = map[model.BookingStatus][]model.BookingStatus{
	model.BookingConfirmed: {model.BookingPending},
	model.BookingCancelled: {model.BookingPending, model.BookingConfirmed},
	model.BookingCompleted: {model.BookingConfirmed},
}
