package usecase

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	domain "github.com/realsagiza/POS-X-KF-API/internal/entity"
	"github.com/realsagiza/POS-X-KF-API/internal/logging"
)

type CreateOrderInput struct {
	Amount   decimal.Decimal
	Currency string
}

type CreateOrder struct {
	slot *OrderSlot
	gw   UpstreamGateway
}

func NewCreateOrder(slot *OrderSlot, gw UpstreamGateway) *CreateOrder {
	return &CreateOrder{slot: slot, gw: gw}
}

// Execute runs the whole cash-acceptance round trip: the slot moves to
// processing, /cashin is called synchronously (the caller blocks for the
// duration), the outcome picks the terminal status, and a 2xx body goes
// through the resolver chain. An upstream 2xx is succeeded whether or not
// an amount could be resolved — a missing amount is a data-quality issue,
// not a transaction failure.
func (uc *CreateOrder) Execute(ctx context.Context, in CreateOrderInput) domain.Order {
	id := uuid.NewString()
	uc.slot.Begin(id, in.Amount, in.Currency)

	res := uc.gw.Call(ctx, http.MethodPost, "/cashin", map[string]any{
		"amount": in.Amount.InexactFloat64(),
	})

	status := domain.StatusError
	cashin := domain.Unresolved()
	var raw []byte

	switch res.Outcome {
	case OutcomeSuccess:
		status = domain.StatusSucceeded
		cashin = ResolveCashin(res.Body)
		raw = res.Body
		if cashin.Resolved {
			logging.FromCtx(ctx).Info("parsed cashin amount from upstream response",
				"amount_baht", cashin.Value.StringFixed(2))
		} else {
			logging.FromCtx(ctx).Warn("cashin amount unresolved, upstream body kept for status polls")
		}
	case OutcomeUpstreamError:
		status = domain.StatusFailed
	case OutcomeTimeout:
		status = domain.StatusTimedOut
	case OutcomeTransportError:
		status = domain.StatusError
	}

	uc.slot.Complete(id, status, cashin, raw)

	return domain.Order{
		ID:       id,
		Amount:   in.Amount,
		Currency: in.Currency,
		Status:   status,
		Cashin:   cashin,
	}
}
