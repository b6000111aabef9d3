package usecase

import (
	"context"
	"net/http"

	domain "github.com/realsagiza/POS-X-KF-API/internal/entity"
	"github.com/realsagiza/POS-X-KF-API/internal/logging"
)

type OrderStatus struct {
	slot *OrderSlot
	gw   UpstreamGateway
}

func NewOrderStatus(slot *OrderSlot, gw UpstreamGateway) *OrderStatus {
	return &OrderStatus{slot: slot, gw: gw}
}

// Execute reports the current order. The cashin amount is recomputed on
// every poll: the retained /cashin body goes through the resolver first,
// and only if it does not resolve is /socket/latest fetched and read
// verbatim. The declared order amount is never recomputed.
//
// A poll that observes succeeded consumes it: the first reader gets the
// answer, every later poll reports processing until a new order arrives.
func (uc *OrderStatus) Execute(ctx context.Context) domain.Order {
	cashin := ResolveCashin(uc.slot.CashinBody())
	if !cashin.Resolved {
		res := uc.gw.Call(ctx, http.MethodGet, "/socket/latest", nil)
		if res.Outcome == OutcomeSuccess {
			cashin = ResolveSocketLatest(res.Body)
		} else {
			logging.FromCtx(ctx).Warn("upstream /socket/latest unavailable", "outcome", int(res.Outcome))
		}
	}

	o := uc.slot.PeekAndConsume()
	switch o.Status {
	case domain.StatusIdle:
		// nothing pending delivery; downstream clients expect processing
		o.Status = domain.StatusProcessing
	case domain.StatusCancelled:
		// a cancelled order took no cash
		cashin = domain.Unresolved()
	}
	o.Cashin = cashin
	return o
}
