package usecase

import (
	"context"
	"net/http"
)

type CancelOrder struct {
	slot *OrderSlot
	gw   UpstreamGateway
}

func NewCancelOrder(slot *OrderSlot, gw UpstreamGateway) *CancelOrder {
	return &CancelOrder{slot: slot, gw: gw}
}

// Execute cancels the in-flight order. The upstream /cashin_cancel call is
// fire-and-forget: the state transition does not wait for it, and its
// failure never fails the cancel (the gateway logs every call outcome).
// Cancellation does not interrupt a /cashin call already in progress.
func (uc *CancelOrder) Execute(ctx context.Context) bool {
	go uc.gw.Call(context.WithoutCancel(ctx), http.MethodGet, "/cashin_cancel", nil)
	return uc.slot.Cancel()
}
