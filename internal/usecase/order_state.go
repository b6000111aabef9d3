package usecase

import (
	"sync"

	"github.com/shopspring/decimal"

	domain "github.com/realsagiza/POS-X-KF-API/internal/entity"
)

// OrderSlot is the process-wide single-slot order state machine. Exactly
// one order is tracked; a new order overwrites whatever the previous one
// left behind (last writer wins — two racing creations are an accepted
// limitation of the device, which takes one transaction at a time).
//
// The mutex guards only slot reads and updates. It is never held across
// the blocking upstream call, so status polls are not serialized behind a
// slow /cashin.
type OrderSlot struct {
	mu sync.Mutex

	order      domain.Order
	cashinBody []byte // raw /cashin success body, re-resolved on every poll
}

func NewOrderSlot() *OrderSlot {
	return &OrderSlot{order: domain.Order{Status: domain.StatusIdle}}
}

// Begin resets the slot for a new order and moves it to processing. Any
// prior terminal state is discarded.
func (s *OrderSlot) Begin(id string, amount decimal.Decimal, currency string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.order = domain.Order{
		ID:       id,
		Amount:   amount,
		Currency: currency,
		Status:   domain.StatusProcessing,
	}
	s.cashinBody = nil
}

// Complete records the terminal outcome of the upstream call. The cashin
// amount is set once here and is immutable until the next Begin. For a
// succeeded outcome the raw response body is retained so later polls can
// re-run the resolver chain.
func (s *OrderSlot) Complete(id string, status domain.Status, cashin domain.CashAmount, rawBody []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.order.ID != id || s.order.Status != domain.StatusProcessing {
		// the slot was cancelled or overwritten while the call was in
		// flight; the later writer's state stands
		return
	}
	s.order.Status = status
	s.order.Cashin = cashin
	s.cashinBody = rawBody
}

// Cancel transitions any non-idle order to cancelled. Returns false when
// there was nothing to cancel; the caller still acknowledges the request.
func (s *OrderSlot) Cancel() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.order.Status == domain.StatusIdle {
		return false
	}
	s.order.Status = domain.StatusCancelled
	s.order.Cashin = domain.Unresolved()
	s.cashinBody = nil
	return true
}

// PeekAndConsume returns the current order and, when it observes
// succeeded, resets the slot status to idle so that success is reported
// exactly once. Every later poll (until the next order) sees the
// post-consumption state.
func (s *OrderSlot) PeekAndConsume() domain.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	o := s.order
	if s.order.Status == domain.StatusSucceeded {
		s.order.Status = domain.StatusIdle
	}
	return o
}

// Peek returns the current order without consuming anything.
func (s *OrderSlot) Peek() domain.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.order
}

// CashinBody returns the retained /cashin response body, nil if none.
func (s *OrderSlot) CashinBody() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cashinBody
}
