package domain

import "github.com/shopspring/decimal"

type Status string

const (
	// StatusIdle means no order outcome is pending delivery. A status
	// poll reports an idle slot as "processing" (the prior answer, if
	// any, was already consumed).
	StatusIdle       Status = "idle"
	StatusProcessing Status = "processing"
	StatusSucceeded  Status = "succeeded"
	StatusFailed     Status = "failed"
	StatusTimedOut   Status = "timedOut"
	StatusError      Status = "error"
	StatusCancelled  Status = "cancelled"
)

// CashAmount is a best-effort monetary value in major units (baht).
// Resolved=false is the explicit "unresolved" marker: the upstream payload
// carried no parseable amount. An unresolved amount never fails a
// transaction.
type CashAmount struct {
	Value    decimal.Decimal
	Resolved bool
}

func ResolvedAmount(v decimal.Decimal) CashAmount {
	return CashAmount{Value: v, Resolved: true}
}

func Unresolved() CashAmount {
	return CashAmount{}
}

// Order is the single in-flight cash-acceptance transaction. Amount is the
// client-declared total, reported verbatim; Cashin is what the acceptor
// actually took, per the resolver chain.
type Order struct {
	ID       string
	Amount   decimal.Decimal
	Currency string
	Status   Status
	Cashin   CashAmount
}
