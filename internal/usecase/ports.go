package usecase

import "context"

// CallOutcome classifies a single upstream call. The buckets are mutually
// exclusive and map 1:1 onto client-facing failure codes.
type CallOutcome int

const (
	OutcomeSuccess        CallOutcome = iota // 2xx
	OutcomeUpstreamError                     // non-2xx -> 502
	OutcomeTimeout                           // deadline elapsed -> 504
	OutcomeTransportError                    // refused/DNS/other -> 500
)

type UpstreamResult struct {
	Outcome    CallOutcome
	StatusCode int
	Body       []byte
	Err        error
}

// UpstreamGateway issues one synchronous HTTP call against REST_API_CI.
// The call blocks the caller for up to the configured timeout; Call never
// returns a Go error, the outcome carries the classification.
type UpstreamGateway interface {
	Call(ctx context.Context, method, path string, body any) UpstreamResult
}
