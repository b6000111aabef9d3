package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/realsagiza/POS-X-KF-API/internal/logging"
	"github.com/realsagiza/POS-X-KF-API/internal/usecase"
)

const logBodyLimit = 2000

var (
	upstreamCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstream_calls_total",
			Help: "Total number of upstream REST_API_CI calls",
		},
		[]string{"path", "outcome"},
	)

	upstreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "upstream_call_duration_ms",
			Help:    "Duration of upstream REST_API_CI calls in ms",
			Buckets: []float64{50, 100, 250, 500, 1000, 2500, 5000, 15000, 60000},
		},
		[]string{"path"},
	)
)

// Client is the REST_API_CI gateway. One synchronous HTTP call per Call;
// the caller blocks until a response arrives, the configured deadline
// elapses, or the transport gives up (timeout 0 disables the deadline
// entirely).
type Client struct {
	base    string
	timeout time.Duration
	httpc   *http.Client
	log     *slog.Logger
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		base:    strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		httpc:   &http.Client{},
		log:     logging.New("upstream"),
	}
}

func (c *Client) Call(ctx context.Context, method, path string, body any) usecase.UpstreamResult {
	url := c.base + path

	var rdr io.Reader
	payload := ""
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return c.finish(path, "", time.Now(), usecase.UpstreamResult{
				Outcome: usecase.OutcomeTransportError, Err: err,
			})
		}
		rdr = bytes.NewReader(b)
		payload = string(b)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, method, url, rdr)
	if err != nil {
		return c.finish(path, "", time.Now(), usecase.UpstreamResult{
			Outcome: usecase.OutcomeTransportError, Err: err,
		})
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	// the call log pair is the only diagnostic trail for amount-parsing
	// disputes; keep both entries
	c.log.Info("calling upstream", "method", method, "url", url, "payload", payload)
	start := time.Now()

	resp, err := c.httpc.Do(req)
	if err != nil {
		outcome := usecase.OutcomeTransportError
		if isTimeout(err) {
			outcome = usecase.OutcomeTimeout
		}
		return c.finish(path, url, start, usecase.UpstreamResult{Outcome: outcome, Err: err})
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		outcome := usecase.OutcomeTransportError
		if isTimeout(err) {
			outcome = usecase.OutcomeTimeout
		}
		return c.finish(path, url, start, usecase.UpstreamResult{
			Outcome: outcome, StatusCode: resp.StatusCode, Err: err,
		})
	}

	outcome := usecase.OutcomeUpstreamError
	if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
		outcome = usecase.OutcomeSuccess
	}
	res := usecase.UpstreamResult{Outcome: outcome, StatusCode: resp.StatusCode, Body: b}

	c.log.Info("upstream responded",
		"url", url,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
		"content_type", resp.Header.Get("Content-Type"),
		"body", truncate(string(b)),
	)
	recordCall(path, outcome, start)
	return res
}

// finish logs and records a call that produced no readable response body.
func (c *Client) finish(path, url string, start time.Time, res usecase.UpstreamResult) usecase.UpstreamResult {
	c.log.Warn("upstream call failed",
		"url", url,
		"outcome", outcomeLabel(res.Outcome),
		"duration_ms", time.Since(start).Milliseconds(),
		"error", errString(res.Err),
	)
	recordCall(path, res.Outcome, start)
	return res
}

func recordCall(path string, outcome usecase.CallOutcome, start time.Time) {
	upstreamCalls.WithLabelValues(path, outcomeLabel(outcome)).Inc()
	upstreamDuration.WithLabelValues(path).Observe(float64(time.Since(start).Milliseconds()))
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func outcomeLabel(o usecase.CallOutcome) string {
	switch o {
	case usecase.OutcomeSuccess:
		return "success"
	case usecase.OutcomeUpstreamError:
		return "upstream_error"
	case usecase.OutcomeTimeout:
		return "timeout"
	default:
		return "transport_error"
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func truncate(s string) string {
	if len(s) > logBodyLimit {
		return s[:logBodyLimit] + "...(truncated)"
	}
	return s
}

var _ usecase.UpstreamGateway = (*Client)(nil)
