package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/realsagiza/POS-X-KF-API/internal/adapter/upstream"
	"github.com/realsagiza/POS-X-KF-API/internal/usecase"
)

const cashinTwoHundredBaht = `{"response":{"change_response":{"Body":[{"ChangeResponse":[{
	"Cash":[{"type":"1","Denomination":[{"fv":10000,"Piece":[{"value":1},{"value":1}]}]}]
}]}]}}}`

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestStack(t *testing.T, upstreamURL string, timeout time.Duration) *gin.Engine {
	t.Helper()
	gw := upstream.New(upstreamURL, timeout)
	slot := usecase.NewOrderSlot()
	h := NewSaleHandler(
		usecase.NewCreateOrder(slot, gw),
		usecase.NewOrderStatus(slot, gw),
		usecase.NewCancelOrder(slot, gw),
		usecase.NewGetBalances(gw),
		"pos-x-kf-api", 5115,
	)
	return NewRouter(h, 0) // no artificial delay in tests
}

type testEnvelope struct {
	Success bool            `json:"success"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

func do(t *testing.T, r *gin.Engine, method, path, body string) (int, testEnvelope) {
	t.Helper()
	var rdr *strings.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	} else {
		rdr = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env testEnvelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("response not an envelope: %v (%s)", err, w.Body.String())
	}
	return w.Code, env
}

func orderFields(t *testing.T, env testEnvelope) map[string]any {
	t.Helper()
	var data map[string]any
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("data not an object: %v (%s)", err, env.Data)
	}
	return data
}

func TestCreateOrderEndToEnd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && r.URL.Path == "/cashin" {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(cashinTwoHundredBaht))
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()
	r := newTestStack(t, srv.URL, 5*time.Second)

	code, env := do(t, r, http.MethodPost, "/api/v1/order", `{"amount": 500, "currency": "THB"}`)
	if code != http.StatusOK || !env.Success {
		t.Fatalf("code = %d success = %v", code, env.Success)
	}
	data := orderFields(t, env)
	if data["status"] != "succeeded" {
		t.Fatalf("status = %v", data["status"])
	}
	if data["amount"] != float64(500) {
		t.Fatalf("declared amount = %v, want 500", data["amount"])
	}
	if data["cashin"] != float64(200) {
		t.Fatalf("cashin = %v, want 200", data["cashin"])
	}

	// one-shot status consumption
	code, env = do(t, r, http.MethodGet, "/api/v1/status", "")
	if code != http.StatusOK {
		t.Fatalf("status poll code = %d", code)
	}
	data = orderFields(t, env)
	if data["status"] != "succeeded" {
		t.Fatalf("first poll status = %v, want succeeded", data["status"])
	}
	if data["amount"] != float64(500) || data["cashin"] != float64(200) {
		t.Fatalf("first poll amounts = %v/%v", data["amount"], data["cashin"])
	}

	_, env = do(t, r, http.MethodGet, "/api/v1/status", "")
	if data = orderFields(t, env); data["status"] != "processing" {
		t.Fatalf("second poll status = %v, want processing", data["status"])
	}
}

func TestCreateOrderUpstreamFailureMapsTo502(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "fault", http.StatusInternalServerError)
	}))
	defer srv.Close()
	r := newTestStack(t, srv.URL, 5*time.Second)

	code, env := do(t, r, http.MethodPost, "/api/v1/order", `{"amount": 100}`)
	if code != http.StatusBadGateway {
		t.Fatalf("code = %d, want 502", code)
	}
	if env.Success {
		t.Fatal("expected success=false")
	}
	if data := orderFields(t, env); data["status"] != "failed" {
		t.Fatalf("status = %v, want failed", data["status"])
	}
}

func TestCreateOrderTimeoutMapsTo504(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)
	r := newTestStack(t, srv.URL, 100*time.Millisecond)

	code, env := do(t, r, http.MethodPost, "/api/v1/order", `{"amount": 100}`)
	if code != http.StatusGatewayTimeout {
		t.Fatalf("code = %d, want 504", code)
	}
	if data := orderFields(t, env); data["status"] != "timedOut" {
		t.Fatalf("status = %v, want timedOut", data["status"])
	}
}

func TestCreateOrderTransportErrorMapsTo500(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()
	r := newTestStack(t, srv.URL, time.Second)

	code, env := do(t, r, http.MethodPost, "/api/v1/order", `{"amount": 100}`)
	if code != http.StatusInternalServerError {
		t.Fatalf("code = %d, want 500", code)
	}
	if data := orderFields(t, env); data["status"] != "error" {
		t.Fatalf("status = %v, want error", data["status"])
	}
}

func TestCancelAcknowledgedRegardlessOfUpstream(t *testing.T) {
	cancelCalled := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/cashin_cancel" {
			select {
			case cancelCalled <- r.Method:
			default:
			}
			http.Error(w, "device fault", http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()
	r := newTestStack(t, srv.URL, time.Second)

	// id segment is optional and ignored
	code, env := do(t, r, http.MethodPatch, "/api/v1/cancel/whatever", "")
	if code != http.StatusOK || !env.Success {
		t.Fatalf("code = %d success = %v, want 200 regardless of upstream", code, env.Success)
	}

	select {
	case m := <-cancelCalled:
		if m != http.MethodGet {
			t.Fatalf("cashin_cancel called with %s, want GET", m)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("upstream /cashin_cancel was never invoked")
	}
}

func TestCancelDuringProcessingWinsOverLateSuccess(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/cashin" {
			close(started)
			<-release
			_, _ = w.Write([]byte(cashinTwoHundredBaht))
			return
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()
	r := newTestStack(t, srv.URL, 10*time.Second)

	orderDone := make(chan struct{})
	go func() {
		defer close(orderDone)
		do(t, r, http.MethodPost, "/api/v1/order", `{"amount": 100}`)
	}()

	<-started
	if code, _ := do(t, r, http.MethodPatch, "/api/v1/cancel", ""); code != http.StatusOK {
		t.Fatalf("cancel code = %d", code)
	}
	close(release)
	<-orderDone

	_, env := do(t, r, http.MethodGet, "/api/v1/status", "")
	if data := orderFields(t, env); data["status"] != "cancelled" {
		t.Fatalf("status = %v, want cancelled (late success must not overwrite)", data["status"])
	}
}

func TestBalancesEndToEnd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/inventory" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"Body":[{"InventoryResponse":[{"Cash":[
			{"type":"3","Denomination":[{"fv":2000,"Piece":[{"value":10}]}]},
			{"type":"4","Denomination":[{"fv":2000,"Piece":[{"value":3}]}]}
		]}]}]}`))
	}))
	defer srv.Close()
	r := newTestStack(t, srv.URL, time.Second)

	code, env := do(t, r, http.MethodGet, "/api/v1/balances", "")
	if code != http.StatusOK || !env.Success {
		t.Fatalf("code = %d success = %v", code, env.Success)
	}
	var items []usecase.BalanceItem
	if err := json.Unmarshal(env.Data, &items); err != nil {
		t.Fatalf("data: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("rows = %+v", items)
	}
	row := items[0]
	if row.Denom != "20.00" || row.Value != 20 || row.Qty != 10 || row.InStacker != 3 || row.Type != 1 {
		t.Fatalf("row = %+v", row)
	}
}

func TestHealthCheck(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()
	r := newTestStack(t, srv.URL, time.Second)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("code = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "pos-x-kf-api is running") {
		t.Fatalf("body = %s", w.Body.String())
	}
}
