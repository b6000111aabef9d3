package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	domain "github.com/realsagiza/POS-X-KF-API/internal/entity"
	"github.com/realsagiza/POS-X-KF-API/internal/usecase"
)

// envelope is the fixed generic response wrapper every endpoint uses.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Data    any    `json:"data,omitempty"`
}

type orderData struct {
	ID       string  `json:"id,omitempty"`
	Amount   float64 `json:"amount"`
	Cashin   float64 `json:"cashin"`
	Currency string  `json:"currency,omitempty"`
	Status   string  `json:"status"`
}

type SaleHandler struct {
	create   *usecase.CreateOrder
	status   *usecase.OrderStatus
	cancel   *usecase.CancelOrder
	balances *usecase.GetBalances

	appName string
	port    int
}

func NewSaleHandler(create *usecase.CreateOrder, status *usecase.OrderStatus,
	cancel *usecase.CancelOrder, balances *usecase.GetBalances,
	appName string, port int) *SaleHandler {
	return &SaleHandler{
		create: create, status: status, cancel: cancel, balances: balances,
		appName: appName, port: port,
	}
}

func (h *SaleHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message":   h.appName + " is running",
		"port":      h.port,
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
	})
}

type createOrderReq struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// CreateOrder blocks on the synchronous upstream /cashin call and answers
// with the terminal status. A malformed body is treated as amount 0, the
// terminal keeps accepting cash either way.
func (h *SaleHandler) CreateOrder(c *gin.Context) {
	var req createOrderReq
	_ = c.ShouldBindJSON(&req)
	if req.Currency == "" {
		req.Currency = "THB"
	}

	order := h.create.Execute(c.Request.Context(), usecase.CreateOrderInput{
		Amount:   decimal.NewFromFloat(req.Amount),
		Currency: req.Currency,
	})

	code := httpStatusFor(order.Status)
	if code != http.StatusOK {
		c.JSON(code, envelope{
			Success: false,
			Error:   "upstream cashin " + string(order.Status),
			Data:    toOrderData(order),
		})
		return
	}
	c.JSON(http.StatusOK, envelope{
		Success: true,
		Message: "sale created",
		Data:    toOrderData(order),
	})
}

func (h *SaleHandler) GetStatus(c *gin.Context) {
	order := h.status.Execute(c.Request.Context())
	c.JSON(http.StatusOK, envelope{Success: true, Data: toOrderData(order)})
}

// CancelOrder acknowledges locally once the state transition happened; the
// upstream cancel call runs detached and cannot fail this response. The
// :id segment is accepted and ignored, the device knows one order.
func (h *SaleHandler) CancelOrder(c *gin.Context) {
	h.cancel.Execute(c.Request.Context())
	c.JSON(http.StatusOK, envelope{
		Success: true,
		Message: "sale cancelled",
		Data:    gin.H{"status": string(domain.StatusCancelled)},
	})
}

func (h *SaleHandler) GetBalances(c *gin.Context) {
	items, res := h.balances.Execute(c.Request.Context())
	if res.Outcome != usecase.OutcomeSuccess {
		c.JSON(httpStatusForOutcome(res.Outcome), envelope{
			Success: false,
			Error:   "failed to load inventory data",
		})
		return
	}
	if items == nil {
		items = []usecase.BalanceItem{}
	}
	c.JSON(http.StatusOK, envelope{Success: true, Data: items})
}

func toOrderData(o domain.Order) orderData {
	cashin := 0.0
	if o.Cashin.Resolved {
		cashin = o.Cashin.Value.InexactFloat64()
	}
	return orderData{
		ID:       o.ID,
		Amount:   o.Amount.InexactFloat64(),
		Cashin:   cashin,
		Currency: o.Currency,
		Status:   string(o.Status),
	}
}

func httpStatusFor(s domain.Status) int {
	switch s {
	case domain.StatusSucceeded:
		return http.StatusOK
	case domain.StatusFailed:
		return http.StatusBadGateway
	case domain.StatusTimedOut:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func httpStatusForOutcome(o usecase.CallOutcome) int {
	switch o {
	case usecase.OutcomeSuccess:
		return http.StatusOK
	case usecase.OutcomeUpstreamError:
		return http.StatusBadGateway
	case usecase.OutcomeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
