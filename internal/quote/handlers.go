package quote

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/quotepay/internal/common"
	"github.com/noah-isme/quotepay/internal/money"
	"github.com/noah-isme/quotepay/internal/pricing"
)

const maxBodyBytes = 1 << 20

// Handler exposes the quote pricing and payload endpoints.
type Handler struct {
	service  *Service
	validate *validator.Validate
}

// HandlerConfig configures the Handler dependencies.
type HandlerConfig struct {
	Service *Service
}

// NewHandler constructs a Handler.
func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{service: cfg.Service, validate: validator.New(validator.WithRequiredStructEnabled())}
}

type lineInput struct {
	Description string `json:"description" validate:"max=200"`
	Quantity    string `json:"quantity" validate:"required,numeric"`
	UnitPrice   string `json:"unitPrice" validate:"required,numeric"`
}

type priceRequest struct {
	Items    []lineInput `json:"items" validate:"max=500,dive"`
	Services []lineInput `json:"services" validate:"max=500,dive"`
	ApplyFee *bool       `json:"applyFee"`
	TxID     string      `json:"txid" validate:"max=64"`
}

type payloadRequest struct {
	Amount string `json:"amount" validate:"required,numeric"`
	TxID   string `json:"txid" validate:"max=64"`
}

type verifyRequest struct {
	Payload string `json:"payload" validate:"required,max=512"`
}

// Line is a priced quote line.
type Line struct {
	Description string      `json:"description,omitempty"`
	Quantity    string      `json:"quantity"`
	UnitPrice   string      `json:"unitPrice"`
	Total       money.Cents `json:"total"`
}

// Totals is the wire form of pricing.Summary; amounts render as "0.00" strings.
type Totals struct {
	Items         []Line      `json:"items"`
	Services      []Line      `json:"services"`
	ItemsTotal    money.Cents `json:"itemsTotal"`
	ServicesTotal money.Cents `json:"servicesTotal"`
	Subtotal      money.Cents `json:"subtotal"`
	FeeApplied    bool        `json:"feeApplied"`
	FeeRate       string      `json:"feeRate"`
	FeeAmount     money.Cents `json:"feeAmount"`
	GrandTotal    money.Cents `json:"grandTotal"`
}

// Payment carries the payload handed to QR and document renderers.
type Payment struct {
	Payload     string `json:"payload"`
	Placeholder bool   `json:"placeholder"`
}

// PricedQuote is the response body of POST /api/v1/quotes/price.
type PricedQuote struct {
	QuoteID string  `json:"quoteId"`
	Totals  Totals  `json:"totals"`
	Payment Payment `json:"payment"`
}

// Price handles POST /api/v1/quotes/price.
func (h *Handler) Price(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "quote service not configured", nil)
		return
	}
	var body priceRequest
	if !h.decode(w, r, &body) {
		return
	}
	items, err := toItems(body.Items)
	if err != nil {
		common.WriteError(w, toAppError(fmt.Errorf("items: %w", err)))
		return
	}
	services, err := toItems(body.Services)
	if err != nil {
		common.WriteError(w, toAppError(fmt.Errorf("services: %w", err)))
		return
	}
	res, err := h.service.Price(r.Context(), Request{
		Items:    items,
		Services: services,
		ApplyFee: body.ApplyFee,
		TxID:     body.TxID,
	})
	if err != nil {
		common.WriteError(w, toAppError(err))
		return
	}
	common.Data(w, http.StatusOK, PricedQuote{
		QuoteID: res.QuoteID.String(),
		Totals:  toTotals(res.Totals, items, services),
		Payment: Payment{Payload: res.Payload, Placeholder: res.Placeholder},
	})
}

// Payload handles POST /api/v1/pix/payload.
func (h *Handler) Payload(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "quote service not configured", nil)
		return
	}
	var body payloadRequest
	if !h.decode(w, r, &body) {
		return
	}
	amount, err := money.Parse(body.Amount)
	if err != nil {
		common.WriteError(w, toAppError(err))
		return
	}
	built, err := h.service.Payload(r.Context(), amount, body.TxID)
	if err != nil {
		common.WriteError(w, toAppError(err))
		return
	}
	common.Data(w, http.StatusOK, Payment{Payload: built.Payload, Placeholder: built.Placeholder})
}

// Verify handles POST /api/v1/pix/verify.
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "quote service not configured", nil)
		return
	}
	var body verifyRequest
	if !h.decode(w, r, &body) {
		return
	}
	decoded, err := h.service.Verify(r.Context(), strings.TrimSpace(body.Payload))
	if err != nil {
		common.WriteError(w, toAppError(err))
		return
	}
	common.Data(w, http.StatusOK, decoded)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make(map[string]string, len(verrs))
			for _, fe := range verrs {
				fields[fe.Namespace()] = fe.Tag()
			}
			common.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request", fields)
			return false
		}
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		return false
	}
	return true
}

func toItems(in []lineInput) ([]pricing.Item, error) {
	out := make([]pricing.Item, 0, len(in))
	for i, line := range in {
		qty, err := money.ParseDecimal(line.Quantity)
		if err != nil {
			return nil, fmt.Errorf("line %d quantity: %w", i, err)
		}
		price, err := money.ParseDecimal(line.UnitPrice)
		if err != nil {
			return nil, fmt.Errorf("line %d unit price: %w", i, err)
		}
		out = append(out, pricing.Item{Description: line.Description, Quantity: qty, UnitPrice: price})
	}
	return out, nil
}

func toLines(items []pricing.Item, totals []money.Cents) []Line {
	lines := make([]Line, 0, len(items))
	for i, it := range items {
		lines = append(lines, Line{
			Description: it.Description,
			Quantity:    it.Quantity.String(),
			UnitPrice:   it.UnitPrice.String(),
			Total:       totals[i],
		})
	}
	return lines
}

func toTotals(s pricing.Summary, items, services []pricing.Item) Totals {
	return Totals{
		Items:         toLines(items, s.ItemLines),
		Services:      toLines(services, s.ServiceLines),
		ItemsTotal:    s.ItemsTotal,
		ServicesTotal: s.ServicesTotal,
		Subtotal:      s.Subtotal,
		FeeApplied:    s.FeeApplied,
		FeeRate:       s.FeeRate.String(),
		FeeAmount:     s.FeeAmount,
		GrandTotal:    s.GrandTotal,
	}
}
