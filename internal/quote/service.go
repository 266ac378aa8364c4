package quote

import (
	"context"
	"errors"
	"strconv"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/quotepay/internal/money"
	"github.com/noah-isme/quotepay/internal/obs"
	"github.com/noah-isme/quotepay/internal/pix"
	"github.com/noah-isme/quotepay/internal/pricing"
)

// Request is a quote to price.
type Request struct {
	Items    []pricing.Item
	Services []pricing.Item
	// ApplyFee overrides the service default fee mode when set.
	ApplyFee *bool
	TxID     string
}

// Result is a priced quote together with its payment payload.
type Result struct {
	QuoteID     uuid.UUID
	Totals      pricing.Summary
	Payload     string
	Placeholder bool
}

// Service prices quotes and renders their payment payloads.
type Service struct {
	Fee     pricing.Fee
	Builder *pix.Builder
	Logger  zerolog.Logger
}

var errNotConfigured = errors.New("quote service not configured")

// Price computes totals for req and builds the payload for the grand total.
func (s *Service) Price(ctx context.Context, req Request) (Result, error) {
	if s == nil || s.Builder == nil {
		return Result{}, errNotConfigured
	}
	_, span := otel.Tracer("quote.Service").Start(ctx, "QuoteService.Price")
	defer span.End()

	fee := s.Fee
	if req.ApplyFee != nil {
		fee.Applied = *req.ApplyFee
	}
	feeLabel := strconv.FormatBool(fee.Applied)
	outcome := "error"
	defer func() {
		span.SetAttributes(
			attribute.String("quote.result", outcome),
			attribute.Bool("quote.fee_applied", fee.Applied),
		)
		if obs.QuotePricedTotal != nil {
			obs.QuotePricedTotal.WithLabelValues(outcome, feeLabel).Inc()
		}
	}()

	summary, err := pricing.Compute(req.Items, req.Services, fee)
	if err != nil {
		outcome = "invalid"
		fail(span, err)
		s.Logger.Warn().Err(err).Int("items", len(req.Items)).Int("services", len(req.Services)).Msg("quote rejected")
		return Result{}, err
	}
	built, err := s.build(summary.GrandTotal, req.TxID)
	if err != nil {
		outcome = "invalid"
		fail(span, err)
		s.Logger.Warn().Err(err).Str("grand_total", summary.GrandTotal.String()).Msg("quote payload rejected")
		return Result{}, err
	}

	id := uuid.New()
	outcome = "ok"
	if built.Placeholder {
		outcome = "placeholder"
	}
	span.SetAttributes(
		attribute.String("quote.id", id.String()),
		attribute.String("quote.grand_total", summary.GrandTotal.String()),
	)
	if obs.QuoteGrandTotal != nil {
		obs.QuoteGrandTotal.WithLabelValues(feeLabel).Observe(summary.GrandTotal.Decimal().InexactFloat64())
	}
	s.Logger.Debug().
		Str("quote_id", id.String()).
		Str("subtotal", summary.Subtotal.String()).
		Str("fee_amount", summary.FeeAmount.String()).
		Str("grand_total", summary.GrandTotal.String()).
		Bool("placeholder", built.Placeholder).
		Msg("quote priced")
	return Result{
		QuoteID:     id,
		Totals:      summary,
		Payload:     built.Payload,
		Placeholder: built.Placeholder,
	}, nil
}

// Payload builds a payment payload for an amount that is already known.
func (s *Service) Payload(ctx context.Context, amount money.Cents, txid string) (pix.Result, error) {
	if s == nil || s.Builder == nil {
		return pix.Result{}, errNotConfigured
	}
	_, span := otel.Tracer("quote.Service").Start(ctx, "QuoteService.Payload")
	defer span.End()

	built, err := s.build(amount, txid)
	if err != nil {
		fail(span, err)
		s.Logger.Warn().Err(err).Str("amount", amount.String()).Msg("payload rejected")
		return pix.Result{}, err
	}
	return built, nil
}

// Verify checks a payload checksum and decodes its fields.
func (s *Service) Verify(ctx context.Context, payload string) (pix.Decoded, error) {
	_, span := otel.Tracer("quote.Service").Start(ctx, "QuoteService.Verify")
	defer span.End()

	decoded, err := pix.Parse(payload)
	if err != nil {
		fail(span, err)
		return pix.Decoded{}, err
	}
	return decoded, nil
}

func (s *Service) build(amount money.Cents, txid string) (pix.Result, error) {
	built, err := s.Builder.BuildOrPlaceholder(amount, txid)
	result := "ok"
	switch {
	case err != nil:
		result = "invalid"
	case built.Placeholder:
		result = "placeholder"
	}
	if obs.PixPayloadTotal != nil {
		obs.PixPayloadTotal.WithLabelValues(result).Inc()
	}
	return built, err
}

func fail(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
