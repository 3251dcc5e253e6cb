package telemetry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/erp/pos/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

// setupTestTracer installs an in-memory span recorder as the global provider.
func setupTestTracer(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))

	original := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(original)
		_ = tp.Shutdown(context.Background())
	})
	return sr
}

func attrMap(span sdktrace.ReadOnlySpan) map[attribute.Key]attribute.Value {
	m := map[attribute.Key]attribute.Value{}
	for _, kv := range span.Attributes() {
		m[kv.Key] = kv.Value
	}
	return m
}

func TestStartServiceSpan(t *testing.T) {
	sr := setupTestTracer(t)

	ctx, span := telemetry.StartServiceSpan(context.Background(), "InvoiceService", "CreateInvoice",
		telemetry.WithAttribute(telemetry.SpanAttrCustomerID, int64(7)),
		telemetry.WithSpanKind(trace.SpanKindServer),
	)
	assert.NotEmpty(t, telemetry.GetTraceID(ctx))
	assert.NotEmpty(t, telemetry.GetSpanID(ctx))
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "InvoiceService.CreateInvoice", spans[0].Name())
	assert.Equal(t, trace.SpanKindServer, spans[0].SpanKind())
	assert.Equal(t, telemetry.TracerName, spans[0].InstrumentationScope().Name)
	assert.Equal(t, int64(7), attrMap(spans[0])[telemetry.SpanAttrCustomerID].AsInt64())
}

func TestSetAttributes(t *testing.T) {
	sr := setupTestTracer(t)

	_, span := telemetry.StartSpan(context.Background(), "invoice.pay")
	telemetry.SetAttributes(span,
		telemetry.SpanAttrInvoiceNumber, int64(42),
		telemetry.SpanAttrInvoiceLines, 3,
		telemetry.SpanAttrInvoiceTotal, decimal.RequireFromString("1250.50"),
		telemetry.SpanAttrPaymentMethod, "CARD",
		99, "non-string key is skipped",
		"dangling",
	)
	telemetry.SetAttribute(span, "senior", true)
	span.End()

	attrs := attrMap(sr.Ended()[0])
	assert.Equal(t, int64(42), attrs[telemetry.SpanAttrInvoiceNumber].AsInt64())
	assert.Equal(t, int64(3), attrs[telemetry.SpanAttrInvoiceLines].AsInt64())
	assert.Equal(t, "1250.5", attrs[telemetry.SpanAttrInvoiceTotal].AsString())
	assert.Equal(t, "CARD", attrs[telemetry.SpanAttrPaymentMethod].AsString())
	assert.True(t, attrs["senior"].AsBool())
	assert.NotContains(t, attrs, attribute.Key("dangling"))
	assert.Len(t, attrs, 5)
}

func TestRecordErrorAndSetOK(t *testing.T) {
	sr := setupTestTracer(t)

	_, failed := telemetry.StartSpan(context.Background(), "failed")
	telemetry.RecordError(failed, errors.New("card expired"))
	failed.End()

	_, ok := telemetry.StartSpan(context.Background(), "ok")
	telemetry.RecordError(ok, nil)
	telemetry.SetOK(ok)
	ok.End()

	spans := sr.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "card expired", spans[0].Status().Description)
	require.Len(t, spans[0].Events(), 1)
	assert.Equal(t, "exception", spans[0].Events()[0].Name)
	assert.Equal(t, codes.Ok, spans[1].Status().Code)
}

func TestAddEvent(t *testing.T) {
	sr := setupTestTracer(t)

	_, span := telemetry.StartSpan(context.Background(), "reserve")
	telemetry.AddEvent(span, "stock_reserved", telemetry.SpanAttrProductID, int64(3), telemetry.SpanAttrQuantity, 2)
	span.End()

	events := sr.Ended()[0].Events()
	require.Len(t, events, 1)
	assert.Equal(t, "stock_reserved", events[0].Name)
	assert.Len(t, events[0].Attributes, 2)
}

func TestHelpers_NilSpan(t *testing.T) {
	assert.NotPanics(t, func() {
		telemetry.SetAttributes(nil, "k", "v")
		telemetry.SetAttribute(nil, "k", "v")
		telemetry.RecordError(nil, errors.New("x"))
		telemetry.SetOK(nil)
		telemetry.AddEvent(nil, "e")
	})
}

func TestGetTraceID_NoSpan(t *testing.T) {
	assert.Empty(t, telemetry.GetTraceID(context.Background()))
	assert.Empty(t, telemetry.GetSpanID(context.Background()))
}
