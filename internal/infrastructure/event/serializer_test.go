package event

import (
	"testing"

	"github.com/erp/pos/internal/domain/catalog"
	"github.com/erp/pos/internal/domain/invoicing"
	"github.com/erp/pos/internal/domain/partner"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventSerializer_RoundTrip(t *testing.T) {
	s := NewEventSerializer()
	RegisterAllEvents(s)

	customer, err := partner.NewOccasionalCustomer(4, "Ana", false)
	require.NoError(t, err)
	inv, err := invoicing.NewInvoice(31, invoicing.CustomerRefOf(customer), "cashier")
	require.NoError(t, err)
	original := invoicing.NewInvoiceCreatedEvent(inv)

	data, err := s.Serialize(original)
	require.NoError(t, err)

	decoded, err := s.Deserialize(invoicing.EventTypeInvoiceCreated, data)
	require.NoError(t, err)

	created, ok := decoded.(*invoicing.InvoiceCreatedEvent)
	require.True(t, ok)
	assert.Equal(t, original.EventID(), created.EventID())
	assert.Equal(t, int64(31), created.Number)
	assert.Equal(t, int64(4), created.CustomerID)
	assert.Equal(t, int64(31), created.AggregateID())
	assert.True(t, decimal.Zero.Equal(created.Total))
}

func TestEventSerializer_Deserialize_Errors(t *testing.T) {
	s := NewEventSerializer()
	RegisterAllEvents(s)

	_, err := s.Deserialize("Unknown", []byte(`{}`))
	assert.ErrorContains(t, err, "unknown event type")

	_, err = s.Deserialize(invoicing.EventTypeInvoicePaid, []byte(`{not json`))
	assert.ErrorContains(t, err, "failed to unmarshal")
}

func TestRegisterAllEvents(t *testing.T) {
	s := NewEventSerializer()
	assert.False(t, s.Registered(partner.EventTypeLoyaltyPointsChanged))

	RegisterAllEvents(s)
	for _, eventType := range []string{
		catalog.EventTypeProductCreated,
		catalog.EventTypeInventoryAdjusted,
		partner.EventTypeLoyaltyPointsChanged,
		invoicing.EventTypeInvoiceVoided,
	} {
		assert.True(t, s.Registered(eventType), eventType)
	}
}
