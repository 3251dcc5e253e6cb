package event

import (
	"github.com/erp/pos/internal/domain/catalog"
	"github.com/erp/pos/internal/domain/invoicing"
	"github.com/erp/pos/internal/domain/partner"
)

// RegisterAllEvents makes every domain event decodable
func RegisterAllEvents(s *EventSerializer) {
	RegisterEvent[catalog.ProductCreatedEvent](s, catalog.EventTypeProductCreated)
	RegisterEvent[catalog.ProductUpdatedEvent](s, catalog.EventTypeProductUpdated)
	RegisterEvent[catalog.InventoryAdjustedEvent](s, catalog.EventTypeInventoryAdjusted)

	RegisterEvent[partner.CustomerRegisteredEvent](s, partner.EventTypeCustomerRegistered)
	RegisterEvent[partner.CustomerUpdatedEvent](s, partner.EventTypeCustomerUpdated)
	RegisterEvent[partner.LoyaltyPointsChangedEvent](s, partner.EventTypeLoyaltyPointsChanged)

	RegisterEvent[invoicing.InvoiceCreatedEvent](s, invoicing.EventTypeInvoiceCreated)
	RegisterEvent[invoicing.InvoicePaidEvent](s, invoicing.EventTypeInvoicePaid)
	RegisterEvent[invoicing.InvoiceVoidedEvent](s, invoicing.EventTypeInvoiceVoided)
}
