package shared

import "context"

// Sequence names, one monotonic counter per entity kind.
const (
	SequenceProduct  = "product"
	SequenceCustomer = "customer"
	SequenceInvoice  = "invoice"
	SequencePayment  = "payment"
)

// IDGenerator hands out strictly increasing identifiers per sequence.
// Identifiers are never reused, even when the operation that drew one fails.
type IDGenerator interface {
	NextID(ctx context.Context, sequence string) (int64, error)
}
