package memory

// Store groups the in-memory repositories of one process
type Store struct {
	Products  *ProductRepository
	Customers *CustomerRepository
	Invoices  *InvoiceRepository
	Sequences *Sequences
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		Products:  NewProductRepository(),
		Customers: NewCustomerRepository(),
		Invoices:  NewInvoiceRepository(),
		Sequences: NewSequences(),
	}
}
