package models

import (
	"time"

	"github.com/erp/pos/internal/domain/invoicing"
	"github.com/erp/pos/internal/domain/partner"
	"github.com/erp/pos/internal/domain/payment"
	"github.com/erp/pos/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// InvoiceModel is the persistence model for the Invoice aggregate. The
// customer columns are the copy last taken while the invoice was open.
type InvoiceModel struct {
	Number                 int64                `gorm:"primaryKey;autoIncrement:false"`
	IssuedAt               time.Time            `gorm:"not null;index"`
	CustomerID             int64                `gorm:"not null;index"`
	CustomerName           string               `gorm:"type:varchar(200);not null"`
	CustomerType           partner.CustomerType `gorm:"type:varchar(20);not null"`
	SeniorDiscountEligible bool                 `gorm:"not null;default:false"`
	CreatedBy              string               `gorm:"type:varchar(100)"`
	NextLineNumber         int                  `gorm:"not null;default:1"`
	Status                 invoicing.Status     `gorm:"type:varchar(20);not null;index"`
	PaidAt                 *time.Time
	VoidReason             string `gorm:"type:varchar(500)"`
	VoidedAt               *time.Time
	PointsAwarded          int       `gorm:"not null;default:0"`
	Version                int       `gorm:"not null;default:1"`
	CreatedAt              time.Time `gorm:"not null"`
	UpdatedAt              time.Time `gorm:"not null"`

	Lines   []InvoiceLineModel `gorm:"foreignKey:InvoiceNumber;references:Number"`
	Payment *PaymentModel      `gorm:"foreignKey:InvoiceNumber;references:Number"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// InvoiceLineModel is one line of an invoice
type InvoiceLineModel struct {
	InvoiceNumber int64                   `gorm:"primaryKey;autoIncrement:false"`
	LineNumber    int                     `gorm:"primaryKey;autoIncrement:false"`
	ProductID     int64                   `gorm:"not null;index"`
	ProductCode   string                  `gorm:"type:varchar(50);not null"`
	ProductName   string                  `gorm:"type:varchar(200);not null"`
	UnitPrice     decimal.Decimal         `gorm:"type:decimal(18,4);not null"`
	TaxCategory   valueobject.TaxCategory `gorm:"type:varchar(20);not null"`
	Quantity      int                     `gorm:"not null"`
}

// TableName returns the table name for GORM
func (InvoiceLineModel) TableName() string {
	return "invoice_lines"
}

// PaymentModel is the payment settling an invoice. Only the card
// projection is stored; the number and security code never are.
type PaymentModel struct {
	ID            int64                `gorm:"primaryKey;autoIncrement:false"`
	InvoiceNumber int64                `gorm:"not null;uniqueIndex"`
	ReceivedAt    time.Time            `gorm:"not null"`
	Method        payment.Method       `gorm:"type:varchar(10);not null"`
	Amount        decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	Currency      valueobject.Currency `gorm:"type:varchar(3);not null"`
	ExchangeRate  decimal.Decimal      `gorm:"type:decimal(18,6);not null"`
	BaseAmount    decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	CardBrand     string               `gorm:"type:varchar(20)"`
	CardHolder    string               `gorm:"type:varchar(200)"`
	CardLastFour  string               `gorm:"type:varchar(4)"`
	CardMasked    string               `gorm:"type:varchar(30)"`
	CardExpYear   int
	CardExpMonth  int
	Fingerprint   string `gorm:"type:varchar(64)"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain rebuilds the Invoice aggregate with its lines and payment
func (m *InvoiceModel) ToDomain() (*invoicing.Invoice, error) {
	lines := make([]invoicing.LineItem, len(m.Lines))
	for i, l := range m.Lines {
		lines[i] = invoicing.LineItem{
			LineNumber:  l.LineNumber,
			ProductID:   l.ProductID,
			ProductCode: l.ProductCode,
			ProductName: l.ProductName,
			UnitPrice:   l.UnitPrice,
			TaxCategory: l.TaxCategory,
			Quantity:    l.Quantity,
		}
	}

	var p *payment.Payment
	if m.Payment != nil {
		var err error
		if p, err = m.Payment.ToDomain(); err != nil {
			return nil, err
		}
	}

	return invoicing.RestoreInvoice(invoicing.InvoiceSnapshot{
		Number:   m.Number,
		IssuedAt: m.IssuedAt,
		Customer: invoicing.CustomerRef{
			ID:                     m.CustomerID,
			Name:                   m.CustomerName,
			Type:                   m.CustomerType,
			SeniorDiscountEligible: m.SeniorDiscountEligible,
		},
		CreatedBy:      m.CreatedBy,
		Lines:          lines,
		NextLineNumber: m.NextLineNumber,
		Payment:        p,
		Status:         m.Status,
		PaidAt:         m.PaidAt,
		VoidReason:     m.VoidReason,
		VoidedAt:       m.VoidedAt,
		PointsAwarded:  m.PointsAwarded,
		Version:        m.Version,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}), nil
}

// InvoiceModelFromDomain creates persistence models for an invoice, its
// lines and its payment
func InvoiceModelFromDomain(inv *invoicing.Invoice) *InvoiceModel {
	s := inv.Snapshot()
	m := &InvoiceModel{
		Number:                 s.Number,
		IssuedAt:               s.IssuedAt,
		CustomerID:             s.Customer.ID,
		CustomerName:           s.Customer.Name,
		CustomerType:           s.Customer.Type,
		SeniorDiscountEligible: s.Customer.SeniorDiscountEligible,
		CreatedBy:              s.CreatedBy,
		NextLineNumber:         s.NextLineNumber,
		Status:                 s.Status,
		PaidAt:                 s.PaidAt,
		VoidReason:             s.VoidReason,
		VoidedAt:               s.VoidedAt,
		PointsAwarded:          s.PointsAwarded,
		Version:                s.Version,
		CreatedAt:              s.CreatedAt,
		UpdatedAt:              s.UpdatedAt,
		Lines:                  make([]InvoiceLineModel, len(s.Lines)),
	}
	for i, l := range s.Lines {
		m.Lines[i] = InvoiceLineModel{
			InvoiceNumber: s.Number,
			LineNumber:    l.LineNumber,
			ProductID:     l.ProductID,
			ProductCode:   l.ProductCode,
			ProductName:   l.ProductName,
			UnitPrice:     l.UnitPrice,
			TaxCategory:   l.TaxCategory,
			Quantity:      l.Quantity,
		}
	}
	if s.Payment != nil {
		m.Payment = PaymentModelFromDomain(s.Number, s.Payment)
	}
	return m
}

// ToDomain rebuilds the payment
func (m *PaymentModel) ToDomain() (*payment.Payment, error) {
	amount, err := valueobject.NewMoney(m.Amount, m.Currency)
	if err != nil {
		return nil, err
	}
	p := &payment.Payment{
		ID:           m.ID,
		ReceivedAt:   m.ReceivedAt,
		Method:       m.Method,
		Amount:       amount,
		ExchangeRate: m.ExchangeRate,
		BaseAmount:   m.BaseAmount,
	}
	if m.Method == payment.MethodCard {
		p.Card = &payment.CardDetails{
			Brand:       payment.Brand(m.CardBrand),
			Holder:      m.CardHolder,
			LastFour:    m.CardLastFour,
			Masked:      m.CardMasked,
			Expiry:      payment.YearMonth{Year: m.CardExpYear, Month: time.Month(m.CardExpMonth)},
			Fingerprint: m.Fingerprint,
		}
	}
	return p, nil
}

// PaymentModelFromDomain creates the persistence model of an invoice payment
func PaymentModelFromDomain(invoiceNumber int64, p *payment.Payment) *PaymentModel {
	m := &PaymentModel{
		ID:            p.ID,
		InvoiceNumber: invoiceNumber,
		ReceivedAt:    p.ReceivedAt,
		Method:        p.Method,
		Amount:        p.Amount.Amount(),
		Currency:      p.Currency(),
		ExchangeRate:  p.ExchangeRate,
		BaseAmount:    p.BaseAmount,
	}
	if c := p.Card; c != nil {
		m.CardBrand = string(c.Brand)
		m.CardHolder = c.Holder
		m.CardLastFour = c.LastFour
		m.CardMasked = c.Masked
		m.CardExpYear = c.Expiry.Year
		m.CardExpMonth = int(c.Expiry.Month)
		m.Fingerprint = c.Fingerprint
	}
	return m
}
