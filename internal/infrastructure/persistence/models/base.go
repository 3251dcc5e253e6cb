package models

import "time"

// AggregateModel holds the columns shared by every aggregate table. Version
// backs optimistic locking: writes use UPDATE ... WHERE version = ?.
type AggregateModel struct {
	ID        int64     `gorm:"primaryKey;autoIncrement:false"`
	Version   int       `gorm:"not null;default:1"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// All returns every model, in dependency order, for AutoMigrate
func All() []any {
	return []any{
		&ProductModel{},
		&CustomerModel{},
		&InvoiceModel{},
		&InvoiceLineModel{},
		&PaymentModel{},
		&SequenceModel{},
	}
}
