package persistence

import (
	"context"
	"fmt"

	"github.com/erp/pos/internal/domain/shared"
	"gorm.io/gorm"
)

// GormSequence hands out identifiers from the sequences table. Each call
// commits on its own, outside any business transaction, so an identifier is
// never handed out twice even when the operation that drew it rolls back.
type GormSequence struct {
	db *gorm.DB
}

// NewGormSequence creates a new GormSequence
func NewGormSequence(db *gorm.DB) *GormSequence {
	return &GormSequence{db: db}
}

// NextID increments and returns the named sequence, creating it on first use
func (s *GormSequence) NextID(ctx context.Context, sequence string) (int64, error) {
	var value int64
	err := s.db.WithContext(ctx).Raw(
		`INSERT INTO sequences (name, value) VALUES (?, 1)
		 ON CONFLICT (name) DO UPDATE SET value = sequences.value + 1
		 RETURNING value`, sequence).
		Scan(&value).Error
	if err != nil {
		return 0, fmt.Errorf("next %s id: %w", sequence, err)
	}
	return value, nil
}

var _ shared.IDGenerator = (*GormSequence)(nil)
