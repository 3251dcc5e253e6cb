package storage

import (
	"context"
	"errors"
	"sync"

	appinvoicing "github.com/erp/pos/internal/application/invoicing"
)

var _ appinvoicing.ReportArchive = (*MemoryReportArchive)(nil)

// StoredObject is a report kept by MemoryReportArchive
type StoredObject struct {
	Body        []byte
	ContentType string
}

// MemoryReportArchive keeps reports in process memory. Used when S3 is
// disabled and in tests.
type MemoryReportArchive struct {
	mu      sync.RWMutex
	objects map[string]StoredObject
}

// NewMemoryReportArchive creates an empty archive
func NewMemoryReportArchive() *MemoryReportArchive {
	return &MemoryReportArchive{objects: make(map[string]StoredObject)}
}

// Put stores a copy of body under key
func (a *MemoryReportArchive) Put(_ context.Context, key string, body []byte, contentType string) (string, error) {
	if key == "" {
		return "", errors.New("storage key is required")
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.objects[key] = StoredObject{Body: append([]byte(nil), body...), ContentType: contentType}
	return "memory://" + key, nil
}

// Get returns a stored report
func (a *MemoryReportArchive) Get(key string) (StoredObject, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	obj, ok := a.objects[key]
	return obj, ok
}
