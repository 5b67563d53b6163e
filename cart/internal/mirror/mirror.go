// Package mirror keeps a read-only copy of the reconciled cart for consumers
// that only render it. Apply is its only writer.
package mirror

import (
	"slices"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/Alturino/medkit/cart/pkg/response"
)

type Snapshot struct {
	Items       []response.LineItem `json:"items"`
	TotalAmount decimal.Decimal     `json:"totalAmount"`
	Version     uint64              `json:"version"`
}

type Mirror struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

func New() *Mirror {
	return &Mirror{snapshot: Snapshot{Items: []response.LineItem{}, TotalAmount: decimal.Zero}}
}

// Apply replaces the mirrored items. It has the shape of a cart subscriber.
func (m *Mirror) Apply(items []response.LineItem) {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshot = Snapshot{
		Items:       slices.Clone(items),
		TotalAmount: total,
		Version:     m.snapshot.Version + 1,
	}
}

func (m *Mirror) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s := m.snapshot
	s.Items = slices.Clone(s.Items)
	return s
}
