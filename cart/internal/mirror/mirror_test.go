package mirror

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/Alturino/medkit/cart/pkg/response"
)

func TestMirror(t *testing.T) {
	t.Run("given new mirror should be empty at version zero", func(t *testing.T) {
		snapshot := New().Snapshot()
		assert.Empty(t, snapshot.Items)
		assert.True(t, snapshot.TotalAmount.IsZero())
		assert.Zero(t, snapshot.Version)
	})

	t.Run("given applied items should replace snapshot and bump version", func(t *testing.T) {
		m := New()
		m.Apply([]response.LineItem{
			{ProductID: "P1", BrandName: "Acme", UnitPrice: decimal.NewFromInt(1000), Quantity: 2},
			{ProductID: "P2", BrandName: "Beta", UnitPrice: decimal.RequireFromString("12.5"), Quantity: 1},
		})
		m.Apply([]response.LineItem{
			{ProductID: "P2", BrandName: "Beta", UnitPrice: decimal.RequireFromString("12.5"), Quantity: 2},
		})

		snapshot := m.Snapshot()
		assert.Len(t, snapshot.Items, 1)
		assert.Equal(t, "25", snapshot.TotalAmount.String())
		assert.Equal(t, uint64(2), snapshot.Version)
	})

	t.Run("given caller mutates snapshot should not affect mirror", func(t *testing.T) {
		m := New()
		m.Apply([]response.LineItem{{ProductID: "P1", BrandName: "Acme", UnitPrice: decimal.NewFromInt(1), Quantity: 1}})

		snapshot := m.Snapshot()
		snapshot.Items[0].Quantity = 99

		assert.Equal(t, 1, m.Snapshot().Items[0].Quantity)
	})
}
