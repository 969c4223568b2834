package converter

import (
	"fmt"
	"testing"

	"github.com/ginjaninja78/loyalty-card-report/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sale(card, owner, revenue string) types.SalesRecord {
	return types.SalesRecord{CardNumber: card, OwnerName: owner, Revenue: decimal.RequireFromString(revenue)}
}

func TestGroup(t *testing.T) {
	grouped := Group([]types.SalesRecord{
		sale("00012", "Bob", "30"),
		sale("00007", "Alice", "100"),
		sale("00007", "Alice", "50"),
	})

	require.Len(t, grouped, 2)
	assert.Equal(t, "00007", grouped[0].CardNumber)
	assert.Equal(t, "Alice", grouped[0].OwnerName)
	assert.True(t, grouped[0].RevenueTotal.Equal(decimal.NewFromInt(150)))
	assert.Equal(t, "00012", grouped[1].CardNumber)
	assert.True(t, grouped[1].RevenueTotal.Equal(decimal.NewFromInt(30)))
}

func TestGroupSameCardDifferentOwners(t *testing.T) {
	grouped := Group([]types.SalesRecord{
		sale("00001", "Zoe", "1"),
		sale("00001", "Adam", "2"),
	})

	require.Len(t, grouped, 2)
	assert.Equal(t, "Adam", grouped[0].OwnerName)
	assert.Equal(t, "Zoe", grouped[1].OwnerName)
}

func TestGroupConservesRevenue(t *testing.T) {
	var records []types.SalesRecord
	for i := 0; i < 500; i++ {
		card := fmt.Sprintf("%05d", i%37)
		owner := fmt.Sprintf("owner-%d", i%5)
		records = append(records, sale(card, owner, fmt.Sprintf("%d.%02d", i%211-60, i%100)))
	}

	grouped := Group(records)

	assert.True(t, types.SumRevenue(records).Equal(types.ComputeTotals(grouped).RevenueGrandTotal))

	seen := make(map[types.CardKey]bool)
	for _, g := range grouped {
		key := types.CardKey{CardNumber: g.CardNumber, OwnerName: g.OwnerName}
		assert.False(t, seen[key], "duplicate key %v", key)
		seen[key] = true
	}
}

func TestGroupEmpty(t *testing.T) {
	assert.Empty(t, Group(nil))
}
