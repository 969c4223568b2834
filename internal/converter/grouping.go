package converter

import (
	"sort"

	"github.com/ginjaninja78/loyalty-card-report/internal/types"
	"github.com/shopspring/decimal"
)

// Group collapses records by card/owner pair, summing revenue.
//
// The output holds one AggregatedRecord per distinct pair, sorted by card
// number and then owner name. Revenue is summed in decimal, so the grand
// total of the output equals the revenue sum of the input exactly.
func Group(records []types.SalesRecord) []types.AggregatedRecord {
	totals := make(map[types.CardKey]decimal.Decimal)
	var keys []types.CardKey

	for _, r := range records {
		key := r.Key()
		sum, seen := totals[key]
		if !seen {
			keys = append(keys, key)
			sum = decimal.Zero
		}
		totals[key] = sum.Add(r.Revenue)
	}

	sort.SliceStable(keys, func(i, j int) bool {
		if keys[i].CardNumber != keys[j].CardNumber {
			return keys[i].CardNumber < keys[j].CardNumber
		}
		return keys[i].OwnerName < keys[j].OwnerName
	})

	grouped := make([]types.AggregatedRecord, 0, len(keys))
	for _, key := range keys {
		grouped = append(grouped, types.AggregatedRecord{
			CardNumber:   key.CardNumber,
			OwnerName:    key.OwnerName,
			RevenueTotal: totals[key],
		})
	}
	return grouped
}
