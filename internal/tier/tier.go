// Package tier ranks clusters by mean Monetary and labels customers.
package tier

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"

	"customer-segmentation/internal/customer"
)

// Summary profiles one segment.
type Summary struct {
	Segment       int
	Tier          customer.Tier
	Customers     int
	MeanMonetary  float64
	MeanRecency   float64
	MeanFrequency float64
}

// Rank orders segments by mean Monetary descending and assigns High,
// Medium and Low Value. Equal means are ordered by segment id ascending.
// The table must hold exactly one segment per tier.
func Rank(table *customer.Table) ([]Summary, error) {
	groups := map[int][]int{}
	for i, r := range table.Records {
		groups[r.Segment] = append(groups[r.Segment], i)
	}
	if len(groups) != len(customer.Tiers) {
		return nil, fmt.Errorf("%w: %d segments, need exactly %d",
			customer.ErrInsufficientData, len(groups), len(customer.Tiers))
	}

	summaries := make([]Summary, 0, len(groups))
	for seg, idx := range groups {
		monetary := make([]float64, len(idx))
		recency := make([]float64, len(idx))
		frequency := make([]float64, len(idx))
		for j, i := range idx {
			r := table.Records[i]
			monetary[j] = r.Monetary
			recency[j] = float64(r.Recency)
			frequency[j] = float64(r.Frequency)
		}
		summaries = append(summaries, Summary{
			Segment:       seg,
			Customers:     len(idx),
			MeanMonetary:  stat.Mean(monetary, nil),
			MeanRecency:   stat.Mean(recency, nil),
			MeanFrequency: stat.Mean(frequency, nil),
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].MeanMonetary != summaries[j].MeanMonetary {
			return summaries[i].MeanMonetary > summaries[j].MeanMonetary
		}
		return summaries[i].Segment < summaries[j].Segment
	})
	for i := range summaries {
		summaries[i].Tier = customer.Tiers[i]
	}
	return summaries, nil
}

// Apply returns a copy of table with Tier set from the ranked summaries.
func Apply(table *customer.Table, summaries []Summary) *customer.Table {
	bySegment := make(map[int]customer.Tier, len(summaries))
	for _, s := range summaries {
		bySegment[s.Segment] = s.Tier
	}
	out := table.Clone()
	for i := range out.Records {
		out.Records[i].Tier = bySegment[out.Records[i].Segment]
	}
	return out
}

// Label ranks and applies in one step.
func Label(table *customer.Table) (*customer.Table, []Summary, error) {
	summaries, err := Rank(table)
	if err != nil {
		return nil, nil, err
	}
	return Apply(table, summaries), summaries, nil
}
