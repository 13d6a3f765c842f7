// Package report writes the segmented table and renders its charts.
package report

import (
	"customer-segmentation/internal/customer"
)

type Kind int

const (
	Bar Kind = iota
	Box
	Scatter
)

func (k Kind) String() string {
	switch k {
	case Bar:
		return "bar"
	case Box:
		return "box"
	case Scatter:
		return "scatter"
	}
	return "unknown"
}

type Point struct {
	X, Y float64
}

type Series struct {
	Name   string
	Points []Point
}

// Chart is a renderer-independent description of one figure. Categories
// drives the x axis for Bar and Box; Counts and Groups are aligned with it.
type Chart struct {
	Path   string
	Kind   Kind
	Title  string
	XLabel string
	YLabel string

	Categories []string
	Counts     []float64
	Groups     [][]float64
	Series     []Series
}

// Paths names the three chart files.
type Paths struct {
	TierDistribution  string
	SpendDistribution string
	RecencyVsMonetary string
}

func (p Paths) List() []string {
	return []string{p.TierDistribution, p.SpendDistribution, p.RecencyVsMonetary}
}

// BuildCharts derives the tier count, spend distribution and recency
// scatter charts from a labelled table. Tiers are ordered High to Low.
func BuildCharts(table *customer.Table, paths Paths) []Chart {
	categories := make([]string, len(customer.Tiers))
	position := make(map[customer.Tier]int, len(customer.Tiers))
	for i, t := range customer.Tiers {
		categories[i] = string(t)
		position[t] = i
	}

	counts := make([]float64, len(categories))
	groups := make([][]float64, len(categories))
	series := make([]Series, len(categories))
	for i := range series {
		series[i].Name = categories[i]
	}

	for _, r := range table.Records {
		i, ok := position[r.Tier]
		if !ok {
			continue
		}
		counts[i]++
		groups[i] = append(groups[i], r.Monetary)
		series[i].Points = append(series[i].Points, Point{X: float64(r.Recency), Y: r.Monetary})
	}

	return []Chart{
		{
			Path:       paths.TierDistribution,
			Kind:       Bar,
			Title:      "Tier Distribution",
			XLabel:     "Tier",
			YLabel:     "count",
			Categories: categories,
			Counts:     counts,
		},
		{
			Path:       paths.SpendDistribution,
			Kind:       Box,
			Title:      "Spend Distribution by Tier",
			XLabel:     "Tier",
			YLabel:     customer.ColMonetary,
			Categories: categories,
			Groups:     groups,
		},
		{
			Path:   paths.RecencyVsMonetary,
			Kind:   Scatter,
			Title:  "Recency vs Monetary",
			XLabel: customer.ColRecency,
			YLabel: customer.ColMonetary,
			Series: series,
		},
	}
}
