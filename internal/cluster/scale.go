package cluster

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"customer-segmentation/internal/customer"
)

// Scaler holds per-feature mean and population standard deviation.
type Scaler struct {
	Mean []float64
	Std  []float64
}

// Standardize rescales each column of points to zero mean and unit
// population standard deviation (ddof 0). names labels the columns in
// errors; a column with zero spread or non-finite values yields
// ErrDegenerateFeature.
func Standardize(points [][]float64, names []string) ([][]float64, Scaler, error) {
	if len(points) == 0 {
		return nil, Scaler{}, fmt.Errorf("%w: no rows to standardize", customer.ErrInsufficientData)
	}
	dims := len(points[0])
	sc := Scaler{Mean: make([]float64, dims), Std: make([]float64, dims)}

	col := make([]float64, len(points))
	for j := 0; j < dims; j++ {
		for i, p := range points {
			col[i] = p[j]
		}
		sc.Mean[j], sc.Std[j] = stat.PopMeanStdDev(col, nil)
		name := fmt.Sprintf("feature %d", j)
		if j < len(names) {
			name = names[j]
		}
		if !finite(sc.Mean[j]) || !finite(sc.Std[j]) {
			return nil, Scaler{}, fmt.Errorf("%w: %s has non-finite values", customer.ErrDegenerateFeature, name)
		}
		if sc.Std[j] == 0 {
			return nil, Scaler{}, fmt.Errorf("%w: %s has zero variance", customer.ErrDegenerateFeature, name)
		}
	}

	return sc.Transform(points), sc, nil
}

func (s Scaler) Transform(points [][]float64) [][]float64 {
	out := make([][]float64, len(points))
	for i, p := range points {
		row := make([]float64, len(p))
		for j, v := range p {
			row[j] = (v - s.Mean[j]) / s.Std[j]
		}
		out[i] = row
	}
	return out
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
