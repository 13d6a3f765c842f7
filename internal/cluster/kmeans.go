// Package cluster standardizes RFM features and partitions customers with
// KMeans.
package cluster

import (
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"customer-segmentation/internal/customer"
)

// KMeans is Lloyd's algorithm with k-means++ seeding and restarts. All
// restarts draw from one generator seeded with Seed.
type KMeans struct {
	K             int
	Seed          int64
	Restarts      int
	MaxIterations int
	Tolerance     float64

	Logger *zap.Logger
}

type Model struct {
	Centroids  [][]float64
	Labels     []int
	Inertia    float64
	Iterations int
	// Restart is the index of the initialization that produced the model.
	Restart int
}

// Fit clusters points and keeps the restart with the lowest inertia.
func (km KMeans) Fit(points [][]float64) (*Model, error) {
	if km.K < 1 {
		return nil, fmt.Errorf("k must be positive, got %d", km.K)
	}
	if len(points) < km.K {
		return nil, fmt.Errorf("%w: %d rows, need at least %d", customer.ErrInsufficientData, len(points), km.K)
	}
	if n := distinct(points); n < km.K {
		return nil, fmt.Errorf("%w: %d distinct points, need at least %d", customer.ErrInsufficientData, n, km.K)
	}

	logger := km.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	restarts := km.Restarts
	if restarts < 1 {
		restarts = 1
	}
	maxIter := km.MaxIterations
	if maxIter < 1 {
		maxIter = 300
	}
	tol := km.Tolerance * meanVariance(points)

	rng := rand.New(rand.NewSource(km.Seed))

	var best *Model
	for r := 0; r < restarts; r++ {
		centroids := seedPlusPlus(points, km.K, rng)
		m := lloyd(points, centroids, maxIter, tol)
		m.Restart = r
		logger.Debug("KMeans restart finished",
			zap.Int("restart", r),
			zap.Int("iterations", m.Iterations),
			zap.Float64("inertia", m.Inertia))
		if best == nil || m.Inertia < best.Inertia {
			best = m
		}
	}

	return best, nil
}

// Predict assigns each point to its nearest centroid.
func (m *Model) Predict(points [][]float64) []int {
	labels := make([]int, len(points))
	for i, p := range points {
		labels[i], _ = nearest(p, m.Centroids)
	}
	return labels
}

func lloyd(points, centroids [][]float64, maxIter int, tol float64) *Model {
	k := len(centroids)
	dims := len(points[0])
	labels := make([]int, len(points))
	for i := range labels {
		labels[i] = -1
	}

	iter := 0
	for iter < maxIter {
		iter++
		changed := assign(points, centroids, labels)

		next := make([][]float64, k)
		counts := make([]int, k)
		for c := range next {
			next[c] = make([]float64, dims)
		}
		for i, p := range points {
			floats.Add(next[labels[i]], p)
			counts[labels[i]]++
		}
		for c := range next {
			if counts[c] > 0 {
				floats.Scale(1/float64(counts[c]), next[c])
			}
		}
		for c := range next {
			if counts[c] == 0 {
				relocate(points, centroids, labels, next, counts, c)
			}
		}

		shift := 0.0
		for c := range next {
			d := floats.Distance(next[c], centroids[c], 2)
			shift += d * d
		}
		centroids = next

		if !changed || shift <= tol {
			break
		}
	}

	// Final labels must agree with the returned centroids.
	assign(points, centroids, labels)
	inertia := 0.0
	for i, p := range points {
		d := floats.Distance(p, centroids[labels[i]], 2)
		inertia += d * d
	}

	return &Model{
		Centroids:  centroids,
		Labels:     labels,
		Inertia:    inertia,
		Iterations: iter,
	}
}

func assign(points, centroids [][]float64, labels []int) bool {
	changed := false
	for i, p := range points {
		c, _ := nearest(p, centroids)
		if labels[i] != c {
			labels[i] = c
			changed = true
		}
	}
	return changed
}

// relocate moves an empty cluster onto the point farthest from its current
// centroid, taking that point out of its old cluster.
func relocate(points, centroids [][]float64, labels []int, next [][]float64, counts []int, empty int) {
	far, farDist := -1, -1.0
	for i, p := range points {
		if counts[labels[i]] < 2 {
			continue
		}
		d := floats.Distance(p, centroids[labels[i]], 2)
		if d > farDist {
			far, farDist = i, d
		}
	}
	if far < 0 {
		copy(next[empty], centroids[empty])
		return
	}

	old := labels[far]
	floats.Scale(float64(counts[old]), next[old])
	floats.Sub(next[old], points[far])
	counts[old]--
	floats.Scale(1/float64(counts[old]), next[old])

	copy(next[empty], points[far])
	counts[empty] = 1
	labels[far] = empty
}

// seedPlusPlus is greedy k-means++: each new centre is the best of
// 2+ln(k) candidates sampled proportionally to squared distance.
func seedPlusPlus(points [][]float64, k int, rng *rand.Rand) [][]float64 {
	n := len(points)
	trials := 2 + int(math.Log(float64(k)))

	centroids := make([][]float64, 0, k)
	centroids = append(centroids, clone(points[rng.Intn(n)]))

	closest := make([]float64, n)
	for i, p := range points {
		d := floats.Distance(p, centroids[0], 2)
		closest[i] = d * d
	}

	for len(centroids) < k {
		total := floats.Sum(closest)

		bestIdx, bestPot := -1, math.Inf(1)
		var bestClosest []float64
		for t := 0; t < trials; t++ {
			cand := sample(closest, total, rng)
			pot := 0.0
			next := make([]float64, n)
			for i, p := range points {
				d := floats.Distance(p, points[cand], 2)
				next[i] = math.Min(closest[i], d*d)
				pot += next[i]
			}
			if pot < bestPot {
				bestIdx, bestPot, bestClosest = cand, pot, next
			}
		}

		centroids = append(centroids, clone(points[bestIdx]))
		closest = bestClosest
	}
	return centroids
}

func sample(weights []float64, total float64, rng *rand.Rand) int {
	if total <= 0 {
		return rng.Intn(len(weights))
	}
	target := rng.Float64() * total
	acc := 0.0
	for i, w := range weights {
		acc += w
		if acc > target {
			return i
		}
	}
	return len(weights) - 1
}

func nearest(p []float64, centroids [][]float64) (int, float64) {
	best, bestDist := 0, math.Inf(1)
	for c, centroid := range centroids {
		d := floats.Distance(p, centroid, 2)
		if d < bestDist {
			best, bestDist = c, d
		}
	}
	return best, bestDist
}

func meanVariance(points [][]float64) float64 {
	dims := len(points[0])
	col := make([]float64, len(points))
	sum := 0.0
	for j := 0; j < dims; j++ {
		for i, p := range points {
			col[i] = p[j]
		}
		_, std := stat.PopMeanStdDev(col, nil)
		sum += std * std
	}
	return sum / float64(dims)
}

func distinct(points [][]float64) int {
	seen := make(map[string]struct{}, len(points))
	var sb strings.Builder
	for _, p := range points {
		sb.Reset()
		for _, v := range p {
			sb.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
			sb.WriteByte(',')
		}
		seen[sb.String()] = struct{}{}
	}
	return len(seen)
}

func clone(p []float64) []float64 {
	return append([]float64(nil), p...)
}
