package mlmodel

import (
	"errors"
	"fmt"
	"math"
)

// KMeans assigns a vector to its nearest cluster centroid. The label is the
// centroid's index.
type KMeans struct {
	Kind    string      `json:"kind"`
	Centers [][]float64 `json:"cluster_centers"`
}

var _ Predictor = (*KMeans)(nil)

func (k *KMeans) validate() error {
	if len(k.Centers) == 0 {
		return errors.New("no cluster centers")
	}
	width := len(k.Centers[0])
	for i, c := range k.Centers {
		if len(c) != width {
			return fmt.Errorf("%w: center %d has %d dimensions, want %d", ErrDimension, i, len(c), width)
		}
	}
	return nil
}

// Predict returns the index of the closest centroid by Euclidean distance.
// Ties go to the lower index.
func (k *KMeans) Predict(features []float64) (int, error) {
	if len(features) != len(k.Centers[0]) {
		return 0, fmt.Errorf("%w: got %d features, want %d", ErrDimension, len(features), len(k.Centers[0]))
	}

	if err := checkFinite(features); err != nil {
		return 0, err
	}

	best := 0
	bestDist := math.Inf(1)
	for i, c := range k.Centers {
		var d float64
		for j := range c {
			diff := features[j] - c[j]
			d += diff * diff
		}
		if d < bestDist {
			best, bestDist = i, d
		}
	}
	return best, nil
}
