package mlmodel

import (
	"errors"
	"fmt"
)

// StandardScaler centers and scales features with statistics learned at
// training time.
type StandardScaler struct {
	Kind     string    `json:"kind"`
	Mean     []float64 `json:"mean"`
	Scale    []float64 `json:"scale"`
	WithMean *bool     `json:"with_mean,omitempty"`
	WithStd  *bool     `json:"with_std,omitempty"`
}

var _ Transformer[[]float64] = (*StandardScaler)(nil)

func (s *StandardScaler) validate() error {
	if len(s.Mean) == 0 && len(s.Scale) == 0 {
		return errors.New("no scaling statistics")
	}
	if len(s.Mean) > 0 && len(s.Scale) > 0 && len(s.Mean) != len(s.Scale) {
		return fmt.Errorf("%w: %d means for %d scales", ErrDimension, len(s.Mean), len(s.Scale))
	}
	return nil
}

func (s *StandardScaler) width() int {
	if len(s.Mean) > 0 {
		return len(s.Mean)
	}
	return len(s.Scale)
}

// Transform returns (x - mean) / scale per feature. Zero scales, which come
// from constant training features, leave the centered value unchanged.
func (s *StandardScaler) Transform(x []float64) ([]float64, error) {
	if len(x) != s.width() {
		return nil, fmt.Errorf("%w: got %d features, want %d", ErrDimension, len(x), s.width())
	}

	center := s.WithMean == nil || *s.WithMean
	scale := s.WithStd == nil || *s.WithStd

	out := make([]float64, len(x))
	for i, v := range x {
		if center && len(s.Mean) > 0 {
			v -= s.Mean[i]
		}
		if scale && len(s.Scale) > 0 && s.Scale[i] != 0 {
			v /= s.Scale[i]
		}
		out[i] = v
	}
	return out, nil
}
