package mlmodel

import (
	"errors"
	"fmt"
)

// LinearClassifier is a fitted linear decision function, as produced by
// logistic regression, linear SVMs and similar models.
type LinearClassifier struct {
	Kind      string      `json:"kind"`
	Classes   []int       `json:"classes"`
	Coef      [][]float64 `json:"coef"`
	Intercept []float64   `json:"intercept"`
}

var _ Predictor = (*LinearClassifier)(nil)

func (c *LinearClassifier) validate() error {
	if len(c.Coef) == 0 {
		return errors.New("no coefficients")
	}
	if len(c.Intercept) != len(c.Coef) {
		return fmt.Errorf("%d intercepts for %d coefficient rows", len(c.Intercept), len(c.Coef))
	}

	switch {
	case len(c.Coef) == 1 && len(c.Classes) != 2:
		return fmt.Errorf("binary model needs 2 classes, has %d", len(c.Classes))
	case len(c.Coef) > 1 && len(c.Classes) != len(c.Coef):
		return fmt.Errorf("%d classes for %d coefficient rows", len(c.Classes), len(c.Coef))
	}

	width := len(c.Coef[0])
	for i, row := range c.Coef {
		if len(row) != width {
			return fmt.Errorf("%w: coefficient row %d has %d weights, want %d", ErrDimension, i, len(row), width)
		}
	}
	return nil
}

// Predict returns the class with the highest decision score. For binary
// models the positive class wins when the score is above zero.
func (c *LinearClassifier) Predict(features []float64) (int, error) {
	if len(features) != len(c.Coef[0]) {
		return 0, fmt.Errorf("%w: got %d features, want %d", ErrDimension, len(features), len(c.Coef[0]))
	}

	if err := checkFinite(features); err != nil {
		return 0, err
	}

	if len(c.Coef) == 1 {
		if dot(c.Coef[0], features)+c.Intercept[0] > 0 {
			return c.Classes[1], nil
		}
		return c.Classes[0], nil
	}

	best := 0
	bestScore := dot(c.Coef[0], features) + c.Intercept[0]
	for i := 1; i < len(c.Coef); i++ {
		if score := dot(c.Coef[i], features) + c.Intercept[i]; score > bestScore {
			best, bestScore = i, score
		}
	}
	return c.Classes[best], nil
}

func dot(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
