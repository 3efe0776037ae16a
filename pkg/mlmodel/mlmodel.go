// Package mlmodel evaluates pre-trained feature transformers and classifiers
// exported as JSON artifacts. Only inference is supported; artifacts are
// produced by an offline training job.
package mlmodel

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
)

// Transformer turns a raw input into a numeric feature vector.
type Transformer[In any] interface {
	Transform(in In) ([]float64, error)
}

// Predictor assigns an integer class label to a feature vector.
type Predictor interface {
	Predict(features []float64) (int, error)
}

// Artifact kinds.
const (
	KindCountVectorizer  = "count_vectorizer"
	KindStandardScaler   = "standard_scaler"
	KindLinearClassifier = "linear_classifier"
	KindKMeans           = "kmeans"
)

var (
	// ErrDimension is returned when an input vector doesn't match the
	// dimensionality the artifact was trained on.
	ErrDimension = errors.New("feature dimension mismatch")

	// ErrKind is returned when an artifact holds a different kind of model
	// than the caller asked for.
	ErrKind = errors.New("unexpected artifact kind")
)

// ErrNotFinite is returned for feature vectors containing NaN or infinities.
var ErrNotFinite = errors.New("feature vector is not finite")

func checkFinite(features []float64) error {
	for i, x := range features {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return fmt.Errorf("%w: feature %d is %v", ErrNotFinite, i, x)
		}
	}
	return nil
}

// envelope is the common header of every artifact file.
type envelope struct {
	Kind string `json:"kind"`
}

func readArtifact(path string) (string, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, fmt.Errorf("reading model artifact: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return "", nil, fmt.Errorf("parsing model artifact %s: %w", path, err)
	}
	return env.Kind, data, nil
}

func decode[T interface{ validate() error }](path string, data []byte, dst T) (T, error) {
	if err := json.Unmarshal(data, dst); err != nil {
		return dst, fmt.Errorf("parsing model artifact %s: %w", path, err)
	}
	if err := dst.validate(); err != nil {
		return dst, fmt.Errorf("invalid model artifact %s: %w", path, err)
	}
	return dst, nil
}

// LoadTextTransformer loads a text vectorizer artifact.
func LoadTextTransformer(path string) (Transformer[string], error) {
	kind, data, err := readArtifact(path)
	if err != nil {
		return nil, err
	}
	if kind != KindCountVectorizer {
		return nil, fmt.Errorf("%w: %s holds %q, want %q", ErrKind, path, kind, KindCountVectorizer)
	}

	v, err := decode(path, data, &CountVectorizer{})
	if err != nil {
		return nil, err
	}
	if err := v.compile(); err != nil {
		return nil, fmt.Errorf("invalid model artifact %s: %w", path, err)
	}
	return v, nil
}

// LoadVectorTransformer loads a numeric feature transformer artifact.
func LoadVectorTransformer(path string) (Transformer[[]float64], error) {
	kind, data, err := readArtifact(path)
	if err != nil {
		return nil, err
	}
	if kind != KindStandardScaler {
		return nil, fmt.Errorf("%w: %s holds %q, want %q", ErrKind, path, kind, KindStandardScaler)
	}
	return decode(path, data, &StandardScaler{})
}

// LoadPredictor loads a classifier artifact: a linear model or k-means.
func LoadPredictor(path string) (Predictor, error) {
	kind, data, err := readArtifact(path)
	if err != nil {
		return nil, err
	}

	switch kind {
	case KindLinearClassifier:
		return decode(path, data, &LinearClassifier{})
	case KindKMeans:
		return decode(path, data, &KMeans{})
	default:
		return nil, fmt.Errorf("%w: %s holds %q", ErrKind, path, kind)
	}
}
