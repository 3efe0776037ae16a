package mlmodel_test

import (
	"math"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/tubestar/pkg/mlmodel"
)

func writeArtifact(dir, name, body string) string {
	path := filepath.Join(dir, name)
	Expect(os.WriteFile(path, []byte(body), 0o600)).To(Succeed())
	return path
}

var _ = Describe("CountVectorizer", func() {
	It("counts vocabulary terms case-insensitively", func() {
		v, err := mlmodel.NewCountVectorizer(map[string]int{"great": 0, "video": 1, "bad": 2})
		Expect(err).NotTo(HaveOccurred())

		vec, err := v.Transform("Great video, GREAT editing. A bad intro?")
		Expect(err).NotTo(HaveOccurred())
		Expect(vec).To(Equal([]float64{2, 1, 1}))
	})

	It("ignores single-character tokens", func() {
		v, err := mlmodel.NewCountVectorizer(map[string]int{"a": 0, "ab": 1})
		Expect(err).NotTo(HaveOccurred())

		vec, err := v.Transform("a ab a")
		Expect(err).NotTo(HaveOccurred())
		Expect(vec).To(Equal([]float64{0, 1}))
	})

	It("tokenizes non-ASCII words", func() {
		v, err := mlmodel.NewCountVectorizer(map[string]int{"geweldig": 0, "café": 1})
		Expect(err).NotTo(HaveOccurred())

		vec, err := v.Transform("Geweldig! café")
		Expect(err).NotTo(HaveOccurred())
		Expect(vec).To(Equal([]float64{1, 1}))
	})

	It("rejects a vocabulary with gaps", func() {
		_, err := mlmodel.NewCountVectorizer(map[string]int{"a": 0, "b": 5})
		Expect(err).To(HaveOccurred())
	})

	It("loads a TF-IDF artifact with bigrams", func() {
		path := writeArtifact(GinkgoT().TempDir(), "vec.json", `{
  "kind": "count_vectorizer",
  "vocabulary": {"good": 0, "good video": 1},
  "token_pattern": "(?u)\\b\\w\\w+\\b",
  "ngram_range": [1, 2],
  "idf": [1.0, 2.0],
  "norm": "l2"
}`)
		t, err := mlmodel.LoadTextTransformer(path)
		Expect(err).NotTo(HaveOccurred())

		vec, err := t.Transform("good video")
		Expect(err).NotTo(HaveOccurred())
		Expect(vec).To(HaveLen(2))
		Expect(vec[0]).To(BeNumerically("~", 1/math.Sqrt(5), 1e-9))
		Expect(vec[1]).To(BeNumerically("~", 2/math.Sqrt(5), 1e-9))
	})

	It("drops stop words before counting", func() {
		path := writeArtifact(GinkgoT().TempDir(), "vec.json", `{
  "kind": "count_vectorizer",
  "vocabulary": {"the": 0, "show": 1},
  "stop_words": ["The"],
  "binary": true
}`)
		t, err := mlmodel.LoadTextTransformer(path)
		Expect(err).NotTo(HaveOccurred())

		vec, err := t.Transform("the show the show")
		Expect(err).NotTo(HaveOccurred())
		Expect(vec).To(Equal([]float64{0, 1}))
	})
})

var _ = Describe("LinearClassifier", func() {
	It("picks the positive class for a positive binary score", func() {
		c := &mlmodel.LinearClassifier{Classes: []int{0, 1}, Coef: [][]float64{{1, -1}}, Intercept: []float64{0}}

		label, err := c.Predict([]float64{3, 1})
		Expect(err).NotTo(HaveOccurred())
		Expect(label).To(Equal(1))

		label, err = c.Predict([]float64{1, 3})
		Expect(err).NotTo(HaveOccurred())
		Expect(label).To(Equal(0))
	})

	It("takes the argmax for multi-class models", func() {
		path := writeArtifact(GinkgoT().TempDir(), "clf.json", `{
  "kind": "linear_classifier",
  "classes": [7, 8, 9],
  "coef": [[1, 0], [0, 1], [-1, -1]],
  "intercept": [0, 0, 5]
}`)
		p, err := mlmodel.LoadPredictor(path)
		Expect(err).NotTo(HaveOccurred())

		label, err := p.Predict([]float64{10, 1})
		Expect(err).NotTo(HaveOccurred())
		Expect(label).To(Equal(7))

		label, err = p.Predict([]float64{0, 0})
		Expect(err).NotTo(HaveOccurred())
		Expect(label).To(Equal(9))
	})

	It("rejects vectors of the wrong width", func() {
		c := &mlmodel.LinearClassifier{Classes: []int{0, 1}, Coef: [][]float64{{1, -1}}, Intercept: []float64{0}}
		_, err := c.Predict([]float64{1})
		Expect(err).To(MatchError(mlmodel.ErrDimension))
	})

	It("rejects NaN features", func() {
		c := &mlmodel.LinearClassifier{Classes: []int{0, 1}, Coef: [][]float64{{1}}, Intercept: []float64{0}}
		_, err := c.Predict([]float64{math.NaN()})
		Expect(err).To(MatchError(mlmodel.ErrNotFinite))
	})

	It("rejects an inconsistent artifact", func() {
		path := writeArtifact(GinkgoT().TempDir(), "clf.json", `{
  "kind": "linear_classifier",
  "classes": [0],
  "coef": [[1, 2]],
  "intercept": [0]
}`)
		_, err := mlmodel.LoadPredictor(path)
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("StandardScaler", func() {
	It("centers and scales each feature", func() {
		s := &mlmodel.StandardScaler{Mean: []float64{10, 0}, Scale: []float64{2, 0}}
		out, err := s.Transform([]float64{14, 5})
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal([]float64{2, 5}))
	})

	It("honors with_mean false", func() {
		path := writeArtifact(GinkgoT().TempDir(), "scaler.json", `{
  "kind": "standard_scaler",
  "mean": [10],
  "scale": [2],
  "with_mean": false
}`)
		t, err := mlmodel.LoadVectorTransformer(path)
		Expect(err).NotTo(HaveOccurred())

		out, err := t.Transform([]float64{14})
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal([]float64{7}))
	})

	It("rejects vectors of the wrong width", func() {
		s := &mlmodel.StandardScaler{Mean: []float64{1, 2, 3, 4}, Scale: []float64{1, 1, 1, 1}}
		_, err := s.Transform([]float64{1, 2})
		Expect(err).To(MatchError(mlmodel.ErrDimension))
	})
})

var _ = Describe("KMeans", func() {
	It("returns the index of the nearest centroid", func() {
		k := &mlmodel.KMeans{Centers: [][]float64{{0, 0}, {10, 10}}}

		label, err := k.Predict([]float64{1, 2})
		Expect(err).NotTo(HaveOccurred())
		Expect(label).To(Equal(0))

		label, err = k.Predict([]float64{8, 9})
		Expect(err).NotTo(HaveOccurred())
		Expect(label).To(Equal(1))
	})

	It("loads from an artifact", func() {
		path := writeArtifact(GinkgoT().TempDir(), "kmeans.json", `{
  "kind": "kmeans",
  "cluster_centers": [[1, 1, 1, 1], [-1, -1, -1, -1]]
}`)
		p, err := mlmodel.LoadPredictor(path)
		Expect(err).NotTo(HaveOccurred())

		label, err := p.Predict([]float64{-2, -1, -1, -3})
		Expect(err).NotTo(HaveOccurred())
		Expect(label).To(Equal(1))
	})
})

var _ = Describe("Loading", func() {
	It("refuses an artifact of another kind", func() {
		path := writeArtifact(GinkgoT().TempDir(), "kmeans.json", `{"kind": "kmeans", "cluster_centers": [[1]]}`)
		_, err := mlmodel.LoadVectorTransformer(path)
		Expect(err).To(MatchError(mlmodel.ErrKind))
	})

	It("reports a missing file", func() {
		_, err := mlmodel.LoadPredictor(filepath.Join(GinkgoT().TempDir(), "missing.json"))
		Expect(err).To(MatchError(os.ErrNotExist))
	})
})
