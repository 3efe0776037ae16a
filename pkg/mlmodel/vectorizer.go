package mlmodel

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
)

// defaultTokenPattern selects runs of two or more word characters. It is the
// RE2 spelling of the conventional "(?u)\b\w\w+\b" word tokenizer.
const defaultTokenPattern = `[\p{L}\p{N}_]{2,}`

var pythonTokenPatterns = map[string]string{
	`(?u)\b\w\w+\b`: defaultTokenPattern,
	`\b\w\w+\b`:     defaultTokenPattern,
}

// CountVectorizer maps text to term counts over a fixed vocabulary. With IDF
// weights it produces TF-IDF vectors.
type CountVectorizer struct {
	Kind         string         `json:"kind"`
	Vocabulary   map[string]int `json:"vocabulary"`
	Lowercase    *bool          `json:"lowercase,omitempty"`
	TokenPattern string         `json:"token_pattern,omitempty"`
	NgramRange   [2]int         `json:"ngram_range,omitempty"`
	StopWords    []string       `json:"stop_words,omitempty"`
	Binary       bool           `json:"binary,omitempty"`
	IDF          []float64      `json:"idf,omitempty"`
	Norm         string         `json:"norm,omitempty"`

	re   *regexp.Regexp
	stop map[string]struct{}
}

var _ Transformer[string] = (*CountVectorizer)(nil)

// NewCountVectorizer builds a unigram, lowercasing vectorizer over vocab.
func NewCountVectorizer(vocab map[string]int) (*CountVectorizer, error) {
	v := &CountVectorizer{Kind: KindCountVectorizer, Vocabulary: vocab}
	if err := v.validate(); err != nil {
		return nil, err
	}
	if err := v.compile(); err != nil {
		return nil, err
	}
	return v, nil
}

func (v *CountVectorizer) validate() error {
	if len(v.Vocabulary) == 0 {
		return errors.New("empty vocabulary")
	}

	seen := make([]bool, len(v.Vocabulary))
	for term, idx := range v.Vocabulary {
		if idx < 0 || idx >= len(v.Vocabulary) {
			return fmt.Errorf("vocabulary index %d of %q out of range", idx, term)
		}
		if seen[idx] {
			return fmt.Errorf("vocabulary index %d used twice", idx)
		}
		seen[idx] = true
	}

	if v.IDF != nil && len(v.IDF) != len(v.Vocabulary) {
		return fmt.Errorf("%w: %d idf weights for %d terms", ErrDimension, len(v.IDF), len(v.Vocabulary))
	}

	switch v.Norm {
	case "", "l1", "l2":
	default:
		return fmt.Errorf("unsupported norm %q", v.Norm)
	}

	lo, hi := v.ngrams()
	if lo < 1 || hi < lo {
		return fmt.Errorf("invalid ngram range [%d, %d]", lo, hi)
	}
	return nil
}

func (v *CountVectorizer) compile() error {
	pattern := v.TokenPattern
	if pattern == "" {
		pattern = defaultTokenPattern
	}
	if translated, ok := pythonTokenPatterns[pattern]; ok {
		pattern = translated
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return fmt.Errorf("compiling token pattern: %w", err)
	}
	v.re = re

	v.stop = make(map[string]struct{}, len(v.StopWords))
	for _, w := range v.StopWords {
		v.stop[v.normalize(w)] = struct{}{}
	}
	return nil
}

func (v *CountVectorizer) ngrams() (int, int) {
	if v.NgramRange == [2]int{} {
		return 1, 1
	}
	return v.NgramRange[0], v.NgramRange[1]
}

func (v *CountVectorizer) normalize(s string) string {
	if v.Lowercase == nil || *v.Lowercase {
		return strings.ToLower(s)
	}
	return s
}

// Tokens splits text into the terms the vectorizer counts.
func (v *CountVectorizer) Tokens(text string) []string {
	var words []string
	for _, w := range v.re.FindAllString(v.normalize(text), -1) {
		if _, skip := v.stop[w]; skip {
			continue
		}
		words = append(words, w)
	}

	lo, hi := v.ngrams()
	if lo == 1 && hi == 1 {
		return words
	}

	var terms []string
	for n := lo; n <= hi; n++ {
		for i := 0; i+n <= len(words); i++ {
			terms = append(terms, strings.Join(words[i:i+n], " "))
		}
	}
	return terms
}

// Transform returns the term vector of text. Terms outside the vocabulary
// are ignored.
func (v *CountVectorizer) Transform(text string) ([]float64, error) {
	if v.re == nil {
		if err := v.compile(); err != nil {
			return nil, err
		}
	}

	vec := make([]float64, len(v.Vocabulary))
	for _, term := range v.Tokens(text) {
		idx, ok := v.Vocabulary[term]
		if !ok {
			continue
		}
		if v.Binary {
			vec[idx] = 1
		} else {
			vec[idx]++
		}
	}

	for i, w := range v.IDF {
		vec[i] *= w
	}

	switch v.Norm {
	case "l2":
		var sum float64
		for _, x := range vec {
			sum += x * x
		}
		scaleBy(vec, math.Sqrt(sum))
	case "l1":
		var sum float64
		for _, x := range vec {
			sum += math.Abs(x)
		}
		scaleBy(vec, sum)
	}

	return vec, nil
}

func scaleBy(vec []float64, norm float64) {
	if norm == 0 {
		return
	}
	for i := range vec {
		vec[i] /= norm
	}
}
