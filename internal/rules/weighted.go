package rules

import (
	"math"

	"github.com/roach88/quill/internal/random"
)

// WeightTolerance is how far a weighted rule's weights may drift from 1.0.
const WeightTolerance = 1e-6

type weightedRule struct {
	values     []string
	weights    []float64
	cumulative []float64
}

// WeightedStore holds rules drawn by cumulative weight.
type WeightedStore struct {
	keyed[weightedRule]
}

// NewWeightedStore returns an empty WeightedStore.
func NewWeightedStore() *WeightedStore {
	return &WeightedStore{keyed: newKeyed[weightedRule]()}
}

// Kind implements Store.
func (s *WeightedStore) Kind() Kind { return KindWeighted }

// Add defines key. values and weights must be the same non-zero length, every
// weight must be positive and finite, and the weights must sum to 1.0 within
// WeightTolerance.
func (s *WeightedStore) Add(key string, values []string, weights []float64) error {
	if err := checkKey(key); err != nil {
		return err
	}
	if len(values) == 0 {
		return configErrorf(ErrCodeEmptyValues, key, "weighted rule requires at least one value")
	}
	if len(values) != len(weights) {
		return configErrorf(ErrCodeWeightLength, key,
			"values and weights differ in length (%d != %d)", len(values), len(weights))
	}
	sum := 0.0
	for i, w := range weights {
		if w <= 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return configErrorf(ErrCodeWeightValue, key, "weight %d must be positive, got %v", i, w)
		}
		sum += w
	}
	if math.Abs(sum-1.0) > WeightTolerance {
		return configErrorf(ErrCodeWeightSum, key, "weights must sum to 1.0, got %g", sum)
	}
	s.put(key, weightedRule{
		values:     append([]string(nil), values...),
		weights:    append([]float64(nil), weights...),
		cumulative: random.Cumulative(weights),
	})
	return nil
}

// Entries returns copies of key's values and weights.
func (s *WeightedStore) Entries(key string) ([]string, []float64, bool) {
	r, ok := s.get(key)
	if !ok {
		return nil, nil, false
	}
	return append([]string(nil), r.values...), append([]float64(nil), r.weights...), true
}

// Generate implements Store.
func (s *WeightedStore) Generate(key string, _ Context, rnd *random.Source) (string, bool, error) {
	r, ok := s.get(key)
	if !ok {
		return "", false, nil
	}
	v, err := rnd.WeightedChoice(r.values, r.cumulative)
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

// References implements Store. Every candidate is known up front.
func (s *WeightedStore) References(key string) ([]string, bool) {
	r, ok := s.get(key)
	if !ok {
		return nil, true
	}
	return referencedNames(r.values...), true
}
