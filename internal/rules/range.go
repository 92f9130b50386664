package rules

import (
	"math"
	"strconv"

	"github.com/roach88/quill/internal/random"
)

// NumberType selects integer or float generation for a range rule.
type NumberType string

const (
	RangeInt   NumberType = "int"
	RangeFloat NumberType = "float"
)

// MaxExactInt is the largest magnitude an int range bound may have, and the
// largest number of grid points a stepped range may span. Beyond it float64
// stops representing every integer.
const MaxExactInt = 1 << 53

// DefaultPrecision is the number of decimals a float range without a step is
// formatted with.
const DefaultPrecision = 2

// Range describes a numeric rule. Min is inclusive. Max is inclusive for int
// ranges and for stepped float ranges, whose grid includes it. An unstepped
// float range draws from [Min, Max) and reaches Max only through rounding.
type Range struct {
	Min  float64
	Max  float64
	Step float64 // zero means no granularity
	Type NumberType
	// Precision is the number of decimals a float is formatted with. Zero
	// derives it: the step's decimals when a step is set, otherwise
	// DefaultPrecision.
	Precision int
}

// RangeStore holds numeric range rules.
type RangeStore struct {
	keyed[Range]
}

// NewRangeStore returns an empty RangeStore.
func NewRangeStore() *RangeStore {
	return &RangeStore{keyed: newKeyed[Range]()}
}

// Kind implements Store.
func (s *RangeStore) Kind() Kind { return KindRange }

// Add defines key. An empty Type defaults to RangeInt.
func (s *RangeStore) Add(key string, r Range) error {
	if err := checkKey(key); err != nil {
		return err
	}
	if r.Type == "" {
		r.Type = RangeInt
	}
	if r.Type != RangeInt && r.Type != RangeFloat {
		return configErrorf(ErrCodeRangeBounds, key, "unknown range type %q", r.Type)
	}
	for _, f := range []float64{r.Min, r.Max, r.Step} {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return configErrorf(ErrCodeRangeBounds, key, "range bounds and step must be finite")
		}
	}
	if r.Min > r.Max {
		return configErrorf(ErrCodeRangeBounds, key, "min %v is greater than max %v", r.Min, r.Max)
	}
	if r.Precision < 0 {
		return configErrorf(ErrCodeRangeStep, key, "precision must not be negative, got %d", r.Precision)
	}
	if r.Step < 0 {
		return configErrorf(ErrCodeRangeStep, key, "step must not be negative, got %v", r.Step)
	}
	if r.Type == RangeInt {
		if !isWhole(r.Min) || !isWhole(r.Max) || !isWhole(r.Step) {
			return configErrorf(ErrCodeRangeStep, key, "int range needs whole-number min, max and step")
		}
		if math.Abs(r.Min) > MaxExactInt || math.Abs(r.Max) > MaxExactInt {
			return configErrorf(ErrCodeRangeBounds, key, "int range bounds must lie within ±%d", int64(MaxExactInt))
		}
	}
	if r.Step > 0 && (r.Max-r.Min)/r.Step > MaxExactInt {
		return configErrorf(ErrCodeRangeStep, key, "step %v leaves more than %d values between min and max", r.Step, int64(MaxExactInt))
	}
	s.put(key, r)
	return nil
}

// Range returns key's definition.
func (s *RangeStore) Range(key string) (Range, bool) {
	return s.get(key)
}

// Generate implements Store.
func (s *RangeStore) Generate(key string, _ Context, rnd *random.Source) (string, bool, error) {
	r, ok := s.get(key)
	if !ok {
		return "", false, nil
	}
	if r.Type == RangeInt {
		return strconv.FormatInt(drawInt(r, rnd), 10), true, nil
	}
	return strconv.FormatFloat(drawFloat(r, rnd), 'f', r.precision(), 64), true, nil
}

// References implements Store. Numbers never contain placeholders.
func (s *RangeStore) References(string) ([]string, bool) {
	return nil, true
}

func drawInt(r Range, rnd *random.Source) int64 {
	step := int64(r.Step)
	if step <= 0 {
		step = 1
	}
	lo, hi := int64(r.Min), int64(r.Max)
	slots := (hi-lo)/step + 1
	k := int64(rnd.IntN(0, int(slots)))
	return lo + k*step
}

func drawFloat(r Range, rnd *random.Source) float64 {
	if r.Step > 0 {
		slots := int(math.Floor((r.Max-r.Min)/r.Step+1e-9)) + 1
		return r.Min + float64(rnd.IntN(0, slots))*r.Step
	}
	// Float64 never returns 1, so Max is reached only through formatting.
	return r.Min + rnd.Float64()*(r.Max-r.Min)
}

func (r Range) precision() int {
	if r.Precision > 0 {
		return r.Precision
	}
	if r.Step > 0 {
		return decimals(r.Step)
	}
	return DefaultPrecision
}

func isWhole(f float64) bool {
	return f == math.Trunc(f)
}

// decimals returns how many fractional digits the shortest decimal form of f has.
func decimals(f float64) int {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	for i := 0; i < len(s); i++ {
		if s[i] == '.' {
			return len(s) - i - 1
		}
	}
	return 0
}
