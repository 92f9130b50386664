package rules

import (
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/quill/internal/random"
)

var emptyCtx = NewContext(nil)

// =============================================================================
// Static
// =============================================================================

func TestStaticStore_GenerateReturnsDeclaredCandidate(t *testing.T) {
	s := NewStaticStore()
	candidates := []string{"red", "green", "blue"}
	require.NoError(t, s.Add("color", candidates))

	rnd := random.NewSeeded(3)
	for i := 0; i < 500; i++ {
		v, ok, err := s.Generate("color", emptyCtx, rnd)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Contains(t, candidates, v)
	}
}

func TestStaticStore_EmptyRule(t *testing.T) {
	s := NewStaticStore()
	require.NoError(t, s.Add("nothing", nil))
	require.NoError(t, s.Add("blank", []string{"", "   "}))
	require.NoError(t, s.Add("some", []string{"", "x"}))

	assert.True(t, s.IsEmpty("nothing"))
	assert.True(t, s.IsEmpty("blank"))
	assert.False(t, s.IsEmpty("some"))
	assert.False(t, s.IsEmpty("undefined"))

	_, ok, err := s.Generate("nothing", emptyCtx, random.NewSeeded(1))
	require.NoError(t, err)
	assert.False(t, ok, "a rule with no candidates generates nothing")
}

func TestStaticStore_AddCopiesInput(t *testing.T) {
	s := NewStaticStore()
	values := []string{"a"}
	require.NoError(t, s.Add("k", values))
	values[0] = "mutated"

	got, ok := s.Values("k")
	require.True(t, ok)
	assert.Equal(t, []string{"a"}, got)
}

func TestStaticStore_EmptyKeyRejected(t *testing.T) {
	err := NewStaticStore().Add("", []string{"x"})
	var ce *ConfigError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, ErrCodeEmptyKey, ce.Code)
}

func TestStaticStore_KeysSizeRemoveClear(t *testing.T) {
	s := NewStaticStore()
	require.NoError(t, s.Add("b", []string{"1"}))
	require.NoError(t, s.Add("a", []string{"2"}))

	assert.Equal(t, []string{"a", "b"}, s.Keys())
	assert.Equal(t, 2, s.Size())

	assert.True(t, s.Remove("a"))
	assert.False(t, s.Remove("a"))
	assert.False(t, s.Has("a"))

	s.Clear()
	assert.Equal(t, 0, s.Size())
}

func TestStaticStore_References(t *testing.T) {
	s := NewStaticStore()
	require.NoError(t, s.Add("k", []string{"%a% and %b%", "%@a% %c%"}))

	refs, exhaustive := s.References("k")
	assert.True(t, exhaustive)
	assert.Equal(t, []string{"a", "b", "@a", "c"}, refs)
}

// =============================================================================
// Function
// =============================================================================

func TestFunctionStore_InvokedEveryCall(t *testing.T) {
	s := NewFunctionStore()
	calls := 0
	require.NoError(t, s.Add("counter", func(Context) ([]string, error) {
		calls++
		return []string{strconv.Itoa(calls)}, nil
	}))

	rnd := random.NewSeeded(1)
	v1, _, err := s.Generate("counter", emptyCtx, rnd)
	require.NoError(t, err)
	v2, _, err := s.Generate("counter", emptyCtx, rnd)
	require.NoError(t, err)

	assert.Equal(t, "1", v1)
	assert.Equal(t, "2", v2)
}

func TestFunctionStore_SeesContext(t *testing.T) {
	s := NewFunctionStore()
	require.NoError(t, s.Add("echo", func(ctx Context) ([]string, error) {
		name, _ := ctx.Get("name")
		return []string{"hello " + name}, nil
	}))

	v, ok, err := s.Generate("echo", NewContext(map[string]string{"name": "Ava"}), random.NewSeeded(1))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "hello Ava", v)
}

func TestFunctionStore_Failures(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name string
		fn   GeneratorFunc
		want string
	}{
		{"error", func(Context) ([]string, error) { return nil, boom }, "boom"},
		{"empty", func(Context) ([]string, error) { return []string{}, nil }, "no candidates"},
		{"panic", func(Context) ([]string, error) { panic("kaput") }, "panic: kaput"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewFunctionStore()
			require.NoError(t, s.Add("f", tt.fn))

			_, ok, err := s.Generate("f", emptyCtx, random.NewSeeded(1))
			assert.False(t, ok)
			require.Error(t, err)
			assert.True(t, IsFunctionError(err))
			assert.Contains(t, err.Error(), tt.want)

			var fe *FunctionError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, "f", fe.Rule)
		})
	}
}

func TestFunctionStore_ErrorUnwraps(t *testing.T) {
	sentinel := errors.New("upstream unavailable")
	s := NewFunctionStore()
	require.NoError(t, s.Add("f", func(Context) ([]string, error) { return nil, sentinel }))

	_, _, err := s.Generate("f", emptyCtx, random.NewSeeded(1))
	assert.ErrorIs(t, err, sentinel)
}

func TestFunctionStore_NilCallbackRejected(t *testing.T) {
	err := NewFunctionStore().Add("f", nil)
	var ce *ConfigError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, ErrCodeNilFunction, ce.Code)
}

func TestFunctionStore_ReferencesOpaque(t *testing.T) {
	s := NewFunctionStore()
	require.NoError(t, s.Add("f", func(Context) ([]string, error) { return []string{"%x%"}, nil }))

	refs, exhaustive := s.References("f")
	assert.Nil(t, refs)
	assert.False(t, exhaustive)

	sample, err := s.Sample("f")
	require.NoError(t, err)
	assert.Equal(t, []string{"%x%"}, sample)
}

// =============================================================================
// Weighted
// =============================================================================

func TestWeightedStore_Validation(t *testing.T) {
	tests := []struct {
		name    string
		values  []string
		weights []float64
		code    string
	}{
		{"sum too low", []string{"a", "b"}, []float64{0.5, 0.4}, ErrCodeWeightSum},
		{"sum too high", []string{"a", "b"}, []float64{0.7, 0.4}, ErrCodeWeightSum},
		{"length mismatch", []string{"a", "b", "c"}, []float64{0.5, 0.5}, ErrCodeWeightLength},
		{"zero weight", []string{"a", "b"}, []float64{1.0, 0}, ErrCodeWeightValue},
		{"negative weight", []string{"a", "b"}, []float64{1.5, -0.5}, ErrCodeWeightValue},
		{"no values", nil, nil, ErrCodeEmptyValues},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewWeightedStore().Add("w", tt.values, tt.weights)
			var ce *ConfigError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.code, ce.Code)
			assert.Equal(t, "w", ce.Rule)
		})
	}
}

func TestWeightedStore_AcceptsExactSum(t *testing.T) {
	s := NewWeightedStore()
	require.NoError(t, s.Add("w", []string{"a", "b", "c"}, []float64{0.5, 0.3, 0.2}))
	require.NoError(t, s.Add("thirds", []string{"a", "b", "c"}, []float64{1.0 / 3, 1.0 / 3, 1.0 / 3}))
}

func TestWeightedStore_FrequencyConverges(t *testing.T) {
	s := NewWeightedStore()
	values := []string{"sun", "rain", "snow"}
	weights := []float64{0.6, 0.3, 0.1}
	require.NoError(t, s.Add("weather", values, weights))

	rnd := random.NewSeeded(77)
	const n = 30000
	counts := map[string]int{}
	for i := 0; i < n; i++ {
		v, ok, err := s.Generate("weather", emptyCtx, rnd)
		require.NoError(t, err)
		require.True(t, ok)
		counts[v]++
	}
	for i, v := range values {
		assert.InDelta(t, weights[i], float64(counts[v])/n, 0.02, "frequency of %s", v)
	}
}

// =============================================================================
// Conditional
// =============================================================================

func TestConditionalStore_FirstMatchWins(t *testing.T) {
	s := NewConditionalStore()
	require.NoError(t, s.Add("reply", []Case{
		When(Equals("mood", "happy"), "great"),
		When(Generated("mood"), "fine"),
		Default("who knows"),
	}))

	rnd := random.NewSeeded(1)
	tests := []struct {
		ctx  map[string]string
		want string
	}{
		{map[string]string{"mood": "happy"}, "great"},
		{map[string]string{"mood": "sad"}, "fine"},
		{nil, "who knows"},
	}
	for _, tt := range tests {
		v, ok, err := s.Generate("reply", NewContext(tt.ctx), rnd)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, tt.want, v)
	}
}

func TestConditionalStore_DefaultPositionDoesNotShadow(t *testing.T) {
	s := NewConditionalStore()
	require.NoError(t, s.Add("k", []Case{
		Default("fallback"),
		When(Equals("x", "1"), "one"),
	}))

	v, _, err := s.Generate("k", NewContext(map[string]string{"x": "1"}), nil)
	require.NoError(t, err)
	assert.Equal(t, "one", v)
}

func TestConditionalStore_NoMatchNoDefault(t *testing.T) {
	s := NewConditionalStore()
	require.NoError(t, s.Add("k", []Case{When(Equals("x", "1"), "one")}))

	_, ok, err := s.Generate("k", emptyCtx, nil)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestConditionalStore_Validation(t *testing.T) {
	s := NewConditionalStore()

	err := s.Add("none", nil)
	var ce *ConfigError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, ErrCodeConditionalCases, ce.Code)

	err = s.Add("two-defaults", []Case{Default("a"), Default("b")})
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, ErrCodeConditionalCases, ce.Code)
}

// =============================================================================
// Sequential
// =============================================================================

func TestSequentialStore_CyclingNthDraw(t *testing.T) {
	s := NewSequentialStore()
	values := []string{"mon", "tue", "wed"}
	require.NoError(t, s.Add("day", values, true))

	for n := 0; n < 10; n++ {
		v, ok, err := s.Generate("day", emptyCtx, nil)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, values[n%len(values)], v, "draw %d", n)
	}
}

func TestSequentialStore_NonCyclingHoldsLast(t *testing.T) {
	s := NewSequentialStore()
	require.NoError(t, s.Add("step", []string{"one", "two"}, false))

	var got []string
	for i := 0; i < 5; i++ {
		v, ok, err := s.Generate("step", emptyCtx, nil)
		require.NoError(t, err)
		require.True(t, ok)
		got = append(got, v)
	}
	assert.Equal(t, []string{"one", "two", "two", "two", "two"}, got)
}

func TestSequentialStore_Reset(t *testing.T) {
	for _, cycle := range []bool{true, false} {
		s := NewSequentialStore()
		require.NoError(t, s.Add("k", []string{"a", "b", "c"}, cycle))

		for i := 0; i < 4; i++ {
			_, _, err := s.Generate("k", emptyCtx, nil)
			require.NoError(t, err)
		}
		assert.True(t, s.Reset("k"))

		v, _, err := s.Generate("k", emptyCtx, nil)
		require.NoError(t, err)
		assert.Equal(t, "a", v, "cycle=%v", cycle)
	}

	assert.False(t, NewSequentialStore().Reset("missing"))
}

func TestSequentialStore_Position(t *testing.T) {
	s := NewSequentialStore()
	require.NoError(t, s.Add("k", []string{"a", "b"}, true))

	_, _, _ = s.Generate("k", emptyCtx, nil)
	pos, ok := s.Position("k")
	require.True(t, ok)
	assert.Equal(t, 1, pos)

	_, _, _ = s.Generate("k", emptyCtx, nil)
	pos, _ = s.Position("k")
	assert.Equal(t, 0, pos, "cycling cursor wraps")
}

func TestSequentialStore_EmptyRejected(t *testing.T) {
	err := NewSequentialStore().Add("k", nil, true)
	var ce *ConfigError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, ErrCodeEmptyValues, ce.Code)
}

// =============================================================================
// Range
// =============================================================================

func TestRangeStore_IntInclusive(t *testing.T) {
	s := NewRangeStore()
	require.NoError(t, s.Add("die", Range{Min: 1, Max: 6}))

	rnd := random.NewSeeded(5)
	seen := map[int]bool{}
	for i := 0; i < 2000; i++ {
		v, ok, err := s.Generate("die", emptyCtx, rnd)
		require.NoError(t, err)
		require.True(t, ok)
		n, err := strconv.Atoi(v)
		require.NoError(t, err)
		require.GreaterOrEqual(t, n, 1)
		require.LessOrEqual(t, n, 6)
		seen[n] = true
	}
	assert.Len(t, seen, 6, "both bounds are reachable")
}

func TestRangeStore_IntStep(t *testing.T) {
	s := NewRangeStore()
	require.NoError(t, s.Add("tens", Range{Min: 10, Max: 50, Step: 10, Type: RangeInt}))

	rnd := random.NewSeeded(9)
	for i := 0; i < 500; i++ {
		v, _, err := s.Generate("tens", emptyCtx, rnd)
		require.NoError(t, err)
		n, err := strconv.Atoi(v)
		require.NoError(t, err)
		assert.Zero(t, n%10)
		assert.GreaterOrEqual(t, n, 10)
		assert.LessOrEqual(t, n, 50)
	}
}

func TestRangeStore_Float(t *testing.T) {
	s := NewRangeStore()
	require.NoError(t, s.Add("temp", Range{Min: -1.5, Max: 2.5, Type: RangeFloat}))
	require.NoError(t, s.Add("quarter", Range{Min: 0, Max: 1, Step: 0.25, Type: RangeFloat}))
	require.NoError(t, s.Add("precise", Range{Min: 0, Max: 1, Type: RangeFloat, Precision: 4}))

	rnd := random.NewSeeded(13)
	for i := 0; i < 500; i++ {
		v, _, err := s.Generate("temp", emptyCtx, rnd)
		require.NoError(t, err)
		f, err := strconv.ParseFloat(v, 64)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, f, -1.5)
		assert.LessOrEqual(t, f, 2.5)
		assert.Regexp(t, `^-?\d+\.\d{2}$`, v)

		q, _, err := s.Generate("quarter", emptyCtx, rnd)
		require.NoError(t, err)
		assert.Contains(t, []string{"0.00", "0.25", "0.50", "0.75", "1.00"}, q)

		p, _, err := s.Generate("precise", emptyCtx, rnd)
		require.NoError(t, err)
		assert.Regexp(t, `^0\.\d{4}$|^1\.0000$`, p)
	}
}

func TestRangeStore_Validation(t *testing.T) {
	tests := []struct {
		name string
		r    Range
		code string
	}{
		{"min above max", Range{Min: 5, Max: 1}, ErrCodeRangeBounds},
		{"negative step", Range{Min: 0, Max: 5, Step: -1}, ErrCodeRangeStep},
		{"fractional int", Range{Min: 0.5, Max: 5}, ErrCodeRangeStep},
		{"unknown type", Range{Min: 0, Max: 1, Type: "complex"}, ErrCodeRangeBounds},
		{"negative precision", Range{Min: 0, Max: 1, Type: RangeFloat, Precision: -1}, ErrCodeRangeStep},
		{"int bounds past 2^53", Range{Min: -9e18, Max: 9e18}, ErrCodeRangeBounds},
		{"int max just past 2^53", Range{Min: 0, Max: MaxExactInt + 2}, ErrCodeRangeBounds},
		{"too many steps", Range{Min: 0, Max: 1e6, Step: 1e-12, Type: RangeFloat}, ErrCodeRangeStep},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewRangeStore().Add("r", tt.r)
			var ce *ConfigError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.code, ce.Code)
		})
	}
}

func TestRangeStore_WidestIntRangeStaysRandom(t *testing.T) {
	s := NewRangeStore()
	require.NoError(t, s.Add("wide", Range{Min: -MaxExactInt, Max: MaxExactInt}))

	rnd := random.NewSeeded(3)
	seen := map[int64]bool{}
	for i := 0; i < 20; i++ {
		v, _, err := s.Generate("wide", emptyCtx, rnd)
		require.NoError(t, err)
		n, err := strconv.ParseInt(v, 10, 64)
		require.NoError(t, err)
		require.GreaterOrEqual(t, n, int64(-MaxExactInt))
		require.LessOrEqual(t, n, int64(MaxExactInt))
		seen[n] = true
	}
	assert.Greater(t, len(seen), 1, "draws must not collapse onto the minimum")
}

func TestRangeStore_SinglePoint(t *testing.T) {
	s := NewRangeStore()
	require.NoError(t, s.Add("one", Range{Min: 7, Max: 7}))
	v, _, err := s.Generate("one", emptyCtx, random.NewSeeded(1))
	require.NoError(t, err)
	assert.Equal(t, "7", v)
}

// =============================================================================
// Template
// =============================================================================

func TestTemplateStore_ReturnsRawText(t *testing.T) {
	s := NewTemplateStore()
	require.NoError(t, s.Add("sentence", "%greeting%, %name%!"))

	v, ok, err := s.Generate("sentence", emptyCtx, nil)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "%greeting%, %name%!", v)

	refs, exhaustive := s.References("sentence")
	assert.True(t, exhaustive)
	assert.Equal(t, []string{"greeting", "name"}, refs)
}
