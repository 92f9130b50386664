package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/quill/internal/random"
)

// defineEverywhere adds key to all seven stores with a value naming the kind.
func defineEverywhere(t *testing.T, r *Resolver, key string) {
	t.Helper()
	require.NoError(t, r.AddStatic(key, []string{"static"}))
	require.NoError(t, r.AddWeighted(key, []string{"weighted"}, []float64{1}))
	require.NoError(t, r.AddTemplate(key, "template"))
	require.NoError(t, r.AddRange(key, Range{Min: 5, Max: 5}))
	require.NoError(t, r.AddSequential(key, []string{"sequential"}, true))
	require.NoError(t, r.AddConditional(key, []Case{Default("conditional")}))
	require.NoError(t, r.AddFunction(key, func(Context) ([]string, error) {
		return []string{"function"}, nil
	}))
}

func TestResolver_PrecedenceIndependentOfInsertionOrder(t *testing.T) {
	r := NewResolver()
	defineEverywhere(t, r, "k")
	rnd := random.NewSeeded(1)

	// Peel kinds off in precedence order; each removal exposes the next one.
	want := []struct {
		kind  Kind
		value string
	}{
		{KindFunction, "function"},
		{KindConditional, "conditional"},
		{KindSequential, "sequential"},
		{KindRange, "5"},
		{KindTemplate, "template"},
		{KindWeighted, "weighted"},
		{KindStatic, "static"},
	}

	for _, w := range want {
		kind, ok := r.RuleKind("k")
		require.True(t, ok)
		assert.Equal(t, w.kind, kind)

		v, ok, err := r.Generate("k", emptyCtx, rnd)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, w.value, v)

		require.True(t, r.Store(w.kind).Remove("k"))
	}

	assert.False(t, r.HasRule("k"))
}

func TestResolver_RemoveRulePurgesAllKinds(t *testing.T) {
	r := NewResolver()
	defineEverywhere(t, r, "k")
	require.NoError(t, r.AddStatic("other", []string{"x"}))

	assert.Len(t, r.KindsOf("k"), 7)
	assert.True(t, r.RemoveRule("k"))
	assert.False(t, r.HasRule("k"))
	assert.Empty(t, r.KindsOf("k"))
	assert.False(t, r.RemoveRule("k"), "second removal finds nothing")
	assert.True(t, r.HasRule("other"))
}

func TestResolver_KeysAndSizeAreDistinct(t *testing.T) {
	r := NewResolver()
	require.NoError(t, r.AddStatic("b", []string{"1"}))
	require.NoError(t, r.AddTemplate("a", "%b%"))
	require.NoError(t, r.AddTemplate("b", "dup"))

	assert.Equal(t, []string{"a", "b"}, r.Keys())
	assert.Equal(t, 2, r.Size())
}

func TestResolver_Duplicates(t *testing.T) {
	r := NewResolver()
	require.NoError(t, r.AddStatic("name", []string{"Sam"}))
	require.NoError(t, r.AddTemplate("name", "%first%"))
	require.NoError(t, r.AddStatic("solo", []string{"x"}))

	dups := r.Duplicates()
	require.Len(t, dups, 1)
	assert.Equal(t, []Kind{KindTemplate, KindStatic}, dups["name"])
}

func TestResolver_GenerateMissing(t *testing.T) {
	r := NewResolver()
	v, ok, err := r.Generate("ghost", emptyCtx, random.NewSeeded(1))
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, v)

	_, ok = r.RuleKind("ghost")
	assert.False(t, ok)
}

func TestResolver_ResetSequential(t *testing.T) {
	r := NewResolver()
	require.NoError(t, r.AddSequential("s", []string{"a", "b"}, false))

	_, _, _ = r.Generate("s", emptyCtx, nil)
	_, _, _ = r.Generate("s", emptyCtx, nil)
	assert.True(t, r.Reset("s"))

	v, _, err := r.Generate("s", emptyCtx, nil)
	require.NoError(t, err)
	assert.Equal(t, "a", v)

	_, _, _ = r.Generate("s", emptyCtx, nil)
	r.ResetAll()
	v, _, _ = r.Generate("s", emptyCtx, nil)
	assert.Equal(t, "a", v)
}

func TestResolver_Clear(t *testing.T) {
	r := NewResolver()
	defineEverywhere(t, r, "k")
	r.Clear()
	assert.Equal(t, 0, r.Size())
	for _, kind := range Precedence() {
		assert.Equal(t, 0, r.Store(kind).Size(), kind.String())
	}
}

func TestPrecedence_ReturnsCopy(t *testing.T) {
	want := []Kind{KindFunction, KindConditional, KindSequential, KindRange, KindTemplate, KindWeighted, KindStatic}

	got := Precedence()
	require.Equal(t, want, got)
	got[0], got[6] = got[6], got[0]

	assert.Equal(t, want, Precedence(), "callers cannot reorder lookups")

	r := NewResolver()
	defineEverywhere(t, r, "k")
	v, _, err := r.Generate("k", emptyCtx, random.NewSeeded(1))
	require.NoError(t, err)
	assert.Equal(t, "function", v)
}

func TestKind_StringAndParse(t *testing.T) {
	for _, kind := range Precedence() {
		parsed, err := ParseKind(kind.String())
		require.NoError(t, err)
		assert.Equal(t, kind, parsed)
	}
	_, err := ParseKind("fractal")
	assert.Error(t, err)
	assert.Equal(t, "kind(99)", Kind(99).String())
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, []string{"a", "@a", "b c"}, Placeholders("%a% %@a% %a% %b c%"))
	assert.Nil(t, Placeholders("no vars, 50% off"))
	assert.True(t, IsBackReference("@x"))
	assert.False(t, IsBackReference("@"))
	assert.Equal(t, "x", StripBackReference("@x"))
	assert.Equal(t, "x", StripBackReference("x"))
}
