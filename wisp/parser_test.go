package wisp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talav/zorya/routepath"
)

func TestParse_Empty(t *testing.T) {
	kinds, err := Parse("")
	require.NoError(t, err)
	assert.Empty(t, kinds)

	kinds, err = Parse("/")
	require.NoError(t, err)
	assert.Empty(t, kinds)
}

func TestParse_SingleConst(t *testing.T) {
	kinds, err := Parse("/hello")
	require.NoError(t, err)
	require.Len(t, kinds, 1)
	c, ok := kinds[0].(*ConstWisp)
	require.True(t, ok)
	assert.Equal(t, "hello", c.Value)
}

func TestParse_MultiConst(t *testing.T) {
	kinds, err := Parse("/hello/world")
	require.NoError(t, err)
	require.Len(t, kinds, 2)
}

func TestParse_NamedBraceAndAngle(t *testing.T) {
	for _, pattern := range []string{"/users/{id}", "/users/<id>"} {
		kinds, err := Parse(pattern)
		require.NoError(t, err, pattern)
		require.Len(t, kinds, 2)
		n, ok := kinds[1].(*NamedWisp)
		require.True(t, ok, pattern)
		assert.Equal(t, "id", n.Name)
	}
}

func TestParse_NamedAdjacentFails(t *testing.T) {
	_, err := Parse("/first<id><id2>ext2")
	assert.Error(t, err)
}

func TestParse_WildcardMustBeLast(t *testing.T) {
	_, err := Parse("/first<id><*ext>/<**rest>")
	assert.Error(t, err)
}

func TestParse_CombWithPrefixAndSuffix(t *testing.T) {
	kinds, err := Parse("/prefix<abc:/[0-9]+/>suffix.png")
	require.NoError(t, err)
	require.Len(t, kinds, 1)
	comb, ok := kinds[0].(*CombWisp)
	require.True(t, ok)
	require.Len(t, comb.Pieces, 3)
}

func TestParse_NumBuilder(t *testing.T) {
	kinds, err := Parse("/first<id:num(3..=10)>")
	require.NoError(t, err)
	comb, ok := kinds[0].(*CombWisp)
	require.True(t, ok)
	chars, ok := comb.Pieces[1].(*CharsWisp)
	require.True(t, ok)
	assert.Equal(t, 3, chars.MinWidth)
	assert.Equal(t, 10, chars.MaxWidth)
}

func TestDetect_ConstsAndManySlashes(t *testing.T) {
	kinds := MustParse("/users/{id}/emails")
	state := routepath.New("/users///29//emails")
	matched := true
	for _, k := range kinds {
		if !k.Detect(state) {
			matched = false
			break
		}
	}
	require.True(t, matched)
	assert.True(t, state.EndOfSegments())
	assert.Equal(t, "29", state.Params()["id"])
}

func TestDetect_Wildcard(t *testing.T) {
	kinds := MustParse("/users/{id}/<**rest>")

	state := routepath.New("/users/12/facebook/insights/23")
	for _, k := range kinds {
		require.True(t, k.Detect(state))
	}
	assert.Equal(t, "facebook/insights/23", state.Params()["**rest"])

	state = routepath.New("/users/12")
	for _, k := range kinds {
		require.True(t, k.Detect(state))
	}
	assert.Equal(t, "", state.Params()["**rest"])
}

func TestDetect_WildcardNonEmptyRejectsEmpty(t *testing.T) {
	kinds := MustParse("/users/{id}/<*+rest>")

	state := routepath.New("/users/12")
	ok := true
	for _, k := range kinds {
		if !k.Detect(state) {
			ok = false
			break
		}
	}
	assert.False(t, ok)
}

func TestDetect_WildcardSameSegmentRejectsSlash(t *testing.T) {
	kinds := MustParse("/users/{id}/<*?rest>")

	state := routepath.New("/users/12/facebook/insights/23")
	ok := true
	for _, k := range kinds {
		if !k.Detect(state) {
			ok = false
			break
		}
	}
	assert.False(t, ok)

	state = routepath.New("/users/12/abc")
	ok = true
	for _, k := range kinds {
		if !k.Detect(state) {
			ok = false
			break
		}
	}
	assert.True(t, ok)
}
