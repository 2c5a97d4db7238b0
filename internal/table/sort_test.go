package table

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSort_Stable(t *testing.T) {
	tbl := mustNew(t, []string{"K", "V"}, [][]string{{"b", "2"}, {"a", "1"}, {"a", "0"}})

	got, err := Sort(tbl, 0, true)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a", "1"}, {"a", "0"}, {"b", "2"}}, got.Rows())
	assert.Equal(t, []string{"K", "V"}, got.Header())

	again, err := Sort(got, 0, true)
	require.NoError(t, err)
	assert.Equal(t, got.Rows(), again.Rows(), "sorting is idempotent")

	desc, err := Sort(tbl, 0, false)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"b", "2"}, {"a", "1"}, {"a", "0"}}, desc.Rows(),
		"equal keys keep input order when descending")
}

func TestSort_Descending(t *testing.T) {
	tbl, err := Parse("Title,Artist\nSong A,Artist1\nSong B,Artist2")
	require.NoError(t, err)

	got, err := Sort(tbl, 1, false)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Song B", "Artist2"}, {"Song A", "Artist1"}}, got.Rows())
}

func TestSort_CaseInsensitive(t *testing.T) {
	tbl := mustNew(t, []string{"Name"}, [][]string{{"banana"}, {"Apple"}, {"cherry"}, {"apple"}})

	got, err := Sort(tbl, 0, true)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Apple"}, {"apple"}, {"banana"}, {"cherry"}}, got.Rows())
}

func TestSort_StringsNotNumbers(t *testing.T) {
	tbl := mustNew(t, []string{"N"}, [][]string{{"10"}, {"9"}, {"100"}})

	got, err := Sort(tbl, 0, true)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"10"}, {"100"}, {"9"}}, got.Rows())
}

func TestSort_DoesNotMutateInput(t *testing.T) {
	tbl := mustNew(t, []string{"K"}, [][]string{{"c"}, {"a"}, {"b"}})
	before := tbl.Rows()

	_, err := Sort(tbl, 0, true)
	require.NoError(t, err)
	assert.Equal(t, before, tbl.Rows())
}

func TestSort_ToggleReverses(t *testing.T) {
	tbl := mustNew(t, []string{"Title"}, [][]string{{"delta"}, {"Alpha"}, {"charlie"}, {"Bravo"}})

	var state SortState
	state = state.Next(0)
	first, err := Sort(tbl, state.Column, state.Ascending)
	require.NoError(t, err)

	state = state.Next(0)
	assert.False(t, state.Ascending)
	second, err := Sort(first, state.Column, state.Ascending)
	require.NoError(t, err)

	reversed := first.Rows()
	slices.Reverse(reversed)
	assert.Equal(t, reversed, second.Rows())
}

func TestSort_IndexOutOfRange(t *testing.T) {
	tbl := mustNew(t, []string{"A", "B"}, [][]string{{"x", "y"}})

	for _, col := range []int{-1, 2, 10} {
		_, err := Sort(tbl, col, true)
		assert.ErrorIs(t, err, ErrIndexOutOfRange, "col %d", col)
	}

	_, err := Sort(&Table{}, 0, true)
	assert.ErrorIs(t, err, ErrEmptyTable)
}

func TestSortState_Next(t *testing.T) {
	var s SortState
	assert.Equal(t, "", s.Indicator(0))
	assert.Equal(t, "", s.Direction())

	s = s.Next(1)
	assert.Equal(t, SortState{Column: 1, Ascending: true, Active: true}, s)
	assert.Equal(t, "▲", s.Indicator(1))
	assert.Equal(t, "", s.Indicator(0))

	s = s.Next(1)
	assert.Equal(t, SortState{Column: 1, Ascending: false, Active: true}, s)
	assert.Equal(t, "▼", s.Indicator(1))
	assert.Equal(t, "desc", s.Direction())

	s = s.Next(0)
	assert.Equal(t, SortState{Column: 0, Ascending: true, Active: true}, s,
		"a different column resets to ascending")
}
