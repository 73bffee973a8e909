package results

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "gk", Normalize("G.K."))
	assert.Equal(t, "socialscience", Normalize("Social Science-2"))
}

func TestMatch(t *testing.T) {
	rows := []Row{{"English", 100, 60}, {"gk", 50, 40}}

	r, ok := Match(rows, "G.K.")
	assert.True(t, ok)
	assert.Equal(t, Row{"gk", 50, 40}, r)

	r, ok = Match(rows, "Drawing")
	assert.False(t, ok)
	assert.Equal(t, 0.0, r.Total)
	assert.Equal(t, 0.0, r.Marks)
}

func TestSubjectsMatchIsFuzzy(t *testing.T) {
	assert.True(t, SubjectsMatch("Science", "Social Science"), "overlapping names match by containment")
	assert.True(t, SubjectsMatch("MATHS", "maths"))
	assert.False(t, SubjectsMatch("Hindi", "English"))
	assert.False(t, SubjectsMatch("...", "Hindi"))
}

func TestCombine(t *testing.T) {
	half := []Row{{"Hindi", 100, 60}, {"G.K.", 50, 30}, {"Drawing", 50, 45}}
	annual := []Row{{"gk", 50, 35}, {"hindi", 100, 70}, {"Computer", 50, 40}}

	got := Combine(half, annual)
	require.Len(t, got, 4)

	assert.Equal(t, "Hindi", got[0].Subject)
	assert.Equal(t, 200.0, got[0].Total)
	assert.Equal(t, 130.0, got[0].Marks)

	assert.Equal(t, "G.K.", got[1].Subject)
	assert.Equal(t, 65.0, got[1].Marks)

	assert.Equal(t, "Drawing", got[2].Subject)
	assert.Equal(t, Row{Subject: "Drawing"}, got[2].Annual)

	assert.Equal(t, "Computer", got[3].Subject)
	assert.Equal(t, 0.0, got[3].HalfYearly.Total)
	assert.Equal(t, 40.0, got[3].Marks)

	s := Summarize(CombinedRows(got))
	assert.Equal(t, 400.0, s.MaxTotal)
}

func TestCombineConsumesAnnualRows(t *testing.T) {
	half := []Row{{"Social Science", 100, 50}, {"Science", 100, 60}}
	annual := []Row{{"social science", 100, 70}}

	got := Combine(half, annual)
	require.Len(t, got, 2)

	assert.Equal(t, 70.0, got[0].Annual.Marks)
	assert.Equal(t, Row{Subject: "Science"}, got[1].Annual, "a consumed annual row is not reused")

	r, ok := Match(annual, "Science")
	assert.True(t, ok, "a plain lookup still reuses it")
	assert.Equal(t, 70.0, r.Marks)
}
