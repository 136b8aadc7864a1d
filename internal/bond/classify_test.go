package bond

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(t *testing.T, s string) *time.Time {
	t.Helper()
	d := ParseDate(s)
	require.NotNil(t, d, "test date %q must parse", s)
	return d
}

func TestClassify_RetirementAfterCutoff(t *testing.T) {
	bonds := []Bond{
		{Role: "Professor", Status: "Aposentado", RetirementDate: date(t, "15/05/2015")},
	}

	result := Classify(bonds)
	assert.Equal(t, Descarte, result.Outcome)
	require.NotNil(t, result.Date)
	assert.Equal(t, *date(t, "15/05/2015"), *result.Date)
}

func TestClassify_RetirementBeforeCutoff(t *testing.T) {
	bonds := []Bond{
		{Role: "Analista", Status: "Aposentado", RetirementDate: date(t, "01/02/1998")},
	}

	result := Classify(bonds)
	assert.Equal(t, Pesquisar, result.Outcome)
	require.NotNil(t, result.Date)
	assert.Equal(t, *date(t, "01/02/1998"), *result.Date)
}

func TestClassify_EmptyList(t *testing.T) {
	result := Classify([]Bond{})
	assert.Equal(t, Pesquisar, result.Outcome)
	assert.Nil(t, result.Date)
}

func TestClassify_NoRetirementDates(t *testing.T) {
	bonds := []Bond{
		{Role: "Técnico", Status: "Ativo"},
		{Role: "Professor", Status: "Aposentado"}, // date was malformed on the portal
	}

	result := Classify(bonds)
	assert.Equal(t, Pesquisar, result.Outcome)
	assert.Nil(t, result.Date)
}

func TestClassify_CutoffBoundary(t *testing.T) {
	tests := []struct {
		name string
		date string
		want Outcome
	}{
		{name: "on the cutoff stays investigate", date: "31/12/2003", want: Pesquisar},
		{name: "day after cutoff discards", date: "01/01/2004", want: Descarte},
		{name: "day before cutoff stays investigate", date: "30/12/2003", want: Pesquisar},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Classify([]Bond{{Status: "Aposentado", RetirementDate: date(t, tt.date)}})
			assert.Equal(t, tt.want, result.Outcome)
			require.NotNil(t, result.Date)
			assert.Equal(t, *date(t, tt.date), *result.Date)
		})
	}
}

func TestClassify_PicksMostRecentDate(t *testing.T) {
	bonds := []Bond{
		{Status: "Aposentado", RetirementDate: date(t, "10/03/1999")},
		{Status: "Aposentado", RetirementDate: date(t, "20/07/2010")},
		{Status: "Aposentado", RetirementDate: date(t, "05/01/2004")},
		{Status: "Ativo"},
	}

	result := Classify(bonds)
	assert.Equal(t, Descarte, result.Outcome)
	require.NotNil(t, result.Date)
	assert.Equal(t, *date(t, "20/07/2010"), *result.Date)
}

func TestClassify_MostRecentBeforeCutoffStillReported(t *testing.T) {
	bonds := []Bond{
		{Status: "Aposentado", RetirementDate: date(t, "10/03/1999")},
		{Status: "Aposentado", RetirementDate: date(t, "20/07/2001")},
	}

	result := Classify(bonds)
	assert.Equal(t, Pesquisar, result.Outcome)
	require.NotNil(t, result.Date)
	assert.Equal(t, *date(t, "20/07/2001"), *result.Date)
}

func TestClassify_Idempotent(t *testing.T) {
	bonds := []Bond{
		{Status: "Aposentado", RetirementDate: date(t, "15/05/2015")},
		{Status: "Ativo"},
	}

	first := Classify(bonds)
	second := Classify(bonds)
	assert.Equal(t, first.Outcome, second.Outcome)
	assert.Equal(t, first.Date, second.Date)
}
