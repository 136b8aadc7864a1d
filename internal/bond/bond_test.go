package bond

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		valid bool
	}{
		{name: "valid", input: "15/05/2015", valid: true},
		{name: "valid with surrounding space", input: " 01/02/1998 ", valid: true},
		{name: "impossible day", input: "31/02/2015", valid: false},
		{name: "out of range", input: "99/99/9999", valid: false},
		{name: "wrong separator", input: "15-05-2015", valid: false},
		{name: "two-digit year", input: "15/05/15", valid: false},
		{name: "empty", input: "", valid: false},
		{name: "garbage", input: "///", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseDate(tt.input)
			if tt.valid {
				require.NotNil(t, got)
				assert.Equal(t, strings.TrimSpace(tt.input), got.Format(DateLayout))
			} else {
				assert.Nil(t, got)
			}
		})
	}
}

func TestStatusIndicatesRetirement(t *testing.T) {
	assert.True(t, StatusIndicatesRetirement("Aposentado"))
	assert.True(t, StatusIndicatesRetirement("APOSENTADO"))
	assert.True(t, StatusIndicatesRetirement("Servidor aposentado"))
	assert.False(t, StatusIndicatesRetirement("Ativo"))
	assert.False(t, StatusIndicatesRetirement("Pensionista"))
	assert.False(t, StatusIndicatesRetirement(""))
}

func TestResult_MarshalJSON_WithDate(t *testing.T) {
	result := Result{Outcome: Descarte, Date: ParseDate("15/05/2015")}

	out, err := json.Marshal(result)
	require.NoError(t, err)
	assert.JSONEq(t, `{"result":"descarte","date":"15/05/2015"}`, string(out))
}

func TestResult_MarshalJSON_WithoutDate(t *testing.T) {
	result := Result{Outcome: Pesquisar}

	out, err := json.Marshal(result)
	require.NoError(t, err)
	assert.JSONEq(t, `{"result":"pesquisar"}`, string(out))
	assert.NotContains(t, string(out), "date")
}

func TestResult_MarshalJSON_PesquisarWithDate(t *testing.T) {
	result := Result{Outcome: Pesquisar, Date: ParseDate("01/02/1998")}

	out, err := json.Marshal(result)
	require.NoError(t, err)
	assert.JSONEq(t, `{"result":"pesquisar","date":"01/02/1998"}`, string(out))
}
