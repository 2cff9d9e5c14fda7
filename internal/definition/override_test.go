package definition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseParameters(t *testing.T) {
	params, err := ParseParameters(`{"size": 10, "ratio": 0.5, "algs": ["md5", "sha1"], "opts": {"n": 2}}`)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"size":  int64(10),
		"ratio": 0.5,
		"algs":  []any{"md5", "sha1"},
		"opts":  map[string]any{"n": int64(2)},
	}, params)

	params, err = ParseParameters("")
	require.NoError(t, err)
	assert.Empty(t, params)
	assert.NotNil(t, params)
}

func TestParseParameters_Malformed(t *testing.T) {
	for _, in := range []string{`{"size":`, `null`, `[1, 2]`} {
		_, err := ParseParameters(in)
		assert.ErrorContains(t, err, "could not decode parameters JSON string", in)
	}
}

func TestParseAssertion(t *testing.T) {
	ad, err := ParseAssertion(`{"kind": "comparator", "options": {"stat": "mean", "value": 10}}`)
	require.NoError(t, err)
	assert.Equal(t, AssertionDef{Kind: "comparator", Options: map[string]any{"stat": "mean", "value": int64(10)}}, ad)

	ad, err = ParseAssertion(`{"stat": "max", "comparator": ">", "value": 1.5}`)
	require.NoError(t, err)
	assert.Empty(t, ad.Kind)
	assert.Equal(t, 1.5, ad.Options["value"])

	_, err = ParseAssertion(`stat=mean`)
	assert.ErrorContains(t, err, "could not decode assertion JSON string")
}
