// SPDX-License-Identifier: Apache-2.0

package placeholder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreprocessPositionalPassthrough(t *testing.T) {
	res, err := Preprocess("SELECT * FROM users WHERE id = $1 AND name = $2")
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM users WHERE id = $1 AND name = $2", res.SQL)
	assert.Empty(t, res.Names)
}

func TestPreprocessNamedColon(t *testing.T) {
	res, err := Preprocess("SELECT * FROM users WHERE id = :id AND age > :min_age")
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM users WHERE id = $1 AND age > $2", res.SQL)
	assert.Equal(t, []string{"id", "min_age"}, res.Names)
}

func TestPreprocessNamedDollarBrace(t *testing.T) {
	res, err := Preprocess("SELECT * FROM users WHERE id = ${id}")
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM users WHERE id = $1", res.SQL)
	assert.Equal(t, []string{"id"}, res.Names)
}

func TestPreprocessRepeatedNameReusesIndex(t *testing.T) {
	res, err := Preprocess("SELECT * FROM t WHERE a = :x OR b = :x")
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM t WHERE a = $1 OR b = $1", res.SQL)
	assert.Equal(t, []string{"x"}, res.Names)
}

func TestPreprocessRejectsMixedStyles(t *testing.T) {
	_, err := Preprocess("SELECT * FROM t WHERE a = $1 AND b = :name")
	require.Error(t, err)
}

func TestPreprocessIgnoresCastOperator(t *testing.T) {
	res, err := Preprocess("SELECT id::text FROM t WHERE id = :id")
	require.NoError(t, err)
	assert.Equal(t, "SELECT id::text FROM t WHERE id = $1", res.SQL)
}

func TestPreprocessIgnoresPlaceholderSyntaxInStringLiteral(t *testing.T) {
	res, err := Preprocess("SELECT * FROM t WHERE note = ':not_a_param' AND id = :id")
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM t WHERE note = ':not_a_param' AND id = $1", res.SQL)
	assert.Equal(t, []string{"id"}, res.Names)
}

func TestPreprocessIgnoresDollarQuotedBody(t *testing.T) {
	res, err := Preprocess("SELECT $$literal ${not_a_param} text$$ WHERE id = :id")
	require.NoError(t, err)
	assert.Equal(t, "SELECT $$literal ${not_a_param} text$$ WHERE id = $1", res.SQL)
	assert.Equal(t, []string{"id"}, res.Names)
}
