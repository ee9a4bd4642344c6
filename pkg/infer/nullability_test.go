// SPDX-License-Identifier: Apache-2.0

package infer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisjunctionScalar(t *testing.T) {
	assert.Equal(t, Scalar(false), Disjunction(Scalar(false), Scalar(false)))
	assert.Equal(t, Scalar(true), Disjunction(Scalar(true), Scalar(false)))
	assert.Equal(t, Scalar(true), Disjunction(Scalar(false), Scalar(true)))
}

func TestDisjunctionArray(t *testing.T) {
	got := Disjunction(Arr(false, false), Arr(true, false))
	assert.Equal(t, Arr(true, false), got)

	got = Disjunction(Arr(false, true), Arr(false, false))
	assert.Equal(t, Arr(false, true), got)
}

func TestDisjunctionMixedCollapsesToScalar(t *testing.T) {
	got := Disjunction(Arr(false, true), Scalar(false))
	assert.Equal(t, Scalar(false), got)
}

func TestDisjunction3(t *testing.T) {
	got := Disjunction3(Scalar(false), Scalar(false), Scalar(true))
	assert.Equal(t, Scalar(true), got)
}

func TestNullableParamsIsNullable(t *testing.T) {
	var nilParams NullableParams
	assert.False(t, nilParams.IsNullable(1))

	p := NullableParams{2: true}
	assert.False(t, p.IsNullable(1))
	assert.True(t, p.IsNullable(2))
}
