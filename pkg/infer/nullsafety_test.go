// SPDX-License-Identifier: Apache-2.0

package infer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnaryOpSafety(t *testing.T) {
	assert.Equal(t, NeverNull, UnaryOpSafety("ISNULL"))
	assert.Equal(t, NeverNull, UnaryOpSafety("IS UNKNOWN"))
	assert.Equal(t, Safe, UnaryOpSafety("-"))
	assert.Equal(t, Safe, UnaryOpSafety("NOT"))
}

func TestBinaryOpSafety(t *testing.T) {
	assert.Equal(t, NeverNull, BinaryOpSafety("IS DISTINCT FROM", false))
	assert.Equal(t, Safe, BinaryOpSafety("AND", false), "AND composes safely for expression nullability")
	assert.Equal(t, Unsafe, BinaryOpSafety("AND", true), "AND is unsafe when deriving non-null facts")
	assert.Equal(t, Safe, BinaryOpSafety("=", false))
}

func TestFunctionSafety(t *testing.T) {
	assert.Equal(t, NeverNull, FunctionSafety("count"))
	assert.Equal(t, NeverNull, FunctionSafety("COUNT"))
	assert.Equal(t, NeverNull, FunctionSafety("now"))
	assert.Equal(t, Unsafe, FunctionSafety("format"))
	assert.Equal(t, NeverNull, FunctionSafety("coalesce"))
	assert.Equal(t, Safe, FunctionSafety("substring"))
}
