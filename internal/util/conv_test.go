package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseUintOrZero(t *testing.T) {
	assert.EqualValues(t, 42, ParseUintOrZero("42"))
	assert.EqualValues(t, 0, ParseUintOrZero("0"))

	// 非法输入一律归零，由调用方决定是否拒绝
	assert.EqualValues(t, 0, ParseUintOrZero(""))
	assert.EqualValues(t, 0, ParseUintOrZero("abc"))
	assert.EqualValues(t, 0, ParseUintOrZero("-1"))
	assert.EqualValues(t, 0, ParseUintOrZero("4294967296"))
}
