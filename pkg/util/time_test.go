package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDuration(t *testing.T) {
	d, err := ParseDuration("60s")
	require.NoError(t, err)
	assert.Equal(t, time.Minute, d)

	// "d" 后缀按天解析
	d, err = ParseDuration("7d")
	require.NoError(t, err)
	assert.Equal(t, 7*24*time.Hour, d)

	d, err = ParseDuration("1.5d")
	require.NoError(t, err)
	assert.Equal(t, 36*time.Hour, d)

	_, err = ParseDuration("")
	assert.Error(t, err)

	_, err = ParseDuration("xd")
	assert.Error(t, err)
}

func TestMustParseDuration(t *testing.T) {
	assert.Equal(t, 30*time.Minute, MustParseDuration("30m", time.Hour))
	// 非法输入回退默认值
	assert.Equal(t, time.Hour, MustParseDuration("bogus", time.Hour))
	assert.Equal(t, time.Hour, MustParseDuration("", time.Hour))
}
