package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDurationOr(t *testing.T) {
	t.Setenv("TEST_DUR", "45s")
	assert.Equal(t, 45*time.Second, durationOr("TEST_DUR", time.Minute))

	// Unset falls back to the default.
	assert.Equal(t, time.Minute, durationOr("TEST_DUR_UNSET", time.Minute))
}

func TestMustCents(t *testing.T) {
	t.Setenv("TEST_CENTS", "15000")
	assert.Equal(t, uint64(15000), mustCents("TEST_CENTS"))
}

func TestEnvStr(t *testing.T) {
	t.Setenv("TEST_STR", "value")
	assert.Equal(t, "value", envStr("TEST_STR", "default"))
	assert.Equal(t, "default", envStr("TEST_STR_UNSET", "default"))
}

func TestEnvBoolAndInt(t *testing.T) {
	t.Setenv("TEST_BOOL", "true")
	assert.True(t, envBool("TEST_BOOL", false))
	assert.False(t, envBool("TEST_BOOL_UNSET", false))

	t.Setenv("TEST_INT", "7")
	assert.Equal(t, 7, envInt("TEST_INT", 3))
	assert.Equal(t, 3, envInt("TEST_INT_UNSET", 3))
}

func TestParseMethods(t *testing.T) {
	m := parseMethods("get, HEAD")
	assert.True(t, m["GET"])
	assert.True(t, m["HEAD"])
	assert.False(t, m["POST"])
}
