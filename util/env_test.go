package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetEnvDefault(t *testing.T) {
	t.Setenv("PROVISIONER_TEST_SET", "value")
	assert.Equal(t, "value", GetEnvDefault("PROVISIONER_TEST_SET", "fallback"))
	assert.Equal(t, "fallback", GetEnvDefault("PROVISIONER_TEST_UNSET_KEY", "fallback"))
}

func TestGetEnvDefault_EmptyValueWins(t *testing.T) {
	t.Setenv("PROVISIONER_TEST_EMPTY", "")
	assert.Equal(t, "", GetEnvDefault("PROVISIONER_TEST_EMPTY", "fallback"))
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"1", "2", "3", "4"}, SplitList(" 1, 2;3\n4,, "))
	assert.Empty(t, SplitList("  ,; "))
}

func TestIsEmpty(t *testing.T) {
	assert.True(t, IsEmpty(" \t"))
	assert.False(t, IsEmpty(" x "))
	assert.True(t, IsNotEmpty("x"))
}
