package tokenizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTiktoken_Count(t *testing.T) {
	tk, err := Get()
	require.NoError(t, err)

	assert.Equal(t, 0, tk.Count(""))
	assert.Equal(t, 2, tk.Count("hello world"))
	assert.Greater(t, tk.Count("The quick brown fox jumps over the lazy dog"), 5)

	again, err := Get()
	require.NoError(t, err)
	assert.Same(t, tk, again)
}

func TestApprox_Count(t *testing.T) {
	var a Approx
	assert.Equal(t, 0, a.Count(""))
	assert.Equal(t, 1, a.Count("abc"))
	assert.Equal(t, 2, a.Count("abcde"))
}

func TestProvideCounter(t *testing.T) {
	assert.NotNil(t, ProvideCounter())
}
