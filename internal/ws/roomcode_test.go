package ws

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateRoomCode(t *testing.T) {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		code, err := GenerateRoomCode()
		require.NoError(t, err)
		require.Len(t, code, 6)
		for _, c := range code {
			assert.True(t, strings.ContainsRune(charset, c), "unexpected character %q", c)
		}
		seen[code] = true
	}
	// 36^6 codes; a hundred draws repeating would mean a broken generator.
	assert.Greater(t, len(seen), 90)
}
