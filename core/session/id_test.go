package session_test

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/serversession/core/session"
)

func TestGenerateID(t *testing.T) {
	t.Parallel()

	seen := make(map[string]struct{})
	for range 1000 {
		id := session.GenerateID()
		assert.Len(t, id, 43)
		assert.NotContains(t, id, "=")
		assert.True(t, session.ValidID(id))

		raw, err := base64.RawURLEncoding.DecodeString(id)
		require.NoError(t, err)
		assert.Len(t, raw, 32)

		_, dup := seen[id]
		require.False(t, dup)
		seen[id] = struct{}{}
	}
}

func TestValidID(t *testing.T) {
	t.Parallel()

	assert.False(t, session.ValidID(""))
	assert.False(t, session.ValidID("abc"))
	assert.False(t, session.ValidID(strings.Repeat("a", 44)))
	assert.False(t, session.ValidID(strings.Repeat("a", 42)+"+"))
	assert.False(t, session.ValidID(strings.Repeat("a", 42)+"/"))
	assert.True(t, session.ValidID(strings.Repeat("a", 41)+"-_"))
}
