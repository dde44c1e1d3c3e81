package redis

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodePassesRawPayloadsThrough(t *testing.T) {
	raw := json.RawMessage(`{"id":1}`)

	out, err := encode(raw)
	require.NoError(t, err)
	assert.Equal(t, `{"id":1}`, string(out))

	out, err = encode([]byte("invalidate"))
	require.NoError(t, err)
	assert.Equal(t, "invalidate", string(out))
}

func TestEncodeMarshalsValues(t *testing.T) {
	out, err := encode(map[string]int{"beds": 3})
	require.NoError(t, err)
	assert.JSONEq(t, `{"beds":3}`, string(out))
}
