package relationaldb

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvocationID(t *testing.T) {
	var id InvocationID
	id[0], id[31] = 0xab, 0x01
	s := id.String()
	require.Len(t, s, 64)

	back, err := ParseInvocationID(s)
	require.NoError(t, err)
	assert.Equal(t, id, back)

	b, err := json.Marshal(ReceiptInfo{ID: id})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"id":"`+s+`"`)

	_, err = ParseInvocationID("zz")
	assert.Error(t, err)
	_, err = ParseInvocationID(strings.Repeat("00", 31))
	assert.Error(t, err)
}
