package table

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodec_SmallPayloadStaysPlain(t *testing.T) {
	c := NewCodec(0)
	r := rec("p1", "r1")

	data, err := c.Encode(r)
	require.NoError(t, err)
	assert.Equal(t, codecPlain, data[0])

	decoded, err := c.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, r.PartitionKey, decoded.PartitionKey)
	assert.Equal(t, r.RowKey, decoded.RowKey)
	assert.Equal(t, "hello", decoded.Properties["msg"])
}

func TestCodec_LargePayloadCompressed(t *testing.T) {
	c := NewCodec(64)
	r := Record{
		PartitionKey: "p1",
		RowKey:       "r1",
		Properties: map[string]interface{}{
			// Repetitive content compresses well past the threshold
			"blob": strings.Repeat("logtide ", 200),
		},
	}

	data, err := c.Encode(r)
	require.NoError(t, err)
	assert.Equal(t, codecSnappy, data[0])
	assert.Less(t, len(data), 8*200, "snappy should shrink a repetitive payload")

	decoded, err := c.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, r.Properties["blob"], decoded.Properties["blob"])
}

func TestCodec_DecodeRejectsBadInput(t *testing.T) {
	c := NewCodec(0)

	_, err := c.Decode(nil)
	assert.Error(t, err)

	_, err = c.Decode([]byte{0x7f, '{', '}'})
	assert.Error(t, err, "unknown marker must be rejected")

	_, err = c.Decode(append([]byte{codecSnappy}, []byte("not snappy")...))
	assert.Error(t, err)
}
