package table

import (
	"encoding/json"
	"fmt"

	"github.com/golang/snappy"
)

// DefaultCompressThreshold is the encoded size in bytes above which record
// payloads are snappy-compressed before hitting the wire.
const DefaultCompressThreshold = 1024

const (
	codecPlain  byte = 0x00
	codecSnappy byte = 0x01
)

// Codec serializes records for backends that store opaque payloads.
// Payloads larger than the threshold are snappy-compressed and tagged with a
// one-byte marker so Decode can tell the variants apart.
type Codec struct {
	CompressThreshold int
}

// NewCodec creates a codec. threshold <= 0 uses DefaultCompressThreshold.
func NewCodec(threshold int) Codec {
	if threshold <= 0 {
		threshold = DefaultCompressThreshold
	}
	return Codec{CompressThreshold: threshold}
}

// Encode serializes a record to its wire form
func (c Codec) Encode(r Record) ([]byte, error) {
	payload, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("failed to encode record %s/%s: %w", r.PartitionKey, r.RowKey, err)
	}
	if len(payload) <= c.CompressThreshold {
		return append([]byte{codecPlain}, payload...), nil
	}
	compressed := snappy.Encode(nil, payload)
	return append([]byte{codecSnappy}, compressed...), nil
}

// Decode deserializes a record from its wire form
func (c Codec) Decode(data []byte) (Record, error) {
	if len(data) < 2 {
		return Record{}, fmt.Errorf("record payload too short: %d bytes", len(data))
	}
	payload := data[1:]
	switch data[0] {
	case codecPlain:
	case codecSnappy:
		decoded, err := snappy.Decode(nil, payload)
		if err != nil {
			return Record{}, fmt.Errorf("failed to decompress record payload: %w", err)
		}
		payload = decoded
	default:
		return Record{}, fmt.Errorf("unknown record codec marker 0x%02x", data[0])
	}

	var r Record
	if err := json.Unmarshal(payload, &r); err != nil {
		return Record{}, fmt.Errorf("failed to decode record payload: %w", err)
	}
	return r, nil
}
