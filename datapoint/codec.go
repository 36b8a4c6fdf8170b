package datapoint

import (
	"encoding/binary"
	"strings"

	"github.com/mita-teknik/mnet/internal/datatable"
	"github.com/mita-teknik/mnet/mnerr"
)

// MaxBatch is the controller's Multi-Data request item limit (spec
// §6.4).
const MaxBatch = 17

// Item pairs a resolved point with the averaging it was requested
// under, used for both encoding a batch request and matching up its
// replies in order.
type Item struct {
	Desc datatable.Descriptor
	Avg  Averaging
	ID   DataID
}

// NewItem resolves a descriptor+averaging pair into a request Item.
func NewItem(desc datatable.Descriptor, avg Averaging) (Item, error) {
	id, err := Resolve(desc, avg)
	if err != nil {
		return Item{}, err
	}
	return Item{Desc: desc, Avg: avg, ID: id}, nil
}

// EncodeSingleRequest builds the 4-byte payload for a Request Data
// (0x0C28) packet.
func EncodeSingleRequest(item Item) []byte {
	b := item.ID.WireBytes()
	return b[:]
}

// EncodeMultiRequest builds the payload for a Request Multiple Data
// (0x0C2A) packet: count:u8 followed by each item's 4-byte DataID.
// Callers must chunk to MaxBatch themselves (the client state machine
// owns chunking policy, spec §4.7).
func EncodeMultiRequest(items []Item) ([]byte, error) {
	if len(items) == 0 || len(items) > MaxBatch {
		return nil, mnerr.ErrProtocol
	}
	out := make([]byte, 0, 1+4*len(items))
	out = append(out, byte(len(items)))
	for _, it := range items {
		b := it.ID.WireBytes()
		out = append(out, b[:]...)
	}
	return out, nil
}

// EncodeWriteRequest builds the payload for a Request Write Data
// (0x0C2C) packet: the byte-swapped DataID followed by the value as
// plain 4-byte big-endian (spec §6.3/S4's captured frame: the value
// field is not subject to the DataID swap).
func EncodeWriteRequest(id DataID, value uint32) []byte {
	idBytes := id.WireBytes()
	out := make([]byte, 0, 8)
	out = append(out, idBytes[:]...)
	out = append(out, byte(value>>24), byte(value>>16), byte(value>>8), byte(value))
	return out
}

// DecodeSingleReply parses a Reply Data (0x0C29) payload for the
// point/averaging that was requested, decoding it by item's
// descriptor. The payload is treated as value bytes only: no DataID
// is read from the reply, so it is not checked against item.ID.
func DecodeSingleReply(item Item, payload []byte) (Value, error) {
	return decodeValue(item.Desc, payload)
}

// DecodeMultiReply parses a Reply Multiple Data (0x0C2B) payload,
// which the controller returns as a straight concatenation of each
// item's raw reply data in request order (batch order is preserved
// per spec §3). raws is the pre-split list of per-item payloads; the
// client's transaction layer is responsible for locating the item
// boundaries (each family has a fixed width, see Descriptor.Length /
// family-implied width).
func DecodeMultiReply(items []Item, raws [][]byte) ([]Value, error) {
	if len(raws) != len(items) {
		return nil, mnerr.ErrProtocol
	}
	values := make([]Value, len(items))
	for i, it := range items {
		v, err := decodeValue(it.Desc, raws[i])
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}

// ReplyWidth returns the number of raw payload bytes a descriptor's
// family occupies in a reply, used to split a concatenated multi-data
// reply into per-item chunks.
func ReplyWidth(desc datatable.Descriptor) int {
	switch desc.Family {
	case datatable.FamilyScalar32:
		return 4
	case datatable.FamilyStatus2:
		return 4
	case datatable.FamilyTimestamp:
		return 4
	case datatable.FamilyBytes, datatable.FamilyText:
		if desc.Length > 0 {
			return desc.Length
		}
		return 4
	default:
		return 4
	}
}

func decodeValue(desc datatable.Descriptor, payload []byte) (Value, error) {
	switch desc.Family {
	case datatable.FamilyScalar32:
		if len(payload) < 4 {
			return Value{}, mnerr.ErrBadLength
		}
		raw := int32(binary.BigEndian.Uint32(payload[:4]))
		if isIntegral(desc) {
			return Value{Kind: KindInt32, Int32: raw}, nil
		}
		return Value{Kind: KindFloat64, Float64: scale(raw, desc)}, nil

	case datatable.FamilyStatus2:
		if len(payload) < 4 {
			return Value{}, mnerr.ErrBadLength
		}
		return Value{Kind: KindStatusCodes, StatusCodes: [2]uint16{
			binary.BigEndian.Uint16(payload[0:2]),
			binary.BigEndian.Uint16(payload[2:4]),
		}}, nil

	case datatable.FamilyTimestamp:
		if len(payload) < 4 {
			return Value{}, mnerr.ErrBadLength
		}
		raw := binary.BigEndian.Uint32(payload[:4])
		return Value{Kind: KindTimestamp, Timestamp: DecodeTimestamp(raw)}, nil

	case datatable.FamilyText:
		return Value{Kind: KindText, Text: strings.TrimRight(string(payload), " \x00")}, nil

	case datatable.FamilyBytes:
		cp := make([]byte, len(payload))
		copy(cp, payload)
		return Value{Kind: KindBytes, Bytes: cp}, nil

	default:
		return Value{}, mnerr.ErrProtocol
	}
}
