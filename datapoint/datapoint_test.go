package datapoint

import (
	"testing"
	"time"

	"github.com/mita-teknik/mnet/internal/datatable"
	"github.com/mita-teknik/mnet/mnerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func timeDescriptor() datatable.Descriptor {
	return datatable.Descriptor{
		Name:            "ControllerTime",
		BaseID:          0x000153C3,
		Family:          datatable.FamilyTimestamp,
		AllAveragingsOK: true,
	}
}

func TestDataIDWireBytesMatchesSpecExample(t *testing.T) {
	id := DataID(0x000153C3)
	assert.Equal(t, [4]byte{0xC3, 0x53, 0x00, 0x01}, id.WireBytes())
}

func TestDataIDWireRoundTrip(t *testing.T) {
	for _, v := range []uint32{0, 1, 0xDEADBEEF, 0x000153C3, 0xFFFFFFFF} {
		id := DataID(v)
		assert.Equal(t, id, ParseDataID(id.WireBytes()))
	}
}

func TestEncodeSetControllerTimeMatchesCapturedFrame(t *testing.T) {
	item, err := NewItem(timeDescriptor(), Current)
	require.NoError(t, err)

	wallTime := time.Date(2026, 1, 16, 18, 20, 13, 0, time.UTC)
	value := EncodeTimestamp(wallTime)
	assert.Equal(t, uint32(0x569BDB5D), value)

	payload := EncodeWriteRequest(item.ID, value)
	assert.Equal(t, []byte{0xC3, 0x53, 0x00, 0x01, 0x56, 0x9B, 0xDB, 0x5D}, payload)
}

func TestDecodeTimestampRoundTrip(t *testing.T) {
	for _, v := range []uint32{0, 1, 0x569BDB5D, 0xFFFFFFFF} {
		got := EncodeTimestamp(DecodeTimestamp(v))
		assert.Equal(t, v, got)
	}
}

func TestResolveRejectsUnsupportedAveraging(t *testing.T) {
	desc := datatable.Descriptor{
		BaseID:          0x1000,
		Family:          datatable.FamilyScalar32,
		ValidAveragings: map[byte]bool{byte(Current): true},
	}
	_, err := Resolve(desc, Avg1min)
	assert.ErrorIs(t, err, mnerr.ErrUnsupportedAveraging)
}

func TestResolveFoldsAveragingIntoLowByte(t *testing.T) {
	desc := datatable.Descriptor{BaseID: 0x1000, AllAveragingsOK: true}
	id, err := Resolve(desc, Avg1min)
	require.NoError(t, err)
	assert.Equal(t, DataID(0x1005), id)
}

func TestDecodeScalarWithDiv10Scaling(t *testing.T) {
	desc := datatable.Descriptor{
		Family:     datatable.FamilyScalar32,
		Scale:      datatable.ScaleDiv10N,
		ScaleParam: 1,
	}
	v, err := decodeValue(desc, []byte{0x00, 0x00, 0x00, 0x7B}) // 123
	require.NoError(t, err)
	assert.Equal(t, KindFloat64, v.Kind)
	assert.InDelta(t, 12.3, v.Float64, 1e-9)
}

func TestDecodeScalarNoneIsIntegral(t *testing.T) {
	desc := datatable.Descriptor{Family: datatable.FamilyScalar32, Scale: datatable.ScaleNone}
	v, err := decodeValue(desc, []byte{0xFF, 0xFF, 0xFF, 0xFF}) // -1
	require.NoError(t, err)
	assert.Equal(t, KindInt32, v.Kind)
	assert.Equal(t, int32(-1), v.Int32)
}

func TestDecodeStatusCodes(t *testing.T) {
	desc := datatable.Descriptor{Family: datatable.FamilyStatus2}
	v, err := decodeValue(desc, []byte{0x00, 0x01, 0x00, 0x02})
	require.NoError(t, err)
	assert.Equal(t, [2]uint16{1, 2}, v.StatusCodes)
}

func TestDecodeTextTrimsPadding(t *testing.T) {
	desc := datatable.Descriptor{Family: datatable.FamilyText}
	v, err := decodeValue(desc, []byte("hello   \x00\x00"))
	require.NoError(t, err)
	assert.Equal(t, "hello", v.Text)
}

func TestMultiRequestPreservesOrder(t *testing.T) {
	a := datatable.Descriptor{BaseID: 0x1000, AllAveragingsOK: true, Family: datatable.FamilyScalar32}
	b := datatable.Descriptor{BaseID: 0x2000, AllAveragingsOK: true, Family: datatable.FamilyScalar32}
	c := datatable.Descriptor{BaseID: 0x3000, AllAveragingsOK: true, Family: datatable.FamilyScalar32}

	itemA, _ := NewItem(a, Current)
	itemB, _ := NewItem(b, Avg1min)
	itemC, _ := NewItem(c, Current)
	items := []Item{itemA, itemB, itemC}

	payload, err := EncodeMultiRequest(items)
	require.NoError(t, err)
	assert.Equal(t, byte(3), payload[0])
	assert.Len(t, payload, 1+4*3)

	raws := [][]byte{
		{0, 0, 0, 1},
		{0, 0, 0, 2},
		{0, 0, 0, 3},
	}
	values, err := DecodeMultiReply(items, raws)
	require.NoError(t, err)
	require.Len(t, values, 3)
	assert.Equal(t, int32(1), values[0].Int32)
	assert.Equal(t, int32(2), values[1].Int32)
	assert.Equal(t, int32(3), values[2].Int32)
}

func TestMultiRequestRejectsOversizedBatch(t *testing.T) {
	items := make([]Item, MaxBatch+1)
	_, err := EncodeMultiRequest(items)
	assert.ErrorIs(t, err, mnerr.ErrProtocol)
}

func TestDecodeMultiReplyRejectsCountMismatch(t *testing.T) {
	items := []Item{{Desc: datatable.Descriptor{Family: datatable.FamilyScalar32}}}
	_, err := DecodeMultiReply(items, nil)
	assert.ErrorIs(t, err, mnerr.ErrProtocol)
}
