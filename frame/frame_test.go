package frame

import (
	"testing"
	"time"

	"github.com/mita-teknik/mnet/mnerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRequestData(t *testing.T) {
	out, err := Build(0x01, 0xFB, 0x0C28, []byte{0xC3, 0x53, 0x00, 0x01})
	require.NoError(t, err)

	assert.Equal(t, byte(0x01), out[0]) // SOH
	assert.Equal(t, []byte{0x01, 0xFB, 0x0C, 0x28, 0x04, 0xC3, 0x53, 0x00, 0x01}, out[1:10])
	assert.Equal(t, byte(0x04), out[len(out)-1]) // EOT
	assert.Len(t, out, 13)                       // SOH + 9 header/payload + 2 CRC + EOT
}

func TestParseReplyWithEscape(t *testing.T) {
	// dst=0xFB src=0x01 type=0x0C29 payload=FF 41, escaped as FF FF.
	unescapedHeader := []byte{0xFB, 0x01, 0x0C, 0x29, 0x02, 0xFF, 0x41}
	sum := crc16(unescapedHeader)

	raw := []byte{0x01, 0xFB, 0x01, 0x0C, 0x29, 0x02, 0xFF, 0xFF, 0x41, byte(sum >> 8), byte(sum), 0x04}

	f, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, byte(0xFB), f.Dst)
	assert.Equal(t, byte(0x01), f.Src)
	assert.Equal(t, uint16(0x0C29), f.Type)
	assert.Equal(t, []byte{0xFF, 0x41}, f.Payload)
}

func crc16(b []byte) uint16 {
	// Local helper mirroring crc.Compute to keep this test self
	// contained from the crc package's own test vectors.
	const poly = 0x1021
	var table [256]uint16
	for i := 0; i < 256; i++ {
		c := uint16(i) << 8
		for bit := 0; bit < 8; bit++ {
			if c&0x8000 != 0 {
				c = c<<1 ^ poly
			} else {
				c <<= 1
			}
		}
		table[i] = c
	}
	var crc uint16
	for _, b := range b {
		crc = table[byte(crc>>8)^b] ^ (crc << 8)
	}
	return crc
}

func TestBuildParseRoundTrip(t *testing.T) {
	payloads := [][]byte{
		{},
		{0x00},
		{0xFF, 0xFF, 0xFF},
		make([]byte, 255),
	}
	for _, p := range payloads {
		out, err := Build(0x01, 0xFB, 0x0C2A, p)
		require.NoError(t, err)

		f, err := Parse(out)
		require.NoError(t, err)
		assert.Equal(t, byte(0x01), f.Dst)
		assert.Equal(t, byte(0xFB), f.Src)
		assert.Equal(t, uint16(0x0C2A), f.Type)
		assert.Equal(t, p, f.Payload)
	}
}

func TestBuildPayloadTooLarge(t *testing.T) {
	_, err := Build(0x01, 0xFB, 0x0C28, make([]byte, 256))
	assert.ErrorIs(t, err, mnerr.ErrFrameTooLarge)
}

func TestParseRejectsBadCrc(t *testing.T) {
	out, err := Build(0x01, 0xFB, 0x0C28, []byte{0x01, 0x02})
	require.NoError(t, err)
	out[len(out)-3] ^= 0xFF // corrupt a CRC byte

	_, err = Parse(out)
	assert.ErrorIs(t, err, mnerr.ErrBadCrc)
}

func TestParseRejectsMissingDelimiters(t *testing.T) {
	_, err := Parse([]byte{0x02, 0x03})
	assert.ErrorIs(t, err, mnerr.ErrBadFraming)
}

func TestParseRejectsBadLength(t *testing.T) {
	out, err := Build(0x01, 0xFB, 0x0C28, []byte{0x01, 0x02, 0x03})
	require.NoError(t, err)
	// Shrink LEN field without touching payload, to desync it.
	out[5] = 0x02

	_, err = Parse(out)
	assert.ErrorIs(t, err, mnerr.ErrBadLength)
}

type scriptedChannel struct {
	chunks [][]byte
	pos    int
}

func (s *scriptedChannel) Read(n int, deadline time.Time) ([]byte, error) {
	if s.pos >= len(s.chunks) {
		return nil, mnerr.ErrTimeout
	}
	c := s.chunks[s.pos]
	s.pos++
	return c, nil
}

func (s *scriptedChannel) Write(p []byte) error { return nil }
func (s *scriptedChannel) ClearInput() error    { return nil }

func TestReadOneSkipsLeadingGarbage(t *testing.T) {
	frameBytes, err := Build(0x01, 0xFB, 0x0C28, []byte{0x01})
	require.NoError(t, err)

	noise := []byte{0x99, 0x00, 0xAA}
	var chunks [][]byte
	for _, b := range noise {
		chunks = append(chunks, []byte{b})
	}
	for _, b := range frameBytes {
		chunks = append(chunks, []byte{b})
	}
	ch := &scriptedChannel{chunks: chunks}

	got, err := ReadOne(ch, time.Now().Add(time.Second))
	require.NoError(t, err)
	assert.Equal(t, frameBytes, got)
}

func TestReadOneTimesOutWithoutEot(t *testing.T) {
	ch := &scriptedChannel{chunks: [][]byte{{0x01}, {0xFB}}}
	_, err := ReadOne(ch, time.Now().Add(time.Second))
	assert.ErrorIs(t, err, mnerr.ErrTimeout)
}
