package obfuscate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoundTrip(t *testing.T) {
	key := DeriveKey([4]byte{0x01, 0x02, 0x03, 0x04})
	cases := [][]byte{
		{},
		{0x00},
		{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07},
		{0xFF, 0xFF, 0xFF, 0xFF},
	}
	for _, plain := range cases {
		cipher := Encode(plain, key)
		assert.Equal(t, plain, Decode(cipher, key))
	}
}

func TestDeriveKeyDeterministic(t *testing.T) {
	a := DeriveKey([4]byte{0xAA, 0xBB, 0xCC, 0xDD})
	b := DeriveKey([4]byte{0xAA, 0xBB, 0xCC, 0xDD})
	assert.Equal(t, a, b)
	assert.Len(t, a, KeyLength)
}

func TestDifferentSerialsDifferentKeys(t *testing.T) {
	a := DeriveKey([4]byte{0x01, 0x02, 0x03, 0x04})
	b := DeriveKey([4]byte{0x05, 0x06, 0x07, 0x08})
	assert.NotEqual(t, a, b)
}

func TestEncodeChaining(t *testing.T) {
	key := []byte{0xAA}
	plain := []byte{0x01, 0x01, 0x01}
	cipher := Encode(plain, key)
	// First byte only depends on key (prev=0).
	assert.Equal(t, byte(0x01^0xAA^0x00), cipher[0])
	// Second byte additionally depends on the previous plaintext byte.
	assert.Equal(t, byte(0x01^0xAA^0x01), cipher[1])
}
