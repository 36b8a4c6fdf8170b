// Package obfuscate implements the serial-number-seeded XOR-chain used
// to obscure M-net authentication payloads and selected data reads and
// writes. This is obfuscation, not encryption: it carries no secrecy
// claim (see spec §4.3/§9).
//
// Only the single key-schedule and chaining variant required by the
// WP3000/IC1000 family is implemented. The reverse-engineering catalog
// of 40+ manufacturer-indexed variants referenced in the protocol's
// design notes is informational only and intentionally not
// reproduced here (spec §9, Open Questions: "Obfuscation variant
// selection").
package obfuscate

// KeyLength is the length of the derived key schedule for the one
// variant this package implements.
const KeyLength = 4

// magic is the fixed constant folded into the serial number when
// deriving the key. Its value is part of the single hard-coded
// variant this package implements; see spec §4.3.
var magic = [KeyLength]byte{0x4D, 0x69, 0x74, 0x61} // "Mita"

// DeriveKey derives the obfuscation key schedule from a 4-byte
// controller serial number. The transform is deterministic and pure.
func DeriveKey(serial [4]byte) []byte {
	key := make([]byte, KeyLength)
	for i, b := range serial {
		key[i] = b ^ magic[i]
	}
	return key
}

// Encode obfuscates plaintext with key. Each output byte depends on
// the current input byte, the current key byte (cycled modulo
// len(key)), and the previous input byte — the first byte uses an
// initial "previous" value of zero.
func Encode(plaintext []byte, key []byte) []byte {
	out := make([]byte, len(plaintext))
	var prev byte
	for i, x := range plaintext {
		k := key[i%len(key)]
		out[i] = x ^ k ^ prev
		prev = x
	}
	return out
}

// Decode is the exact inverse of Encode: decode(encode(x, k), k) = x
// for all x and k.
func Decode(ciphertext []byte, key []byte) []byte {
	out := make([]byte, len(ciphertext))
	var prev byte
	for i, c := range ciphertext {
		k := key[i%len(key)]
		x := c ^ k ^ prev
		out[i] = x
		prev = x
	}
	return out
}
