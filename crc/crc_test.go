package crc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeXmodemCheckValue(t *testing.T) {
	// Canonical CRC-16/XMODEM check value for ASCII "123456789".
	assert.EqualValues(t, 0x31C3, Compute([]byte("123456789")))
}

func TestSingleMatchesUpdate(t *testing.T) {
	data := []byte{0x01, 0xFB, 0x01, 0x0C, 0x28, 0x04, 0xC3, 0x53, 0x00, 0x01}
	var running CRC16
	for _, b := range data {
		running.Single(b)
	}
	assert.EqualValues(t, Compute(data), uint16(running))
}

func TestEmptyInput(t *testing.T) {
	assert.EqualValues(t, 0x0000, Compute(nil))
}
