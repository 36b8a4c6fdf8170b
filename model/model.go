// Package model holds the typed event, alarm and remote-display
// records the high-level client API returns (spec §4.8, §3).
package model

import (
	"strings"
	"time"

	"github.com/mita-teknik/mnet/datapoint"
)

// MaxEvents is the bound on the controller's event stack (spec §3).
const MaxEvents = 100

// EventChunkSize is the maximum number of events fetched per
// controller request when batching (spec §4.7).
const EventChunkSize = 4

// DisplayBufferLength is the raw size of the remote display buffer.
const DisplayBufferLength = 138

// DisplayLineLength is the width of one rendered LCD row.
const DisplayLineLength = 18

// EventRecord is one entry in the controller's event stack. Index 0
// is most recent.
type EventRecord struct {
	Index     uint8
	Code      uint16
	Timestamp time.Time
	Text      string
}

// AlarmSentinelNever is the encoded timestamp meaning "never
// occurred" for an alarm record (2032-05-09 UTC midnight, spec §6.6).
var AlarmSentinelNever = time.Date(2032, 5, 9, 0, 0, 0, 0, time.UTC)

// AlarmRecord describes one alarm sub-id's last known state.
type AlarmRecord struct {
	SubID        uint16
	LastOccurred time.Time
	Description  string
	HasOccurred  bool
}

// NewAlarmRecord builds an AlarmRecord from a decoded timestamp and
// cached description, resolving the has-occurred flag against the
// sentinel "never" value.
func NewAlarmRecord(subID uint16, lastOccurred time.Time, description string) AlarmRecord {
	return AlarmRecord{
		SubID:        subID,
		LastOccurred: lastOccurred,
		Description:  description,
		HasOccurred:  !lastOccurred.Equal(AlarmSentinelNever),
	}
}

// ParseEvent decodes one event stack entry: code:u16, timestamp (u32
// BE controller epoch), then ASCII text, trimmed.
func ParseEvent(index uint8, raw []byte) EventRecord {
	code := uint16(raw[0])<<8 | uint16(raw[1])
	ts := uint32(raw[2])<<24 | uint32(raw[3])<<16 | uint32(raw[4])<<8 | uint32(raw[5])
	text := strings.TrimRight(string(raw[6:]), " \x00")
	return EventRecord{
		Index:     index,
		Code:      code,
		Timestamp: datapoint.DecodeTimestamp(ts),
		Text:      text,
	}
}

// DisplayBuffer is the raw 138-byte remote display payload.
type DisplayBuffer [DisplayBufferLength]byte

// Lines renders the buffer as successive 18-char rows with trailing
// padding stripped.
func (b DisplayBuffer) Lines() []string {
	var lines []string
	for off := 0; off+DisplayLineLength <= len(b); off += DisplayLineLength {
		row := strings.TrimRight(string(b[off:off+DisplayLineLength]), " \x00")
		lines = append(lines, row)
	}
	return lines
}
