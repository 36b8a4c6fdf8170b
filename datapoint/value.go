package datapoint

import "time"

// Epoch is the M-net protocol epoch: 1980-01-01 00:00:00 UTC. Every
// protocol timestamp counts seconds from here (spec §6.6).
var Epoch = time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC)

// Kind discriminates the variant held by a Value.
type Kind int

const (
	KindInt32 Kind = iota
	KindFloat64
	KindText
	KindBytes
	KindTimestamp
	KindStatusCodes
)

// Value is the decoded result of a reply: a tagged union over the
// variants named in spec §3. Exactly one of the typed accessors below
// is meaningful, selected by Kind.
type Value struct {
	Kind        Kind
	Int32       int32
	Float64     float64
	Text        string
	Bytes       []byte
	Timestamp   time.Time
	StatusCodes [2]uint16
}

// EncodeTimestamp converts a UTC wall-clock time into the protocol's
// u32 BE seconds-since-epoch representation.
func EncodeTimestamp(t time.Time) uint32 {
	return uint32(t.UTC().Sub(Epoch).Seconds())
}

// DecodeTimestamp converts the protocol's u32 seconds-since-epoch
// representation back into a UTC time.
func DecodeTimestamp(raw uint32) time.Time {
	return Epoch.Add(time.Duration(raw) * time.Second)
}
