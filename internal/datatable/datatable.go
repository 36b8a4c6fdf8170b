// Package datatable loads the data-point descriptor table — which
// DataID backs which named point, how its raw reply is scaled, which
// averagings are valid for it — from an INI file, the same way the
// teacher stack loads its Object Dictionary from an EDS (itself an
// INI dialect). This keeps the data-type matrix (spec §4.5) editable
// without a recompile instead of a hard-coded switch statement.
package datatable

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/ini.v1"
)

// Family selects how a reply payload is structured and therefore how
// it must be decoded.
type Family string

const (
	FamilyScalar32  Family = "scalar32"  // raw 32-bit signed, scaled
	FamilyStatus2   Family = "status2"   // 2 x uint16 status codes
	FamilyTimestamp Family = "timestamp" // uint32 BE, seconds since 1980-01-01
	FamilyBytes     Family = "bytes"     // raw bytes, fixed length
	FamilyText      Family = "text"      // ASCII, trimmed
)

// ScaleKind selects the numeric scaling applied to a decoded raw
// scalar32 value (spec §4.5).
type ScaleKind string

const (
	ScaleNone   ScaleKind = "none"
	ScaleDiv10N ScaleKind = "div10n"
	ScaleMul10N ScaleKind = "mul10n"
	ScaleDivN   ScaleKind = "divn"
	ScaleMulN   ScaleKind = "muln"
	ScalePowerW ScaleKind = "powerw"
)

// Descriptor is one row of the data-point table: everything the
// codec needs to build a request for, and parse a reply from, a named
// data point.
type Descriptor struct {
	Name            string
	BaseID          uint32
	Family          Family
	Scale           ScaleKind
	ScaleParam      float64
	Length          int // byte length for FamilyBytes/FamilyText
	ValidAveragings map[byte]bool
	AllAveragingsOK bool
}

// Table is the parsed descriptor set, keyed by point name.
type Table struct {
	descriptors map[string]Descriptor
}

// Load parses an INI descriptor file into a Table. Expected shape:
//
//	[WindSpeed]
//	id = 0x00001000
//	family = scalar32
//	scale = div10n
//	scale_param = 1
//	averagings = current,1min,10min
//
//	[GridPower]
//	id = 0x00001010
//	family = scalar32
//	scale = powerw
//	averagings = all
func Load(path string) (*Table, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("datatable: load %s: %w", path, err)
	}
	return fromFile(cfg)
}

// LoadBytes parses descriptor INI content already in memory.
func LoadBytes(data []byte) (*Table, error) {
	cfg, err := ini.Load(data)
	if err != nil {
		return nil, fmt.Errorf("datatable: parse: %w", err)
	}
	return fromFile(cfg)
}

func fromFile(cfg *ini.File) (*Table, error) {
	t := &Table{descriptors: map[string]Descriptor{}}
	for _, section := range cfg.Sections() {
		name := section.Name()
		if name == ini.DefaultSection {
			continue
		}
		d, err := parseSection(name, section)
		if err != nil {
			return nil, fmt.Errorf("datatable: section %s: %w", name, err)
		}
		t.descriptors[name] = d
	}
	return t, nil
}

func parseSection(name string, section *ini.Section) (Descriptor, error) {
	idStr := section.Key("id").String()
	id, err := strconv.ParseUint(strings.TrimPrefix(idStr, "0x"), 16, 32)
	if err != nil {
		return Descriptor{}, fmt.Errorf("bad id %q: %w", idStr, err)
	}

	d := Descriptor{
		Name:            name,
		BaseID:          uint32(id),
		Family:          Family(section.Key("family").MustString(string(FamilyScalar32))),
		Scale:           ScaleKind(section.Key("scale").MustString(string(ScaleNone))),
		ScaleParam:      section.Key("scale_param").MustFloat64(0),
		Length:          section.Key("length").MustInt(4),
		ValidAveragings: map[byte]bool{},
	}

	avgField := strings.TrimSpace(section.Key("averagings").MustString("all"))
	if avgField == "" || strings.EqualFold(avgField, "all") {
		d.AllAveragingsOK = true
	} else {
		for _, tok := range strings.Split(avgField, ",") {
			code, ok := averagingCodeByName[strings.TrimSpace(tok)]
			if !ok {
				return Descriptor{}, fmt.Errorf("unknown averaging %q", tok)
			}
			d.ValidAveragings[code] = true
		}
	}
	return d, nil
}

// averagingCodeByName mirrors datapoint.Averaging's byte codes so the
// INI table can be written with human-readable names. Duplicated
// rather than imported to keep datatable free of a dependency on the
// codec package it feeds.
var averagingCodeByName = map[string]byte{
	"current": 0x00,
	"20ms":    0x01,
	"100ms":   0x02,
	"1s":      0x03,
	"30s":     0x04,
	"1min":    0x05,
	"10min":   0x06,
	"30min":   0x07,
	"1hr":     0x08,
	"24hr":    0x09,
}

// Lookup returns the descriptor for a named data point.
func (t *Table) Lookup(name string) (Descriptor, bool) {
	d, ok := t.descriptors[name]
	return d, ok
}

// Names returns every data point name in the table.
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.descriptors))
	for n := range t.descriptors {
		names = append(names, n)
	}
	return names
}

// AveragingAllowed reports whether avgCode is a valid averaging
// selector for this descriptor.
func (d Descriptor) AveragingAllowed(avgCode byte) bool {
	if d.AllAveragingsOK {
		return true
	}
	return d.ValidAveragings[avgCode]
}
