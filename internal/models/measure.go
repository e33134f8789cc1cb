package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Measure is an optional dive measurement (depth, temperatures, ...). The dive
// store keeps whatever clients sent, so a value may arrive as a JSON number, a
// JSON string or null, and a Measure remembers which. The zero Measure means
// "not recorded" and is dropped from payloads by omitzero.
type Measure struct {
	text    string
	numeric bool
}

// MeasureOf builds a Measure from free text, trimming surrounding whitespace.
func MeasureOf(s string) Measure {
	return Measure{text: strings.TrimSpace(s)}
}

// NumberMeasure builds a Measure holding a JSON number.
func NumberMeasure(f float64) Measure {
	return Measure{text: FormatNumber(f), numeric: true}
}

// IsSet reports whether a value was recorded.
func (m Measure) IsSet() bool {
	return m.text != ""
}

// IsZero reports an unset Measure; encoding/json uses it for omitzero.
func (m Measure) IsZero() bool {
	return !m.IsSet()
}

// IsNumber reports whether the value arrived as a JSON number.
func (m Measure) IsNumber() bool {
	return m.numeric
}

// Truthy reports whether the value is set and is not a numeric zero. Text is
// truthy whatever it says, so a stored "0" still counts as recorded.
func (m Measure) Truthy() bool {
	if !m.IsSet() {
		return false
	}
	if m.numeric {
		f, _ := m.Float()
		return f != 0
	}
	return true
}

// Float returns the numeric value when the measure holds a number.
func (m Measure) Float() (float64, bool) {
	f, err := strconv.ParseFloat(m.text, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func (m Measure) String() string {
	return m.text
}

// MarshalJSON sends numbers as JSON numbers and text as JSON strings, the way
// the values were received or typed.
func (m Measure) MarshalJSON() ([]byte, error) {
	if m.numeric {
		if f, ok := m.Float(); ok {
			return json.Marshal(f)
		}
	}
	return json.Marshal(m.text)
}

// UnmarshalJSON accepts numbers, strings, booleans and null.
func (m *Measure) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || bytes.Equal(b, []byte("null")):
		*m = Measure{}
		return nil
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*m = Measure{text: s}
		return nil
	case bytes.Equal(b, []byte("true")) || bytes.Equal(b, []byte("false")):
		*m = Measure{text: string(b)}
		return nil
	}

	f, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return fmt.Errorf("measure: unsupported JSON value %s", b)
	}
	*m = NumberMeasure(f)
	return nil
}
