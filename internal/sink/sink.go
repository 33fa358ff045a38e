// Package sink defines the typed publication targets a host exposes for each
// field of a weather record.
package sink

// Numeric receives a measured value.
type Numeric interface {
	Publish(v float64)
}

// Binary receives an on/off state.
type Binary interface {
	Publish(on bool)
}

// Text receives a string state.
type Text interface {
	Publish(s string)
}

// NumericFunc adapts a function to Numeric.
type NumericFunc func(v float64)

func (f NumericFunc) Publish(v float64) { f(v) }

// BinaryFunc adapts a function to Binary.
type BinaryFunc func(on bool)

func (f BinaryFunc) Publish(on bool) { f(on) }

// TextFunc adapts a function to Text.
type TextFunc func(s string)

func (f TextFunc) Publish(s string) { f(s) }

// Set holds the optional sink for each published field. A nil entry is not
// attached.
type Set struct {
	SensorID   Text
	RSSI       Numeric
	BatteryLow Binary

	Temperature   Numeric
	Humidity      Numeric
	WindGust      Numeric
	WindSpeed     Numeric
	WindDirection Numeric
	Rain          Numeric
	UV            Numeric
	Light         Numeric
}

// Numerics combines several numeric sinks into one. Nil entries are dropped;
// it returns nil when nothing is left.
func Numerics(sinks ...Numeric) Numeric {
	var out multiNumeric
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	switch len(out) {
	case 0:
		return nil
	case 1:
		return out[0]
	}
	return out
}

type multiNumeric []Numeric

func (m multiNumeric) Publish(v float64) {
	for _, s := range m {
		s.Publish(v)
	}
}

// Binaries combines several binary sinks into one.
func Binaries(sinks ...Binary) Binary {
	var out multiBinary
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	switch len(out) {
	case 0:
		return nil
	case 1:
		return out[0]
	}
	return out
}

type multiBinary []Binary

func (m multiBinary) Publish(on bool) {
	for _, s := range m {
		s.Publish(on)
	}
}

// Texts combines several text sinks into one.
func Texts(sinks ...Text) Text {
	var out multiText
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	switch len(out) {
	case 0:
		return nil
	case 1:
		return out[0]
	}
	return out
}

type multiText []Text

func (m multiText) Publish(s string) {
	for _, t := range m {
		t.Publish(s)
	}
}
