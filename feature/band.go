package feature

import "fmt"

// Band identifies one of the fixed EEG frequency bands.
type Band int

const (
	Delta Band = iota
	Theta
	Alpha
	Beta
	Gamma
)

// NumBands is the number of defined bands.
const NumBands = 5

// Range is an inclusive frequency interval in Hz.
type Range struct {
	Lo float64 `json:"lo" yaml:"lo"`
	Hi float64 `json:"hi" yaml:"hi"`
}

// Mid returns the centre of the range.
func (r Range) Mid() float64 {
	return (r.Lo + r.Hi) / 2
}

// Valid reports whether the range is non-empty and non-negative.
func (r Range) Valid() bool {
	return r.Lo >= 0 && r.Hi > r.Lo
}

var bandInfo = [NumBands]struct {
	name string
	rng  Range
}{
	Delta: {"delta", Range{0.5, 4}},
	Theta: {"theta", Range{4, 8}},
	Alpha: {"alpha", Range{8, 12}},
	Beta:  {"beta", Range{12, 30}},
	Gamma: {"gamma", Range{30, 45}},
}

// Bands returns all bands in ascending frequency order.
func Bands() []Band {
	return []Band{Delta, Theta, Alpha, Beta, Gamma}
}

// String returns the lower-case band name.
func (b Band) String() string {
	if !b.Valid() {
		return fmt.Sprintf("band(%d)", int(b))
	}

	return bandInfo[b].name
}

// Valid reports whether b is one of the defined bands.
func (b Band) Valid() bool {
	return b >= Delta && b <= Gamma
}

// Range returns the band's frequency interval.
func (b Band) Range() Range {
	if !b.Valid() {
		return Range{}
	}

	return bandInfo[b].rng
}

// ParseBand maps a band name to its Band.
func ParseBand(name string) (Band, error) {
	for _, b := range Bands() {
		if b.String() == name {
			return b, nil
		}
	}

	return 0, fmt.Errorf("feature: unknown band %q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (b Band) MarshalText() ([]byte, error) {
	if !b.Valid() {
		return nil, fmt.Errorf("feature: invalid band %d", int(b))
	}

	return []byte(b.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (b *Band) UnmarshalText(text []byte) error {
	parsed, err := ParseBand(string(text))
	if err != nil {
		return err
	}

	*b = parsed

	return nil
}
