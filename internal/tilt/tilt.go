// Package tilt maps iBeacon records broadcast by Tilt hydrometers to
// readings.
package tilt

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"firestige.xyz/tilted/internal/beacon"
)

var ErrUnknownIdentifier = errors.New("tilt: unknown identifier")

// Color identifies a hydrometer by the color of its housing.
type Color uint8

const (
	Red Color = iota + 1
	Green
	Black
	Purple
	Orange
	Blue
	Yellow
	Pink
)

var colorNames = map[Color]string{
	Red:    "red",
	Green:  "green",
	Black:  "black",
	Purple: "purple",
	Orange: "orange",
	Blue:   "blue",
	Yellow: "yellow",
	Pink:   "pink",
}

func (c Color) String() string {
	if s, ok := colorNames[c]; ok {
		return s
	}
	return fmt.Sprintf("color(%d)", uint8(c))
}

func (c Color) MarshalText() ([]byte, error) {
	if _, ok := colorNames[c]; !ok {
		return nil, fmt.Errorf("tilt: invalid color %d", uint8(c))
	}
	return []byte(c.String()), nil
}

// Colors returns every known color in identifier order.
func Colors() []Color {
	return []Color{Red, Green, Black, Purple, Orange, Blue, Yellow, Pink}
}

// Each color's identifier is a495bbX0-c5b1-4b44-b512-1370f02d74de with X
// running 1 through 8.
var identifiers = map[uuid.UUID]Color{
	uuid.MustParse("a495bb10-c5b1-4b44-b512-1370f02d74de"): Red,
	uuid.MustParse("a495bb20-c5b1-4b44-b512-1370f02d74de"): Green,
	uuid.MustParse("a495bb30-c5b1-4b44-b512-1370f02d74de"): Black,
	uuid.MustParse("a495bb40-c5b1-4b44-b512-1370f02d74de"): Purple,
	uuid.MustParse("a495bb50-c5b1-4b44-b512-1370f02d74de"): Orange,
	uuid.MustParse("a495bb60-c5b1-4b44-b512-1370f02d74de"): Blue,
	uuid.MustParse("a495bb70-c5b1-4b44-b512-1370f02d74de"): Yellow,
	uuid.MustParse("a495bb80-c5b1-4b44-b512-1370f02d74de"): Pink,
}

// ColorFor returns the color registered for id.
func ColorFor(id uuid.UUID) (Color, error) {
	c, ok := identifiers[id]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownIdentifier, id)
	}
	return c, nil
}

// Reading is one hydrometer measurement.
type Reading struct {
	Color Color `json:"color"`
	// Temperature in degrees Fahrenheit.
	Temperature uint16 `json:"temperature"`
	// Gravity is the specific gravity, e.g. 1.050.
	Gravity float64 `json:"gravity"`
}

// FromBeacon converts a record into a reading. The major field carries the
// temperature and the minor field the gravity in thousandths.
func FromBeacon(r beacon.Record) (Reading, error) {
	c, err := ColorFor(r.UUID)
	if err != nil {
		return Reading{}, err
	}
	return Reading{
		Color:       c,
		Temperature: r.Major,
		Gravity:     float64(r.Minor) / 1000,
	}, nil
}

// Fields exposes the reading as a flat map for templates and log fields.
func (r Reading) Fields() map[string]any {
	return map[string]any{
		"color":       r.Color.String(),
		"temperature": r.Temperature,
		"gravity":     r.Gravity,
	}
}
