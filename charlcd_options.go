/*
Copyright 2024 Tim St. Pierre
Options for character LCD displays
*/
package charlcd

import (
	"errors"
	"fmt"
)

// Font selects the character cell height.
type Font uint8

const (
	Font5x8 Font = iota
	Font5x10
)

func (f Font) String() string {
	switch f {
	case Font5x8:
		return "5x8"
	case Font5x10:
		return "5x10"
	}
	return fmt.Sprintf("Font(%d)", uint8(f))
}

// MaxCols is the widest single controller line supported.
const MaxCols = 20

type Opts struct {
	// The I²C address of the expander. Zero means scan the bus and use the
	// lowest address that answers.
	Address uint16
	// How many lines does the display have: 1, 2 or 4
	Rows uint8
	Cols uint8
	Font Font
	// Backlight state after Init.
	Backlight bool
	Cursor    bool
	Blink     bool
	// Pins describes how the expander is wired to the LCD.
	Pins PinMap
}

var DefaultOpts = Opts{
	Rows:      4,
	Cols:      20,
	Font:      Font5x8,
	Backlight: true,
	Pins:      PCF8574Backpack,
}

// Validate checks the geometry, font and pin map.
func (o *Opts) Validate() error {
	switch o.Rows {
	case 1, 2, 4:
	default:
		return fmt.Errorf("charlcd: %d rows not supported", o.Rows)
	}
	if o.Cols == 0 || o.Cols > MaxCols {
		return fmt.Errorf("charlcd: %d cols not supported", o.Cols)
	}
	switch o.Font {
	case Font5x8:
	case Font5x10:
		if o.Rows != 1 {
			return errors.New("charlcd: 5x10 font requires a single line display")
		}
	default:
		return fmt.Errorf("charlcd: unknown font %d", o.Font)
	}
	if o.Address > 0x7f {
		return fmt.Errorf("charlcd: address 0x%x is not a 7 bit address", o.Address)
	}
	return o.Pins.Validate()
}

// rowOffsets returns the DDRAM base address of each row. The controller
// lays 4 line panels out as two interleaved 40 byte lines, so the table
// depends on the panel width.
func (o *Opts) rowOffsets() []byte {
	switch {
	case o.Rows == 1:
		return []byte{0x00}
	case o.Rows == 2:
		return []byte{0x00, 0x40}
	case o.Cols == 16:
		return []byte{0x00, 0x40, 0x10, 0x50}
	default:
		return []byte{0x00, 0x40, 0x14, 0x54}
	}
}
