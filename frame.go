/*
Copyright 2024 Tim St. Pierre
Expander pin wiring and frame encoding
*/
package charlcd

import (
	"errors"
	"fmt"
)

// PinMap says which expander output bit drives each LCD signal. Values are
// bit positions 0-7.
type PinMap struct {
	RS uint8
	RW uint8
	E  uint8
	BL uint8
	D4 uint8
	D5 uint8
	D6 uint8
	D7 uint8
	// BacklightActiveLow is set on boards where the backlight transistor
	// switches on with the BL bit cleared.
	BacklightActiveLow bool
}

// PCF8574Backpack is the wiring of the common blue LCD1602/LCD2004 I²C
// backpack.
var PCF8574Backpack = PinMap{RS: 0, RW: 1, E: 2, BL: 3, D4: 4, D5: 5, D6: 6, D7: 7}

// MJKDZBackpack is the wiring of the mjkdz backpack, data on the low bits
// and an inverted backlight.
var MJKDZBackpack = PinMap{D4: 0, D5: 1, D6: 2, D7: 3, E: 4, RW: 5, RS: 6, BL: 7, BacklightActiveLow: true}

// Validate checks that every signal has its own bit.
func (p PinMap) Validate() error {
	var seen byte
	for _, b := range []uint8{p.RS, p.RW, p.E, p.BL, p.D4, p.D5, p.D6, p.D7} {
		if b > 7 {
			return fmt.Errorf("charlcd: pin bit %d out of range", b)
		}
		if seen&(1<<b) != 0 {
			return errors.New("charlcd: pin bit used twice in pin map")
		}
		seen |= 1 << b
	}
	return nil
}

// Encode builds the expander byte for one nibble on D4-D7. R/W is always
// driven low.
func (p PinMap) Encode(nibble byte, rs, enable, backlight bool) byte {
	var out byte
	out = setBit(out, p.D4, nibble&0x01 != 0)
	out = setBit(out, p.D5, nibble&0x02 != 0)
	out = setBit(out, p.D6, nibble&0x04 != 0)
	out = setBit(out, p.D7, nibble&0x08 != 0)
	out = setBit(out, p.RS, rs)
	out = setBit(out, p.E, enable)
	out = setBit(out, p.BL, backlight != p.BacklightActiveLow)
	return out
}

// withEnable returns frame with the E bit forced to the given level.
func (p PinMap) withEnable(frame byte, on bool) byte {
	return setBit(frame, p.E, on)
}

// withBacklight returns frame with the BL bit switched to match on.
func (p PinMap) withBacklight(frame byte, on bool) byte {
	return setBit(frame, p.BL, on != p.BacklightActiveLow)
}

func setBit(data, bit byte, value bool) byte {
	if value {
		return data | 1<<bit
	}
	return data &^ (1 << bit)
}
