/*
Copyright 2024 Tim St. Pierre
Driver errors
*/
package charlcd

import (
	"errors"
	"fmt"
)

var (
	// ErrNoDevice is returned when no address on the bus acknowledges.
	ErrNoDevice = errors.New("charlcd: no device found")
	// ErrNotInitialized is returned by display operations issued before Init
	// has completed, or after a bus error left the controller indeterminate.
	ErrNotInitialized = errors.New("charlcd: display not initialized")
)

// BusWriteError reports a failed single byte write to the expander. After
// one, the controller's nibble latch is unknown and Init must be run again.
type BusWriteError struct {
	Addr uint16
	Byte byte
	Err  error
}

func (e *BusWriteError) Error() string {
	return fmt.Sprintf("charlcd: write 0x%02x to 0x%02x: %v", e.Byte, e.Addr, e.Err)
}

func (e *BusWriteError) Unwrap() error {
	return e.Err
}
