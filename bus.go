/*
Copyright 2024 Tim St. Pierre
I²C transport for the expander
*/
package charlcd

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/i2c"
)

const (
	// First and last non-reserved 7 bit addresses.
	scanFirst uint16 = 0x08
	scanLast  uint16 = 0x77
)

// Discover probes the bus and returns every address that acknowledges a one
// byte read, lowest first. It returns ErrNoDevice when nothing answers.
//
// A read is harmless on a PCF857x: it only samples the quasi-bidirectional
// pins.
func Discover(b i2c.Bus) ([]uint16, error) {
	var found []uint16
	r := make([]byte, 1)
	for addr := scanFirst; addr <= scanLast; addr++ {
		if err := b.Tx(addr, nil, r); err != nil {
			continue
		}
		log.Debugf("charlcd: device at 0x%02x", addr)
		found = append(found, addr)
	}
	if len(found) == 0 {
		return nil, fmt.Errorf("%w on %s", ErrNoDevice, b)
	}
	return found, nil
}

// transport writes single bytes to one expander address.
type transport struct {
	d *i2c.Dev
}

func newTransport(b i2c.Bus, addr uint16) transport {
	return transport{d: &i2c.Dev{Bus: b, Addr: addr}}
}

// write sends one byte. It is never retried here: the controller may already
// have acted on an enable edge.
func (t transport) write(b byte) error {
	if _, err := t.d.Write([]byte{b}); err != nil {
		log.Warnf("charlcd: bus write 0x%02x to 0x%02x failed: %v", b, t.d.Addr, err)
		return &BusWriteError{Addr: t.d.Addr, Byte: b, Err: err}
	}
	return nil
}

func (t transport) String() string {
	return t.d.String()
}
