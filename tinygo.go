/*
Copyright 2024 Tim St. Pierre
Adapter for TinyGo I2C buses
*/
package charlcd

import (
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
	"tinygo.org/x/drivers"
)

// TinyGoBus lets a tinygo.org/x/drivers I²C bus (machine.I2C0 and the like)
// carry the display. The bus speed is whatever the board configured.
func TinyGoBus(b drivers.I2C) i2c.Bus {
	return &tinyGoBus{b: b}
}

type tinyGoBus struct {
	b drivers.I2C
}

func (t *tinyGoBus) Tx(addr uint16, w, r []byte) error {
	return t.b.Tx(addr, w, r)
}

func (t *tinyGoBus) SetSpeed(f physic.Frequency) error {
	return nil
}

func (t *tinyGoBus) String() string {
	return "tinygo-i2c"
}
