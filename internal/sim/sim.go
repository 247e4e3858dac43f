/*
Copyright 2024 Tim St. Pierre
Simulated HD44780 behind a PCF8574
*/

// Package sim models an HD44780 controller wired to an 8 bit I²C expander.
// It implements i2c.Bus, decodes every frame written to it the way the
// glass would, and keeps the resulting DDRAM so callers can check what the
// display shows.
package sim

import (
	"errors"
	"fmt"
	"sync"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
)

// Pins gives the expander bit for each LCD signal.
type Pins struct {
	RS, RW, E, BL      uint8
	D4, D5, D6, D7     uint8
	BacklightActiveLow bool
}

// Start is the interface mode the controller is in when the simulation
// begins.
type Start int

const (
	// PowerOn is a cold controller: 8-bit interface.
	PowerOn Start = iota
	// FourBit is a controller left in 4-bit mode between bytes.
	FourBit
	// FourBitMidByte is a controller left in 4-bit mode with a high nibble
	// already latched.
	FourBitMidByte
)

// Instruction is one byte executed by the controller.
type Instruction struct {
	RS    bool
	Value byte
	// FourBit is the interface mode after the instruction ran.
	FourBit bool
}

func (i Instruction) String() string {
	if i.RS {
		return fmt.Sprintf("data(0x%02x)", i.Value)
	}
	return fmt.Sprintf("cmd(0x%02x)", i.Value)
}

// ErrNack is returned for transfers to an address nothing answers on, and
// for injected failures.
var ErrNack = errors.New("sim: no acknowledge")

// Controller is the simulated display. The zero value is not usable, use New.
type Controller struct {
	// FailAt makes the n-th written byte (1 based) fail. Zero never fails.
	FailAt int

	mu   sync.Mutex
	addr uint16
	pins Pins

	fourBit     bool
	highPending bool
	high        byte

	last      byte
	written   int
	frames    []byte
	log       []Instruction
	backlight bool

	ddram     [0x80]byte
	cgram     [0x40]byte
	ac        byte
	inCGRAM   bool
	decrement bool
	twoLines  bool
	font5x10  bool
	on        bool
	cursor    bool
	blink     bool
}

// New returns a controller answering on addr in the given start mode.
func New(addr uint16, pins Pins, start Start) *Controller {
	c := &Controller{addr: addr, pins: pins}
	for i := range c.ddram {
		c.ddram[i] = 0x20
	}
	switch start {
	case FourBit:
		c.fourBit = true
	case FourBitMidByte:
		c.fourBit = true
		c.highPending = true
		c.high = 0x0
	}
	return c
}

// Tx implements i2c.Bus.
func (c *Controller) Tx(addr uint16, w, r []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if addr != c.addr {
		return ErrNack
	}
	for i := range r {
		r[i] = c.last
	}
	for _, b := range w {
		c.written++
		if c.FailAt != 0 && c.written == c.FailAt {
			return ErrNack
		}
		c.apply(b)
	}
	return nil
}

// SetSpeed implements i2c.Bus.
func (c *Controller) SetSpeed(f physic.Frequency) error {
	return nil
}

func (c *Controller) String() string {
	return fmt.Sprintf("sim-hd44780@0x%02x", c.addr)
}

func (c *Controller) bit(b, n byte) bool {
	return b&(1<<n) != 0
}

// apply puts b on the expander outputs. The controller latches D4-D7 and RS
// on the falling edge of E.
func (c *Controller) apply(b byte) {
	wasHigh := c.bit(c.last, c.pins.E)
	c.last = b
	c.frames = append(c.frames, b)
	c.backlight = c.bit(b, c.pins.BL) != c.pins.BacklightActiveLow
	if c.bit(b, c.pins.RW) {
		return
	}
	if wasHigh && !c.bit(b, c.pins.E) {
		c.latch(c.nibble(b), c.bit(b, c.pins.RS))
	}
}

func (c *Controller) nibble(b byte) byte {
	var n byte
	for i, p := range []uint8{c.pins.D4, c.pins.D5, c.pins.D6, c.pins.D7} {
		if c.bit(b, p) {
			n |= 1 << i
		}
	}
	return n
}

func (c *Controller) latch(n byte, rs bool) {
	if !c.fourBit {
		// D0-D3 are not wired and read as low.
		c.execute(n<<4, rs)
		return
	}
	if !c.highPending {
		c.high = n
		c.highPending = true
		return
	}
	c.highPending = false
	c.execute(c.high<<4|n, rs)
}

func (c *Controller) execute(v byte, rs bool) {
	defer func() {
		c.log = append(c.log, Instruction{RS: rs, Value: v, FourBit: c.fourBit})
	}()
	if rs {
		if c.inCGRAM {
			c.cgram[c.ac&0x3f] = v
		} else {
			c.ddram[c.ac&0x7f] = v
		}
		c.step(!c.decrement)
		return
	}
	switch {
	case v&0x80 != 0:
		c.ac = v & 0x7f
		c.inCGRAM = false
	case v&0x40 != 0:
		c.ac = v & 0x3f
		c.inCGRAM = true
	case v&0x20 != 0:
		c.fourBit = v&0x10 == 0
		c.highPending = false
		c.twoLines = v&0x08 != 0
		c.font5x10 = v&0x04 != 0
	case v&0x10 != 0:
		if v&0x08 == 0 {
			c.step(v&0x04 != 0)
		}
	case v&0x08 != 0:
		c.on = v&0x04 != 0
		c.cursor = v&0x02 != 0
		c.blink = v&0x01 != 0
	case v&0x04 != 0:
		c.decrement = v&0x02 == 0
	case v&0x02 != 0:
		c.ac = 0
		c.inCGRAM = false
	case v&0x01 != 0:
		for i := range c.ddram {
			c.ddram[i] = 0x20
		}
		c.ac = 0
		c.inCGRAM = false
		c.decrement = false
	}
}

func (c *Controller) step(forward bool) {
	if forward {
		c.ac++
	} else {
		c.ac--
	}
	if c.inCGRAM {
		c.ac &= 0x3f
	} else {
		c.ac &= 0x7f
	}
}

// Frames returns every byte written to the expander, in order.
func (c *Controller) Frames() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]byte(nil), c.frames...)
}

// Instructions returns every byte the controller executed.
func (c *Controller) Instructions() []Instruction {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Instruction(nil), c.log...)
}

// SinceFourBit returns the instructions executed after the controller last
// entered 4-bit mode.
func (c *Controller) SinceFourBit() []Instruction {
	c.mu.Lock()
	defer c.mu.Unlock()
	start := 0
	for i, in := range c.log {
		if !in.RS && in.Value&0xe0 == 0x20 && in.FourBit {
			if i == 0 || !c.log[i-1].FourBit {
				start = i + 1
			}
		}
	}
	return append([]Instruction(nil), c.log[start:]...)
}

// Reset forgets recorded frames and instructions but keeps the controller
// state.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = nil
	c.log = nil
	c.written = 0
	c.FailAt = 0
}

// FourBitMode reports the interface mode.
func (c *Controller) FourBitMode() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fourBit
}

// Backlight reports the level last driven on the BL pin.
func (c *Controller) Backlight() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.backlight
}

// DisplayOn reports the display control D, C and B flags.
func (c *Controller) DisplayOn() (on, cursor, blink bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.on, c.cursor, c.blink
}

// TwoLines reports the N flag of the last function set.
func (c *Controller) TwoLines() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.twoLines
}

// Address returns the DDRAM or CGRAM address counter.
func (c *Controller) Address() byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ac
}

// Glyph returns the 8 lines of CGRAM character slot.
func (c *Controller) Glyph(slot int) [8]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	var g [8]byte
	copy(g[:], c.cgram[(slot&7)*8:])
	return g
}

// Line returns what row shows on a rows x cols panel. Physical rows 2 and 3
// of a 4 line panel continue DDRAM lines 0 and 1.
func (c *Controller) Line(row, cols int) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	base := (row%2)*0x40 + (row/2)*cols
	out := make([]byte, cols)
	copy(out, c.ddram[base:base+cols])
	return string(out)
}

var _ i2c.Bus = &Controller{}
