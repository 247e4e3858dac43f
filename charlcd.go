/*
Copyright 2024 Tim St. Pierre
Controls an HD44780 character LCD display through a PCF8574 I2C backpack
Thanks to Dave Cheney for figuring out the registers!
*/

// Package charlcd drives HD44780 compatible character displays (LCD1602,
// LCD2004 and friends) that sit behind an 8 bit I²C port expander. The
// controller runs in 4-bit mode; every byte is sent as two nibbles, each
// latched by toggling the enable line through the expander.
//
// The controller has no completion signal the driver can read, so every
// call blocks for the datasheet execution time of what it sent. A Dev is
// not safe for concurrent use; callers that share one must serialize.
package charlcd

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/i2c"
)

const (
	// Commands
	cmdClearDisplay       = 0x01
	cmdReturnHome         = 0x02
	cmdEntryMode          = 0x04
	cmdDisplayControl     = 0x08
	cmdCursorDisplayShift = 0x10
	cmdFunctionSet        = 0x20
	cmdCGRAMSet           = 0x40
	cmdDDRAMSet           = 0x80

	// Options
	optIncrement     = 0x02 // cmdEntryMode
	optEnableDisplay = 0x04 // cmdDisplayControl
	optEnableCursor  = 0x02 // cmdDisplayControl
	optEnableBlink   = 0x01 // cmdDisplayControl
	optShiftRight    = 0x04 // cmdCursorDisplayShift, 0 = left
	opt2Lines        = 0x08 // cmdFunctionSet, 0 = 1 line
	opt5x10Dots      = 0x04 // cmdFunctionSet, 0 = 5x8 dots
)

// Dev is a character display session. Create it with New or NewI2C.
type Dev struct {
	t       transport
	addr    uint16
	opts    Opts
	pins    PinMap
	offsets []byte

	// shadow is the last byte written to the expander, always with E low
	// between calls.
	shadow    byte
	backlight bool
	on        bool
	cursor    bool
	blink     bool
	row, col  int
	state     initState

	sleep func(time.Duration)
}

// New returns a device on bus b without touching the display. If
// opts.Address is zero the bus is scanned and the lowest responding address
// is used. Init must be called before anything is shown.
//
// Use default options if nil is used.
func New(b i2c.Bus, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	addr := opts.Address
	if addr == 0 {
		found, err := Discover(b)
		if err != nil {
			return nil, err
		}
		addr = found[0]
		log.Infof("charlcd: using device at 0x%02x", addr)
	}
	return &Dev{
		t:         newTransport(b, addr),
		addr:      addr,
		opts:      *opts,
		pins:      opts.Pins,
		offsets:   opts.rowOffsets(),
		backlight: opts.Backlight,
		on:        true,
		cursor:    opts.Cursor,
		blink:     opts.Blink,
		sleep:     time.Sleep,
	}, nil
}

// NewI2C returns an initialized device that communicates over I²C.
//
// Use default options if nil is used.
func NewI2C(b i2c.Bus, opts *Opts) (*Dev, error) {
	d, err := New(b, opts)
	if err != nil {
		return nil, err
	}
	if err := d.Init(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Dev) String() string {
	return fmt.Sprintf("charlcd{%s %dx%d}", d.t, d.opts.Cols, d.opts.Rows)
}

// Addr returns the bus address in use.
func (d *Dev) Addr() uint16 {
	return d.addr
}

// Halt clears the screen, turns the display off and the backlight off.
func (d *Dev) Halt() error {
	if err := d.Clear(); err != nil {
		return err
	}
	if err := d.Display(false); err != nil {
		return err
	}
	return d.SetBacklight(false)
}

func (d *Dev) ready() error {
	if d.state != stateReady {
		return ErrNotInitialized
	}
	return nil
}

// Clear blanks the display and moves the cursor to row 0, column 0.
func (d *Dev) Clear() error {
	if err := d.ready(); err != nil {
		return err
	}
	if err := d.command(cmdClearDisplay); err != nil {
		return err
	}
	d.row, d.col = 0, 0
	return nil
}

// Home moves the cursor to row 0, column 0 and undoes any display shift.
func (d *Dev) Home() error {
	if err := d.ready(); err != nil {
		return err
	}
	if err := d.command(cmdReturnHome); err != nil {
		return err
	}
	d.row, d.col = 0, 0
	return nil
}

// MoveTo puts the cursor at a 0 based row and column. Positions outside the
// display are ignored, the way the cursor can't leave the glass.
func (d *Dev) MoveTo(row, col int) error {
	if err := d.ready(); err != nil {
		return err
	}
	if row < 0 || row >= int(d.opts.Rows) || col < 0 || col >= int(d.opts.Cols) {
		log.Debugf("charlcd: ignoring move to %d,%d outside %dx%d", row, col, d.opts.Cols, d.opts.Rows)
		return nil
	}
	if err := d.command(cmdDDRAMSet | (d.offsets[row] + byte(col))); err != nil {
		return err
	}
	d.row, d.col = row, col
	return nil
}

// WriteText writes text from the cursor. Nothing wraps: characters past the
// last column are dropped. It returns how many characters reached the
// display. Bytes are sent as controller character codes.
func (d *Dev) WriteText(text string) (int, error) {
	if err := d.ready(); err != nil {
		return 0, err
	}
	n := 0
	for i := 0; i < len(text) && d.col < int(d.opts.Cols); i++ {
		if err := d.data(text[i]); err != nil {
			return n, err
		}
		d.col++
		n++
	}
	if n < len(text) {
		log.Debugf("charlcd: clipped %d characters on row %d", len(text)-n, d.row)
	}
	return n, nil
}

// WriteTextAt moves to row, col and writes text there. Nothing is written if
// the position is off the display.
func (d *Dev) WriteTextAt(text string, row, col int) (int, error) {
	if err := d.ready(); err != nil {
		return 0, err
	}
	if row < 0 || row >= int(d.opts.Rows) || col < 0 || col >= int(d.opts.Cols) {
		log.Debugf("charlcd: ignoring write at %d,%d outside %dx%d", row, col, d.opts.Cols, d.opts.Rows)
		return 0, nil
	}
	if err := d.MoveTo(row, col); err != nil {
		return 0, err
	}
	return d.WriteText(text)
}

// Write implements io.Writer. Clipped bytes count as written.
func (d *Dev) Write(p []byte) (int, error) {
	if _, err := d.WriteText(string(p)); err != nil {
		return 0, err
	}
	return len(p), nil
}

// WriteString implements display.TextDisplay.
func (d *Dev) WriteString(text string) (int, error) {
	return d.Write([]byte(text))
}

// ClearLine blanks one row and leaves the cursor at its start.
func (d *Dev) ClearLine(row int) error {
	if err := d.ready(); err != nil {
		return err
	}
	if row < 0 || row >= int(d.opts.Rows) {
		return nil
	}
	if err := d.MoveTo(row, 0); err != nil {
		return err
	}
	for c := 0; c < int(d.opts.Cols); c++ {
		if err := d.data(' '); err != nil {
			return err
		}
	}
	return d.MoveTo(row, 0)
}

// SetBacklight switches the backlight. The new level is kept for every
// following frame.
func (d *Dev) SetBacklight(on bool) error {
	if err := d.ready(); err != nil {
		return err
	}
	d.backlight = on
	return d.writeFrame(d.pins.withBacklight(d.shadow, on))
}

// BacklightOn reports the backlight level currently driven.
func (d *Dev) BacklightOn() bool {
	return d.backlight
}

// Backlight implements display.DisplayBacklight. Any non-zero intensity is
// on; the backpack can't dim.
func (d *Dev) Backlight(intensity display.Intensity) error {
	return d.SetBacklight(intensity > 0)
}

// Display turns the whole display on or off without losing its contents.
func (d *Dev) Display(on bool) error {
	if err := d.ready(); err != nil {
		return err
	}
	d.on = on
	return d.command(d.displayControl())
}

// Cursor sets the cursor mode. You can pass multiple arguments.
// Cursor(display.CursorOff, display.CursorUnderline)
func (d *Dev) Cursor(modes ...display.CursorMode) error {
	if err := d.ready(); err != nil {
		return err
	}
	for _, mode := range modes {
		switch mode {
		case display.CursorOff:
			d.cursor = false
			d.blink = false
		case display.CursorUnderline:
			d.cursor = true
		case display.CursorBlink, display.CursorBlock:
			d.blink = true
		default:
			return fmt.Errorf("charlcd: unexpected cursor: %d", mode)
		}
	}
	return d.command(d.displayControl())
}

// Move shifts the cursor one cell. It stops at the edges.
func (d *Dev) Move(dir display.CursorDirection) error {
	if err := d.ready(); err != nil {
		return err
	}
	switch dir {
	case display.Forward:
		if d.col+1 >= int(d.opts.Cols) {
			return nil
		}
		if err := d.command(cmdCursorDisplayShift | optShiftRight); err != nil {
			return err
		}
		d.col++
	case display.Backward:
		if d.col == 0 {
			return nil
		}
		if err := d.command(cmdCursorDisplayShift); err != nil {
			return err
		}
		d.col--
	case display.Up:
		return d.MoveTo(d.row-1, d.col)
	case display.Down:
		return d.MoveTo(d.row+1, d.col)
	default:
		return fmt.Errorf("charlcd: unexpected direction: %d", dir)
	}
	return nil
}

// AutoScroll is not supported: shifting the display would undo clipping.
func (d *Dev) AutoScroll(enabled bool) error {
	return fmt.Errorf("charlcd: %w", display.ErrNotImplemented)
}

// CreateChar stores a 5 pixel wide glyph in CGRAM slot 0-7. Print it with
// the byte value of the slot. The cursor is put back where it was.
func (d *Dev) CreateChar(slot int, pattern [8]byte) error {
	if err := d.ready(); err != nil {
		return err
	}
	if slot < 0 || slot > 7 {
		return fmt.Errorf("charlcd: character slot %d not in 0-7", slot)
	}
	if err := d.command(cmdCGRAMSet | byte(slot)<<3); err != nil {
		return err
	}
	for _, line := range pattern {
		if err := d.data(line & 0x1f); err != nil {
			return err
		}
	}
	return d.command(cmdDDRAMSet | (d.offsets[d.row] + byte(d.col)))
}

// Rows returns the number of rows.
func (d *Dev) Rows() int {
	return int(d.opts.Rows)
}

// Cols returns the number of columns.
func (d *Dev) Cols() int {
	return int(d.opts.Cols)
}

// MinRow returns 0, rows are 0 based.
func (d *Dev) MinRow() int {
	return 0
}

// MinCol returns 0, columns are 0 based.
func (d *Dev) MinCol() int {
	return 0
}

func (d *Dev) functionSet() byte {
	option := byte(cmdFunctionSet)
	if d.opts.Rows > 1 {
		option |= opt2Lines
	}
	if d.opts.Font == Font5x10 {
		option |= opt5x10Dots
	}
	return option
}

func (d *Dev) displayControl() byte {
	option := byte(cmdDisplayControl)
	if d.on {
		option |= optEnableDisplay
	}
	if d.cursor {
		option |= optEnableCursor
	}
	if d.blink {
		option |= optEnableBlink
	}
	return option
}

var _ display.TextDisplay = &Dev{}
var _ display.DisplayBacklight = &Dev{}
var _ conn.Resource = &Dev{}
