/*
Copyright 2024 Tim St. Pierre
4-bit bus emulation: enable strobes and nibble pairs
*/
package charlcd

import (
	"time"
)

// Timing taken from the HD44780U datasheet, rounded up to what time.Sleep
// can be trusted with.
const (
	// PWEH is 450ns.
	enablePulseWidth = 1 * time.Microsecond
	// tcycE is 1000ns from rising edge to rising edge.
	enableCycleTime = 1 * time.Microsecond
	// Most instructions and data writes take 37µs, plus 4µs tADD.
	execInstruction = 50 * time.Microsecond
	// Clear display and return home take 1.52ms.
	execClearHome = 2 * time.Millisecond
	// Vcc must be above 2.7V for 40ms before the first instruction.
	powerOnDelay = 50 * time.Millisecond
	// The first 8-bit function set needs 4.1ms, the others 100µs. The
	// worst case is used for all of them.
	modeSwitchDelay = 5 * time.Millisecond
)

// writeFrame puts one byte on the expander and records it as the shadow.
func (d *Dev) writeFrame(frame byte) error {
	if err := d.t.write(frame); err != nil {
		d.state = stateUnknown
		return err
	}
	d.shadow = frame
	return nil
}

// strobe presents a nibble with E low, raises E, holds and drops it so the
// controller latches on the falling edge. The shadow is enable-low when it
// returns without error.
func (d *Dev) strobe(nibble byte, rs bool) error {
	frame := d.pins.Encode(nibble, rs, false, d.backlight)
	if err := d.writeFrame(frame); err != nil {
		return err
	}
	if err := d.writeFrame(d.pins.withEnable(frame, true)); err != nil {
		return err
	}
	d.sleep(enablePulseWidth)
	if err := d.writeFrame(frame); err != nil {
		return err
	}
	d.sleep(enableCycleTime)
	return nil
}

// send writes a full byte as high nibble then low nibble and waits for the
// controller to execute it. There is no busy flag polling, so exec must be
// the datasheet time for the instruction.
func (d *Dev) send(b byte, rs bool, exec time.Duration) error {
	if err := d.strobe(b>>4, rs); err != nil {
		return err
	}
	if err := d.strobe(b&0x0f, rs); err != nil {
		return err
	}
	d.sleep(exec)
	return nil
}

func (d *Dev) command(cmd byte) error {
	exec := execInstruction
	if cmd == cmdClearDisplay || cmd == cmdReturnHome {
		exec = execClearHome
	}
	return d.send(cmd, false, exec)
}

func (d *Dev) data(b byte) error {
	return d.send(b, true, execInstruction)
}
