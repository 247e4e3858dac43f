/*
Copyright 2024 Tim St. Pierre
Power-on initialization of the controller
*/
package charlcd

import (
	"fmt"

	log "github.com/sirupsen/logrus"
)

// initState is the progress of the initialization sequence.
type initState uint8

const (
	stateUnknown initState = iota
	stateForce8Bit
	stateForce4Bit
	stateFunctionSet
	stateDisplayControl
	stateCleared
	stateEntryModeSet
	stateReady
)

func (s initState) String() string {
	switch s {
	case stateUnknown:
		return "Unknown"
	case stateForce8Bit:
		return "Force8Bit"
	case stateForce4Bit:
		return "Force4Bit"
	case stateFunctionSet:
		return "FunctionSet"
	case stateDisplayControl:
		return "DisplayControl"
	case stateCleared:
		return "Cleared"
	case stateEntryModeSet:
		return "EntryModeSet"
	case stateReady:
		return "Ready"
	}
	return fmt.Sprintf("initState(%d)", uint8(s))
}

type initStep struct {
	state initState
	run   func(d *Dev) error
}

// The controller may power up in 8-bit mode or still be in 4-bit mode from a
// previous run, possibly half way through a byte. Three 8-bit function sets
// get it into 8-bit mode from any of those, and only then is 4-bit mode
// selected with a single nibble.
var initSequence = []initStep{
	{stateForce8Bit, (*Dev).force8Bit},
	{stateForce8Bit, (*Dev).force8Bit},
	{stateForce8Bit, (*Dev).force8Bit},
	{stateForce4Bit, func(d *Dev) error { return d.modeNibble(0x02) }},
	{stateFunctionSet, func(d *Dev) error { return d.command(d.functionSet()) }},
	{stateDisplayControl, func(d *Dev) error { return d.command(d.displayControl()) }},
	{stateCleared, func(d *Dev) error { return d.command(cmdClearDisplay) }},
	{stateEntryModeSet, func(d *Dev) error { return d.command(cmdEntryMode | optIncrement) }},
}

func (d *Dev) force8Bit() error {
	return d.modeNibble(0x03)
}

// modeNibble sends the high nibble of a function set on its own.
func (d *Dev) modeNibble(nibble byte) error {
	if err := d.strobe(nibble, false); err != nil {
		return err
	}
	d.sleep(modeSwitchDelay)
	return nil
}

// Init runs the controller initialization sequence. It always starts over
// from the power-on wait, so it is also the way to recover after a
// BusWriteError.
func (d *Dev) Init() error {
	d.state = stateUnknown
	// E may have been left high by an interrupted strobe. Whatever its
	// falling edge latches has finished executing by the end of the wait.
	if err := d.writeFrame(d.pins.Encode(0, false, false, d.backlight)); err != nil {
		return fmt.Errorf("charlcd: init failed in %s: %w", stateUnknown, err)
	}
	d.sleep(powerOnDelay)
	for _, step := range initSequence {
		log.Debugf("charlcd: init %s", step.state)
		if err := step.run(d); err != nil {
			d.state = step.state
			return fmt.Errorf("charlcd: init failed in %s: %w", step.state, err)
		}
		d.state = step.state
	}
	d.state = stateReady
	d.row, d.col = 0, 0
	log.Debugf("charlcd: %s ready", d)
	return nil
}

// State returns the name of the initialization step reached. "Ready" means
// the display accepts operations.
func (d *Dev) State() string {
	return d.state.String()
}
