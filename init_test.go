/*
Copyright 2024 Tim St. Pierre
*/
package charlcd

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tstpierre-tc/charlcd/internal/sim"
)

// Frames written by one Init: settle, 4 mode nibbles, 4 full commands.
const initFrames = 1 + 4*3 + 4*6

var afterFourBit = []string{"cmd(0x28)", "cmd(0x0c)", "cmd(0x01)", "cmd(0x06)"}

func TestInitConverges(t *testing.T) {
	starts := map[string]sim.Start{
		"power on 8-bit":  sim.PowerOn,
		"left in 4-bit":   sim.FourBit,
		"half way a byte": sim.FourBitMidByte,
	}
	for name, start := range starts {
		t.Run(name, func(t *testing.T) {
			o := optsFor(4, 20)
			c := sim.New(0x27, simPins(o.Pins), start)
			d, err := New(c, &o)
			require.NoError(t, err)
			d.sleep = func(time.Duration) {}

			require.NoError(t, d.Init())
			assert.Equal(t, "Ready", d.State())
			assert.True(t, c.FourBitMode())
			assert.True(t, c.TwoLines())
			assert.Equal(t, afterFourBit, instructionStrings(c.SinceFourBit()))
			assert.Len(t, c.Frames(), initFrames)

			on, cursor, blink := c.DisplayOn()
			assert.True(t, on)
			assert.False(t, cursor)
			assert.False(t, blink)
			assert.True(t, c.Backlight())
		})
	}
}

func TestInitTiming(t *testing.T) {
	o := optsFor(2, 16)
	c := sim.New(0x27, simPins(o.Pins), sim.PowerOn)
	d, err := New(c, &o)
	require.NoError(t, err)
	sl := &sleepLog{}
	d.sleep = sl.sleep

	require.NoError(t, d.Init())
	require.NotEmpty(t, sl.d)
	assert.Equal(t, powerOnDelay, sl.d[0], "power-on wait before the first strobe")
	assert.Equal(t, 4, sl.count(modeSwitchDelay))
	assert.Equal(t, 1, sl.count(execClearHome))
	assert.Equal(t, 3, sl.count(execInstruction))
	// Power-on wait, a pulse width and cycle time for each of the 12
	// nibbles, 4 mode switch waits and 4 execution waits.
	assert.Len(t, sl.d, 1+12*2+4+4)
}

func TestInitFunctionSet(t *testing.T) {
	tt := []struct {
		rows uint8
		cols uint8
		font Font
		cmd  string
	}{
		{1, 16, Font5x8, "cmd(0x20)"},
		{1, 16, Font5x10, "cmd(0x24)"},
		{2, 16, Font5x8, "cmd(0x28)"},
		{4, 20, Font5x8, "cmd(0x28)"},
	}
	for _, tc := range tt {
		t.Run(fmt.Sprintf("%dx%d %s", tc.cols, tc.rows, tc.font), func(t *testing.T) {
			o := optsFor(tc.rows, tc.cols)
			o.Font = tc.font
			c := sim.New(0x27, simPins(o.Pins), sim.PowerOn)
			d, err := New(c, &o)
			require.NoError(t, err)
			d.sleep = func(time.Duration) {}
			require.NoError(t, d.Init())
			got := instructionStrings(c.SinceFourBit())
			require.NotEmpty(t, got)
			assert.Equal(t, tc.cmd, got[0])
		})
	}
}

func TestInitRecoversAfterBusError(t *testing.T) {
	for failAt := 1; failAt <= initFrames; failAt++ {
		t.Run(fmt.Sprintf("write %d", failAt), func(t *testing.T) {
			o := optsFor(4, 20)
			c := sim.New(0x27, simPins(o.Pins), sim.PowerOn)
			d, err := New(c, &o)
			require.NoError(t, err)
			d.sleep = func(time.Duration) {}

			c.FailAt = failAt
			err = d.Init()
			var bwe *BusWriteError
			require.True(t, errors.As(err, &bwe))
			assert.NotEqual(t, "Ready", d.State())
			_, err = d.WriteText("x")
			assert.ErrorIs(t, err, ErrNotInitialized)

			c.Reset()
			require.NoError(t, d.Init())
			assert.Equal(t, "Ready", d.State())
			assert.Len(t, c.Frames(), initFrames, "no step skipped")
			assert.Equal(t, afterFourBit, instructionStrings(c.SinceFourBit()))

			n, err := d.WriteTextAt("ok", 3, 0)
			require.NoError(t, err)
			assert.Equal(t, 2, n)
			assert.Equal(t, "ok", c.Line(3, 20)[:2])
		})
	}
}

func TestInitRecoversAfterFailedWrite(t *testing.T) {
	d, c := newSimDev(t, optsFor(2, 16))
	_, err := d.WriteTextAt("before", 0, 0)
	require.NoError(t, err)

	// Fail on each frame of a data byte, leaving E and the nibble latch in
	// every possible state.
	for failAt := 1; failAt <= 6; failAt++ {
		c.Reset()
		c.FailAt = failAt
		_, err = d.WriteText("y")
		require.Error(t, err)

		c.Reset()
		require.NoError(t, d.Init())
		assert.Equal(t, []string{"cmd(0x28)", "cmd(0x0c)", "cmd(0x01)", "cmd(0x06)"}, instructionStrings(c.SinceFourBit()))
		assert.Equal(t, "                ", c.Line(0, 16))
	}
}

func TestStateNames(t *testing.T) {
	assert.Equal(t, "Unknown", stateUnknown.String())
	assert.Equal(t, "EntryModeSet", stateEntryModeSet.String())
	assert.Equal(t, "initState(42)", initState(42).String())
}
