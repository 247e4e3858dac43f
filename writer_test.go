/*
Copyright 2024 Tim St. Pierre
*/
package charlcd

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/i2c/i2ctest"
)

func recordedDev(t *testing.T) (*Dev, *i2ctest.Record, *sleepLog) {
	t.Helper()
	rec := &i2ctest.Record{}
	o := optsFor(4, 20)
	d, err := New(rec, &o)
	require.NoError(t, err)
	sl := &sleepLog{}
	d.sleep = sl.sleep
	return d, rec, sl
}

func TestSendHighNibbleFirst(t *testing.T) {
	d, rec, sl := recordedDev(t)
	require.NoError(t, d.send(0xa5, true, execInstruction))

	p := d.pins
	hi := p.Encode(0xa, true, false, true)
	lo := p.Encode(0x5, true, false, true)
	want := [][]byte{
		{hi}, {hi | 1<<p.E}, {hi},
		{lo}, {lo | 1<<p.E}, {lo},
	}
	require.Len(t, rec.Ops, len(want))
	for i, op := range rec.Ops {
		assert.Equal(t, uint16(0x27), op.Addr)
		assert.Equal(t, want[i], op.W, "frame %d", i)
	}
	assert.Equal(t, []time.Duration{
		enablePulseWidth, enableCycleTime,
		enablePulseWidth, enableCycleTime,
		execInstruction,
	}, sl.d)
	assert.Equal(t, lo, d.shadow)
}

func TestEnablePulseShape(t *testing.T) {
	d, rec, _ := recordedDev(t)
	require.NoError(t, d.command(0x28))

	// Each nibble is exactly one low-high-low triple on E with the data
	// unchanged across it.
	e := byte(1) << d.pins.E
	require.Len(t, rec.Ops, 6)
	for n := 0; n < 2; n++ {
		a, b, c := rec.Ops[3*n].W[0], rec.Ops[3*n+1].W[0], rec.Ops[3*n+2].W[0]
		assert.Zero(t, a&e)
		assert.NotZero(t, b&e)
		assert.Zero(t, c&e)
		assert.Equal(t, a, b&^e)
		assert.Equal(t, a, c)
	}
}

func TestCompletionDelays(t *testing.T) {
	tt := []struct {
		name string
		cmd  byte
		exec time.Duration
	}{
		{"clear", cmdClearDisplay, execClearHome},
		{"home", cmdReturnHome, execClearHome},
		{"ddram", cmdDDRAMSet | 0x14, execInstruction},
		{"display control", cmdDisplayControl | optEnableDisplay, execInstruction},
		{"entry mode", cmdEntryMode | optIncrement, execInstruction},
	}
	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			d, _, sl := recordedDev(t)
			require.NoError(t, d.command(tc.cmd))
			assert.Equal(t, tc.exec, sl.d[len(sl.d)-1])
		})
	}

	d, _, sl := recordedDev(t)
	require.NoError(t, d.data('A'))
	assert.Equal(t, execInstruction, sl.d[len(sl.d)-1])
}

func TestStrobeFailureSurfaces(t *testing.T) {
	for failAt := 1; failAt <= 6; failAt++ {
		bus := &fakeBus{present: map[uint16]bool{0x27: true}, failAt: failAt}
		o := optsFor(2, 16)
		d, err := New(bus, &o)
		require.NoError(t, err)
		d.sleep = func(time.Duration) {}
		d.state = stateReady

		err = d.data('x')
		var bwe *BusWriteError
		require.True(t, errors.As(err, &bwe), "write %d", failAt)
		assert.Len(t, bus.writes, failAt-1, "nothing sent after the failure")
		assert.Equal(t, stateUnknown, d.state)
		assert.ErrorIs(t, d.Clear(), ErrNotInitialized)
	}
}
