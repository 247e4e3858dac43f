/*
Copyright 2024 Tim St. Pierre
Test fakes
*/
package charlcd

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tstpierre-tc/charlcd/internal/sim"
	"periph.io/x/conn/v3/physic"
)

var errNack = errors.New("nack")

// fakeBus acknowledges reads on the present addresses and writes to any of
// them, failing the failAt-th write.
type fakeBus struct {
	present map[uint16]bool
	failAt  int
	writes  [][]byte
	reads   int
}

func (f *fakeBus) Tx(addr uint16, w, r []byte) error {
	if !f.present[addr] {
		return errNack
	}
	if len(r) != 0 {
		f.reads++
	}
	if len(w) != 0 {
		if f.failAt != 0 && len(f.writes)+1 == f.failAt {
			return errNack
		}
		f.writes = append(f.writes, append([]byte(nil), w...))
	}
	return nil
}

func (f *fakeBus) SetSpeed(physic.Frequency) error { return nil }
func (f *fakeBus) String() string                  { return "fake" }

// sleepLog records delays instead of waiting.
type sleepLog struct {
	d []time.Duration
}

func (s *sleepLog) sleep(d time.Duration) {
	s.d = append(s.d, d)
}

func (s *sleepLog) count(d time.Duration) int {
	n := 0
	for _, v := range s.d {
		if v == d {
			n++
		}
	}
	return n
}

func simPins(p PinMap) sim.Pins {
	return sim.Pins{
		RS: p.RS, RW: p.RW, E: p.E, BL: p.BL,
		D4: p.D4, D5: p.D5, D6: p.D6, D7: p.D7,
		BacklightActiveLow: p.BacklightActiveLow,
	}
}

func optsFor(rows, cols uint8) Opts {
	o := DefaultOpts
	o.Address = 0x27
	o.Rows = rows
	o.Cols = cols
	return o
}

// newSimDev returns an initialized display on a simulated controller, with
// the init traffic already discarded.
func newSimDev(t *testing.T, o Opts) (*Dev, *sim.Controller) {
	t.Helper()
	c := sim.New(0x27, simPins(o.Pins), sim.PowerOn)
	d, err := New(c, &o)
	require.NoError(t, err)
	d.sleep = func(time.Duration) {}
	require.NoError(t, d.Init())
	c.Reset()
	return d, c
}

func instructionStrings(in []sim.Instruction) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = v.String()
	}
	return out
}
