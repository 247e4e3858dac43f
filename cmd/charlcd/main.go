package main

import (
	"fmt"
	"os"

	"github.com/mattn/go-colorable"
	log "github.com/sirupsen/logrus"
	"github.com/tstpierre-tc/charlcd"
	"github.com/tstpierre-tc/charlcd/internal/config"
	"github.com/tstpierre-tc/charlcd/internal/sim"
	"gopkg.in/alecthomas/kingpin.v2"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

var (
	app        = kingpin.New("charlcd", "Character LCD on an I2C backpack")
	debug      = app.Flag("debug", "Turn on debug logging.").Bool()
	configFile = app.Flag("config", "YAML display configuration.").Short('c').ExistingFile()
	busName    = app.Flag("bus", "I2C bus name, the first bus if empty.").String()
	address    = app.Flag("address", "Expander address, scan the bus if zero.").Short('a').Uint16()
	dryRun     = app.Flag("dry-run", "Drive a simulated display and print it.").Bool()

	scan = app.Command("scan", "List the addresses answering on the bus.")

	write      = app.Command("write", "Write one line of text per argument.")
	writeRow   = write.Flag("row", "First row to write.").Int()
	writeCol   = write.Flag("col", "Column of the first line.").Int()
	writeLines = write.Arg("lines", "Text, one argument per row.").Required().Strings()

	clearCmd = app.Command("clear", "Blank the display.")

	backlight      = app.Command("backlight", "Switch the backlight.")
	backlightState = backlight.Arg("state", "on or off").Required().Enum("on", "off")

	version = app.Command("version", "Show current version.")
)

var buildTime, buildVersion string

func showVersion() {
	if buildTime != "" && buildVersion != "" {
		fmt.Printf("%s (built: %s)\n", buildVersion, buildTime)
	} else {
		fmt.Println("charlcd: dev")
	}
}

func main() {
	cmd, err := app.Parse(os.Args[1:])
	if err != nil {
		fmt.Printf("%v: Try --help\n", err.Error())
		os.Exit(1)
	}

	log.SetOutput(colorable.NewColorableStderr())
	log.SetFormatter(&log.TextFormatter{
		ForceColors:     true,
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if *debug {
		log.Info("Enabling debug output...")
		log.SetLevel(log.DebugLevel)
	}

	if cmd == version.FullCommand() {
		showVersion()
		return
	}

	conf, err := loadConfig()
	if err != nil {
		log.Fatal(err)
	}
	opts, err := conf.Opts()
	if err != nil {
		log.Fatal(err)
	}

	bus, screen, closeBus, err := openBus(conf, opts)
	if err != nil {
		log.Fatal(err)
	}
	defer closeBus()

	if cmd == scan.FullCommand() {
		if err := runScan(bus); err != nil {
			log.Fatal(err)
		}
		return
	}

	lcd, err := charlcd.NewI2C(bus, opts)
	if err != nil {
		log.Fatal(err)
	}
	log.Infof("Using %s", lcd)

	switch cmd {
	case write.FullCommand():
		err = writeText(lcd, *writeRow, *writeCol, *writeLines)
	case clearCmd.FullCommand():
		err = lcd.Clear()
	case backlight.FullCommand():
		err = lcd.SetBacklight(*backlightState == "on")
	default:
		kingpin.FatalUsage("Unrecognized command")
	}
	if err != nil {
		log.Fatal(err)
	}
	if screen != nil {
		if err := screen.render(); err != nil {
			log.Fatal(err)
		}
	}
}

func loadConfig() (*config.Config, error) {
	var conf *config.Config
	var err error
	if *configFile != "" {
		conf, err = config.Load(*configFile)
	} else {
		conf, err = config.Parse(nil)
	}
	if err != nil {
		return nil, err
	}
	if *busName != "" {
		conf.Bus = *busName
	}
	if *address != 0 {
		conf.Address = *address
	}
	return conf, nil
}

type simScreen struct {
	c *sim.Controller
	s *sim.Screen
}

func (s *simScreen) render() error {
	return s.s.Render(s.c)
}

// openBus returns the real bus, or a simulated display when --dry-run is
// set.
func openBus(conf *config.Config, opts *charlcd.Opts) (i2c.Bus, *simScreen, func(), error) {
	if *dryRun {
		addr := opts.Address
		if addr == 0 {
			addr = 0x27
		}
		p := opts.Pins
		c := sim.New(addr, sim.Pins{
			RS: p.RS, RW: p.RW, E: p.E, BL: p.BL,
			D4: p.D4, D5: p.D5, D6: p.D6, D7: p.D7,
			BacklightActiveLow: p.BacklightActiveLow,
		}, sim.PowerOn)
		return c, &simScreen{c: c, s: sim.NewScreen(int(opts.Rows), int(opts.Cols))}, func() {}, nil
	}
	if _, err := host.Init(); err != nil {
		return nil, nil, nil, fmt.Errorf("unable to initialize periph: %w", err)
	}
	b, err := i2creg.Open(conf.Bus)
	if err != nil {
		return nil, nil, nil, err
	}
	return b, nil, func() {
		if err := b.Close(); err != nil {
			log.Warn(err)
		}
	}, nil
}

func runScan(bus i2c.Bus) error {
	found, err := charlcd.Discover(bus)
	if err != nil {
		return err
	}
	for _, addr := range found {
		fmt.Printf("0x%02x\n", addr)
	}
	return nil
}

func writeText(lcd *charlcd.Dev, row, col int, lines []string) error {
	for i, line := range lines {
		if row+i >= lcd.Rows() {
			log.Warnf("Dropping %d lines that do not fit", len(lines)-i)
			break
		}
		c := 0
		if i == 0 {
			c = col
		}
		n, err := lcd.WriteTextAt(line, row+i, c)
		if err != nil {
			return err
		}
		if n < len(line) {
			log.Infof("Row %d clipped to %d characters", row+i, n)
		}
	}
	return nil
}
