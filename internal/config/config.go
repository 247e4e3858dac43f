/*
Copyright 2024 Tim St. Pierre
Display configuration file
*/

// Package config reads the YAML file describing how a display is attached.
package config

import (
	"fmt"
	"os"

	"github.com/tstpierre-tc/charlcd"
	"gopkg.in/yaml.v3"
)

// Pins is the yaml form of charlcd.PinMap.
type Pins struct {
	RS                 uint8 `yaml:"rs"`
	RW                 uint8 `yaml:"rw"`
	E                  uint8 `yaml:"e"`
	BL                 uint8 `yaml:"bl"`
	D4                 uint8 `yaml:"d4"`
	D5                 uint8 `yaml:"d5"`
	D6                 uint8 `yaml:"d6"`
	D7                 uint8 `yaml:"d7"`
	BacklightActiveLow bool  `yaml:"backlightActiveLow"`
}

type Config struct {
	// Bus is the periph bus name, empty for the first one.
	Bus       string `yaml:"bus"`
	Address   uint16 `yaml:"address"`
	Rows      uint8  `yaml:"rows"`
	Cols      uint8  `yaml:"cols"`
	Font      string `yaml:"font"`
	Backlight *bool  `yaml:"backlight"`
	Cursor    bool   `yaml:"cursor"`
	Blink     bool   `yaml:"blink"`
	Backpack  string `yaml:"backpack"`
	Pins      *Pins  `yaml:"pins"`
}

// Load reads and parses the file at path.
func Load(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(content)
}

// Parse decodes YAML content, filling unset fields from charlcd.DefaultOpts.
func Parse(content []byte) (*Config, error) {
	c := &Config{}
	if err := yaml.Unmarshal(content, c); err != nil {
		return nil, err
	}
	if c.Rows == 0 {
		c.Rows = charlcd.DefaultOpts.Rows
	}
	if c.Cols == 0 {
		c.Cols = charlcd.DefaultOpts.Cols
	}
	if c.Font == "" {
		c.Font = charlcd.DefaultOpts.Font.String()
	}
	if c.Pins != nil && c.Backpack != "" {
		return nil, fmt.Errorf("backpack and pins are mutually exclusive")
	}
	if _, err := c.Opts(); err != nil {
		return nil, err
	}
	return c, nil
}

// Opts converts the file into driver options and validates them.
func (c *Config) Opts() (*charlcd.Opts, error) {
	o := charlcd.DefaultOpts
	o.Address = c.Address
	o.Rows = c.Rows
	o.Cols = c.Cols
	o.Cursor = c.Cursor
	o.Blink = c.Blink
	if c.Backlight != nil {
		o.Backlight = *c.Backlight
	}
	switch c.Font {
	case "5x8":
		o.Font = charlcd.Font5x8
	case "5x10":
		o.Font = charlcd.Font5x10
	default:
		return nil, fmt.Errorf("unknown font %q", c.Font)
	}
	switch c.Backpack {
	case "", "pcf8574":
		o.Pins = charlcd.PCF8574Backpack
	case "mjkdz":
		o.Pins = charlcd.MJKDZBackpack
	default:
		return nil, fmt.Errorf("unknown backpack %q", c.Backpack)
	}
	if p := c.Pins; p != nil {
		o.Pins = charlcd.PinMap{
			RS: p.RS, RW: p.RW, E: p.E, BL: p.BL,
			D4: p.D4, D5: p.D5, D6: p.D6, D7: p.D7,
			BacklightActiveLow: p.BacklightActiveLow,
		}
	}
	if err := o.Validate(); err != nil {
		return nil, err
	}
	return &o, nil
}
