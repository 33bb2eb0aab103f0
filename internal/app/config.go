package app

import (
	"errors"
	"flag"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Config represents the command-line parameters for the application.
type Config struct {
	Width  int
	Height int

	// TPS is the frame rate of the driver loop; Rate is how many of those
	// frames advance the board each second.
	TPS  int
	Rate int

	Generations uint64
	Paused      bool

	Seed   int64
	Random bool

	In  string
	Out string

	LogLevel string
}

// NewConfig returns a Config populated with sensible defaults.
func NewConfig() *Config {
	return &Config{Width: 64, Height: 48, TPS: 60, Rate: 10, Seed: 42, LogLevel: "info"}
}

// Bind attaches the configuration to the provided FlagSet.
func (c *Config) Bind(fs *flag.FlagSet) {
	fs.IntVar(&c.Width, "w", c.Width, "board width in cells (0 infers it from -in)")
	fs.IntVar(&c.Height, "h", c.Height, "board height in cells (0 infers it from -in)")
	fs.IntVar(&c.TPS, "tps", c.TPS, "driver frames per second")
	fs.IntVar(&c.Rate, "rate", c.Rate, "generations per second, at most -tps")
	fs.Uint64Var(&c.Generations, "generations", c.Generations, "stop after this many generations (0 runs until interrupted)")
	fs.BoolVar(&c.Paused, "paused", c.Paused, "start without timed stepping")
	fs.Int64Var(&c.Seed, "seed", c.Seed, "seed for -random")
	fs.BoolVar(&c.Random, "random", c.Random, "start from a random board")
	fs.StringVar(&c.In, "in", c.In, "board file to start from")
	fs.StringVar(&c.Out, "out", c.Out, "write the final board here instead of stdout")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "logrus level (debug, info, warn, error)")
}

// InferSize reports whether the board dimensions come from the input file.
func (c *Config) InferSize() bool {
	return c.In != "" && c.Width == 0 && c.Height == 0
}

// Validate checks the configuration for values the session cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if !c.InferSize() {
		if c.Width < 1 || c.Height < 1 {
			errs = append(errs, fmt.Errorf("board size %dx%d must be at least 1x1", c.Width, c.Height))
		}
	}
	if c.TPS < 1 {
		errs = append(errs, fmt.Errorf("tps %d must be positive", c.TPS))
	}
	if c.Rate < 1 || c.Rate > c.TPS {
		errs = append(errs, fmt.Errorf("rate %d must be between 1 and tps (%d)", c.Rate, c.TPS))
	}
	if c.In != "" && c.Random {
		errs = append(errs, errors.New("-in and -random are mutually exclusive"))
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
