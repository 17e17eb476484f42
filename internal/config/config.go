// Package config holds the command-line configuration of syncsim: defaults,
// TOML file loading and validation. The simulation core assumes everything
// it receives has passed through here.
package config

import (
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/llxisdsh/syncsim"
	"github.com/pingcap/errors"
)

// Config is the full configuration of one syncsim invocation.
type Config struct {
	LogLevel    string `toml:"log-level"`
	LogFile     string `toml:"log-file"`
	MetricsAddr string `toml:"metrics-addr"`
	Quiet       bool   `toml:"quiet"`

	Buffer       BufferConfig       `toml:"buffer"`
	ReaderWriter ReaderWriterConfig `toml:"reader-writer"`
	Timings      syncsim.Timings    `toml:"timings"`
}

// BufferConfig configures the producer-consumer simulation.
type BufferConfig struct {
	Producers int `toml:"producers"`
	Consumers int `toml:"consumers"`
	Size      int `toml:"size"`
	Seconds   int `toml:"seconds"`
}

// ReaderWriterConfig configures the reader-writer simulation. The cast is
// fixed; only the duration can be chosen.
type ReaderWriterConfig struct {
	Seconds int `toml:"seconds"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Buffer: BufferConfig{
			Producers: 2,
			Consumers: 2,
			Size:      3,
			Seconds:   5,
		},
		ReaderWriter: ReaderWriterConfig{
			Seconds: 5,
		},
		Timings: syncsim.DefaultTimings(),
	}
}

// Load overlays the TOML file at path onto c. Unknown keys are rejected.
func (c *Config) Load(path string) error {
	md, err := toml.DecodeFile(path, c)
	if err != nil {
		return errors.Annotatef(err, "decode config file %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return errors.Errorf("config file %s contains unknown keys: %s",
			path, strings.Join(keys, ", "))
	}
	return nil
}

// ValidateBuffer checks the producer-consumer parameters.
func (c *Config) ValidateBuffer() error {
	b := c.Buffer
	if err := positive("producers", b.Producers); err != nil {
		return err
	}
	if err := positive("consumers", b.Consumers); err != nil {
		return err
	}
	if err := positive("buffer size", b.Size); err != nil {
		return err
	}
	if err := positive("seconds", b.Seconds); err != nil {
		return err
	}
	return c.validateTimings()
}

// ValidateReaderWriter checks the reader-writer parameters.
func (c *Config) ValidateReaderWriter() error {
	if err := positive("seconds", c.ReaderWriter.Seconds); err != nil {
		return err
	}
	return c.validateTimings()
}

func (c *Config) validateTimings() error {
	t := c.Timings
	for _, d := range []struct {
		name string
		v    time.Duration
	}{
		{"process", t.Process},
		{"read", t.Read},
		{"read-pause", t.ReadPause},
		{"backoff", t.Backoff},
		{"write", t.Write},
		{"write-cooldown", t.WriteCooldown},
		{"stagger", t.Stagger},
	} {
		if d.v < 0 {
			return errors.Errorf("timings.%s must not be negative, got %s", d.name, d.v)
		}
	}
	if t.Jitter < 0 || t.Jitter > 1 {
		return errors.Errorf("timings.jitter must be within [0, 1], got %v", t.Jitter)
	}
	return nil
}

func positive(name string, v int) error {
	if v <= 0 {
		return errors.Errorf("%s must be a positive integer, got %d", name, v)
	}
	return nil
}

// BufferDuration returns the producer-consumer run length.
func (c *Config) BufferDuration() time.Duration {
	return time.Duration(c.Buffer.Seconds) * time.Second
}

// ReaderWriterDuration returns the reader-writer run length.
func (c *Config) ReaderWriterDuration() time.Duration {
	return time.Duration(c.ReaderWriter.Seconds) * time.Second
}
