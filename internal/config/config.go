// Package config loads aero's TOML configuration.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/aeroread/aero/internal/reader"
	"github.com/aeroread/aero/internal/shred"
)

// Config holds the application configuration.
type Config struct {
	Reader ReaderConfig `toml:"reader"`
	Shred  ShredConfig  `toml:"shred"`
	Log    LogConfig    `toml:"log"`
}

// ReaderConfig holds RSVP playback settings.
type ReaderConfig struct {
	WPM int `toml:"wpm"`
}

// ShredConfig holds extraction settings.
type ShredConfig struct {
	EPUBMinWords  int  `toml:"epub_min_words"`
	PDFMinWords   int  `toml:"pdf_min_words"`
	SpineOrder    bool `toml:"spine_order"`
	AllowEmptyPDF bool `toml:"allow_empty_pdf"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `toml:"level"`  // debug, info, warn, error
	Format string `toml:"format"` // console or json
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Reader: ReaderConfig{WPM: 300},
		Shred: ShredConfig{
			EPUBMinWords: shred.DefaultEPUBMinWords,
			PDFMinWords:  shred.DefaultPDFMinWords,
		},
		Log: LogConfig{Level: "warn", Format: "console"},
	}
}

// DefaultPath returns XDG_CONFIG_HOME/aeroread/config.toml or
// ~/.config/aeroread/config.toml.
func DefaultPath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "aeroread", "config.toml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "aeroread", "config.toml")
}

// Load reads the file at path over the defaults. A missing file is not an
// error.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	var errs []error
	if c.Reader.WPM < reader.MinWPM || c.Reader.WPM > reader.MaxWPM {
		errs = append(errs, fmt.Errorf("reader.wpm must be between %d and %d, got %d",
			reader.MinWPM, reader.MaxWPM, c.Reader.WPM))
	}
	if c.Shred.EPUBMinWords < 0 {
		errs = append(errs, fmt.Errorf("shred.epub_min_words must not be negative, got %d", c.Shred.EPUBMinWords))
	}
	if c.Shred.PDFMinWords < 0 {
		errs = append(errs, fmt.Errorf("shred.pdf_min_words must not be negative, got %d", c.Shred.PDFMinWords))
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level %q is not one of debug, info, warn, error", c.Log.Level))
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format %q is not one of console, json", c.Log.Format))
	}
	return errors.Join(errs...)
}

// ShredOptions converts the extraction settings to shred options.
func (c Config) ShredOptions() []shred.Option {
	return []shred.Option{
		shred.WithEPUBMinWords(c.Shred.EPUBMinWords),
		shred.WithPDFMinWords(c.Shred.PDFMinWords),
		shred.WithSpineOrder(c.Shred.SpineOrder),
		shred.WithAllowEmptyPDF(c.Shred.AllowEmptyPDF),
	}
}
