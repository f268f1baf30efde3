// Package manifest handles magserde.toml codec configuration.
package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/chazu/magserde/serde/cborfmt"
	"github.com/chazu/magserde/serde/tree"
)

// FileName is the name Load looks for.
const FileName = "magserde.toml"

// Supported codec formats.
const (
	FormatCBOR    = "cbor"
	FormatMsgpack = "msgpack"
)

// Manifest represents a magserde.toml file.
type Manifest struct {
	Codec CodecConfig `toml:"codec"`
	Log   LogConfig   `toml:"log"`

	// Dir is the directory containing the magserde.toml file (set at load time).
	Dir string `toml:"-"`
}

// CodecConfig selects the wire format and how tunneled values are written.
type CodecConfig struct {
	Format string `toml:"format"`

	// FastPath lets cooperating formats skip the one-field map for
	// tunneled values. Pointer so an absent key keeps the default.
	FastPath *bool `toml:"fast-path"`

	Canonical *bool `toml:"canonical"`
}

// LogConfig configures commonlog.
type LogConfig struct {
	Verbosity int    `toml:"verbosity"`
	Path      string `toml:"path"`
}

// Default returns the configuration used when no file is present.
func Default() *Manifest {
	m := &Manifest{}
	m.applyDefaults()
	return m
}

func (m *Manifest) applyDefaults() {
	if m.Codec.Format == "" {
		m.Codec.Format = FormatCBOR
	}
	if m.Codec.FastPath == nil {
		m.Codec.FastPath = ptr(true)
	}
	if m.Codec.Canonical == nil {
		m.Codec.Canonical = ptr(true)
	}
}

func ptr[T any](v T) *T { return &v }

// Load parses magserde.toml from the given directory.
func Load(dir string) (*Manifest, error) {
	m, err := LoadFile(filepath.Join(dir, FileName))
	if err != nil {
		return nil, err
	}
	m.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}
	return m, nil
}

// LoadFile parses the file at path, fills in defaults and validates it.
func LoadFile(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var m Manifest
	md, err := toml.Decode(string(data), &m)
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%s: unknown key %s", path, undecoded[0])
	}
	m.Dir = filepath.Dir(path)

	m.applyDefaults()
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &m, nil
}

// FindAndLoad walks up from startDir to find a magserde.toml file and
// loads it. If none is found it returns Default().
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return Default(), nil
		}
		dir = parent
	}
}

// Validate checks the values a file can get wrong.
func (m *Manifest) Validate() error {
	var errs []error
	switch m.Codec.Format {
	case FormatCBOR, FormatMsgpack:
	default:
		errs = append(errs, fmt.Errorf("codec.format: unknown format %q", m.Codec.Format))
	}
	if m.Log.Verbosity < -4 || m.Log.Verbosity > 2 {
		errs = append(errs, fmt.Errorf("log.verbosity: %d out of range [-4, 2]", m.Log.Verbosity))
	}
	return errors.Join(errs...)
}

// LogPath returns the configured log file, or nil for stderr.
func (m *Manifest) LogPath() *string {
	if m.Log.Path == "" {
		return nil
	}
	p := m.Log.Path
	if !filepath.IsAbs(p) && m.Dir != "" {
		p = filepath.Join(m.Dir, p)
	}
	return &p
}

// CBOROptions returns the cborfmt options this config selects.
func (c CodecConfig) CBOROptions() cborfmt.Options {
	o := cborfmt.DefaultOptions
	if c.FastPath != nil {
		o.FastPath = *c.FastPath
	}
	if c.Canonical != nil {
		o.Canonical = *c.Canonical
	}
	return o
}

// TreeOptions returns the tree options this config selects.
func (c CodecConfig) TreeOptions() tree.Options {
	o := tree.DefaultOptions
	if c.FastPath != nil {
		o.FastPath = *c.FastPath
	}
	return o
}
