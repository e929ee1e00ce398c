// Package config handles objatlas configuration loading and management.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
	"go.uber.org/multierr"

	"github.com/Faultbox/objatlas/internal/logger"
	"github.com/Faultbox/objatlas/pkg/atlas"
	"github.com/Faultbox/objatlas/pkg/encoding"
	"github.com/Faultbox/objatlas/pkg/texture"
)

// StdIO is the path value that selects standard input or output.
const StdIO = "-"

// Config holds all merge settings.
type Config struct {
	Input   InputConfig   `yaml:"input"`
	Output  OutputConfig  `yaml:"output"`
	Atlas   AtlasConfig   `yaml:"atlas"`
	Logging LoggingConfig `yaml:"logging"`
}

// InputConfig describes where the source model comes from.
type InputConfig struct {
	Path        string   `yaml:"path"`         // OBJ file, "" or "-" for stdin
	Encoding    string   `yaml:"encoding"`     // Charset of OBJ/MTL text, "" for UTF-8
	SearchPaths []string `yaml:"search_paths"` // Extra roots for map_Kd lookup
}

// OutputConfig describes the merged files.
type OutputConfig struct {
	Directory   string `yaml:"directory"`
	Texture     string `yaml:"texture"`
	MTLLib      string `yaml:"mtllib"`
	OBJ         string `yaml:"obj"` // "-" writes to stdout
	Material    string `yaml:"material"`
	LineEnding  string `yaml:"line_ending"` // crlf or lf
	JPEGQuality int    `yaml:"jpeg_quality"`
}

// AtlasConfig holds packing settings.
type AtlasConfig struct {
	MaxSize int    `yaml:"max_size"`
	Order   string `yaml:"order"` // declared, area or height
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Output: OutputConfig{
			Directory:   ".",
			Texture:     "mtl.jpg",
			MTLLib:      "mtl.mtl",
			OBJ:         "obj.obj",
			Material:    "mtl",
			LineEnding:  "crlf",
			JPEGQuality: texture.DefaultJPEGQuality,
		},
		Atlas: AtlasConfig{
			MaxSize: atlas.DefaultMaxSize,
			Order:   atlas.OrderDeclared.String(),
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var err error

	if _, e := atlas.ParseOrder(c.Atlas.Order); e != nil {
		err = multierr.Append(err, fmt.Errorf("atlas.order: %w", e))
	}
	if s := c.Atlas.MaxSize; s <= 0 || s&(s-1) != 0 {
		err = multierr.Append(err, fmt.Errorf("atlas.max_size: %d is not a positive power of two", s))
	}
	if _, e := encoding.Lookup(c.Input.Encoding); e != nil {
		err = multierr.Append(err, fmt.Errorf("input.encoding: %w", e))
	} else {
		// Both names are written into the merged model text.
		if e := encoding.Encodable(c.Input.Encoding, c.Output.MTLLib); e != nil {
			err = multierr.Append(err, fmt.Errorf("output.mtllib: %w", e))
		}
		if e := encoding.Encodable(c.Input.Encoding, c.Output.Material); e != nil {
			err = multierr.Append(err, fmt.Errorf("output.material: %w", e))
		}
	}
	if !texture.CanEncode(c.Output.Texture) {
		err = multierr.Append(err, fmt.Errorf("output.texture: %q: %w", c.Output.Texture, texture.ErrUnsupportedFormat))
	}
	if c.Output.MTLLib == "" || c.Output.MTLLib == StdIO {
		err = multierr.Append(err, fmt.Errorf("output.mtllib: %q is not a file name", c.Output.MTLLib))
	}
	if c.Output.OBJ == "" {
		err = multierr.Append(err, fmt.Errorf("output.obj: empty"))
	}
	if c.Output.Material == "" || strings.ContainsAny(c.Output.Material, " \t") {
		err = multierr.Append(err, fmt.Errorf("output.material: %q must be a single word", c.Output.Material))
	}
	switch strings.ToLower(c.Output.LineEnding) {
	case "crlf", "lf":
	default:
		err = multierr.Append(err, fmt.Errorf("output.line_ending: %q (want crlf or lf)", c.Output.LineEnding))
	}
	if q := c.Output.JPEGQuality; q < 1 || q > 100 {
		err = multierr.Append(err, fmt.Errorf("output.jpeg_quality: %d not in 1..100", q))
	}
	if _, e := logger.ParseLevel(c.Logging.Level); e != nil {
		err = multierr.Append(err, fmt.Errorf("logging.level: %w", e))
	}

	return err
}

// ReadsStdin reports whether the model is read from standard input.
func (c *Config) ReadsStdin() bool {
	return c.Input.Path == "" || c.Input.Path == StdIO
}

// WritesStdout reports whether the merged model goes to standard output.
func (c *Config) WritesStdout() bool {
	return c.Output.OBJ == StdIO
}

// TexturePath returns the file the atlas image is written to.
func (c *Config) TexturePath() string {
	return c.outputPath(c.Output.Texture)
}

// MTLLibPath returns the file the merged material library is written to.
func (c *Config) MTLLibPath() string {
	return c.outputPath(c.Output.MTLLib)
}

// OBJPath returns the file the merged model is written to, or "-".
func (c *Config) OBJPath() string {
	if c.WritesStdout() {
		return StdIO
	}
	return c.outputPath(c.Output.OBJ)
}

func (c *Config) outputPath(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.Output.Directory, name)
}

// expandHome replaces a leading ~ in every path setting.
func (c *Config) expandHome() error {
	paths := []*string{&c.Input.Path, &c.Output.Directory, &c.Logging.LogFile}
	for i := range c.Input.SearchPaths {
		paths = append(paths, &c.Input.SearchPaths[i])
	}

	for _, p := range paths {
		expanded, err := homedir.Expand(*p)
		if err != nil {
			return fmt.Errorf("expanding %q: %w", *p, err)
		}
		*p = expanded
	}
	return nil
}
