package config

import (
	"strings"

	"github.com/spf13/pflag"
)

// Flags holds command-line overrides. Only flags the user actually set are
// applied, so config file values survive flag defaults.
type Flags struct {
	ConfigPath string
	Debug      bool
	LogFile    string

	Input    string
	Encoding string

	Directory string
	Texture   string
	MTLLib    string
	OBJ       string

	Order   string
	MaxSize int

	set *pflag.FlagSet
}

// Register adds the flags to fs.
func (f *Flags) Register(fs *pflag.FlagSet) {
	def := Default()

	fs.StringVar(&f.ConfigPath, "config", "", "Path to config file")
	fs.BoolVar(&f.Debug, "debug", false, "Enable debug logging")
	fs.StringVar(&f.LogFile, "log-file", "", "Also write logs to this file")

	fs.StringVarP(&f.Input, "input", "i", "", `Input OBJ file ("-" or empty for stdin)`)
	fs.StringVar(&f.Encoding, "encoding", "", "Charset of the OBJ and MTL text (e.g. euc-kr)")

	fs.StringVarP(&f.Directory, "directory", "d", def.Output.Directory, "Output directory")
	fs.StringVarP(&f.Texture, "texture", "t", def.Output.Texture, "Output atlas image name")
	fs.StringVarP(&f.MTLLib, "mtllib", "m", def.Output.MTLLib, "Output material library name")
	fs.StringVarP(&f.OBJ, "obj", "o", def.Output.OBJ, `Output OBJ name ("-" for stdout)`)

	fs.StringVar(&f.Order, "order", def.Atlas.Order, "Packing order: declared, area or height")
	fs.IntVar(&f.MaxSize, "max-size", def.Atlas.MaxSize, "Largest atlas side to try")

	f.set = fs
}

func (f *Flags) changed(name string) bool {
	return f.set != nil && f.set.Changed(name)
}

// apply applies CLI flag overrides to the config.
func (f *Flags) apply(cfg *Config) {
	if f.Debug {
		cfg.Logging.Level = "debug"
	}
	if f.changed("log-file") {
		cfg.Logging.LogFile = f.LogFile
	}
	if f.changed("input") {
		cfg.Input.Path = f.Input
	}
	if f.changed("encoding") {
		cfg.Input.Encoding = f.Encoding
	}
	if f.changed("directory") {
		cfg.Output.Directory = f.Directory
	}
	if f.changed("texture") {
		cfg.Output.Texture = f.Texture
	}
	if f.changed("mtllib") {
		cfg.Output.MTLLib = f.MTLLib
	}
	if f.changed("obj") {
		cfg.Output.OBJ = f.OBJ
	}
	if f.changed("order") {
		cfg.Atlas.Order = strings.ToLower(f.Order)
	}
	if f.changed("max-size") {
		cfg.Atlas.MaxSize = f.MaxSize
	}
}
