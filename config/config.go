package config

import (
	"os"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding/charmap"
	"gopkg.in/yaml.v3"
)

const DefaultEncoding = "Windows 1252"

type Config struct {
	Listen         string   `yaml:"listen"`
	MapsDir        string   `yaml:"maps_dir"`
	ModelDirs      []string `yaml:"model_dirs"`
	Encoding       string   `yaml:"encoding"`
	BrushColorSeed int64    `yaml:"brush_color_seed"`
	BrushPreScale  float32  `yaml:"brush_prescale"`
	TraceDir       string   `yaml:"trace_dir,omitempty"`
}

func Default() *Config {
	return &Config{
		Listen:        ":8000",
		MapsDir:       "maps",
		ModelDirs:     []string{"models"},
		Encoding:      DefaultEncoding,
		BrushPreScale: 1,
	}
}

// Load reads a yaml config on top of the defaults. Empty path means defaults only.
func Load(path string) (*Config, error) {
	c := Default()
	if path == "" {
		return c, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "Cannot read config %q", path)
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return nil, errors.Wrapf(err, "Cannot parse config %q", path)
	}
	if c.BrushPreScale == 0 {
		c.BrushPreScale = 1
	}
	return c, nil
}

// Apply pushes process-wide settings (string encoding) from the config.
func (c *Config) Apply() error {
	if c.Encoding == "" {
		return nil
	}
	return SetEncoding(c.Encoding)
}

var currentCharMap = charmap.Windows1252

func SetEncoding(name string) error {
	for _, enc := range charmap.All {
		if cm, ok := enc.(*charmap.Charmap); ok && cm.String() == name {
			currentCharMap = cm
			return nil
		}
	}
	return errors.Errorf("Failed to find encoding %q", name)
}

func ListEncodings() []string {
	list := make([]string, 0)
	for _, enc := range charmap.All {
		if cm, ok := enc.(*charmap.Charmap); ok {
			list = append(list, cm.String())
		}
	}
	return list
}

func GetEncoding() *charmap.Charmap {
	return currentCharMap
}
