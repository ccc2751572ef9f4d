package platform

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/notegrid/pkg/core"
	"github.com/aretw0/notegrid/pkg/drag"
	"github.com/aretw0/notegrid/pkg/layout"
	"github.com/aretw0/notegrid/pkg/order"
	"github.com/aretw0/notegrid/pkg/search"
)

const (
	// ConfigName is the base name of the settings file in a data directory.
	ConfigName = "notegrid"
	// ConfigFile is the full settings file name.
	ConfigFile = ConfigName + ".yaml"
	// EnvPrefix prefixes the environment overrides, e.g. NOTEGRID_LAYOUT_GAP.
	EnvPrefix = "NOTEGRID"
)

// Settings are the tunables read from notegrid.yaml and the environment.
type Settings struct {
	StorageKey string         `mapstructure:"storage_key" yaml:"storage_key"`
	Watch      bool           `mapstructure:"watch" yaml:"watch"`
	Layout     LayoutSettings `mapstructure:"layout" yaml:"layout"`
	Search     SearchSettings `mapstructure:"search" yaml:"search"`
	Resize     ResizeSettings `mapstructure:"resize" yaml:"resize"`
	Drag       DragSettings   `mapstructure:"drag" yaml:"drag"`
	Order      OrderSettings  `mapstructure:"order" yaml:"order"`
}

type LayoutSettings struct {
	Gap          float64 `mapstructure:"gap" yaml:"gap"`
	MinCardWidth float64 `mapstructure:"min_card_width" yaml:"min_card_width"`
}

type SearchSettings struct {
	MinQueryLength int `mapstructure:"min_query_length" yaml:"min_query_length"`
}

type ResizeSettings struct {
	Quiet     time.Duration `mapstructure:"quiet" yaml:"quiet"`
	Threshold float64       `mapstructure:"threshold" yaml:"threshold"`
}

// MarshalYAML writes Quiet as a duration string ("150ms").
func (r ResizeSettings) MarshalYAML() (any, error) {
	return struct {
		Quiet     string  `yaml:"quiet"`
		Threshold float64 `yaml:"threshold"`
	}{Quiet: r.Quiet.String(), Threshold: r.Threshold}, nil
}

type DragSettings struct {
	Threshold float64 `mapstructure:"threshold" yaml:"threshold"`
}

type OrderSettings struct {
	Gap float64 `mapstructure:"gap" yaml:"gap"`
}

// DefaultSettings returns the built-in defaults.
func DefaultSettings() Settings {
	return Settings{
		StorageKey: core.DefaultKey,
		Layout: LayoutSettings{
			Gap:          layout.DefaultGap,
			MinCardWidth: layout.DefaultMinCardWidth,
		},
		Search: SearchSettings{MinQueryLength: search.DefaultMinQueryLength},
		Resize: ResizeSettings{
			Quiet:     layout.DefaultResizeQuiet,
			Threshold: layout.DefaultResizeThreshold,
		},
		Drag:  DragSettings{Threshold: drag.DefaultThreshold},
		Order: OrderSettings{Gap: order.DefaultGap},
	}
}

func newViper(dir string) *viper.Viper {
	v := viper.New()

	d := DefaultSettings()
	v.SetDefault("storage_key", d.StorageKey)
	v.SetDefault("watch", d.Watch)
	v.SetDefault("layout.gap", d.Layout.Gap)
	v.SetDefault("layout.min_card_width", d.Layout.MinCardWidth)
	v.SetDefault("search.min_query_length", d.Search.MinQueryLength)
	v.SetDefault("resize.quiet", d.Resize.Quiet)
	v.SetDefault("resize.threshold", d.Resize.Threshold)
	v.SetDefault("drag.threshold", d.Drag.Threshold)
	v.SetDefault("order.gap", d.Order.Gap)

	v.SetConfigName(ConfigName)
	v.SetConfigType("yaml")
	if dir != "" {
		v.AddConfigPath(dir)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// LoadSettings layers defaults, <dir>/notegrid.yaml and NOTEGRID_*
// environment variables. A missing file is not an error.
func LoadSettings(dir string) (Settings, error) {
	v := newViper(dir)

	if dir != "" {
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Settings{}, fmt.Errorf("failed to read %s: %w", ConfigFile, err)
			}
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("failed to decode settings: %w", err)
	}
	return s, nil
}

// WriteSettings writes s to <dir>/notegrid.yaml. It refuses to overwrite an
// existing file unless force is set, and returns the file path.
func WriteSettings(dir string, s Settings, force bool) (string, error) {
	path := filepath.Join(dir, ConfigFile)
	if !force {
		if _, err := os.Stat(path); err == nil {
			return path, fmt.Errorf("%s already exists", path)
		}
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return path, fmt.Errorf("failed to encode settings: %w", err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return path, fmt.Errorf("failed to create %s: %w", dir, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return path, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}
