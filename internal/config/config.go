package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config holds the retarget job and preview settings.
type Config struct {
	// BaseDir anchors relative paths. Load sets it to the config file's directory.
	BaseDir string `json:"base_dir" toml:"base_dir" yaml:"base_dir"`

	// Paths
	Scene  string `json:"scene" toml:"scene" yaml:"scene"`
	Output string `json:"output" toml:"output" yaml:"output"`
	Jobs   string `json:"jobs" toml:"jobs" yaml:"jobs"`

	// Retarget settings. A nil Start or End falls back to the scene's playback range.
	Source     string `json:"source" toml:"source" yaml:"source"`
	Dest       string `json:"dest" toml:"dest" yaml:"dest"`
	Start      *int   `json:"start" toml:"start" yaml:"start"`
	End        *int   `json:"end" toml:"end" yaml:"end"`
	Rotation   bool   `json:"rotation" toml:"rotation" yaml:"rotation"`
	Scale      bool   `json:"scale" toml:"scale" yaml:"scale"`
	Reassembly string `json:"reassembly" toml:"reassembly" yaml:"reassembly"`
	Tangent    string `json:"tangent" toml:"tangent" yaml:"tangent"`
	Workers    int    `json:"workers" toml:"workers" yaml:"workers"`

	Preview Preview `json:"preview" toml:"preview" yaml:"preview"`
}

// Preview holds trajectory preview render settings.
type Preview struct {
	Enabled     bool   `json:"enabled" toml:"enabled" yaml:"enabled"`
	Dir         string `json:"dir" toml:"dir" yaml:"dir"`
	Size        int    `json:"size" toml:"size" yaml:"size"`
	Supersample int    `json:"supersample" toml:"supersample" yaml:"supersample"`
	Format      string `json:"format" toml:"format" yaml:"format"`
	View        string `json:"view" toml:"view" yaml:"view"`
	Plate       string `json:"plate" toml:"plate" yaml:"plate"`
}

// Load reads a config file. The extension picks the codec: .json, .toml, .yaml or .yml.
// Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "config: read %s", path)
	}

	var cfg Config
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = json.Unmarshal(data, &cfg)
	case ".toml":
		err = toml.Unmarshal(data, &cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		return Config{}, errors.Errorf("config: %s: unsupported extension %q", path, ext)
	}
	if err != nil {
		return Config{}, errors.Wrapf(err, "config: parse %s", path)
	}

	if cfg.BaseDir == "" {
		cfg.BaseDir = filepath.Dir(path)
	} else if !filepath.IsAbs(cfg.BaseDir) {
		cfg.BaseDir = filepath.Join(filepath.Dir(path), cfg.BaseDir)
	}
	return cfg, nil
}

// Flags holds CLI flag values that override config file settings.
// Zero values leave the config untouched; Start and End are nil unless given.
type Flags struct {
	Scene      string
	Output     string
	Jobs       string
	Source     string
	Dest       string
	Start      *int
	End        *int
	Rotation   bool
	Scale      bool
	Reassembly string
	Tangent    string
	Workers    int
	Preview    bool
	PreviewDir string
	Plate      string
	View       string
	Format     string
	Size       int
}

// Resolve anchors relative file paths at BaseDir, applies flag overrides and fills
// defaults. Flag paths stay relative to the working directory.
func (c *Config) Resolve(flags Flags) {
	// file paths are relative to the config file
	if c.BaseDir != "" {
		for _, p := range []*string{&c.Scene, &c.Output, &c.Jobs, &c.Preview.Dir, &c.Preview.Plate} {
			if *p != "" && !filepath.IsAbs(*p) {
				*p = filepath.Join(c.BaseDir, *p)
			}
		}
	}

	// CLI flags override config file
	setString(&c.Scene, flags.Scene)
	setString(&c.Output, flags.Output)
	setString(&c.Jobs, flags.Jobs)
	setString(&c.Source, flags.Source)
	setString(&c.Dest, flags.Dest)
	setString(&c.Reassembly, flags.Reassembly)
	setString(&c.Tangent, flags.Tangent)
	setString(&c.Preview.Dir, flags.PreviewDir)
	setString(&c.Preview.Plate, flags.Plate)
	setString(&c.Preview.View, flags.View)
	setString(&c.Preview.Format, flags.Format)
	if flags.Start != nil {
		c.Start = flags.Start
	}
	if flags.End != nil {
		c.End = flags.End
	}
	c.Rotation = c.Rotation || flags.Rotation
	c.Scale = c.Scale || flags.Scale
	c.Preview.Enabled = c.Preview.Enabled || flags.Preview || flags.PreviewDir != ""
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.Size > 0 {
		c.Preview.Size = flags.Size
	}

	if c.Output == "" && c.Scene != "" {
		c.Output = BakedPath(c.Scene)
	}
	if c.Preview.Dir == "" {
		base := c.BaseDir
		if c.Output != "" {
			base = filepath.Dir(c.Output)
		}
		c.Preview.Dir = filepath.Join(base, "preview")
	}

	// Defaults
	if c.Reassembly == "" {
		c.Reassembly = "clean"
	}
	if c.Tangent == "" {
		c.Tangent = "linear"
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.Preview.Size <= 0 {
		c.Preview.Size = 512
	}
	if c.Preview.Supersample <= 0 {
		c.Preview.Supersample = 2
	}
	if c.Preview.Format == "" {
		c.Preview.Format = "webp"
	}
	if c.Preview.View == "" {
		c.Preview.View = "top"
	}
}

// Validate checks settings that Resolve cannot default.
func (c *Config) Validate() error {
	if c.Jobs == "" {
		if c.Scene == "" {
			return errors.New("config: no scene file")
		}
		if c.Source == "" || c.Dest == "" {
			return errors.New("config: source and dest are required")
		}
	}
	if c.Start != nil && c.End != nil && *c.Start > *c.End {
		return errors.Errorf("config: start %d is after end %d", *c.Start, *c.End)
	}
	switch c.Preview.Format {
	case "webp", "tga":
	default:
		return errors.Errorf("config: unknown preview format %q", c.Preview.Format)
	}
	return nil
}

// BakedPath derives the default output path for a scene file: shot.yaml -> shot.baked.yaml.
func BakedPath(scene string) string {
	ext := filepath.Ext(scene)
	return strings.TrimSuffix(scene, ext) + ".baked" + ext
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
