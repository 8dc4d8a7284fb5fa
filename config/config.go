package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/jsphweid/loopgen/constants"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type Catalog struct {
	Endpoint string `yaml:"endpoint"`
	Region   string `yaml:"region"`
	Table    string `yaml:"table"`
}

// Enabled reports whether renders should be recorded.
func (c Catalog) Enabled() bool {
	return c.Endpoint != "" && c.Table != ""
}

type Config struct {
	PatternsPath  string        `yaml:"patterns_path"`
	AssetsDir     string        `yaml:"assets_dir"`
	SamplesRoot   string        `yaml:"samples_root"`
	OutputDir     string        `yaml:"output_dir"`
	SampleRate    int           `yaml:"sample_rate"`
	StemWorkers   int           `yaml:"stem_workers"`
	WrapTails     bool          `yaml:"wrap_tails"`
	// zero disables the per-request render deadline
	RenderTimeout time.Duration `yaml:"render_timeout"`
	ListenAddr    string        `yaml:"listen_addr"`
	Catalog       Catalog       `yaml:"catalog"`
}

func Default() Config {
	return Config{
		PatternsPath:  constants.GetPatternsPath(),
		AssetsDir:     constants.GetAssetsDir(),
		SamplesRoot:   constants.DefaultSamplesRoot,
		OutputDir:     constants.GetOutputDir(),
		SampleRate:    constants.DefaultSampleRate,
		StemWorkers:   4,
		RenderTimeout: 30 * time.Second,
		ListenAddr:    ":8080",
		Catalog:       Catalog{Region: "localhost", Table: "loopgen-renders"},
	}
}

// Load starts from Default, applies the YAML file at path when path is not
// empty, then environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, errors.Wrap(err, "read config")
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, errors.Wrapf(err, "parse config %s", path)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv() error {
	setString := func(name string, dst *string) {
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}
	setInt := func(name string, dst *int) error {
		v := os.Getenv(name)
		if v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrapf(err, "%s", name)
		}
		*dst = n
		return nil
	}

	setString("PATTERNS_PATH", &c.PatternsPath)
	setString("ASSETS_PATH", &c.AssetsDir)
	setString("SAMPLES_ROOT", &c.SamplesRoot)
	setString("OUTPUT_PATH", &c.OutputDir)
	setString("LISTEN_ADDR", &c.ListenAddr)
	setString("CATALOG_ENDPOINT", &c.Catalog.Endpoint)
	setString("CATALOG_REGION", &c.Catalog.Region)
	setString("CATALOG_TABLE", &c.Catalog.Table)
	if err := setInt("SAMPLE_RATE", &c.SampleRate); err != nil {
		return err
	}
	if err := setInt("STEM_WORKERS", &c.StemWorkers); err != nil {
		return err
	}
	if v := os.Getenv("RENDER_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return errors.Wrap(err, "RENDER_TIMEOUT")
		}
		c.RenderTimeout = d
	}
	return nil
}

func (c Config) Validate() error {
	if c.SampleRate <= 0 {
		return errors.Errorf("sample rate must be positive, got %d", c.SampleRate)
	}
	if c.StemWorkers <= 0 {
		return errors.Errorf("stem workers must be positive, got %d", c.StemWorkers)
	}
	if c.RenderTimeout < 0 {
		return errors.Errorf("render timeout must not be negative, got %s", c.RenderTimeout)
	}
	return nil
}

// SamplesDir is where the pool is scanned: <assets>/<samples-root>.
func (c Config) SamplesDir() string {
	return filepath.Join(c.AssetsDir, c.SamplesRoot)
}
