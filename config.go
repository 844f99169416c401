package main

import (
	_ "embed"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	gh "github.com/3leaps/assetrank/internal/host/github"
	"github.com/3leaps/assetrank/internal/hostenv"
	"github.com/3leaps/assetrank/internal/schema"
	"github.com/3leaps/assetrank/pkg/resolve"
)

const envPrefix = "ASSETRANK"

//go:embed schemas/config.schema.json
var configSchemaJSON []byte

var configSchema = schema.MustCompile("https://assetrank.3leaps.dev/schemas/config.schema.json", configSchemaJSON)

// Config is the merged configuration: defaults, config file, ASSETRANK_*
// environment, then explicitly set flags.
type Config struct {
	APIBase     string        `mapstructure:"api_base"`
	Format      string        `mapstructure:"format"`
	Timeout     time.Duration `mapstructure:"timeout"`
	HostTimeout time.Duration `mapstructure:"host_timeout"`
	Prerelease  bool          `mapstructure:"prerelease"`
	Platform    string        `mapstructure:"platform"`
	Arch        string        `mapstructure:"arch"`
}

var configDefaults = map[string]any{
	"api_base":     gh.DefaultAPIBase,
	"format":       "table",
	"timeout":      "30s",
	"host_timeout": "5s",
	"prerelease":   false,
	"platform":     "",
	"arch":         "",
}

// flagKeys maps flag names to the config keys they override.
var flagKeys = map[string]string{
	"format":     "format",
	"os":         "platform",
	"arch":       "arch",
	"prerelease": "prerelease",
}

// loadConfig merges the config layers. path is the --config value; when empty
// the default location is used if a file exists there.
func loadConfig(path string, flags *flag.FlagSet) (*Config, error) {
	v := viper.New()
	for key, value := range configDefaults {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	file, explicit := path, path != ""
	if !explicit {
		file = defaultConfigPath()
	}
	if file != "" {
		values, err := readConfigFile(file)
		switch {
		case err == nil:
			if err := v.MergeConfigMap(values); err != nil {
				return nil, fmt.Errorf("merge config %s: %w", file, err)
			}
		case !explicit && errors.Is(err, fs.ErrNotExist):
		default:
			return nil, err
		}
	}

	if flags != nil {
		flags.Visit(func(f *flag.Flag) {
			if key, ok := flagKeys[f.Name]; ok {
				v.Set(key, f.Value.String())
			}
		})
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.APIBase = strings.TrimRight(strings.TrimSpace(cfg.APIBase), "/")
	cfg.Format = strings.ToLower(strings.TrimSpace(cfg.Format))
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func defaultConfigPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		var err error
		if dir, err = os.UserConfigDir(); err != nil {
			return ""
		}
	}
	return filepath.Join(dir, "assetrank", "config.yaml")
}

// readConfigFile decodes a YAML config file and checks it against the config
// schema.
func readConfigFile(path string) (map[string]any, error) {
	// #nosec G304 -- config path comes from --config or XDG_CONFIG_HOME
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	values := map[string]any{}
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := configSchema.ValidateValue(values); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return values, nil
}

func validateConfig(cfg *Config) error {
	var problems []string

	switch cfg.Format {
	case "table", "json", "yaml":
	default:
		problems = append(problems, fmt.Sprintf("format: unsupported %q (supported: table, json, yaml)", cfg.Format))
	}
	if u, err := url.Parse(cfg.APIBase); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		problems = append(problems, fmt.Sprintf("api_base: not an http(s) URL %q", cfg.APIBase))
	}
	if cfg.Timeout <= 0 {
		problems = append(problems, fmt.Sprintf("timeout: must be > 0 (got %s)", cfg.Timeout))
	}
	if cfg.HostTimeout <= 0 {
		problems = append(problems, fmt.Sprintf("host_timeout: must be > 0 (got %s)", cfg.HostTimeout))
	}
	if p := cfg.Platform; p != "" && !isUnknownWord(p) && hostenv.NormalizePlatform(p) == resolve.PlatformUnknown {
		problems = append(problems, fmt.Sprintf("platform: unrecognized %q", p))
	}
	if a := cfg.Arch; a != "" && !isUnknownWord(a) && hostenv.NormalizeArch(a) == resolve.ArchUnknown {
		problems = append(problems, fmt.Sprintf("arch: unrecognized %q", a))
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

// isUnknownWord allows an override to ask for an unidentified runtime on
// purpose.
func isUnknownWord(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), "unknown")
}
