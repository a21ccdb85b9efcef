// Package config loads fissh settings from YAML or TOML files and command-line
// flags.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"fissh/internal/aquarium"
)

// Config represents every tunable of the fissh commands.
type Config struct {
	Tank   TankConfig   `yaml:"tank" toml:"tank"`
	Stream StreamConfig `yaml:"stream" toml:"stream"`
	Server ServerConfig `yaml:"server" toml:"server"`
	SSH    SSHConfig    `yaml:"ssh" toml:"ssh"`
	Web    WebConfig    `yaml:"web" toml:"web"`
	Ledger LedgerConfig `yaml:"ledger" toml:"ledger"`
	Log    LogConfig    `yaml:"log" toml:"log"`
}

// TankConfig mirrors aquarium.Params in file form.
type TankConfig struct {
	Variance          float64 `yaml:"variance" toml:"variance"`
	CrawlDivisor      float64 `yaml:"crawl_divisor" toml:"crawl_divisor"`
	BubbleDivisor     float64 `yaml:"bubble_divisor" toml:"bubble_divisor"`
	VegetationDivisor float64 `yaml:"vegetation_divisor" toml:"vegetation_divisor"`
	CrawlCadence      int     `yaml:"crawl_cadence" toml:"crawl_cadence"`
	Vegetation        bool    `yaml:"vegetation" toml:"vegetation"`
	Occlusion         string  `yaml:"occlusion" toml:"occlusion"`
	// Seed fixes the random source; zero seeds from the clock per session.
	Seed int64 `yaml:"seed" toml:"seed"`
}

// StreamConfig controls the frame driver.
type StreamConfig struct {
	Interval Duration `yaml:"interval" toml:"interval"`
}

// ServerConfig holds limits shared by every remote transport.
type ServerConfig struct {
	MaxSessions int `yaml:"max_sessions" toml:"max_sessions"`
}

// SSHConfig configures the SSH listener. An empty Addr disables it.
type SSHConfig struct {
	Addr             string   `yaml:"addr" toml:"addr"`
	HostKey          string   `yaml:"host_key" toml:"host_key"`
	HandshakeTimeout Duration `yaml:"handshake_timeout" toml:"handshake_timeout"`
	Banner           string   `yaml:"banner" toml:"banner"`
}

// WebConfig configures the websocket listener. An empty Addr disables it.
type WebConfig struct {
	Addr           string   `yaml:"addr" toml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins" toml:"allowed_origins"`
}

// LedgerConfig selects the session ledger backend.
type LedgerConfig struct {
	Backend string `yaml:"backend" toml:"backend"`
	Path    string `yaml:"path" toml:"path"`
}

// LogConfig selects log verbosity and encoding.
type LogConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

// Default returns a Config populated with sensible defaults.
func Default() *Config {
	p := aquarium.DefaultParams()
	return &Config{
		Tank: TankConfig{
			Variance:          p.Variance,
			CrawlDivisor:      p.CrawlDivisor,
			BubbleDivisor:     p.BubbleDivisor,
			VegetationDivisor: p.VegetationDivisor,
			CrawlCadence:      p.CrawlCadence,
			Vegetation:        p.Vegetation,
			Occlusion:         p.Occlusion.String(),
		},
		Stream: StreamConfig{Interval: Duration{120 * time.Millisecond}},
		Server: ServerConfig{MaxSessions: 64},
		SSH: SSHConfig{
			Addr:             ":2222",
			HostKey:          "host_key",
			HandshakeTimeout: Duration{10 * time.Second},
		},
		Web:    WebConfig{Addr: ""},
		Ledger: LedgerConfig{Backend: "memory"},
		Log:    LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads path over the defaults. The format follows the extension:
// .yaml/.yml or .toml.
func Load(path string) (*Config, error) {
	c := Default()
	if path == "" {
		return c, nil
	}
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(buf, c)
	case ".toml":
		err = toml.Unmarshal(buf, c)
	default:
		return nil, fmt.Errorf("config %s: unsupported extension %q", path, filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return c, nil
}

// PathFromArgs finds the value of a -config or --config flag in args so the
// file can be loaded before the remaining flags are parsed over it.
func PathFromArgs(args []string) string {
	for i, arg := range args {
		if !strings.HasPrefix(arg, "-") {
			continue
		}
		name, value, hasValue := strings.Cut(strings.TrimLeft(arg, "-"), "=")
		if name != "config" {
			continue
		}
		if hasValue {
			return value
		}
		if i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

// Bind attaches the most used settings to the provided FlagSet so flags
// override file values.
func (c *Config) Bind(fs *flag.FlagSet) {
	fs.Float64Var(&c.Tank.Variance, "variance", c.Tank.Variance, "swimmer spawn probability per tick")
	fs.Float64Var(&c.Tank.CrawlDivisor, "crawl-divisor", c.Tank.CrawlDivisor, "crawler spawn probability is variance divided by this")
	fs.IntVar(&c.Tank.CrawlCadence, "crawl-cadence", c.Tank.CrawlCadence, "crawlers step every this many ticks")
	fs.BoolVar(&c.Tank.Vegetation, "vegetation", c.Tank.Vegetation, "plant the floor at startup")
	fs.StringVar(&c.Tank.Occlusion, "occlusion", c.Tank.Occlusion, "draw order: vegetation-first or bubbles-first")
	fs.Int64Var(&c.Tank.Seed, "seed", c.Tank.Seed, "random seed (0 seeds from the clock)")
	fs.DurationVar(&c.Stream.Interval.Duration, "interval", c.Stream.Interval.Duration, "time between frames")
	fs.IntVar(&c.Server.MaxSessions, "max-sessions", c.Server.MaxSessions, "concurrent remote sessions")
	fs.StringVar(&c.SSH.Addr, "ssh-addr", c.SSH.Addr, "ssh listen address (empty disables)")
	fs.StringVar(&c.SSH.HostKey, "host-key", c.SSH.HostKey, "ssh host key path, generated when missing")
	fs.StringVar(&c.Web.Addr, "web-addr", c.Web.Addr, "websocket listen address (empty disables)")
	fs.StringVar(&c.Ledger.Backend, "ledger", c.Ledger.Backend, "session ledger backend: memory or sqlite")
	fs.StringVar(&c.Ledger.Path, "ledger-path", c.Ledger.Path, "sqlite ledger path")
	fs.StringVar(&c.Log.Level, "log-level", c.Log.Level, "debug, info, warn or error")
	fs.StringVar(&c.Log.Format, "log-format", c.Log.Format, "text or json")
}

// Params converts the tank section into aquarium tunables.
func (c *Config) Params() (aquarium.Params, error) {
	occlusion, err := aquarium.ParseOcclusion(c.Tank.Occlusion)
	if err != nil {
		return aquarium.Params{}, err
	}
	p := aquarium.Params{
		Variance:          c.Tank.Variance,
		CrawlDivisor:      c.Tank.CrawlDivisor,
		BubbleDivisor:     c.Tank.BubbleDivisor,
		VegetationDivisor: c.Tank.VegetationDivisor,
		CrawlCadence:      c.Tank.CrawlCadence,
		Vegetation:        c.Tank.Vegetation,
		Occlusion:         occlusion,
	}
	return p, p.Validate()
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	if _, err := c.Params(); err != nil {
		errs = append(errs, fmt.Errorf("tank: %w", err))
	}
	if c.Stream.Interval.Duration <= 0 {
		errs = append(errs, fmt.Errorf("stream: interval must be positive, got %v", c.Stream.Interval))
	}
	if c.Server.MaxSessions < 1 {
		errs = append(errs, fmt.Errorf("server: max_sessions must be at least 1, got %d", c.Server.MaxSessions))
	}
	if c.SSH.Addr != "" && c.SSH.HostKey == "" {
		errs = append(errs, errors.New("ssh: host_key is required when ssh is enabled"))
	}
	switch c.Ledger.Backend {
	case "", "memory":
	case "sqlite":
		if c.Ledger.Path == "" {
			errs = append(errs, errors.New("ledger: sqlite backend needs a path"))
		}
	default:
		errs = append(errs, fmt.Errorf("ledger: unsupported backend %q", c.Ledger.Backend))
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		errs = append(errs, fmt.Errorf("log: unsupported format %q", c.Log.Format))
	}
	return errors.Join(errs...)
}
