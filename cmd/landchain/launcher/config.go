package launcher

import (
	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"gopkg.in/urfave/cli.v1"

	"github.com/rony4d/go-landchain/integration"
	"github.com/rony4d/go-landchain/landchain"
)

// Config aggregates everything a launcher command needs.
type Config struct {
	Preset  string
	Node    NodeConfig
	Network NetworkConfig
}

type NodeConfig struct {
	Name     string
	Snapshot string
	Logging  LoggingConfig
	Metrics  MetricsConfig
	Sentry   SentryConfig
}

type NetworkConfig struct {
	Name        string
	TxThreshold int
}

type LoggingConfig struct {
	Verbosity int
	Format    string
	Color     bool
}

type MetricsConfig struct {
	Enabled bool
	Addr    string
	Port    int
}

type SentryConfig struct {
	DSN string
}

func defaultConfig() Config {
	d := DefaultConfig()
	return Config{
		Preset: "default",
		Node: NodeConfig{
			Name: d.Node.Name,
			Logging: LoggingConfig{
				Verbosity: d.Logging.Verbosity,
				Format:    d.Logging.Format,
				Color:     d.Logging.Color,
			},
			Metrics: MetricsConfig{
				Enabled: d.Metrics.Enable,
				Addr:    d.Metrics.HTTPAddr,
				Port:    d.Metrics.HTTPPort,
			},
		},
		Network: NetworkConfig{
			Name:        d.Network.Name,
			TxThreshold: d.Network.TxThreshold,
		},
	}
}

// MakeAllConfigs layers defaults, the selected preset, the optional config
// file and finally explicitly set flags.
func MakeAllConfigs(cliCtx *cli.Context) (Config, error) {
	ctx := flagLookup{cliCtx}
	cfg := defaultConfig()

	if ctx.isSet("preset") {
		cfg.Preset = ctx.stringFlag("preset")
	}
	if err := applyPreset(&cfg, cfg.Preset); err != nil {
		return Config{}, err
	}

	if file := ctx.stringFlag("config"); file != "" {
		if err := loadConfigFile(file, &cfg); err != nil {
			return Config{}, err
		}
	}

	applyCLIOverrides(ctx, &cfg)

	if _, err := cfg.Rules(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Rules resolves the network rules with the configured threshold override.
func (cfg Config) Rules() (landchain.Rules, error) {
	rules, err := landchain.RulesByName(cfg.Network.Name)
	if err != nil {
		return landchain.Rules{}, err
	}
	if cfg.Network.TxThreshold != 0 {
		rules.Blocks.TxThreshold = cfg.Network.TxThreshold
	}
	if err := rules.Validate(); err != nil {
		return landchain.Rules{}, errors.Wrapf(err, "network %s", rules.Name)
	}
	return rules, nil
}

func applyPreset(cfg *Config, name string) error {
	preset, err := integration.GetPresetByName(name)
	if err != nil {
		return err
	}
	current := integration.PresetConfig{
		Name:          cfg.Preset,
		Network:       cfg.Network.Name,
		TxThreshold:   cfg.Network.TxThreshold,
		Verbosity:     cfg.Node.Logging.Verbosity,
		EnableMetrics: cfg.Node.Metrics.Enabled,
	}
	integration.ApplyPreset(&current, preset)

	cfg.Preset = current.Name
	cfg.Network.Name = current.Network
	cfg.Network.TxThreshold = current.TxThreshold
	cfg.Node.Logging.Verbosity = current.Verbosity
	cfg.Node.Metrics.Enabled = current.EnableMetrics
	return nil
}

// loadConfigFile overlays the keys present in path onto cfg. Keys match field
// names case-insensitively, e.g. network.txthreshold or node.logging.format.
func loadConfigFile(path string, cfg *Config) error {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return errors.Wrapf(err, "read config file %s", path)
	}
	if err := v.Unmarshal(cfg); err != nil {
		return errors.Wrapf(err, "decode config file %s", path)
	}
	return nil
}

func applyCLIOverrides(ctx flagLookup, cfg *Config) {
	if ctx.isSet("identity") {
		cfg.Node.Name = ctx.stringFlag("identity")
	}
	if ctx.isSet("snapshot") {
		cfg.Node.Snapshot = ctx.stringFlag("snapshot")
	}

	if ctx.isSet("network") {
		cfg.Network.Name = ctx.stringFlag("network")
	}
	if ctx.isSet("txpool.threshold") {
		cfg.Network.TxThreshold = ctx.intFlag("txpool.threshold")
	}

	if ctx.isSet("log.format") {
		cfg.Node.Logging.Format = ctx.stringFlag("log.format")
	}
	if ctx.isSet("log.verbosity") {
		cfg.Node.Logging.Verbosity = ctx.intFlag("log.verbosity")
	}
	if ctx.isSet("log.color") {
		cfg.Node.Logging.Color = ctx.boolFlag("log.color")
	}

	if ctx.boolFlag("metrics") {
		cfg.Node.Metrics.Enabled = true
	}
	if ctx.isSet("metrics.addr") {
		cfg.Node.Metrics.Addr = ctx.stringFlag("metrics.addr")
	}
	if ctx.isSet("metrics.port") {
		cfg.Node.Metrics.Port = ctx.intFlag("metrics.port")
	}

	if ctx.isSet("sentry.dsn") {
		cfg.Node.Sentry.DSN = ctx.stringFlag("sentry.dsn")
	}
}

// flagLookup reads a flag from the command's own flags first and then from
// the flags given before the command name.
type flagLookup struct {
	ctx *cli.Context
}

func (f flagLookup) isSet(name string) bool {
	return f.ctx.IsSet(name) || f.ctx.GlobalIsSet(name)
}

func (f flagLookup) global(name string) bool {
	return !f.ctx.IsSet(name) && f.ctx.GlobalIsSet(name)
}

func (f flagLookup) stringFlag(name string) string {
	if f.global(name) {
		return f.ctx.GlobalString(name)
	}
	return f.ctx.String(name)
}

func (f flagLookup) intFlag(name string) int {
	if f.global(name) {
		return f.ctx.GlobalInt(name)
	}
	return f.ctx.Int(name)
}

func (f flagLookup) boolFlag(name string) bool {
	if f.global(name) {
		return f.ctx.GlobalBool(name)
	}
	return f.ctx.Bool(name)
}
