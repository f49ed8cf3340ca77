package launcher

// Defaults bundles the baseline configuration values the launcher uses
// before presets, config files and flags override them.
type Defaults struct {
	Node    NodeDefaults
	Network NetworkDefaults
	Metrics MetricsDefaults
	Logging LoggingDefaults
}

type NodeDefaults struct {
	Name string // attached to every log entry as "run"
}

type NetworkDefaults struct {
	Name        string // landchain.RulesByName key
	TxThreshold int    // 0 keeps the rules' threshold
}

type MetricsDefaults struct {
	Enable   bool
	HTTPAddr string
	HTTPPort int
}

// LoggingDefaults controls log verbosity/format.
type LoggingDefaults struct {
	Verbosity int    // logrus level (0=panic ... 4=info ... 6=trace)
	Format    string // text|json
	Color     bool
}

func DefaultConfig() Defaults {
	return Defaults{
		Node: NodeDefaults{
			Name: "landchain",
		},
		Network: NetworkDefaults{
			Name: "main",
		},
		Metrics: MetricsDefaults{
			Enable:   false,
			HTTPAddr: "127.0.0.1",
			HTTPPort: 6060,
		},
		Logging: LoggingDefaults{
			Verbosity: 4,
			Format:    "text",
			Color:     false,
		},
	}
}
