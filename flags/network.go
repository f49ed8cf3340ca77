package flags

import (
	"gopkg.in/urfave/cli.v1"
)

// NetworkFlags select the rules the simulated network runs under.
func NetworkFlags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{
			Name:  "network",
			Usage: "Network rules (main|test|fake)",
		},
		cli.StringFlag{
			Name:  "preset",
			Usage: "Settings preset (default|lite|batch)",
			Value: "default",
		},
	}
}

// TxPoolFlags isolates transaction-pool tuning knobs.
func TxPoolFlags() []cli.Flag {
	return []cli.Flag{
		cli.IntFlag{
			Name:  "txpool.threshold",
			Usage: "Pending transactions that trigger a validator election",
		},
	}
}
