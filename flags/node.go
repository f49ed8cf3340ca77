package flags

import (
	"gopkg.in/urfave/cli.v1"
)

// NodeFlags hold knobs for the peers started by a command.
func NodeFlags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{
			Name:  "identity",
			Usage: "Name attached to every log entry of this run",
		},
		cli.StringFlag{
			Name:  "snapshot",
			Usage: "Write the first peer's chain and pool to this file when done",
		},
	}
}
