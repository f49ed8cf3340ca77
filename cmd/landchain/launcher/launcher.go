package launcher

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"gopkg.in/urfave/cli.v1"

	"github.com/rony4d/go-landchain/flags"
	"github.com/rony4d/go-landchain/network"
)

// Launch parses args and runs the selected command. Without a command the
// demo runs.
func Launch(args []string) error {
	return newApp().Run(args)
}

func newApp() *cli.App {
	app := flags.NewApp()
	app.Action = demoAction
	app.Commands = []cli.Command{
		{
			Name:   "demo",
			Usage:  "Replay the three peer land registry scenario and print the resulting ledger",
			Flags:  app.Flags,
			Action: demoAction,
		},
		{
			Name:   "rules",
			Usage:  "Print the effective network rules",
			Flags:  app.Flags,
			Action: rulesAction,
		},
	}
	return app
}

func rulesAction(ctx *cli.Context) error {
	cfg, err := MakeAllConfigs(ctx)
	if err != nil {
		return err
	}
	rules, err := cfg.Rules()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(ctx.App.Writer, rules.String())
	return err
}

func demoAction(ctx *cli.Context) error {
	cfg, err := MakeAllConfigs(ctx)
	if err != nil {
		return err
	}
	log, err := newLogger(cfg.Node, os.Stderr)
	if err != nil {
		return err
	}
	runLog := log.WithFields(logrus.Fields{"run": cfg.Node.Name, "preset": cfg.Preset})

	var reg prometheus.Registerer
	var registry *prometheus.Registry
	if cfg.Node.Metrics.Enabled {
		registry = newRegistry()
		reg = registry
	}

	nw, err := newNetwork(cfg, runLog, reg)
	if err != nil {
		return err
	}

	sigctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if registry != nil {
		startMetricsServer(sigctx, cfg.Node.Metrics, registry, runLog)
	}

	out := ctx.App.Writer
	if err := playScenario(nw, out); err != nil {
		return err
	}
	if err := renderState(nw, "alice", out); err != nil {
		return err
	}
	if cfg.Node.Snapshot != "" {
		if err := writeSnapshot(nw, "alice", cfg.Node.Snapshot); err != nil {
			return err
		}
		runLog.WithField("file", cfg.Node.Snapshot).Info("Wrote snapshot")
	}

	if registry != nil {
		runLog.Info("Demo finished, metrics stay up until interrupted")
		<-sigctx.Done()
	}
	return nil
}

func newNetwork(cfg Config, log logrus.FieldLogger, reg prometheus.Registerer) (*network.Network, error) {
	rules, err := cfg.Rules()
	if err != nil {
		return nil, err
	}
	return network.New(network.Config{
		Rules:      rules,
		Log:        log,
		Registerer: reg,
	})
}

func writeSnapshot(nw *network.Network, peer, path string) error {
	n, err := nw.Node(peer)
	if err != nil {
		return err
	}
	snap := n.Export()
	raw, err := snap.MarshalBinary()
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o644)
}
