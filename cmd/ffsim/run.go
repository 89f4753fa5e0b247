package main

import (
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/EPCCed/ffs-sub000/internal/applog"
	"github.com/EPCCed/ffs-sub000/internal/config"
	"github.com/EPCCed/ffs-sub000/internal/instance"
	"github.com/EPCCed/ffs-sub000/internal/simfacade"
	"github.com/EPCCed/ffs-sub000/internal/simfacade/testsim"
	"github.com/EPCCed/ffs-sub000/internal/telemetry"
)

func runCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "run <config-file>",
		Short: "Run an FFS rate calculation from a YAML configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInstance(args[0], verbose)
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "debug-level logging")
	return cmd
}

func runInstance(configPath string, verbose bool) error {
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	log, err := applog.New(level)
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}

	params, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading %s: %w", configPath, err)
	}

	metrics, err := telemetry.New(prometheus.DefaultRegisterer)
	if err != nil {
		return fmt.Errorf("registering metrics: %w", err)
	}

	inst := instance.New(1, log)
	inst.SetMetrics(metrics)
	if err := inst.Start(); err != nil {
		return err
	}

	factory := func(proxyRank int) (simfacade.Facade, error) {
		return testsim.NewRandomWalk(params.BaseSeed + int64(proxyRank))
	}
	if err := inst.Configure(params, factory); err != nil {
		return err
	}

	log.Info("running instance", zap.String("algorithm", string(params.Algorithm)))
	if err := inst.Run(); err != nil {
		return fmt.Errorf("running: %w", err)
	}
	if err := inst.Reduce(); err != nil {
		return fmt.Errorf("reducing: %w", err)
	}
	if err := inst.Stop(os.Stdout); err != nil {
		return fmt.Errorf("rendering results: %w", err)
	}

	return nil
}
