package main

import (
	"context"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"rf-scope.dev/internal/app"
	"rf-scope.dev/internal/config"
	"rf-scope.dev/internal/radio"
	"rf-scope.dev/internal/telemetry"
)

var (
	flagStartMHz   float64
	flagSpanMHz    float64
	flagStepIndex  int
	flagCountIndex int
	flagTriggerDBm int
	flagSeed       int64
	flagFlaky      float64
	flagServe      string
	flagConfig     string
	flagLogFile    string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "rf-scope",
		Short: "RF Scope - Terminal spectrum analyzer with sweep/listen scanning",
		Long: `RF Scope sweeps a frequency range, graphs signal strength as a braille
spectrum with peak hold and a dithered waterfall, and parks on signals that
cross the trigger level.

The bundled sample source is synthetic, so no radio hardware is required.
Use --serve to stream completed scans to websocket subscribers.`,
		RunE: run,
	}

	rootCmd.Flags().Float64Var(&flagStartMHz, "start", 144.0, "Scan start frequency in MHz")
	rootCmd.Flags().Float64Var(&flagSpanMHz, "span", 1.6, "Synthetic carrier placement span in MHz")
	rootCmd.Flags().IntVar(&flagStepIndex, "step-index", -1, "Scan step table index (overrides saved setting)")
	rootCmd.Flags().IntVar(&flagCountIndex, "count-index", -1, "Steps-per-scan table index (overrides saved setting)")
	rootCmd.Flags().IntVar(&flagTriggerDBm, "trigger-dbm", 0, "Manual trigger level in dBm (0 = auto)")
	rootCmd.Flags().Int64Var(&flagSeed, "seed", 0, "Random seed for the synthetic sample source")
	rootCmd.Flags().Float64Var(&flagFlaky, "flaky", 0, "Probability a synthetic measurement fails, for testing retries")
	rootCmd.Flags().StringVar(&flagServe, "serve", "", "Telemetry listen address, e.g. :8080 (disabled when empty)")
	rootCmd.Flags().StringVar(&flagConfig, "config", "", "Settings file path (default ~/.config/rfscope/settings.json)")
	rootCmd.Flags().StringVar(&flagLogFile, "log-file", "", "Write structured logs to this file (silent when empty)")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger() (*logrus.Logger, func(), error) {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	// The TUI owns stdout, so logs go to a file or nowhere.
	if flagLogFile == "" {
		log.SetOutput(io.Discard)
		return log, func() {}, nil
	}
	f, err := os.OpenFile(flagLogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	log.SetOutput(f)
	return log, func() { f.Close() }, nil
}

func run(cmd *cobra.Command, args []string) error {
	log, closeLog, err := newLogger()
	if err != nil {
		return err
	}
	defer closeLog()

	cfgPath := flagConfig
	if cfgPath == "" {
		cfgPath = config.DefaultPath()
	}
	settings, err := config.Load(cfgPath)
	if err != nil {
		log.WithError(err).Warn("settings unreadable, using defaults")
	}
	if flagStepIndex >= 0 {
		settings.ScanStepIndex = flagStepIndex
	}
	if flagCountIndex >= 0 {
		settings.StepsCountIndex = flagCountIndex
	}
	settings.Normalize()
	if flagTriggerDBm != 0 {
		settings.TriggerLevel = int(radio.FromDBm(flagTriggerDBm))
	}

	startHz := uint32(flagStartMHz * 1e6)
	spanHz := uint32(flagSpanMHz * 1e6)

	mock := radio.NewMock(flagSeed, startHz, spanHz)
	if flagFlaky > 0 {
		mock.SetFlaky(flagFlaky)
	}
	trx := radio.NewRetrying(mock, 3)

	var hub *telemetry.Hub
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if flagServe != "" {
		hub = telemetry.NewHub(log)
		srv := telemetry.NewServer(hub, flagServe)
		go func() {
			if err := srv.Start(ctx); err != nil {
				log.WithError(err).Error("telemetry server failed")
			}
		}()
	}

	model, err := app.New(trx, &settings, startHz, hub, log)
	if err != nil {
		return err
	}

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithFPS(config.TargetFPS),
	)

	_, runErr := p.Run()

	if err := model.Shutdown(); err != nil {
		log.WithError(err).Warn("engine shutdown failed")
	}
	if err := settings.Save(cfgPath); err != nil {
		log.WithError(err).Warn("settings save failed")
	}
	return runErr
}
