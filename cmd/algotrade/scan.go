package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/uodit05/algo-trade-test-1/internal/feed/yahoo"
	"github.com/uodit05/algo-trade-test-1/internal/logger"
	"github.com/uodit05/algo-trade-test-1/internal/scanner"
	"github.com/spf13/cobra"
)

var (
	scanTickers    string
	scanInterval   string
	scanPeriod     string
	scanStrategies string
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan the universe for current signals",
	Long:  "Run batch analysis over full histories and report tickers whose latest candle triggers a signal",
	RunE:  runScan,
}

func init() {
	scanCmd.Flags().StringVar(&scanTickers, "tickers", "", "Comma-separated tickers (default: configured universe)")
	scanCmd.Flags().StringVar(&scanInterval, "interval", "", "Candle interval, e.g. 1d")
	scanCmd.Flags().StringVar(&scanPeriod, "period", "", "History period, e.g. 1y")
	scanCmd.Flags().StringVar(&scanStrategies, "strategies", "", "Comma-separated strategy names (default: all registered)")

	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	log := logger.Must(debug)
	defer log.Sync()

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}

	registry, err := buildRegistry(cfg)
	if err != nil {
		return err
	}

	tickers := cfg.Simulation.Universe
	if scanTickers != "" {
		tickers = splitList(scanTickers)
	}
	interval := cfg.Simulation.Interval
	if scanInterval != "" {
		interval = scanInterval
	}
	period := cfg.Simulation.Period
	if scanPeriod != "" {
		period = scanPeriod
	}
	names := registry.Names()
	if scanStrategies != "" {
		names = splitList(scanStrategies)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sc := scanner.New(yahoo.New(log), registry, log)
	results, err := sc.Scan(ctx, tickers, interval, period, names)
	if err != nil {
		return fmt.Errorf("scanning: %w", err)
	}

	if len(results) == 0 {
		fmt.Println("No signals.")
		return nil
	}
	fmt.Printf("%-8s %-16s %-6s %10s %8s\n", "TICKER", "STRATEGY", "ACTION", "PRICE", "ATR")
	for _, r := range results {
		fmt.Printf("%-8s %-16s %-6s %10.2f %8.2f\n", r.Ticker, r.Strategy, r.Action, r.Price, r.ATR)
	}
	return nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
