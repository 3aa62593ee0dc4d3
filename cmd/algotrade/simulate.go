package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/uodit05/algo-trade-test-1/internal/engine"
	"github.com/uodit05/algo-trade-test-1/internal/feed"
	"github.com/uodit05/algo-trade-test-1/internal/feed/yahoo"
	"github.com/uodit05/algo-trade-test-1/internal/logger"
	"github.com/uodit05/algo-trade-test-1/internal/portfolio"
	"github.com/spf13/cobra"
)

var (
	simTickers  string
	simInterval string
	simPeriod   string
	simCash     float64
	simCommis   float64
)

var simulateCmd = &cobra.Command{
	Use:   "simulate [strategy]",
	Short: "Run a simulation to completion and print statistics",
	Long:  "Replay historical data through a strategy headless, without pacing, and print the run summary",
	Args:  cobra.ExactArgs(1),
	RunE:  runSimulate,
}

func init() {
	simulateCmd.Flags().StringVar(&simTickers, "tickers", "", "Comma-separated tickers (default: configured universe)")
	simulateCmd.Flags().StringVar(&simInterval, "interval", "", "Candle interval, e.g. 1d")
	simulateCmd.Flags().StringVar(&simPeriod, "period", "", "History period, e.g. 1y")
	simulateCmd.Flags().Float64Var(&simCash, "cash", 0, "Initial cash (default: configured)")
	simulateCmd.Flags().Float64Var(&simCommis, "commission", -1, "Commission rate (default: configured)")

	rootCmd.AddCommand(simulateCmd)
}

func runSimulate(cmd *cobra.Command, args []string) error {
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
	strat, err := registry.Get(args[0])
	if err != nil {
		return err
	}

	tickers := cfg.Simulation.Universe
	if simTickers != "" {
		tickers = splitList(simTickers)
	}
	interval := cfg.Simulation.Interval
	if simInterval != "" {
		interval = simInterval
	}
	period := cfg.Simulation.Period
	if simPeriod != "" {
		period = simPeriod
	}
	cash := cfg.Simulation.InitialCash
	if simCash > 0 {
		cash = simCash
	}
	commission := cfg.Simulation.CommissionRate
	if simCommis >= 0 {
		commission = simCommis
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	provider := yahoo.New(log)
	history, err := provider.FetchHistory(ctx, tickers, interval, period)
	if err != nil {
		return fmt.Errorf("fetching history: %w", err)
	}
	stream, err := feed.NewStream(history)
	if err != nil {
		return fmt.Errorf("building stream: %w", err)
	}
	ledger, err := portfolio.New(cash, commission, log)
	if err != nil {
		return err
	}

	strat.Reset()
	eng := engine.New(stream, ledger, strat, log)

	fmt.Printf("Simulating %s on %s (%s candles, %s)\n\n",
		args[0], strings.Join(tickers, ","), interval, period)

	if err := eng.Run(ctx); err != nil {
		return fmt.Errorf("simulation interrupted: %w", err)
	}

	printSummary(eng.Summary())
	return nil
}

func printSummary(s engine.Summary) {
	fmt.Println("=== Simulation Summary ===")
	fmt.Printf("Steps:          %d\n", s.Steps)
	fmt.Printf("Initial cash:   %.2f\n", s.InitialCash)
	fmt.Printf("Final equity:   %.2f\n", s.FinalEquity)
	fmt.Printf("Total return:   %.2f%%\n", s.TotalReturn)
	fmt.Printf("Trades:         %d (%d round trips, %d won / %d lost)\n",
		s.TotalTrades, s.RoundTrips, s.WinningTrips, s.LosingTrips)
	fmt.Printf("Win rate:       %.1f%%\n", s.WinRate)
	fmt.Printf("Max drawdown:   %.2f%%\n", s.MaxDrawdown)
	fmt.Printf("Sharpe ratio:   %.2f\n", s.SharpeRatio)
	fmt.Printf("Open positions: %d\n", s.OpenPositions)
}
