package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "algotrade",
	Short: "Trading strategy simulator",
	Long: `algotrade replays historical market data candle by candle through
pluggable trading strategies, tracking a simulated portfolio. It runs as
a server with a REST and WebSocket interface, or headless from the CLI.`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug mode")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
