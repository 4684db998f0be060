package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/blagojts/viper"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "pvsim_stream",
	Short: "Stream simulated PV power against live meter readings over Kafka",
}

func init() {
	rootCmd.PersistentFlags().StringSlice("brokers", []string{"localhost:9092"}, "Comma-separated list of Kafka broker addresses")
	rootCmd.PersistentFlags().Int64("seed", 0, "PRNG seed (default: 0, uses the current timestamp)")
	rootCmd.PersistentFlags().Bool("realtime", true, "Pace the stream at one reading per wall-clock second")
	rootCmd.PersistentFlags().Uint64("max-seconds", 0, "Stop after this many seconds of stream time (0 runs until interrupted)")

	rootCmd.AddCommand(initMeterCmd())
	rootCmd.AddCommand(initPVCmd())
}

// bindFlags binds only the flags of the executed sub-command into viper
// and resolves the seed the same way the offline generator does: 0 means
// seed from the clock.
func bindFlags(cmd *cobra.Command) int64 {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		panic(fmt.Errorf("could not bind flags to configuration: %v", err))
	}
	seed := viper.GetInt64("seed")
	if seed == 0 {
		seed = int64(time.Now().Nanosecond())
	}
	return seed
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
