package main

import (
	"log"
	"time"

	"github.com/blagojts/viper"
	"github.com/spf13/cobra"

	"github.com/pvsim/pvsim/pkg/stream"
)

func initMeterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "meter",
		Short: "Publish mock household meter readings to Kafka at 1 Hz",
		Run:   runMeter,
	}
	cmd.Flags().String("topic", "meter", "Kafka topic to publish meter readings to")
	return cmd
}

func runMeter(cmd *cobra.Command, _ []string) {
	seed := bindFlags(cmd)

	bus := stream.NewBus(viper.GetStringSlice("brokers"))
	w := bus.Writer(viper.GetString("topic"))
	defer w.Close()

	ctx, stop := signalContext()
	defer stop()

	clock := stream.NewClock(time.Now().UTC(), viper.GetBool("realtime"))
	meter := stream.NewMeterSource(seed)
	maxSeconds := viper.GetUint64("max-seconds")

	var sent uint64
	for maxSeconds == 0 || sent < maxSeconds {
		t, err := clock.Tick(ctx)
		if err != nil {
			break
		}
		if err := stream.Publish(ctx, w, meter.Read(t)); err != nil {
			if ctx.Err() != nil {
				break
			}
			fatal("could not publish meter reading: %v", err)
		}
		sent++
	}
	log.Printf("published %d meter readings", sent)
}
