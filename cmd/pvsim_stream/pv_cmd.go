package main

import (
	"context"
	"io"
	"log"
	"os"
	"sync"
	"time"

	"github.com/blagojts/viper"
	"github.com/spf13/cobra"

	"github.com/pvsim/pvsim/pkg/data/usecases/clearsky"
	"github.com/pvsim/pvsim/pkg/stream"
)

func initPVCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pv",
		Short: "Consume meter readings, stream simulated PV power and record the residual load",
		Run:   runPV,
	}
	cmd.Flags().String("topic", "meter", "Kafka topic to consume meter readings from")
	cmd.Flags().String("group", "pvsim-pv", "Kafka consumer group for the meter topic")
	cmd.Flags().String("file", "", "File to write residual rows to (default writes to stdout)")
	cmd.Flags().String("db-url", "", "TimescaleDB connection URL. Empty disables database output")
	cmd.Flags().Int("db-batch-size", stream.DefaultDBBatchSize, "Rows per database copy")
	cmd.Flags().Duration("max-lag", stream.DefaultMaxLag, "How long to wait for the missing side of a second before emitting it with NaN")
	cmd.Flags().String("step-table", "", "YAML file with the hourly cloud-cover step distribution table. Empty means the built-in table")
	return cmd
}

func runPV(cmd *cobra.Command, _ []string) {
	seed := bindFlags(cmd)

	var table *clearsky.StepTable
	if path := viper.GetString("step-table"); path != "" {
		var err error
		table, err = clearsky.LoadStepTable(path)
		if err != nil {
			fatal("could not load step table: %v", err)
		}
	}

	start := time.Now().UTC()
	pvSrc, err := stream.NewPVSource(start, table, seed)
	if err != nil {
		fatal("could not build pv source: %v", err)
	}

	var out io.Writer = os.Stdout
	if file := viper.GetString("file"); file != "" {
		f, err := os.Create(file)
		if err != nil {
			fatal("cannot open file for write %s: %v", file, err)
		}
		defer f.Close()
		out = f
	}
	csvRec, err := stream.NewCSVRecorder(out)
	if err != nil {
		fatal("could not start csv recorder: %v", err)
	}

	ctx, stop := signalContext()
	defer stop()

	var dbRec *stream.DBRecorder
	if dbURL := viper.GetString("db-url"); dbURL != "" {
		dbRec, err = stream.ConnectDB(ctx, dbURL, viper.GetInt("db-batch-size"))
		if err != nil {
			fatal("could not connect to database: %v", err)
		}
	}

	bus := stream.NewBus(viper.GetStringSlice("brokers"))
	reader := bus.Reader(viper.GetString("topic"), viper.GetString("group"))
	defer reader.Close()

	funnel := stream.NewFunnel(viper.GetDuration("max-lag"))
	clock := stream.NewClock(start, viper.GetBool("realtime"))
	maxSeconds := viper.GetUint64("max-seconds")

	rows := make(chan stream.Row, 256)
	var wg sync.WaitGroup

	// Meter side: whatever arrives on the topic goes into the funnel.
	wg.Add(1)
	go func() {
		defer wg.Done()
		for ctx.Err() == nil {
			r, err := stream.Fetch(ctx, reader)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				// a poison message should not kill the stream
				log.Printf("could not read meter message: %v", err)
				continue
			}
			for _, row := range funnel.OfferMeter(r) {
				rows <- row
			}
		}
	}()

	// PV side: sample the plant once per clock tick. Reaching the horizon
	// stops the whole run.
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer stop()
		var ticks uint64
		for maxSeconds == 0 || ticks < maxSeconds {
			t, err := clock.Tick(ctx)
			if err != nil {
				return
			}
			for _, row := range funnel.OfferPV(pvSrc.Read(t)) {
				rows <- row
			}
			ticks++
		}
	}()

	go func() {
		wg.Wait()
		for _, row := range funnel.Flush() {
			rows <- row
		}
		close(rows)
	}()

	for row := range rows {
		if err := csvRec.Record(row); err != nil {
			fatal("could not record row: %v", err)
		}
		if dbRec != nil {
			if err := dbRec.Record(context.Background(), row); err != nil {
				fatal("could not record row to database: %v", err)
			}
		}
	}
	if dbRec != nil {
		if err := dbRec.Close(context.Background()); err != nil {
			fatal("could not flush database recorder: %v", err)
		}
	}
	log.Printf("emitted %d rows, dropped %d late readings", funnel.Emitted.Load(), funnel.Dropped.Load())
}
