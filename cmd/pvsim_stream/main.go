// pvsim_stream wires the simulated plant into a Kafka-backed residual
// load pipeline.
//
// The meter subcommand publishes mock household meter readings at 1 Hz.
// The pv subcommand consumes them, samples the simulated plant on the
// same wall clock, joins the two streams second by second and records
// time,meter_w,pv_w,residual_w rows to CSV and optionally TimescaleDB.
package main

import "log"

// allows for testing
var fatal = log.Fatalf

func main() {
	if err := rootCmd.Execute(); err != nil {
		fatal("%v", err)
	}
}
