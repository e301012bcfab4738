// ransim simulates a downlink between two radio endpoints at symbol
// granularity.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "ransim",
	Short: "ransim simulates radio endpoints at symbol granularity.",
	Long: `ransim drives a pair of radio endpoints through a ` +
		`discrete-event simulation: a transmitter and a receiver exchange ` +
		`transport blocks over a modeled air interface, slot by slot, with ` +
		`HARQ retransmission and periodic channel-state measurement.`,
}

func main() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
