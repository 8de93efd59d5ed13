package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sarchlab/markovprefetch"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Feed a generated address stream through a Prefetcher and print the results.",
	Run: func(_ *cobra.Command, _ []string) {
		p := prefetcher.MakeBuilder().
			WithAddressSpaceSize(flagN).
			WithHistoryWindow(flagW).
			WithCounterWidth(flagB).
			Build()

		for _, addr := range generateAddresses() {
			evt := p.Reference(addr)
			printEvent(evt)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func printEvent(evt prefetcher.PrefetchEvent) {
	status := "miss"
	if evt.DemandHit {
		status = "demand-hit"
	} else if evt.PrefetchHit {
		status = "prefetch-hit"
	}

	if evt.Prefetch {
		fmt.Printf("addr=%d %s prefetch=%d\n", evt.Address, status, evt.PrefetchAddress)
	} else {
		fmt.Printf("addr=%d %s\n", evt.Address, status)
	}
}
