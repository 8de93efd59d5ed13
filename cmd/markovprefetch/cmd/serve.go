package cmd

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"

	"github.com/sarchlab/markovprefetch"
	"github.com/sarchlab/markovprefetch/monitoring"
	"github.com/sarchlab/markovprefetch/telemetry"
)

var (
	flagMonitorPort int
	flagOpen        bool
	flagTracePath   string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the same feed loop as run, while also serving a monitoring API and recording a trace.",
	Run: func(_ *cobra.Command, _ []string) {
		p := prefetcher.MakeBuilder().
			WithAddressSpaceSize(flagN).
			WithHistoryWindow(flagW).
			WithCounterWidth(flagB).
			Build()

		server := monitoring.NewServer(p).WithPortNumber(flagMonitorPort)
		addr := server.StartServer()

		sink := telemetry.NewSQLiteSink(flagTracePath)
		sink.Init()

		if flagOpen {
			openMonitorPage(addr)
		}

		for _, a := range generateAddresses() {
			evt := p.Reference(a)
			printEvent(evt)
			server.RecordEvent(evt)
			sink.Record(evt)
		}

		sink.Flush()
	},
}

func init() {
	serveCmd.Flags().IntVar(&flagMonitorPort, "monitor-port", envInt("MARKOV_MONITOR_PORT", 0),
		"TCP port for the monitoring HTTP server (0 picks a random port)")
	serveCmd.Flags().BoolVar(&flagOpen, "open", false,
		"open the monitoring page in the default browser once serving starts")
	serveCmd.Flags().StringVar(&flagTracePath, "trace", "markovprefetch_trace",
		"base path (without extension) for the SQLite event trace")

	rootCmd.AddCommand(serveCmd)
}

func openMonitorPage(addr net.Addr) {
	tcpAddr, ok := addr.(*net.TCPAddr)
	if !ok {
		return
	}

	url := fmt.Sprintf("http://localhost:%d/api/snapshot", tcpAddr.Port)

	time.Sleep(100 * time.Millisecond)

	if err := browser.OpenURL(url); err != nil {
		fmt.Fprintf(os.Stderr, "markovprefetch: could not open browser: %v\n", err)
	}
}
