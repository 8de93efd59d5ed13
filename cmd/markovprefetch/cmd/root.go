// Package cmd provides the command-line interface for markovprefetch.
package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "markovprefetch",
	Short: "markovprefetch drives a Markov prefetcher with synthetic address streams.",
	Long: `markovprefetch drives a Markov prefetcher with synthetic address ` +
		`streams. It can print the resulting prefetch decisions to stdout ` +
		`(run) or additionally stand up an HTTP introspection server and a ` +
		`SQLite event trace (serve).`,
}

var (
	flagN      int
	flagW      int
	flagB      uint
	flagPat    string
	flagCount  int
	flagSeed   int64
	flagStride int
	flagStart  int
	flagFile   string
)

func init() {
	if err := godotenv.Load(); err != nil {
		fmt.Fprintf(os.Stderr, "markovprefetch: no .env file loaded: %v\n", err)
	}

	rootCmd.PersistentFlags().IntVar(&flagN, "n", envInt("MARKOV_N", 32),
		"size of the address universe")
	rootCmd.PersistentFlags().IntVar(&flagW, "w", envInt("MARKOV_W", 5),
		"capacity of the access-history window")
	rootCmd.PersistentFlags().UintVar(&flagB, "b", uint(envInt("MARKOV_B", 8)),
		"bit width of each transition-table counter")
	rootCmd.PersistentFlags().StringVar(&flagPat, "pattern", "sequential",
		"address pattern: sequential|strided|interleaved|random|repeated")
	rootCmd.PersistentFlags().IntVar(&flagCount, "count", 32,
		"number of addresses to generate")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 1,
		"seed for the random pattern")
	rootCmd.PersistentFlags().IntVar(&flagStride, "stride", 2,
		"stride for the strided pattern")
	rootCmd.PersistentFlags().IntVar(&flagStart, "start", 0,
		"starting address for sequential/strided patterns")
	rootCmd.PersistentFlags().StringVar(&flagFile, "file", "",
		"read addresses from this file instead of generating a pattern; use - for stdin")
}

func envInt(name string, def int) int {
	v := os.Getenv(name)
	if v == "" {
		return def
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}

	return n
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
