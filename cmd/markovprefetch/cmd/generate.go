package cmd

import (
	"fmt"
	"os"

	"github.com/sarchlab/markovprefetch"
	"github.com/sarchlab/markovprefetch/cmd/markovprefetch/pattern"
)

func generateAddresses() []prefetcher.Address {
	if flagFile != "" {
		return readAddressFile(flagFile)
	}

	switch flagPat {
	case "sequential":
		return pattern.Sequential(flagN, prefetcher.Address(flagStart), flagCount)
	case "strided":
		return pattern.Strided(flagN, prefetcher.Address(flagStart), flagStride, flagCount)
	case "interleaved":
		return pattern.Interleaved(flagN, 0, prefetcher.Address(flagN-1), flagCount)
	case "random":
		return pattern.Random(flagN, flagSeed, flagCount)
	case "repeated":
		base := pattern.Sequential(flagN, prefetcher.Address(flagStart), flagN)
		return pattern.Repeated(base, (flagCount+flagN-1)/flagN)[:flagCount]
	default:
		panic(fmt.Sprintf("markovprefetch: unknown pattern %q", flagPat))
	}
}

// readAddressFile loads an address stream from path, or from stdin when
// path is "-".
func readAddressFile(path string) []prefetcher.Address {
	r := os.Stdin

	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "markovprefetch: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()

		r = f
	}

	addrs, err := pattern.FromReader(r)
	if err != nil {
		fmt.Fprintf(os.Stderr, "markovprefetch: %v\n", err)
		os.Exit(1)
	}

	return addrs
}
