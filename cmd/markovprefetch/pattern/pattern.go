// Package pattern generates synthetic address streams for exercising a
// predictor from the command line. Generators never touch predictor
// state; they only produce address slices.
package pattern

import (
	"bufio"
	"fmt"
	"io"
	"math/rand"
	"strconv"
	"strings"

	"github.com/sarchlab/markovprefetch"
)

// Sequential returns count addresses starting at start and incrementing
// by one, wrapping modulo n.
func Sequential(n int, start prefetcher.Address, count int) []prefetcher.Address {
	out := make([]prefetcher.Address, count)
	for i := 0; i < count; i++ {
		out[i] = prefetcher.Address((int(start) + i) % n)
	}

	return out
}

// Strided returns count addresses starting at start and incrementing by
// stride, wrapping modulo n.
func Strided(n int, start prefetcher.Address, stride, count int) []prefetcher.Address {
	out := make([]prefetcher.Address, count)
	for i := 0; i < count; i++ {
		out[i] = prefetcher.Address((int(start) + i*stride) % n)
	}

	return out
}

// Interleaved merges two sequential streams, one counting up from low
// and one counting down from high, alternating one address from each.
func Interleaved(n int, low, high prefetcher.Address, count int) []prefetcher.Address {
	out := make([]prefetcher.Address, count)
	for i := 0; i < count; i++ {
		if i%2 == 0 {
			out[i] = prefetcher.Address((int(low) + i/2) % n)
		} else {
			out[i] = prefetcher.Address(((int(high) - i/2) + n) % n)
		}
	}

	return out
}

// Random returns count addresses drawn uniformly from [0, n), using a
// seeded generator so the stream is reproducible.
func Random(n int, seed int64, count int) []prefetcher.Address {
	r := rand.New(rand.NewSource(seed))

	out := make([]prefetcher.Address, count)
	for i := 0; i < count; i++ {
		out[i] = prefetcher.Address(r.Intn(n))
	}

	return out
}

// Repeated concatenates base with itself times times.
func Repeated(base []prefetcher.Address, times int) []prefetcher.Address {
	out := make([]prefetcher.Address, 0, len(base)*times)
	for i := 0; i < times; i++ {
		out = append(out, base...)
	}

	return out
}

// FromReader reads whitespace-separated decimal addresses from r, one
// or more per line, until EOF. It is used to feed a prefetcher from a
// file or from stdin instead of a synthetic generator.
func FromReader(r io.Reader) ([]prefetcher.Address, error) {
	var out []prefetcher.Address

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		for _, field := range strings.Fields(line) {
			n, err := strconv.Atoi(field)
			if err != nil {
				return nil, fmt.Errorf("pattern: invalid address %q: %w", field, err)
			}

			out = append(out, prefetcher.Address(n))
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("pattern: reading address stream: %w", err)
	}

	return out, nil
}
