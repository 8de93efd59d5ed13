package main

import "github.com/sarchlab/markovprefetch/cmd/markovprefetch/cmd"

func main() {
	cmd.Execute()
}
