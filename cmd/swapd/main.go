package main

import "github.com/LeJamon/goswap/internal/cli"

func main() {
	cli.Execute()
}
