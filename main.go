package main

import (
	"github.com/dyike/coveredcall/internal/cli"
)

func main() {
	cli.Run()
}
