package main

import (
	"github.com/rtowner/charguess/internal/cli"
)

func main() {
	cli.Execute()
}
