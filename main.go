package main

import (
	"github.com/tkbglow/glow-api/app/cmd"
)

func main() {
	cmd.RunCli()
}
