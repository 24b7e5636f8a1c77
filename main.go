package main

import (
	"os"
	"runtime/debug"

	"github.com/jonafarm/market/cmd"
	"github.com/jonafarm/market/logx"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			_ = logx.Errorf("MARKET CRASHED: %v\n%s", r, debug.Stack())
			os.Exit(1)
		}
	}()

	cmd.Execute()
}
