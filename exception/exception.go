package exception

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/jonafarm/market/logx"
	"github.com/jonafarm/market/monitoring"
)

// exit is swapped in tests.
var exit = os.Exit

// SafeGo runs fn in a goroutine and logs instead of crashing on panic.
func SafeGo(name string, fn func()) {
	go func() {
		defer recoverPanic(name, false)
		fn()
	}()
}

// SafeGoWithPanic is SafeGo for goroutines the process cannot live without:
// after logging the panic it exits.
func SafeGoWithPanic(name string, fn func()) {
	go func() {
		defer recoverPanic(name, true)
		fn()
	}()
}

func recoverPanic(name string, fatal bool) {
	r := recover()
	if r == nil {
		return
	}
	monitoring.IncreasePanicCount(name)
	logx.Error("PANIC", fmt.Sprintf("Panic in %s: %v\n%s", name, r, debug.Stack()))
	if fatal {
		exit(1)
	}
}
