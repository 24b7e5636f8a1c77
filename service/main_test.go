package service

import (
	"io"
	"os"
	"testing"

	"github.com/jonafarm/market/logx"
)

func TestMain(m *testing.M) {
	logx.InitWithOutput(io.Discard)
	os.Exit(m.Run())
}
