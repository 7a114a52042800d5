/*
	logging.go gives namespace-construction tests a log15.Logger that
	writes through goconvey's own Print, so log lines from a PID-1 reaper
	or mount chain land inside the test's own output instead of racing
	stdout across parallel Convey blocks.
*/
package testutil

import (
	"io"

	"github.com/inconshreveable/log15"
	"github.com/smartystreets/goconvey/convey"
)

func TestLogger(c convey.C) log15.Logger {
	log := log15.New()
	log.SetHandler(log15.StreamHandler(Writer{c}, log15.TerminalFormat()))
	return log
}

var _ io.Writer = Writer{}

// Writer adapts a goconvey context to io.Writer.
type Writer struct {
	Convey convey.C
}

func (lw Writer) Write(msg []byte) (int, error) {
	return lw.Convey.Print(string(msg))
}
