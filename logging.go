package tropic

import (
	stdlog "log"
	"log/syslog"
	"os"

	"github.com/op/go-logging"
)

var log = logging.MustGetLogger("tropic")

var syslogFormat = logging.MustStringFormatter(
	`%{time:15:04:05.000} %{level:.6s} ▶ %{message}`,
)
var stderrFormat = logging.MustStringFormatter(
	`%{color}tropic ▶ %{message}%{color:reset}`,
)

// setupLogging wires a *logging.Logger the same way the original daemon
// did it: syslog when available, otherwise stderr, with the level
// overridable by an environment variable rather than a recompile.
func setupLogging(prefix string, defaultLevel logging.Level, trySyslog bool) *logging.Logger {
	var backend logging.Backend
	if trySyslog {
		var err error
		backend, err = logging.NewSyslogBackendPriority(prefix, syslog.LOG_NOTICE)
		if err == nil {
			logging.SetFormatter(syslogFormat)
			if syslogBackend, ok := backend.(*logging.SyslogBackend); ok {
				stdlog.SetOutput(syslogBackend.Writer)
			}
		} else {
			backend = nil
		}
	}
	if backend == nil {
		backend = logging.NewLogBackend(os.Stderr, prefix, 0)
		logging.SetFormatter(stderrFormat)
	}
	leveled := logging.AddModuleLevel(backend)
	switch os.Getenv("TROPIC_LOG_LEVEL") {
	case "CRITICAL":
		leveled.SetLevel(logging.CRITICAL, "")
	case "ERROR":
		leveled.SetLevel(logging.ERROR, "")
	case "WARNING":
		leveled.SetLevel(logging.WARNING, "")
	case "NOTICE":
		leveled.SetLevel(logging.NOTICE, "")
	case "INFO":
		leveled.SetLevel(logging.INFO, "")
	case "DEBUG":
		leveled.SetLevel(logging.DEBUG, "")
	default:
		leveled.SetLevel(defaultLevel, "")
	}
	logging.SetBackend(leveled)
	return log
}

// NewLogger returns a *logging.Logger configured from TROPIC_LOG_LEVEL,
// suitable for passing into Config.Logger. Embedders that already manage
// their own go-logging backends can build their own *logging.Logger
// instead and skip this helper entirely.
func NewLogger() *logging.Logger {
	return setupLogging("tropic", logging.NOTICE, false)
}
