package util

import (
	"log"
	"os"
)

var flagEnableTrace bool = false

func EnableTrace() {
	flagEnableTrace = true
}

func DisableTrace() {
	flagEnableTrace = false
}

// EnableTraceFromEnv turns on tracing when AQFALL_TRACE=1 is set.
func EnableTraceFromEnv() {
	if os.Getenv("AQFALL_TRACE") == "1" {
		EnableTrace()
	}
}

func Trace(format string, v ...interface{}) {
	if flagEnableTrace {
		log.Printf(format, v...)
	}
}
