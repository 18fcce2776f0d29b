// Package logging contains helpers to write leveled messages to the system logger.
package logging

import "log"

const (
	infoLevel  = "INFO"
	warnLevel  = "WARN"
	errorLevel = "ERROR"
)

func println(logger *log.Logger, level string, message interface{}) {
	logger.Println(level, message)
}

// PrintlnInfo writes the given message with the INFO level.
func PrintlnInfo(logger *log.Logger, message interface{}) {
	println(logger, infoLevel, message)
}

// PrintlnWarn writes the given message with the WARN level.
func PrintlnWarn(logger *log.Logger, message interface{}) {
	println(logger, warnLevel, message)
}

// PrintlnError writes the given message with the ERROR level.
func PrintlnError(logger *log.Logger, message interface{}) {
	println(logger, errorLevel, message)
}
