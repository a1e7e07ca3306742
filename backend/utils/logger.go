package utils

import (
	"log"
	"os"
)

// LoggerConfig controls the logger output and format.
type LoggerConfig struct {
	// Format of the log lines (text/json)
	Format string
	// Output stream (os.Stdout, a file, ...)
	Output *os.File
}

// InitLogger builds the process-wide logger.
func InitLogger(config ...LoggerConfig) *log.Logger {
	var cfg LoggerConfig
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}

	prefix := "[DriveSchool] "

	if cfg.Format == "json" {
		return log.New(cfg.Output, prefix, log.LstdFlags|log.LUTC)
	}
	return log.New(cfg.Output, prefix, log.LstdFlags|log.Lshortfile|log.LUTC)
}
