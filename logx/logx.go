package logx

import (
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[34m"
)

const (
	defaultLogFile    = "./logs/market.log"
	defaultMaxSizeMB  = 100
	defaultMaxAgeDays = 28
)

var (
	mu     sync.RWMutex
	logger = log.New(RollingWriterFromEnv(), "", log.Ldate|log.Ltime|log.Lmicroseconds)
)

// NewRollingWriter returns a size/age rotated log file writer.
func NewRollingWriter(filename string, maxSizeMB, maxAgeDays int) io.Writer {
	return &lumberjack.Logger{
		Filename: filename,
		MaxSize:  maxSizeMB,  // megabytes
		MaxAge:   maxAgeDays, // days
	}
}

// RollingWriterFromEnv builds the rolling writer from LOGFILE,
// LOGFILE_MAX_SIZE_MB and LOGFILE_MAX_AGE_DAYS.
func RollingWriterFromEnv() io.Writer {
	return NewRollingWriter(getLogFilename(), getMaxSize(), getMaxAge())
}

// InitWithOutput replaces the destination of every subsequent log line.
func InitWithOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	logger = log.New(w, "", log.Ldate|log.Ltime|log.Lmicroseconds)
}

func getLogFilename() string {
	if logFile := os.Getenv("LOGFILE"); logFile != "" {
		return "./logs/" + logFile
	}
	return defaultLogFile
}

func getMaxSize() int {
	return envInt("LOGFILE_MAX_SIZE_MB", defaultMaxSizeMB)
}

func getMaxAge() int {
	return envInt("LOGFILE_MAX_AGE_DAYS", defaultMaxAgeDays)
}

func envInt(name string, fallback int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func output(level, color, category string, content ...interface{}) {
	message := fmt.Sprint(content...)
	coloredCategory := fmt.Sprintf("%s[%s][%s]%s", color, level, category, ColorReset)
	mu.RLock()
	defer mu.RUnlock()
	logger.Printf("%s: %s", coloredCategory, message)
}

func Info(category string, content ...interface{}) {
	output("INFO", ColorGreen, category, content...)
}

func Error(category string, content ...interface{}) {
	output("ERROR", ColorRed, category, content...)
}

func Warn(category string, content ...interface{}) {
	output("WARN", ColorYellow, category, content...)
}

func Debug(category string, content ...interface{}) {
	output("DEBUG", ColorBlue, category, content...)
}

// Errorf logs an error message and returns a formatted error
func Errorf(format string, args ...interface{}) error {
	err := fmt.Errorf(format, args...)
	Error("ERROR", err.Error())
	return err
}
