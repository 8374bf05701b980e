package debug

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Build flag for debug mode - can be overridden at build time
// go build -ldflags "-X github.com/ediezindell/denops-typescript-estree.vim/internal/debug.EnableDebug=true"
var EnableDebug = "false"

// MCPMode tracks if we're running as an MCP stdio server (set by main)
var MCPMode = false

// debugOutput is the writer for debug output (defaults to nil, meaning no output)
var debugOutput io.Writer

// debugLogger formats records written to debugOutput
var debugLogger *log.Logger

// debugFile holds the open file handle if debug output goes to a file
var debugFile *os.File

// debugMutex protects access to debug output
var debugMutex sync.Mutex

// SetMCPMode enables MCP mode which suppresses all debug output to stdio
func SetMCPMode(enabled bool) {
	MCPMode = enabled
}

// SetDebugOutput sets a custom writer for debug output.
// Pass nil to disable debug output entirely.
func SetDebugOutput(w io.Writer) {
	debugMutex.Lock()
	defer debugMutex.Unlock()
	setOutputLocked(w)
}

func setOutputLocked(w io.Writer) {
	debugOutput = w
	if w == nil {
		debugLogger = nil
		return
	}
	debugLogger = log.NewWithOptions(w, log.Options{
		Level:           log.DebugLevel,
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.000",
	})
}

// InitDebugLogFile initializes debug logging to a file.
// Returns the path to the log file, or an error if initialization fails.
// Call CloseDebugLog when done to ensure the file is properly closed.
func InitDebugLogFile() (string, error) {
	debugMutex.Lock()
	defer debugMutex.Unlock()

	logDir := filepath.Join(os.TempDir(), "tsestree-debug-logs")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create debug log directory: %w", err)
	}

	timestamp := time.Now().Format("2006-01-02T150405")
	logPath := filepath.Join(logDir, fmt.Sprintf("debug-%s-%d.log", timestamp, os.Getpid()))

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to create debug log file: %w", err)
	}

	debugFile = file
	setOutputLocked(file)
	return logPath, nil
}

// CloseDebugLog closes the debug log file if one is open.
func CloseDebugLog() error {
	debugMutex.Lock()
	defer debugMutex.Unlock()

	if debugFile != nil {
		err := debugFile.Close()
		debugFile = nil
		setOutputLocked(nil)
		return err
	}
	return nil
}

// IsDebugEnabled returns true if debug mode is enabled. In MCP mode it is
// enabled exactly when a debug log file is open.
func IsDebugEnabled() bool {
	// stdout belongs to the protocol in MCP mode; only a log file may be written
	if MCPMode {
		return logsToFile()
	}

	if EnableDebug == "true" {
		return true
	}

	if os.Getenv("DEBUG") == "1" || os.Getenv("DEBUG") == "true" {
		return true
	}

	return false
}

func logsToFile() bool {
	debugMutex.Lock()
	defer debugMutex.Unlock()
	return debugFile != nil
}

// getLogger returns the logger for debug output, or nil if none is configured
func getLogger() *log.Logger {
	debugMutex.Lock()
	defer debugMutex.Unlock()
	return debugLogger
}

func trimNewline(s string) string {
	return strings.TrimRight(s, "\n")
}

// Printf prints debug information only when debug mode is enabled and output is configured
func Printf(format string, args ...interface{}) {
	if !IsDebugEnabled() {
		return
	}
	l := getLogger()
	if l == nil {
		return
	}
	l.Debug(trimNewline(fmt.Sprintf(format, args...)))
}

// Println prints debug information only when debug mode is enabled and output is configured
func Println(args ...interface{}) {
	if !IsDebugEnabled() {
		return
	}
	l := getLogger()
	if l == nil {
		return
	}
	l.Debug(trimNewline(fmt.Sprintln(args...)))
}

// Log provides structured debug logging with component names
func Log(component, format string, args ...interface{}) {
	if !IsDebugEnabled() {
		return
	}
	l := getLogger()
	if l == nil {
		return
	}
	l.WithPrefix(component).Debug(trimNewline(fmt.Sprintf(format, args...)))
}

// LogParse logs parser adapter activity
func LogParse(format string, args ...interface{}) {
	Log("PARSE", format, args...)
}

// LogQuery logs selector compilation and matching
func LogQuery(format string, args ...interface{}) {
	Log("QUERY", format, args...)
}

// LogCache logs buffer cache hits, misses and parses
func LogCache(format string, args ...interface{}) {
	Log("CACHE", format, args...)
}

// LogHighlight logs controller state transitions
func LogHighlight(format string, args ...interface{}) {
	Log("HIGHLIGHT", format, args...)
}

// LogWatch logs file buffer reloads
func LogWatch(format string, args ...interface{}) {
	Log("WATCH", format, args...)
}

// LogServer logs editor channel traffic
func LogServer(format string, args ...interface{}) {
	Log("SERVER", format, args...)
}

// LogMCP provides debug logging specifically for MCP operations
func LogMCP(format string, args ...interface{}) {
	Log("MCP", format, args...)
}

// Fatal outputs a catastrophic error message to the debug log and returns a fatal error.
// Callers decide whether to exit. In MCP mode, only a debug log file receives it.
func Fatal(format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	if !MCPMode || logsToFile() {
		if l := getLogger(); l != nil {
			l.WithPrefix("FATAL").Error(trimNewline(msg))
		}
	}
	return fmt.Errorf("fatal error: %s", msg)
}

// CatastrophicError outputs an error that indicates system failure to the debug log.
// In MCP mode, only a debug log file receives it.
func CatastrophicError(format string, args ...interface{}) {
	if MCPMode && !logsToFile() {
		return
	}
	if l := getLogger(); l != nil {
		l.WithPrefix("CATASTROPHIC").Error(trimNewline(fmt.Sprintf(format, args...)))
	}
}
