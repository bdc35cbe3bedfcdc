package logger

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

var (
	fileLogger  *log.Logger
	logFile     *os.File
	initialized bool
	verbose     bool
	consoleMu   sync.Mutex
)

// Init opens a timestamped log file under dir. Before Init, messages go to
// the console only.
func Init(dir string) error {
	if dir == "" {
		dir = "logs"
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	logPath := filepath.Join(dir, fmt.Sprintf("riskscan_%s.log", time.Now().Format("2006-01-02_15-04-05")))
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	logFile = f
	fileLogger = log.New(f, "", log.Ldate|log.Ltime|log.Lmicroseconds|log.Lshortfile)
	initialized = true
	return nil
}

// SetVerbose makes Debug messages reach the console.
func SetVerbose(v bool) {
	verbose = v
}

func Close() {
	if logFile != nil {
		logFile.Close()
	}
}

func Info(format string, v ...interface{}) {
	emit("[INFO] ", true, format, v...)
}

func Warn(format string, v ...interface{}) {
	emit("[WARN] ", true, format, v...)
}

func Error(format string, v ...interface{}) {
	emit("[ERROR] ", true, format, v...)
}

func Debug(format string, v ...interface{}) {
	emit("[DEBUG] ", verbose, format, v...)
}

func emit(prefix string, console bool, format string, v ...interface{}) {
	msg := fmt.Sprintf(format, v...)
	if len(msg) == 0 || msg[len(msg)-1] != '\n' {
		msg += "\n"
	}

	consoleMu.Lock()
	defer consoleMu.Unlock()
	if initialized {
		fileLogger.Output(3, prefix+msg)
	}
	if console {
		fmt.Fprint(os.Stderr, prefix+msg)
	}
}
