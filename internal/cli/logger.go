package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/term"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/tolarewaju3/visual-ansible-ee-builder-sub000/internal/config"
	"github.com/tolarewaju3/visual-ansible-ee-builder-sub000/internal/constants"
	"github.com/tolarewaju3/visual-ansible-ee-builder-sub000/internal/logging"
)

var (
	logFileMu     sync.Mutex     //nolint:gochecknoglobals // Protects logFileWriter
	logFileWriter io.WriteCloser //nolint:gochecknoglobals // Closed on shutdown by CloseLogFile

	zerologGlobalMu sync.Mutex //nolint:gochecknoglobals // Protects the zerolog global logger
)

// InitLogger creates the CLI logger.
//
// Level: verbose selects debug, quiet selects warn, otherwise info.
// Console output is a ConsoleWriter on a colour TTY and JSON on stderr
// otherwise. Every line is also written to the rotated file
// ~/.eebuilder/logs/eebuilder.log. Both sinks are redacted. A log file
// that cannot be opened degrades to console-only logging.
func InitLogger(verbose, quiet bool) zerolog.Logger {
	CloseLogFile()

	var writer io.Writer = logging.NewFilteringWriter(selectOutput())

	if fileWriter, err := createLogFileWriter(); err == nil {
		logFileMu.Lock()
		logFileWriter = fileWriter
		logFileMu.Unlock()
		writer = zerolog.MultiLevelWriter(writer, fileWriter)
	}

	logger := newLogger(verbose, quiet, writer)
	setGlobalLogger(logger)
	return logger
}

// InitLoggerWithWriter creates the CLI logger on a caller-supplied writer.
func InitLoggerWithWriter(verbose, quiet bool, w io.Writer) zerolog.Logger {
	logger := newLogger(verbose, quiet, logging.NewFilteringWriter(w))
	setGlobalLogger(logger)
	return logger
}

func newLogger(verbose, quiet bool, w io.Writer) zerolog.Logger {
	return zerolog.New(w).
		Level(selectLevel(verbose, quiet)).
		Hook(logging.NewSensitiveDataHook()).
		With().Timestamp().Logger()
}

// setGlobalLogger points github.com/rs/zerolog/log at the CLI logger.
func setGlobalLogger(cliLogger zerolog.Logger) {
	zerologGlobalMu.Lock()
	defer zerologGlobalMu.Unlock()
	log.Logger = cliLogger
}

// CloseLogFile closes the log file writer if one was opened.
func CloseLogFile() {
	logFileMu.Lock()
	defer logFileMu.Unlock()
	if logFileWriter != nil {
		_ = logFileWriter.Close()
		logFileWriter = nil
	}
}

// selectLevel determines the log level; verbose wins over quiet.
func selectLevel(verbose, quiet bool) zerolog.Level {
	switch {
	case verbose:
		return zerolog.DebugLevel
	case quiet:
		return zerolog.WarnLevel
	default:
		return zerolog.InfoLevel
	}
}

// selectOutput picks a console writer for colour terminals and raw JSON otherwise.
func selectOutput() io.Writer {
	if term.IsTerminal(int(os.Stderr.Fd())) && os.Getenv("NO_COLOR") == "" {
		return zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: constants.LogTimeDisplay,
		}
	}
	return os.Stderr
}

// createLogFileWriter opens the rotated CLI log behind the redacting writer.
func createLogFileWriter() (io.WriteCloser, error) {
	logPath, err := LogFilePath()
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(logPath), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	return logging.NewFilteringWriteCloser(&lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    constants.LogMaxSizeMB,
		MaxBackups: constants.LogMaxBackups,
		MaxAge:     constants.LogMaxAgeDays,
		Compress:   constants.LogCompress,
	}), nil
}

// LogFilePath returns the path to the CLI log file, honouring EEBUILDER_HOME.
func LogFilePath() (string, error) {
	home, err := config.GlobalConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, constants.LogsDir, constants.CLILogFileName), nil
}
