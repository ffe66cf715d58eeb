package logger

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime/debug"
	"strings"

	"github.com/rs/zerolog"
)

// WrapProcess runs executable with its stderr piped through this process.
// JSON log lines are passed on to stdout, anything else is logged as an
// error, and a Go panic trace is collected into one fatal log record when the
// child exits. WrapProcess never returns.
func WrapProcess(executable string, arg ...string) {
	wrapLogger := NewLogger("Logs wrapper")
	defer handlePanic(wrapLogger)

	r, w, err := os.Pipe()
	if err != nil {
		wrapLogger.Fatal().Err(err).Msg("Could not create pipe for logs")
		os.Exit(1)
	}

	cmd := exec.Command(executable, arg...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = w

	if err = cmd.Start(); err != nil {
		wrapLogger.Fatal().Err(err).Str("executable", executable).Msg("Could not launch main process")
		os.Exit(1)
	}
	exitCodeCh := make(chan int)
	logsCh := make(chan []byte)

	go waitForCommandToExit(cmd, wrapLogger, exitCodeCh)
	go collectLogs(r, wrapLogger, logsCh)

	lines := &logLines{out: os.Stdout, logger: wrapLogger}
	for {
		select {
		case exitCode := <-exitCodeCh:
			handleExit(exitCode, lines.panicLogs.String(), wrapLogger)
		case line := <-logsCh:
			lines.handle(line)
		}
	}
}

func waitForCommandToExit(cmd *exec.Cmd, wrapLogger zerolog.Logger, exitCodeCh chan<- int) {
	defer handlePanic(wrapLogger)
	err := cmd.Wait()
	if err == nil {
		exitCodeCh <- 0
		return
	}
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		exitCodeCh <- 1
		return
	}
	exitCodeCh <- exitErr.ExitCode()
}

func collectLogs(r io.Reader, wrapLogger zerolog.Logger, logsCh chan<- []byte) {
	defer handlePanic(wrapLogger)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := append([]byte(nil), scanner.Bytes()...)
		logsCh <- line
	}
	if err := scanner.Err(); err != nil {
		wrapLogger.Fatal().Err(err).Msg("Error scanning piped main process's Stderr")
		os.Exit(1)
	}
}

func handleExit(exitCode int, panicLogs string, wrapLogger zerolog.Logger) {
	if exitCode == 0 {
		wrapLogger.Info().Msg("Exited with code 0")
	} else {
		wrapLogger.
			Fatal().
			Err(errors.New(panicLogs)).
			Msgf("Panicked and exited with code: %d", exitCode)
	}
	os.Exit(exitCode)
}

// logLines sorts the child's stderr lines. Once a line starts with "panic"
// everything after it belongs to the panic trace.
type logLines struct {
	out        io.Writer
	logger     zerolog.Logger
	foundPanic bool
	panicLogs  strings.Builder
}

func (lines *logLines) handle(line []byte) {
	if !lines.foundPanic && strings.HasPrefix(string(line), "panic") {
		lines.foundPanic = true
	}
	switch {
	case len(line) == 0:
	case lines.foundPanic:
		lines.panicLogs.Write(line)
		lines.panicLogs.WriteByte('\n')
	case isJSON(line):
		fmt.Fprintln(lines.out, string(line))
	default:
		lines.logger.Error().Str("line", string(line)).Msg("Got log line that is not JSON formatted")
	}
}

func handlePanic(wrapLogger zerolog.Logger) {
	r := recover()
	if r == nil {
		return
	}
	wrapLogger.Fatal().
		Caller().
		Str("error", fmt.Sprint(r)).
		Str("stack_trace", string(debug.Stack())).
		Msg("Program panicked and exited")
}

func isJSON(b []byte) bool {
	var js json.RawMessage
	err := json.Unmarshal(b, &js)
	return err == nil && js != nil
}
