// Package applog writes the application log files shown in the admin log
// viewer. Every line goes to app.log; WARN and ERROR lines also go to
// error.log.
package applog

import (
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/kailashsur/filmyfly/internal/config"
)

// Kind names one of the two log files.
type Kind string

const (
	KindApp   Kind = "app"
	KindError Kind = "error"
)

func (k Kind) fileName() string {
	if k == KindError {
		return "error.log"
	}
	return "app.log"
}

// Logger is safe for concurrent use.
type Logger struct {
	dir string

	mu      sync.Mutex
	appFile *os.File
	errFile *os.File
	app     *log.Logger // app.log (+ stdout)
	errs    *log.Logger // error.log
}

// Open creates cfg.Dir if needed and opens both files for appending.
func Open(cfg config.LogConfig) (*Logger, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", cfg.Dir, err)
	}
	l := &Logger{dir: cfg.Dir}
	var err error
	if l.appFile, err = openAppend(l.Path(KindApp)); err != nil {
		return nil, err
	}
	if l.errFile, err = openAppend(l.Path(KindError)); err != nil {
		_ = l.appFile.Close()
		return nil, err
	}
	var appOut io.Writer = l.appFile
	if cfg.Stdout {
		appOut = io.MultiWriter(os.Stdout, l.appFile)
	}
	l.app = log.New(appOut, "", 0)
	l.errs = log.New(l.errFile, "", 0)
	return l, nil
}

func openAppend(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
}

// Path returns the file backing kind.
func (l *Logger) Path(kind Kind) string { return filepath.Join(l.dir, kind.fileName()) }

func (l *Logger) write(level, format string, args ...any) {
	line := fmt.Sprintf("[%s] [%s] %s", time.Now().UTC().Format(time.RFC3339Nano), level, fmt.Sprintf(format, args...))
	line = strings.TrimRight(line, "\n")
	l.mu.Lock()
	defer l.mu.Unlock()
	l.app.Println(line)
	if level != "INFO" {
		l.errs.Println(line)
	}
}

func (l *Logger) Infof(format string, args ...any)  { l.write("INFO", format, args...) }
func (l *Logger) Warnf(format string, args ...any)  { l.write("WARN", format, args...) }
func (l *Logger) Errorf(format string, args ...any) { l.write("ERROR", format, args...) }

// Printf logs at INFO. It lets the logger stand in for *log.Logger.
func (l *Logger) Printf(format string, args ...any) { l.write("INFO", format, args...) }

// Writer returns a writer that appends raw lines to app.log, for request
// logging middleware.
func (l *Logger) Writer() io.Writer { return writerFunc(l.writeRaw) }

type writerFunc func(p []byte) (int, error)

func (f writerFunc) Write(p []byte) (int, error) { return f(p) }

func (l *Logger) writeRaw(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.app.Writer().Write(p)
}

// Tail returns at most max bytes from the end of the file and the file's
// full size.
func (l *Logger) Tail(kind Kind, max int64) (string, int64, error) {
	f, err := os.Open(l.Path(kind))
	if err != nil {
		return "", 0, err
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil {
		return "", 0, err
	}
	size := st.Size()
	start := int64(0)
	if max > 0 && size > max {
		start = size - max
	}
	buf := make([]byte, size-start)
	if _, err := f.ReadAt(buf, start); err != nil && !errors.Is(err, io.EOF) {
		return "", size, err
	}
	return string(buf), size, nil
}

// Clear truncates the given files.
func (l *Logger) Clear(kinds ...Kind) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, k := range kinds {
		f := l.appFile
		if k == KindError {
			f = l.errFile
		}
		if err := f.Truncate(0); err != nil {
			return fmt.Errorf("truncate %s: %w", k.fileName(), err)
		}
	}
	return nil
}

func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return errors.Join(l.appFile.Close(), l.errFile.Close())
}

var byteUnits = []string{"Bytes", "KB", "MB", "GB"}

// FormatBytes renders n with a 1024 base unit rounded to two decimals.
func FormatBytes(n int64) string {
	if n <= 0 {
		return "0 Bytes"
	}
	i := int(math.Floor(math.Log(float64(n)) / math.Log(1024)))
	if i >= len(byteUnits) {
		i = len(byteUnits) - 1
	}
	v := math.Round(float64(n)/math.Pow(1024, float64(i))*100) / 100
	return strconv.FormatFloat(v, 'f', -1, 64) + " " + byteUnits[i]
}
