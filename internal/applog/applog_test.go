package applog

import (
	"errors"
	"io/fs"
	"strings"
	"testing"

	"github.com/kailashsur/filmyfly/internal/config"
)

func openTestLogger(t *testing.T) *Logger {
	t.Helper()
	l, err := Open(config.LogConfig{Dir: t.TempDir(), Stdout: false})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = l.Close() })
	return l
}

func TestLevelsRouteToFiles(t *testing.T) {
	l := openTestLogger(t)
	l.Infof("started on %s", ":3000")
	l.Warnf("slow query")
	l.Errorf("boom: %v", errors.New("x"))

	app, _, err := l.Tail(KindApp, 0)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Count(app, "\n") != 3 {
		t.Fatalf("app.log should hold 3 lines, got %q", app)
	}
	if !strings.Contains(app, "] [INFO] started on :3000") {
		t.Errorf("info line missing: %q", app)
	}

	errLog, _, err := l.Tail(KindError, 0)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(errLog, "[INFO]") {
		t.Error("info lines must not reach error.log")
	}
	if !strings.Contains(errLog, "[WARN] slow query") || !strings.Contains(errLog, "[ERROR] boom: x") {
		t.Errorf("error.log = %q", errLog)
	}
}

func TestTailLimitsBytes(t *testing.T) {
	l := openTestLogger(t)
	for i := 0; i < 100; i++ {
		l.Infof("line %03d", i)
	}
	out, size, err := l.Tail(KindApp, 64)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 64 {
		t.Fatalf("tail len = %d", len(out))
	}
	if size <= 64 {
		t.Fatalf("size = %d", size)
	}
	if !strings.HasSuffix(out, "line 099\n") {
		t.Errorf("tail should end with the last line: %q", out)
	}
}

func TestClear(t *testing.T) {
	l := openTestLogger(t)
	l.Errorf("first")
	if err := l.Clear(KindApp); err != nil {
		t.Fatal(err)
	}
	_, size, _ := l.Tail(KindApp, 0)
	if size != 0 {
		t.Fatalf("app.log size after clear = %d", size)
	}
	_, size, _ = l.Tail(KindError, 0)
	if size == 0 {
		t.Fatal("error.log should be untouched")
	}

	l.Infof("after clear")
	out, _, _ := l.Tail(KindApp, 0)
	if !strings.HasPrefix(out, "[") || !strings.Contains(out, "after clear") {
		t.Errorf("append after truncate: %q", out)
	}
}

func TestTailMissingFile(t *testing.T) {
	l := &Logger{dir: t.TempDir()}
	if _, _, err := l.Tail(KindApp, 10); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("want not-exist error, got %v", err)
	}
}

func TestFormatBytes(t *testing.T) {
	cases := map[int64]string{
		0:                      "0 Bytes",
		512:                    "512 Bytes",
		1024:                   "1 KB",
		1536:                   "1.5 KB",
		100 * 1024:             "100 KB",
		5 * 1024 * 1024:        "5 MB",
		1288490189:             "1.2 GB",
		3 * 1024 * 1024 * 1024: "3 GB",
	}
	for in, want := range cases {
		if got := FormatBytes(in); got != want {
			t.Errorf("FormatBytes(%d) = %q, want %q", in, got, want)
		}
	}
}
