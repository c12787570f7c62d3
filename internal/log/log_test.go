package log

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// syncBuffer is a bytes.Buffer safe for the logger's concurrent writes.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}

func TestLog_NoopWithoutInit(t *testing.T) {
	require.NotPanics(t, func() {
		Debug(CatLifecycle, "nothing happens")
		ErrorErr(CatResolver, "still nothing", errors.New("boom"))
	})
	require.Nil(t, NewListener(context.Background()))
}

func TestLog_FormatsFields(t *testing.T) {
	var buf syncBuffer
	cleanup := InitWriter(&buf, LevelDebug)
	defer cleanup()

	Info(CatLifecycle, "attached", "path", "widgets/text", "handle", "abc")
	Warn(CatRegistry, "odd", "orphan")

	out := buf.String()
	require.Contains(t, out, "[INFO] [lifecycle] attached path=widgets/text handle=abc")
	require.Contains(t, out, "[WARN] [registry] odd orphan=<missing>")
}

func TestLog_MinLevelFilters(t *testing.T) {
	var buf syncBuffer
	cleanup := InitWriter(&buf, LevelWarn)
	defer cleanup()

	Debug(CatLifecycle, "hidden")
	Info(CatLifecycle, "hidden too")
	ErrorErr(CatResolver, "load failed", errors.New("missing"))

	out := buf.String()
	require.NotContains(t, out, "hidden")
	require.Contains(t, out, "error=missing")

	SetEnabled(false)
	Error(CatResolver, "disabled")
	require.NotContains(t, buf.String(), "disabled")
}

func TestLog_InitFileAndListener(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debug.log")
	cleanup, err := Init(path)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	listener := NewListener(ctx)
	require.NotNil(t, listener)

	Debug(CatWatcher, "reload", "file", "tree.yaml")

	event, ok := listener.Next()
	require.True(t, ok)
	require.Contains(t, event.Payload, "[DEBUG] [watcher] reload file=tree.yaml")

	cleanup()

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(content), "reload file=tree.yaml")
}

func TestSafeGo_RecoversPanic(t *testing.T) {
	var buf syncBuffer
	cleanup := InitWriter(&buf, LevelDebug)
	defer cleanup()

	SafeGo("boom", func() { panic("kaboom") })

	require.Eventually(t, func() bool {
		return bytes.Contains([]byte(buf.String()), []byte("goroutine=boom panic=kaboom"))
	}, time.Second, 5*time.Millisecond)
}

func TestParseLevel(t *testing.T) {
	require.Equal(t, LevelDebug, ParseLevel("DEBUG"))
	require.Equal(t, LevelWarn, ParseLevel("warning"))
	require.Equal(t, LevelError, ParseLevel("error"))
	require.Equal(t, LevelInfo, ParseLevel("whatever"))
}
