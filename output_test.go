package spawn

import (
	"bytes"
	stderrors "errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder logs the order in which destinations receive chunks.
type recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *recorder) record(s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, s)
}

type recordingWriter struct {
	rec  *recorder
	name string
	err  error
}

func (w *recordingWriter) Write(p []byte) (int, error) {
	w.rec.record(w.name + ":" + string(p))
	if w.err != nil {
		return 0, w.err
	}
	return len(p), nil
}

// shortWriter accepts one byte less than asked.
type shortWriter struct{}

func (shortWriter) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	return len(p) - 1, nil
}

func TestStreamRoute_DispatchOrder(t *testing.T) {
	rec := &recorder{}
	route := &streamRoute{
		stream: Stdout,
		callback: func(chunk []byte) {
			rec.record("callback:" + string(chunk))
		},
		capture: &captureBuffer{},
		console: &recordingWriter{rec: rec, name: "console"},
	}

	require.NoError(t, route.dispatch([]byte("a")))
	require.NoError(t, route.dispatch([]byte("b")))

	assert.Equal(t, []string{"callback:a", "console:a", "callback:b", "console:b"}, rec.calls)
	assert.Equal(t, "ab", route.capture.String())
}

func TestStreamRoute_CallbackGetsOwnCopy(t *testing.T) {
	var got [][]byte
	route := &streamRoute{
		callback: func(chunk []byte) {
			got = append(got, chunk)
		},
	}

	buf := []byte("first")
	require.NoError(t, route.dispatch(buf))
	copy(buf, "XXXXX")

	require.Len(t, got, 1)
	assert.Equal(t, "first", string(got[0]))
}

func TestStreamRoute_PumpDeliversEverything(t *testing.T) {
	var chunks int
	route := &streamRoute{
		callback: func([]byte) { chunks++ },
		capture:  &captureBuffer{},
	}

	data := strings.Repeat("x", chunkSize*2+10)
	require.NoError(t, route.pump(strings.NewReader(data)))

	assert.Equal(t, data, route.capture.String())
	assert.Equal(t, 3, chunks)
}

func TestStreamRoute_PumpDrainsAfterConsoleFailure(t *testing.T) {
	failure := stderrors.New("console closed")
	rec := &recorder{}
	route := &streamRoute{
		capture: &captureBuffer{},
		console: &recordingWriter{rec: rec, name: "console", err: failure},
	}

	src := strings.NewReader(strings.Repeat("y", chunkSize*3))
	err := route.pump(src)

	require.ErrorIs(t, err, failure)
	assert.Equal(t, 0, src.Len(), "remaining output should be drained")
	assert.Len(t, rec.calls, 1)
	assert.Len(t, route.capture.String(), chunkSize)
}

type failingReader struct {
	err error
}

func (r failingReader) Read([]byte) (int, error) {
	return 0, r.err
}

func TestStreamRoute_PumpReadError(t *testing.T) {
	failure := stderrors.New("read failed")
	route := &streamRoute{capture: &captureBuffer{}}

	err := route.pump(failingReader{err: failure})
	assert.ErrorIs(t, err, failure)
}

func TestCaptureBuffer_Empty(t *testing.T) {
	assert.Equal(t, "", (&captureBuffer{}).String())
}

func TestSyncWriter_ShortWrite(t *testing.T) {
	w := &syncWriter{w: shortWriter{}, mu: &sync.Mutex{}}

	n, err := w.Write([]byte("abc"))
	assert.Equal(t, 2, n)
	assert.ErrorIs(t, err, io.ErrShortWrite)
}

func TestNewConsole(t *testing.T) {
	t.Run("nil writers discard", func(t *testing.T) {
		con := newConsole(nil, nil)
		assert.Equal(t, io.Discard, con.stdout.raw)
		assert.Equal(t, io.Discard, con.stderr.raw)
	})

	t.Run("shared writer shares lock", func(t *testing.T) {
		var buf bytes.Buffer
		con := newConsole(&buf, &buf)

		out := con.stdout.locked.(*syncWriter)
		errw := con.stderr.locked.(*syncWriter)
		assert.Same(t, out.mu, errw.mu)
	})

	t.Run("distinct writers have own locks", func(t *testing.T) {
		var a, b bytes.Buffer
		con := newConsole(&a, &b)

		out := con.stdout.locked.(*syncWriter)
		errw := con.stderr.locked.(*syncWriter)
		assert.NotSame(t, out.mu, errw.mu)
	})

	t.Run("non-file writers are locked for direct use", func(t *testing.T) {
		var buf bytes.Buffer
		con := newConsole(&buf, nil)
		assert.Same(t, con.stdout.locked, con.stdout.direct())
	})
}

type funcWriter func([]byte) (int, error)

func (f funcWriter) Write(p []byte) (int, error) {
	return f(p)
}

func TestSameWriter_Uncomparable(t *testing.T) {
	a := funcWriter(func(p []byte) (int, error) { return len(p), nil })
	assert.False(t, sameWriter(a, a))
}
