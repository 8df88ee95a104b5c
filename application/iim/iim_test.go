package iim

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"seleniumacros/application/macro"
	"seleniumacros/domain/entities"
	"seleniumacros/infrastructure/browser"
	"seleniumacros/infrastructure/storage"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const loginPage = `<html><head><title>Login</title></head><body>
<form name="login"><input type="text" name="user"><button id="go">Go</button></form>
</body></html>`

type fixture struct {
	iim    *Interface
	server *httptest.Server
	dir    string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, loginPage)
	}))
	t.Cleanup(server.Close)

	logger, _ := test.NewNullLogger()
	factory, err := browser.NewFactory(browser.Options{Backend: browser.BackendStatic, HTTPClient: server.Client()}, logger)
	require.NoError(t, err)

	dir := t.TempDir()
	store, err := storage.NewReportStore(filepath.Join(dir, "reports"))
	require.NoError(t, err)

	session := macro.NewSession(macro.Config{
		Factory: factory,
		Logger:  logger,
		Sleep:   func(time.Duration) {},
	})
	return &fixture{iim: New(session, store, logger), server: server, dir: dir}
}

func (f *fixture) writeMacro(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(f.dir, "test.iim")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0o644))
	return path
}

func TestInit(t *testing.T) {
	f := newFixture(t)

	assert.NoError(t, f.iim.Init("-cr"))
	assert.NoError(t, f.iim.Init("-fx -silent"))
	assert.ErrorIs(t, f.iim.Init("cr"), entities.ErrInvalidArgument)
	assert.ErrorIs(t, f.iim.Init("-"), entities.ErrInvalidArgument)
	assert.ErrorIs(t, f.iim.Init("-safari"), entities.ErrInvalidArgument)
}

func TestPlaySuccess(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.iim.Init("-cr"))
	assert.Equal(t, entities.ReturnOK, f.iim.Set("WHO", "alice"))

	path := f.writeMacro(t,
		"URL GOTO={{HOME}}",
		"TAG POS=1 TYPE=INPUT:TEXT ATTR=NAME:user CONTENT={{WHO}}",
	)
	assert.Equal(t, entities.ReturnOK, f.iim.Set("HOME", f.server.URL+"/"))

	code := f.iim.Play(context.Background(), path, time.Minute)
	assert.Equal(t, entities.ReturnOK, code)

	report, ok := f.iim.LastReport()
	require.True(t, ok)
	assert.Equal(t, path, report.Script)
	assert.Equal(t, entities.ReturnOK, report.ReturnCode)
	assert.Empty(t, report.Errors)
	assert.NotEmpty(t, report.RunID)

	_, ok = f.iim.GetLastError(0)
	assert.False(t, ok)
}

func TestPlayFailureIsReported(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.iim.Init("-cr"))

	path := f.writeMacro(t,
		"URL GOTO="+f.server.URL+"/",
		"TAG POS=1 TYPE=INPUT:TEXT ATTR=NAME:missing CONTENT=x",
	)
	assert.Equal(t, entities.ReturnFail, f.iim.Play(context.Background(), path, 0))

	msg, ok := f.iim.GetLastError(-1)
	require.True(t, ok)
	assert.Contains(t, msg, "line 2")
	assert.Contains(t, msg, "element not found")

	first, ok := f.iim.GetLastError(0)
	require.True(t, ok)
	assert.Equal(t, msg, first)

	_, ok = f.iim.GetLastError(1)
	assert.False(t, ok)
	_, ok = f.iim.GetLastError(-2)
	assert.False(t, ok)

	report, ok := f.iim.LastReport()
	require.True(t, ok)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, 2, report.Errors[0].Line)
	assert.Equal(t, "TAG", report.Errors[0].Command)
}

func TestReportCoversCurrentRunOnly(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.iim.Init("-cr"))

	bad := f.writeMacro(t, "URL")
	assert.Equal(t, entities.ReturnFail, f.iim.Play(context.Background(), bad, 0))

	code := f.iim.PlayReader(context.Background(), "inline", strings.NewReader("' nothing to do"), 0)
	assert.Equal(t, entities.ReturnOK, code)

	report, ok := f.iim.LastReport()
	require.True(t, ok)
	assert.Empty(t, report.Errors)

	// the error log itself still spans both runs
	_, ok = f.iim.GetLastError(0)
	assert.True(t, ok)
}

func TestPlayMissingFile(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.iim.Init("-cr"))

	code := f.iim.Play(context.Background(), filepath.Join(f.dir, "nope.iim"), 0)
	assert.Equal(t, entities.ReturnFail, code)

	msg, ok := f.iim.GetLastError(-1)
	require.True(t, ok)
	assert.Contains(t, msg, "failed to open macro")
}

func TestPlayWithoutInit(t *testing.T) {
	f := newFixture(t)

	code := f.iim.PlayReader(context.Background(), "inline", strings.NewReader("SIZE X=10 Y=10"), 0)
	assert.Equal(t, entities.ReturnFail, code)
}

func TestPlayTimeout(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.iim.Init("-cr"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	code := f.iim.PlayReader(ctx, "inline", strings.NewReader("SIZE X=10 Y=10"), time.Second)
	assert.Equal(t, entities.ReturnTimeout, code)

	report, ok := f.iim.LastReport()
	require.True(t, ok)
	assert.Equal(t, entities.ReturnTimeout, report.ReturnCode)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, entities.ReturnTimeout, report.Errors[0].ReturnCode)
}

func TestReportsArePersisted(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.iim.Init("-cr"))

	require.Equal(t, entities.ReturnOK, f.iim.PlayReader(context.Background(), "one", strings.NewReader("' a"), 0))
	require.Equal(t, entities.ReturnOK, f.iim.PlayReader(context.Background(), "two", strings.NewReader("' b"), 0))

	store, err := storage.NewReportStore(filepath.Join(f.dir, "reports"))
	require.NoError(t, err)

	last, err := store.LoadReport()
	require.NoError(t, err)
	assert.Equal(t, "two", last.Script)

	history, err := store.LoadHistory()
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "one", history[0].Script)
}

func TestExitClearsState(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.iim.Init("-cr"))
	require.Equal(t, entities.ReturnFail, f.iim.PlayReader(context.Background(), "bad", strings.NewReader("URL"), 0))

	assert.Equal(t, entities.ReturnOK, f.iim.Exit())

	_, ok := f.iim.GetLastError(0)
	assert.False(t, ok)
	_, ok = f.iim.LastReport()
	assert.False(t, ok)
	_, ok = f.iim.GetLastExtract(0)
	assert.False(t, ok)
}

func TestDisplayAndUnsupportedCalls(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, entities.ReturnOK, f.iim.Display("hello"))
	assert.ErrorIs(t, f.iim.TakeBrowserScreenshot("shot.png", "png"), entities.ErrNotImplemented)
	assert.ErrorIs(t, f.iim.GetLastPerformance(0), entities.ErrNotImplemented)
}

func TestNormalizeIndex(t *testing.T) {
	tests := []struct {
		index, length int
		want          int
		ok            bool
	}{
		{index: 0, length: 3, want: 0, ok: true},
		{index: 2, length: 3, want: 2, ok: true},
		{index: -1, length: 3, want: 2, ok: true},
		{index: -3, length: 3, want: 0, ok: true},
		{index: 3, length: 3},
		{index: -4, length: 3},
		{index: 0, length: 0},
	}

	for _, tt := range tests {
		got, ok := normalizeIndex(tt.index, tt.length)
		assert.Equal(t, tt.ok, ok, "index %d of %d", tt.index, tt.length)
		if tt.ok {
			assert.Equal(t, tt.want, got)
		}
	}
}
