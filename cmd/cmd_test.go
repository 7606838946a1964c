package cmd

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventfeed/internal/client"
	"eventfeed/internal/config"
	"eventfeed/internal/feed"
	"eventfeed/internal/metrics"
	"eventfeed/internal/view"
	"eventfeed/pkg/models"
)

func TestCommandsRegistered(t *testing.T) {
	expected := map[string]bool{
		"watch":    false,
		"events":   false,
		"cameras":  false,
		"health":   false,
		"target":   false,
		"exporter": false,
	}

	for _, c := range rootCmd.Commands() {
		if _, ok := expected[c.Name()]; ok {
			expected[c.Name()] = true
		}
	}

	for name, found := range expected {
		assert.True(t, found, "expected command %q to be registered with root command", name)
	}
}

func TestEventsCommandHasSubcommands(t *testing.T) {
	var names []string
	for _, c := range eventsCmd.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"list", "get"}, names)
}

func TestCamerasCommandHasSubcommands(t *testing.T) {
	var names []string
	for _, c := range camerasCmd.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"list", "add"}, names)
}

func TestCamerasAddRequiredFlags(t *testing.T) {
	for _, name := range []string{"name", "location", "rtsp-url"} {
		flag := camerasAddCmd.Flags().Lookup(name)
		require.NotNil(t, flag, name)
		assert.Equal(t, []string{"true"}, flag.Annotations[cobra.BashCompOneRequiredFlag], name)
	}
}

func TestExporterFlags(t *testing.T) {
	for name, def := range map[string]string{
		"port":     "9120",
		"interval": "3s",
		"timeout":  "0s",
		"ordering": "latest-issued",
		"service":  "",
	} {
		flag := exporterCmd.Flags().Lookup(name)
		require.NotNil(t, flag, name)
		assert.Equal(t, def, flag.DefValue, name)
	}
}

func TestServiceArguments(t *testing.T) {
	args := serviceArguments(config.Settings{
		BaseURL:     "http://10.0.0.5:8000",
		Interval:    5 * time.Second,
		Timeout:     2 * time.Second,
		Ordering:    "last-completed",
		MetricsPort: "9200",
		LogLevel:    "debug",
	})

	assert.Equal(t, []string{
		"exporter",
		"--host", "http://10.0.0.5:8000",
		"--port", "9200",
		"--interval", "5s",
		"--timeout", "2s",
		"--ordering", "last-completed",
		"--log-level", "debug",
	}, args)

	// Every forwarded flag must exist, or the installed service fails to start.
	for i := 1; i < len(args); i += 2 {
		name := strings.TrimPrefix(args[i], "--")
		found := exporterCmd.Flags().Lookup(name) != nil || rootCmd.PersistentFlags().Lookup(name) != nil
		assert.True(t, found, "unknown flag %s", args[i])
	}
}

func TestWatchFlags(t *testing.T) {
	interval := watchCmd.Flags().Lookup("interval")
	require.NotNil(t, interval)
	assert.Equal(t, "3s", interval.DefValue)

	ordering := watchCmd.Flags().Lookup("ordering")
	require.NotNil(t, ordering)
	assert.Equal(t, "latest-issued", ordering.DefValue)
}

func TestPersistentFlags(t *testing.T) {
	for _, name := range []string{"config", "json", "yaml", "host", "log-level"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(name), name)
	}
}

func TestWriteStructured(t *testing.T) {
	t.Cleanup(func() { jsonOutput, yamlOutput = false, false })
	v := []models.Event{{ID: models.NumberToken("1"), Rule: "intrusion"}}

	var buf bytes.Buffer
	ok, err := writeStructured(&buf, v)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, buf.String())

	jsonOutput = true
	ok, err = writeStructured(&buf, v)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Contains(t, buf.String(), `"id": 1`)

	buf.Reset()
	jsonOutput, yamlOutput = false, true
	ok, err = writeStructured(&buf, v)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Contains(t, buf.String(), "rule: intrusion")
}

func TestNewLogger_Level(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger("warn", &buf)

	logger.Info("hidden")
	logger.Warn("shown", "key", "value")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "key=value")
}

func newBackend(t *testing.T, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunFeed_StopsOnCancel(t *testing.T) {
	backend := newBackend(t, `[{"id":1,"rule":"intrusion"}]`)
	table := view.NewTable(time.UTC)
	f := feed.New(client.New(client.ClientConfig{BaseURL: backend.URL}), table, feed.Options{
		Interval: 20 * time.Millisecond,
		Logger:   quietLogger(),
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runFeed(ctx, f) }()

	assert.Eventually(t, func() bool { return table.Len() == 1 }, 2*time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("runFeed did not return")
	}
	assert.False(t, f.Running())
}

func TestExporterProgram(t *testing.T) {
	backend := newBackend(t, `[{"id":7,"camera_id":"cam-1","rule":"intrusion","zone":"north","confidence":0.9,"timestamp":1700000000}]`)

	table := view.NewTable(time.UTC)
	collector := metrics.NewFeedCollector()
	f := feed.New(client.New(client.ClientConfig{BaseURL: backend.URL}), table, feed.Options{
		Interval: time.Hour,
		OnResult: collector.Observe,
		Logger:   quietLogger(),
	})
	prg := newProgram(f, table, collector, "127.0.0.1:0", quietLogger())

	require.NoError(t, prg.Start(nil))
	assert.Eventually(t, func() bool { return table.Len() == 1 }, 2*time.Second, 10*time.Millisecond)

	srv := httptest.NewServer(prg.handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	page, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(page), "intrusion")
	assert.Contains(t, string(page), "2023-11-14 22:13:20")

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	page, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.True(t, strings.Contains(string(page), "eventfeed_up 1"), string(page))
	assert.Contains(t, string(page), `eventfeed_events_by_rule{rule="intrusion"} 1`)

	resp, err = http.Get(srv.URL + "/nope")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	require.NoError(t, prg.Stop(nil))
	assert.False(t, f.Running())
}
