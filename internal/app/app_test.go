package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const orderMessage = "MSH|^~\\&|RIS|MAIN|PACS|RAD|20240102030405||ORM^O01|MSGID123|P|2.3.1\r" +
	"PID|1||PID12345||Doe^John||19800515|M\r" +
	"ORC|NW|PLACER123|FILLER456\r"

func newTestApp(t *testing.T, out *bytes.Buffer, appConfig *Config) *App {
	t.Helper()
	a, err := NewApp(out, os.Stderr, appConfig)
	require.NoError(t, err)
	return a
}

func TestRunMap(t *testing.T) {
	dir := t.TempDir()
	inPath := filepath.Join(dir, "order.hl7")
	require.NoError(t, os.WriteFile(inPath, []byte(orderMessage), 0o644))

	t.Run("dataset listing to stdout", func(t *testing.T) {
		var out bytes.Buffer
		cfg := &Config{Mode: "map", HL7Path: inPath, LogLevel: "error", LogFormat: "text"}
		a := newTestApp(t, &out, cfg)

		require.NoError(t, a.Run(context.Background(), cfg))
		listing := out.String()
		assert.Contains(t, listing, "(0010,0020) LO [PID12345]")
		assert.Contains(t, listing, "(0020,000d) UI [2.25.", "study uid synthesized")
	})

	t.Run("listing to a file", func(t *testing.T) {
		var out bytes.Buffer
		outPath := filepath.Join(dir, "listing.txt")
		cfg := &Config{Mode: "map", HL7Path: inPath, OutPath: outPath, LogLevel: "error", LogFormat: "text"}
		a := newTestApp(t, &out, cfg)

		require.NoError(t, a.Run(context.Background(), cfg))
		assert.Empty(t, out.String())
		written, err := os.ReadFile(outPath)
		require.NoError(t, err)
		assert.Contains(t, string(written), "PID12345")
	})

	t.Run("unmappable message is an error", func(t *testing.T) {
		noPID := filepath.Join(dir, "nopid.hl7")
		require.NoError(t, os.WriteFile(noPID, []byte("MSH|^~\\&|RIS|MAIN|PACS|RAD|20240102||ORM^O01|ID|P|2.3.1\r"), 0o644))

		var out bytes.Buffer
		cfg := &Config{Mode: "map", HL7Path: noPID, LogLevel: "error", LogFormat: "text"}
		a := newTestApp(t, &out, cfg)
		assert.ErrorContains(t, a.Run(context.Background(), cfg), "mapping message")
	})
}

func TestRunUnknownMode(t *testing.T) {
	var out bytes.Buffer
	cfg := &Config{Mode: "proxy", LogLevel: "error", LogFormat: "text"}
	a := newTestApp(t, &out, cfg)
	assert.ErrorContains(t, a.Run(context.Background(), cfg), "unknown mode")
}

func TestLocateTemplate(t *testing.T) {
	dir := t.TempDir()
	tplPath := filepath.Join(dir, "orm.tpl")
	require.NoError(t, os.WriteFile(tplPath, []byte("MSH|..."), 0o644))

	var out bytes.Buffer
	cfg := &Config{LogLevel: "error", LogFormat: "text"}
	a := newTestApp(t, &out, cfg)
	a.bridge.TemplateDir = dir

	t.Run("existing path wins", func(t *testing.T) {
		got, err := a.locateTemplate(tplPath)
		require.NoError(t, err)
		assert.Equal(t, tplPath, got)
	})

	t.Run("bare name searched in the template directory", func(t *testing.T) {
		got, err := a.locateTemplate("orm")
		require.NoError(t, err)
		assert.Equal(t, tplPath, got)
	})

	t.Run("unknown name", func(t *testing.T) {
		_, err := a.locateTemplate("missing")
		assert.ErrorContains(t, err, "not found")
	})
}

func TestNewAppBadConfig(t *testing.T) {
	var out bytes.Buffer
	_, err := NewApp(&out, os.Stderr, &Config{
		ConfigPath: filepath.Join(t.TempDir(), "nope.hcl"),
		LogLevel:   "error", LogFormat: "text",
	})
	assert.ErrorContains(t, err, "loading bridge configuration")
}
