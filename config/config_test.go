package config

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/etc/treesync.json", []byte(`{
		"sync": {"batch-size": 10, "trace": true, "timeout": "5s"},
		"logging": {"level": "debug", "log-encoder": "json"},
		"lst": {"share-cache-size": 128},
		"metrics": {"push": "http://localhost:9091"}
	}`), 0o644))

	vip := viper.New()
	vip.SetFs(fs)
	require.NoError(t, LoadConfig("/etc/treesync.json", vip))
	conf, err := Decode(vip)
	require.NoError(t, err)

	want := DefaultConfig()
	want.Sync.BatchSize = 10
	want.Sync.Trace = true
	want.Sync.Timeout = 5 * time.Second
	want.Logging = LoggerConfig{Encoder: JSONLogEncoder, Level: "debug"}
	want.LST.ShareCacheSize = 128
	want.Metrics.Push = "http://localhost:9091"
	require.Equal(t, &want, conf)
}

func TestLoadConfigErrors(t *testing.T) {
	fs := afero.NewMemMapFs()
	vip := viper.New()
	vip.SetFs(fs)
	require.NoError(t, LoadConfig("", vip))
	require.ErrorContains(t, LoadConfig("/missing.json", vip), "failed to read config file /missing.json")

	for _, tc := range []struct {
		name, data string
	}{
		{name: "batch size", data: `{"sync": {"batch-size": 0}}`},
		{name: "value size", data: `{"sync": {"max-value-size": -1}}`},
		{name: "log level", data: `{"logging": {"level": "loud"}}`},
		{name: "encoder", data: `{"logging": {"log-encoder": "xml"}}`},
		{name: "cache size", data: `{"lst": {"share-cache-size": 0}}`},
	} {
		t.Run(tc.name, func(t *testing.T) {
			require.NoError(t, afero.WriteFile(fs, "/bad.json", []byte(tc.data), 0o644))
			vip := viper.New()
			vip.SetFs(fs)
			require.NoError(t, LoadConfig("/bad.json", vip))
			_, err := Decode(vip)
			require.Error(t, err)
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	conf, err := Decode(viper.New())
	require.NoError(t, err)
	require.Equal(t, DefaultConfig(), *conf)
}

func TestLoggerBuild(t *testing.T) {
	var b bytes.Buffer
	log, err := LoggerConfig{Encoder: JSONLogEncoder, Level: "info"}.Build(&b)
	require.NoError(t, err)
	log.Debug("hidden")
	log.Info("shown")
	require.NoError(t, log.Sync())
	var entry map[string]any
	require.NoError(t, json.Unmarshal(b.Bytes(), &entry))
	require.Equal(t, "shown", entry["msg"])
	require.Equal(t, "info", entry["level"])

	b.Reset()
	log, err = defaultLoggingConfig().Build(&b)
	require.NoError(t, err)
	log.Info("hidden")
	log.Warn("console")
	require.Contains(t, b.String(), "WARN\tconsole")
	require.NotContains(t, b.String(), "hidden")

	_, err = LoggerConfig{Encoder: "xml", Level: "info"}.Build(&b)
	require.Error(t, err)
}
