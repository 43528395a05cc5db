package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestPush(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := prometheus.NewCounter(prometheus.CounterOpts{Namespace: Namespace, Name: "test_total"})
	reg.MustRegister(c)
	c.Add(3)

	var (
		method, path string
		body         []byte
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method, path = r.Method, r.URL.Path
		body, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	require.NoError(t, pushFrom(context.Background(), reg, srv.URL, "treesync", map[string]string{
		"command": "diff",
	}))
	require.Equal(t, http.MethodPut, method)
	require.Equal(t, "/metrics/job/treesync/command/diff", path)
	require.NotEmpty(t, body)
}

func TestPushError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()
	err := pushFrom(context.Background(), prometheus.NewRegistry(), srv.URL, "treesync", nil)
	require.Error(t, err)
	require.True(t, strings.HasPrefix(err.Error(), "push metrics to "))
}
