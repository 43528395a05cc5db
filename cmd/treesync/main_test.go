package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/spacemeshos/go-treesync/lst"
)

func run(t *testing.T, fs afero.Fs, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd(fs)
	var out, stderr bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	t.Log(stderr.String())
	return out.String(), err
}

func writeUnit(t *testing.T, fs afero.Fs, path string, u *lst.Unit) {
	t.Helper()
	var b bytes.Buffer
	require.NoError(t, lst.Save(&b, u))
	require.NoError(t, afero.WriteFile(fs, path, b.Bytes(), 0o644))
}

func readUnit(t *testing.T, fs afero.Fs, path string) *lst.Unit {
	t.Helper()
	f, err := fs.Open(path)
	require.NoError(t, err)
	defer f.Close()
	u, err := lst.Load(f)
	require.NoError(t, err)
	return u
}

func sampleTrees() (before, after *lst.Unit) {
	intType := lst.NewTypeRef("int")
	inc := lst.NewFunc("inc",
		[]*lst.Ident{lst.NewIdent("x", intType)},
		intType,
		lst.NewBinary(lst.OpAdd, lst.NewIdent("x", nil), lst.NewLiteral("1")),
	)
	zero := lst.NewFunc("zero", nil, intType, lst.NewLiteral("0"))
	before = lst.NewUnit("ops", inc, zero).WithStyle(&lst.Style{Indent: 2})
	dec := inc.WithName("dec").WithBody(
		inc.Body[0].(*lst.Binary).WithOperands(lst.NewIdent("x", nil), lst.NewLiteral("2")))
	dec.Body[0].(*lst.Binary).Op = lst.OpSub
	after = before.ReplaceDecl(0, dec).WithStyle(&lst.Style{Indent: 4, Tabs: true})
	return before, after
}

func TestDiffApply(t *testing.T) {
	fs := afero.NewMemMapFs()
	before, after := sampleTrees()
	writeUnit(t, fs, "/before.json", before)
	writeUnit(t, fs, "/after.json", after)

	out, err := run(t, fs, "diff", "--before", "/before.json", "--after", "/after.json", "-o", "/diff.bin")
	require.NoError(t, err)
	require.Contains(t, out, "messages: ")
	require.Contains(t, out, "NO_CHANGE")
	require.Contains(t, out, "CHANGE")

	_, err = run(t, fs, "apply", "--before", "/before.json", "-i", "/diff.bin", "-o", "/result.json")
	require.NoError(t, err)
	if diff := cmp.Diff(after, readUnit(t, fs, "/result.json")); diff != "" {
		t.Errorf("applied tree mismatch (-want +got):\n%s", diff)
	}
}

func TestDiffFromScratch(t *testing.T) {
	fs := afero.NewMemMapFs()
	_, after := sampleTrees()
	writeUnit(t, fs, "/after.json", after)

	out, err := run(t, fs, "diff", "--after", "/after.json", "-o", "/full.bin")
	require.NoError(t, err)
	require.Contains(t, out, "ADD")

	out, err = run(t, fs, "apply", "-i", "/full.bin")
	require.NoError(t, err)
	u, err := lst.Load(bytes.NewBufferString(out))
	require.NoError(t, err)
	require.Empty(t, cmp.Diff(after, u))

	require.NoError(t, afero.WriteFile(fs, "/bad.json", []byte(`{"name": "u"}`), 0o644))
	_, err = run(t, fs, "diff", "--after", "/bad.json", "-o", "/bad.bin")
	require.ErrorIs(t, err, lst.ErrInvalidUnit)
}

func TestApplyErrors(t *testing.T) {
	fs := afero.NewMemMapFs()
	_, err := run(t, fs, "apply", "-i", "/missing.bin")
	require.ErrorContains(t, err, "open stream file")

	require.NoError(t, afero.WriteFile(fs, "/bad.bin", []byte{0x42}, 0o644))
	_, err = run(t, fs, "apply", "-i", "/bad.bin")
	require.ErrorContains(t, err, "invalid frame code 42")

	require.NoError(t, afero.WriteFile(fs, "/empty.bin", nil, 0o644))
	_, err = run(t, fs, "apply", "-i", "/empty.bin")
	require.Error(t, err)

	_, err = run(t, fs, "apply")
	require.Error(t, err)
}

func TestRoundtrip(t *testing.T) {
	fs := afero.NewMemMapFs()
	before, after := sampleTrees()
	writeUnit(t, fs, "/before.json", before)
	writeUnit(t, fs, "/after.json", after)

	out, err := run(t, fs, "roundtrip", "--before", "/before.json", "--after", "/after.json", "--batch-size", "3")
	require.NoError(t, err)
	require.Regexp(t, `^ok [0-9a-f]{16}\n$`, out)

	out, err = run(t, fs, "roundtrip", "--after", "/after.json", "--trace")
	require.NoError(t, err)
	require.Regexp(t, `^ok `, out)
}

func TestConfig(t *testing.T) {
	fs := afero.NewMemMapFs()
	_, after := sampleTrees()
	writeUnit(t, fs, "/after.json", after)
	require.NoError(t, afero.WriteFile(fs, "/conf.json",
		[]byte(`{"sync": {"batch-size": 0}, "logging": {"level": "debug"}}`), 0o644))

	_, err := run(t, fs, "roundtrip", "--after", "/after.json", "-c", "/conf.json")
	require.ErrorContains(t, err, "invalid batch size 0")

	// flags take precedence over the config file
	_, err = run(t, fs, "roundtrip", "--after", "/after.json", "-c", "/conf.json", "--batch-size", "5")
	require.NoError(t, err)

	_, err = run(t, fs, "roundtrip", "--after", "/after.json", "--log-level", "loud")
	require.ErrorContains(t, err, "invalid log level")

	_, err = run(t, fs, "roundtrip", "--after", "/after.json", "-c", "/missing.json")
	require.ErrorContains(t, err, "failed to read config file")
}

func TestMetricsPush(t *testing.T) {
	var (
		mu    sync.Mutex
		paths []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths = append(paths, r.Method+" "+r.URL.Path)
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	fs := afero.NewMemMapFs()
	_, after := sampleTrees()
	writeUnit(t, fs, "/after.json", after)
	_, err := run(t, fs, "roundtrip", "--after", "/after.json", "--metrics-push", srv.URL)
	require.NoError(t, err)
	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []string{"PUT /metrics/job/treesync/command/roundtrip"}, paths)
}
