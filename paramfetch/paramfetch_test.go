package paramfetch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

// serveParams spins up a test server returning the given payload for every
// path and counting requests.
func serveParams(t *testing.T, payload []byte) (*httptest.Server,
	*atomic.Int64) {

	t.Helper()

	var requests atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			requests.Add(1)
			_, _ = w.Write(payload)
		},
	))
	t.Cleanup(server.Close)

	return server, &requests
}

func paramFileFor(server *httptest.Server, name string,
	payload []byte) ParamFile {

	digest := sha256.Sum256(payload)

	return ParamFile{
		Name:   name,
		URL:    server.URL + "/" + name,
		SHA256: hex.EncodeToString(digest[:]),
	}
}

// TestFetchDownloadsAndVerifies asserts a missing file is downloaded,
// written into the target directory and passes verification, with progress
// reported in ten percent steps ending at one hundred.
func TestFetchDownloadsAndVerifies(t *testing.T) {
	t.Parallel()

	payload := make([]byte, 4096)
	for i := range payload {
		payload[i] = byte(i)
	}
	server, requests := serveParams(t, payload)
	file := paramFileFor(server, "test-spend.params", payload)

	dir := t.TempDir()
	fetcher := NewFetcher(filepath.Join(dir, "params"), server.Client())

	var steps []int
	err := fetcher.Fetch(
		context.Background(), []ParamFile{file},
		func(name string, pct int) {
			require.Equal(t, file.Name, name)
			steps = append(steps, pct)
		},
	)
	require.NoError(t, err)
	require.EqualValues(t, 1, requests.Load())

	onDisk, err := os.ReadFile(
		filepath.Join(dir, "params", file.Name),
	)
	require.NoError(t, err)
	require.Equal(t, payload, onDisk)

	// Download plus verification each walk 0..100.
	require.NotEmpty(t, steps)
	require.Equal(t, 100, steps[len(steps)-1])
	for _, pct := range steps {
		require.Zero(t, pct%10)
	}
}

// TestFetchSkipsVerifiedFile asserts a cached copy with a matching digest
// short-circuits the download.
func TestFetchSkipsVerifiedFile(t *testing.T) {
	t.Parallel()

	payload := []byte("already here")
	server, requests := serveParams(t, payload)
	file := paramFileFor(server, "cached.params", payload)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, file.Name), payload, 0o600,
	))

	fetcher := NewFetcher(dir, server.Client())
	err := fetcher.Fetch(context.Background(), []ParamFile{file}, nil)
	require.NoError(t, err)
	require.Zero(t, requests.Load())
}

// TestFetchRedownloadsCorruptFile asserts a cached copy failing
// verification is discarded and replaced by a fresh download.
func TestFetchRedownloadsCorruptFile(t *testing.T) {
	t.Parallel()

	payload := []byte("the real contents")
	server, requests := serveParams(t, payload)
	file := paramFileFor(server, "corrupt.params", payload)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, file.Name), []byte("garbage"), 0o600,
	))

	fetcher := NewFetcher(dir, server.Client())
	err := fetcher.Fetch(context.Background(), []ParamFile{file}, nil)
	require.NoError(t, err)
	require.EqualValues(t, 1, requests.Load())

	onDisk, err := os.ReadFile(filepath.Join(dir, file.Name))
	require.NoError(t, err)
	require.Equal(t, payload, onDisk)
}

// TestFetchChecksumMismatch asserts a server returning wrong bytes yields
// ErrChecksumMismatch and leaves no file behind.
func TestFetchChecksumMismatch(t *testing.T) {
	t.Parallel()

	server, _ := serveParams(t, []byte("wrong bytes"))
	file := paramFileFor(server, "bad.params", []byte("expected bytes"))

	dir := t.TempDir()
	fetcher := NewFetcher(dir, server.Client())

	err := fetcher.Fetch(context.Background(), []ParamFile{file}, nil)
	require.ErrorIs(t, err, ErrChecksumMismatch)

	_, statErr := os.Stat(filepath.Join(dir, file.Name))
	require.True(t, os.IsNotExist(statErr))
}

// TestFetchBadStatus asserts non-200 responses fail the fetch.
func TestFetchBadStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r)
		},
	))
	t.Cleanup(server.Close)

	file := ParamFile{
		Name:   "missing.params",
		URL:    server.URL + "/missing.params",
		SHA256: "00",
	}

	fetcher := NewFetcher(t.TempDir(), server.Client())
	err := fetcher.Fetch(context.Background(), []ParamFile{file}, nil)
	require.Error(t, err)
}

// TestFetchMultipleConcurrent asserts a multi-file set fetches fully.
func TestFetchMultipleConcurrent(t *testing.T) {
	t.Parallel()

	payload := []byte("shared payload")
	server, requests := serveParams(t, payload)

	files := []ParamFile{
		paramFileFor(server, "a.params", payload),
		paramFileFor(server, "b.params", payload),
		paramFileFor(server, "c.params", payload),
	}

	dir := t.TempDir()
	fetcher := NewFetcher(dir, server.Client())
	err := fetcher.Fetch(context.Background(), files, nil)
	require.NoError(t, err)
	require.EqualValues(t, 3, requests.Load())

	for _, file := range files {
		_, err := os.Stat(filepath.Join(dir, file.Name))
		require.NoError(t, err)
	}
}
