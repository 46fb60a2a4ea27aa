// Package paramfetch downloads and checksum-verifies the large
// cryptographic setup files the shielded proof systems need. It is plain
// I/O, not consensus logic: a file either matches its expected digest or is
// discarded.
package paramfetch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"
)

// ErrChecksumMismatch is returned when a fetched or cached file does not
// hash to its expected digest. The offending file is removed before the
// error is returned.
var ErrChecksumMismatch = errors.New("sha256 checksum mismatch")

// ParamFile describes one parameter file to fetch: where it lives, what it
// is called on disk, and the hex encoded SHA-256 digest it must match.
type ParamFile struct {
	Name   string
	URL    string
	SHA256 string
}

// ProgressFunc receives fetch and verification progress for a file, as a
// percentage stepping in increments of ten. Progress state is scoped to the
// request; nothing is shared between concurrent fetches. A nil ProgressFunc
// disables reporting.
type ProgressFunc func(name string, pct int)

// DefaultParamFiles is the parameter file set the shielded proof systems
// require.
var DefaultParamFiles = []ParamFile{
	{
		Name: "sapling-spend.params",
		URL:  "https://params.umbranet.org/sapling-spend.params",
		SHA256: "8e48ffd23abb3a5fd9c5589204f32d9c31285a04b78096ba" +
			"40a79b75677efc13",
	},
	{
		Name: "sapling-output.params",
		URL:  "https://params.umbranet.org/sapling-output.params",
		SHA256: "2f0ebbcbb9bb0bcffe95a397e7eba89c29eb4dde6191c339" +
			"db88570e3f3fb0e4",
	},
	{
		Name: "sprout-groth16.params",
		URL:  "https://params.umbranet.org/sprout-groth16.params",
		SHA256: "b685d700c60328498fbde589c8c7c484c722b788b265b72a" +
			"f448a5bf0ee55b50",
	},
}

// Fetcher downloads parameter files into a directory.
type Fetcher struct {
	client *http.Client
	dir    string
}

// NewFetcher returns a fetcher writing into dir. A nil client selects
// http.DefaultClient.
func NewFetcher(dir string, client *http.Client) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}

	return &Fetcher{
		client: client,
		dir:    dir,
	}
}

// Fetch ensures every listed parameter file exists in the fetcher's
// directory with a matching checksum. Files already present and verified
// are skipped; the rest are downloaded concurrently. The first failure
// cancels the remaining downloads.
func (f *Fetcher) Fetch(ctx context.Context, files []ParamFile,
	progress ProgressFunc) error {

	if err := os.MkdirAll(f.dir, 0o700); err != nil {
		return fmt.Errorf("create params dir: %w", err)
	}

	eg, ctx := errgroup.WithContext(ctx)
	for _, file := range files {
		file := file
		eg.Go(func() error {
			return f.fetchOne(ctx, file, progress)
		})
	}

	return eg.Wait()
}

// fetchOne fetches and verifies a single parameter file, skipping the
// download when a verified copy already exists.
func (f *Fetcher) fetchOne(ctx context.Context, file ParamFile,
	progress ProgressFunc) error {

	path := filepath.Join(f.dir, file.Name)

	if _, err := os.Stat(path); err == nil {
		err := f.verify(path, file, progress)
		if err == nil {
			log.Debugf("Found verified %s, skipping download",
				file.Name)
			return nil
		}
		if !errors.Is(err, ErrChecksumMismatch) {
			return err
		}

		// The corrupt copy has been removed; fall through to
		// re-download.
		log.Warnf("Cached %s failed verification, re-downloading",
			file.Name)
	}

	if err := f.download(ctx, path, file, progress); err != nil {
		return err
	}

	return f.verify(path, file, progress)
}

// download streams the file's URL into place.
func (f *Fetcher) download(ctx context.Context, path string, file ParamFile,
	progress ProgressFunc) error {

	log.Infof("Downloading %s", file.URL)

	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet, file.URL, nil,
	)
	if err != nil {
		return err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("download %s: %w", file.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download %s: unexpected status %s",
			file.Name, resp.Status)
	}

	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer out.Close()

	reporter := newProgressReporter(
		file.Name, resp.ContentLength, progress,
	)
	_, err = io.Copy(out, io.TeeReader(resp.Body, reporter))
	if err != nil {
		return fmt.Errorf("download %s: %w", file.Name, err)
	}

	return out.Close()
}

// verify streams the file through SHA-256 and compares against the
// expected digest, removing the file on mismatch.
func (f *Fetcher) verify(path string, file ParamFile,
	progress ProgressFunc) error {

	log.Infof("Verifying %s", path)

	in, err := os.Open(path)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	h := sha256.New()
	reporter := newProgressReporter(file.Name, info.Size(), progress)
	if _, err := io.Copy(h, io.TeeReader(in, reporter)); err != nil {
		return fmt.Errorf("verify %s: %w", file.Name, err)
	}

	digest := hex.EncodeToString(h.Sum(nil))
	if digest != file.SHA256 {
		in.Close()
		if rmErr := os.Remove(path); rmErr != nil {
			log.Warnf("Unable to remove corrupt %s: %v", path,
				rmErr)
		}
		return fmt.Errorf("%s: got %s, want %s: %w", file.Name,
			digest, file.SHA256, ErrChecksumMismatch)
	}

	return nil
}

// progressReporter converts a byte stream position into ten percent
// progress steps for a single file.
type progressReporter struct {
	name     string
	total    int64
	done     int64
	reported int
	progress ProgressFunc
}

func newProgressReporter(name string, total int64,
	progress ProgressFunc) *progressReporter {

	return &progressReporter{
		name:     name,
		total:    total,
		progress: progress,
	}
}

// Write implements io.Writer over the bytes that have passed through.
func (r *progressReporter) Write(p []byte) (int, error) {
	r.done += int64(len(p))

	if r.progress != nil && r.total > 0 {
		pct := int(float64(r.done) / float64(r.total) * 100)
		if pct > 100 {
			pct = 100
		}
		if pct/10 > r.reported {
			r.reported = pct / 10
			r.progress(r.name, r.reported*10)
		}
	}

	return len(p), nil
}
