package binarycache

import (
	"archive/tar"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type archiveFile struct {
	name string
	body string
	dir  bool
}

func buildArchive(t *testing.T, files []archiveFile) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	for _, f := range files {
		hdr := &tar.Header{Name: f.name, Mode: 0o755, Size: int64(len(f.body)), Typeflag: tar.TypeReg}
		if f.dir {
			hdr = &tar.Header{Name: f.name, Mode: 0o755, Typeflag: tar.TypeDir}
		}
		require.NoError(t, tw.WriteHeader(hdr))
		if !f.dir {
			_, err := tw.Write([]byte(f.body))
			require.NoError(t, err)
		}
	}
	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())
	return buf.Bytes()
}

func binaryenArchive(t *testing.T) []byte {
	return buildArchive(t, []archiveFile{
		{name: "binaryen-version_78/", dir: true},
		{name: "binaryen-version_78/bin/" + executableName("wasm-opt"), body: "opt"},
		{name: "binaryen-version_78/bin/" + executableName("wasm-dis"), body: "dis"},
		{name: "binaryen-version_78/bin/wasm-shell", body: "shell"},
		{name: "binaryen-version_78/README.md", body: "readme"},
	})
}

type archiveServer struct {
	*httptest.Server
	hits atomic.Int32
}

func newArchiveServer(t *testing.T, status int, body []byte) *archiveServer {
	t.Helper()
	s := &archiveServer{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.hits.Add(1)
		assert.Equal(t, userAgent, r.Header.Get("User-Agent"))
		w.WriteHeader(status)
		_, _ = w.Write(body)
	}))
	t.Cleanup(s.Close)
	return s
}

func newTestCache(t *testing.T, client *http.Client) *Cache {
	return New(filepath.Join(t.TempDir(), "cache"), Options{Client: client, Logger: zerolog.Nop()})
}

var binaryen = []string{"wasm-opt", "wasm-dis"}

func TestDownloadMissNotPermittedSkipsNetwork(t *testing.T) {
	srv := newArchiveServer(t, http.StatusOK, binaryenArchive(t))
	c := newTestCache(t, srv.Client())

	dl, ok, err := c.Download(context.Background(), false, "wasm-opt", binaryen, srv.URL+"/binaryen.tar.gz")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, dl)
	assert.Zero(t, srv.hits.Load())

	_, err = os.Stat(c.Dir())
	assert.True(t, os.IsNotExist(err), "cache root should not be created without an install")
}

func TestDownloadInstallsThenHits(t *testing.T) {
	srv := newArchiveServer(t, http.StatusOK, binaryenArchive(t))
	var progressCalls atomic.Int32
	c := New(filepath.Join(t.TempDir(), "cache"), Options{
		Client: srv.Client(),
		Logger: zerolog.Nop(),
		Progress: func(name string, read, total int64) {
			assert.Equal(t, "wasm-opt", name)
			progressCalls.Add(1)
		},
	})
	url := srv.URL + "/binaryen.tar.gz"

	dl, ok, err := c.Download(context.Background(), true, "wasm-opt", binaryen, url)
	require.NoError(t, err)
	require.True(t, ok)
	assert.EqualValues(t, 1, srv.hits.Load())
	assert.Positive(t, progressCalls.Load())

	opt, err := dl.Binary("wasm-opt")
	require.NoError(t, err)
	data, err := os.ReadFile(opt)
	require.NoError(t, err)
	assert.Equal(t, "opt", string(data))

	dis, err := dl.Binary("wasm-dis")
	require.NoError(t, err)
	assert.Equal(t, filepath.Dir(opt), filepath.Dir(dis))

	_, err = dl.Binary("wasm-shell")
	assert.Error(t, err, "only requested binaries are extracted")

	// Later lookups are served from disk even without install permission.
	again, ok, err := c.Download(context.Background(), false, "wasm-opt", binaryen, url)
	require.NoError(t, err)
	require.True(t, ok)
	againOpt, err := again.Binary("wasm-opt")
	require.NoError(t, err)
	assert.Equal(t, opt, againOpt)
	assert.EqualValues(t, 1, srv.hits.Load())
}

func TestDownloadRecordsManifest(t *testing.T) {
	srv := newArchiveServer(t, http.StatusOK, binaryenArchive(t))
	c := newTestCache(t, srv.Client())
	url := srv.URL + "/binaryen.tar.gz"

	_, _, err := c.Download(context.Background(), true, "wasm-dis", binaryen, url)
	require.NoError(t, err)

	entries, err := c.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	e := entries[0]
	assert.Equal(t, "wasm-dis", e.Name)
	assert.Equal(t, url, e.URL)
	assert.Equal(t, binaryen, e.Binaries)
	assert.Len(t, e.Checksum, 64)
	_, err = time.Parse(time.RFC3339, e.InstalledAt)
	assert.NoError(t, err)
}

func TestDownloadNotFoundIsNotAnError(t *testing.T) {
	srv := newArchiveServer(t, http.StatusNotFound, []byte("Not Found"))
	c := newTestCache(t, srv.Client())

	dl, ok, err := c.Download(context.Background(), true, "cargo-generate", []string{"cargo-generate"}, srv.URL+"/missing.tar.gz")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, dl)

	entries, err := c.Entries()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDownloadServerErrorPropagates(t *testing.T) {
	srv := newArchiveServer(t, http.StatusInternalServerError, nil)
	c := newTestCache(t, srv.Client())

	_, ok, err := c.Download(context.Background(), true, "wasm-opt", binaryen, srv.URL+"/binaryen.tar.gz")
	require.Error(t, err)
	assert.False(t, ok)
	assert.Contains(t, err.Error(), "500")
}

func TestDownloadMissingBinaryLeavesNoEntry(t *testing.T) {
	archive := buildArchive(t, []archiveFile{{name: "bin/wasm-opt", body: "opt"}})
	if executableName("wasm-opt") != "wasm-opt" {
		t.Skip("archive fixture uses unix executable names")
	}
	srv := newArchiveServer(t, http.StatusOK, archive)
	c := newTestCache(t, srv.Client())
	url := srv.URL + "/binaryen.tar.gz"

	_, _, err := c.Download(context.Background(), true, "wasm-opt", binaryen, url)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "wasm-dis")

	exists, err := dirExists(c.entryDir("wasm-opt", url))
	require.NoError(t, err)
	assert.False(t, exists, "failed unpack must not leave a cache entry")

	leftovers, err := filepath.Glob(filepath.Join(c.Dir(), ".tmp-*"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestDownloadCorruptArchive(t *testing.T) {
	srv := newArchiveServer(t, http.StatusOK, []byte("definitely not gzip"))
	c := newTestCache(t, srv.Client())

	_, ok, err := c.Download(context.Background(), true, "wasm-opt", binaryen, srv.URL+"/binaryen.tar.gz")
	require.Error(t, err)
	assert.False(t, ok)
}

func TestEntryDirDependsOnURL(t *testing.T) {
	c := New("/cache", Options{})
	a := c.entryDir("wasm-opt", "https://github.com/WebAssembly/binaryen/releases/download/version_78/binaryen-version_78-x86_64-linux.tar.gz")
	b := c.entryDir("wasm-opt", "https://github.com/WebAssembly/binaryen/releases/download/version_79/binaryen-version_79-x86_64-linux.tar.gz")
	assert.NotEqual(t, a, b)
	assert.Equal(t, a, c.entryDir("wasm-opt", "https://github.com/WebAssembly/binaryen/releases/download/version_78/binaryen-version_78-x86_64-linux.tar.gz"))
	assert.Len(t, filepath.Base(a), len("wasm-opt-")+16)
}

func TestInstallLockRespectsContext(t *testing.T) {
	root := t.TempDir()
	unlock, err := acquireLock(context.Background(), root, "wasm-opt")
	require.NoError(t, err)
	defer unlock()

	old := lockPollInterval
	lockPollInterval = 5 * time.Millisecond
	defer func() { lockPollInterval = old }()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	_, err = acquireLock(ctx, root, "wasm-opt")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestInstallLockReleases(t *testing.T) {
	root := t.TempDir()
	unlock, err := acquireLock(context.Background(), root, "wasm-dis")
	require.NoError(t, err)
	unlock()

	unlock, err = acquireLock(context.Background(), root, "wasm-dis")
	require.NoError(t, err)
	unlock()
}

func TestDownloadIgnoresLeftoverLockFile(t *testing.T) {
	srv := newArchiveServer(t, http.StatusOK, binaryenArchive(t))
	c := newTestCache(t, srv.Client())
	url := srv.URL + "/binaryen.tar.gz"

	// A killed install leaves its lock file behind but holds no lock.
	require.NoError(t, os.MkdirAll(c.Dir(), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(c.Dir(), "wasm-opt.lock"), nil, 0o644))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	dl, ok, err := c.Download(ctx, true, "wasm-opt", binaryen, url)
	require.NoError(t, err)
	require.True(t, ok)
	assert.EqualValues(t, 1, srv.hits.Load())

	_, err = dl.Binary("wasm-opt")
	assert.NoError(t, err)
}

func TestRecordEntryWaitsForManifestLock(t *testing.T) {
	root := t.TempDir()
	unlock, err := acquireLock(context.Background(), root, manifestLockName)
	require.NoError(t, err)
	defer unlock()

	old := lockPollInterval
	lockPollInterval = 5 * time.Millisecond
	defer func() { lockPollInterval = old }()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	err = recordEntry(ctx, root, Entry{Name: "wasm-opt", URL: "https://example.com/a.tar.gz"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	m, err := loadManifest(root)
	require.NoError(t, err)
	assert.Empty(t, m.Entries)
}

func TestRecordEntryConcurrentWritersKeepAllEntries(t *testing.T) {
	root := t.TempDir()
	names := []string{"wasm-opt", "wasm-dis", "cargo-generate", "wasm-bindgen"}

	var wg sync.WaitGroup
	errs := make(chan error, len(names))
	for _, name := range names {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- recordEntry(context.Background(), root, Entry{Name: name, Dir: name + "-0", URL: "https://example.com/" + name})
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	m, err := loadManifest(root)
	require.NoError(t, err)
	assert.Len(t, m.Entries, len(names))
}
