// Package binarycache stores downloaded tool release archives on disk.
//
// Each archive is unpacked into its own directory keyed by tool name and a
// hash of the download URL, so a version bump in the URL gets a fresh entry.
// Entries are only ever added; nothing here deletes or rewrites an existing one.
package binarycache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/rs/zerolog"
)

const userAgent = "wasmkit/1.0"

// ProgressFunc receives download progress. total is -1 when the server did not
// report a content length.
type ProgressFunc func(name string, read, total int64)

// Options configures a Cache.
type Options struct {
	Client   *http.Client
	Logger   zerolog.Logger
	Progress ProgressFunc
}

// Cache is an on-disk store of unpacked release archives.
type Cache struct {
	root     string
	client   *http.Client
	log      zerolog.Logger
	progress ProgressFunc
}

// New returns a Cache rooted at root. The directory is created lazily on the
// first install.
func New(root string, opts Options) *Cache {
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Minute}
	}
	return &Cache{
		root:     root,
		client:   client,
		log:      opts.Logger,
		progress: opts.Progress,
	}
}

// Dir returns the cache root directory.
func (c *Cache) Dir() string {
	return c.root
}

// Download is a cached, unpacked release archive.
type Download struct {
	root string
}

// Binary returns the path of the named executable inside the download.
func (d *Download) Binary(name string) (string, error) {
	path := filepath.Join(d.root, executableName(name))
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%s binary does not exist in %s", name, d.root)
		}
		return "", fmt.Errorf("stat %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("%s is not a regular file", path)
	}
	return path, nil
}

// Download returns the cached archive for url. When the archive is not cached
// and permitInstall is false it returns ok=false without touching the network.
// When permitted, it downloads and unpacks the archive keeping only the named
// binaries; a 404 from the server also reports ok=false. Every other failure
// is returned as an error.
func (c *Cache) Download(ctx context.Context, permitInstall bool, name string, binaries []string, url string) (*Download, bool, error) {
	dest := c.entryDir(name, url)
	logger := c.log.With().Str("tool", name).Str("entry", filepath.Base(dest)).Logger()

	exists, err := dirExists(dest)
	if err != nil {
		return nil, false, err
	}
	if exists {
		logger.Debug().Msg("artifact cache hit")
		return &Download{root: dest}, true, nil
	}
	if !permitInstall {
		logger.Debug().Msg("artifact cache miss; install not permitted")
		return nil, false, nil
	}

	if err := os.MkdirAll(c.root, 0o755); err != nil {
		return nil, false, fmt.Errorf("prepare cache dir: %w", err)
	}
	unlock, err := acquireLock(ctx, c.root, name)
	if err != nil {
		return nil, false, err
	}
	defer unlock()

	// Another process may have finished the same install while we waited.
	exists, err = dirExists(dest)
	if err != nil {
		return nil, false, err
	}
	if exists {
		return &Download{root: dest}, true, nil
	}

	archive, ok, err := c.fetch(ctx, name, url)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		logger.Debug().Str("url", url).Msg("release asset not found")
		return nil, false, nil
	}
	defer func() { _ = os.Remove(archive.path) }()

	if err := c.unpack(archive.path, dest, name, binaries); err != nil {
		return nil, false, fmt.Errorf("unpack %s: %w", url, err)
	}

	entry := Entry{
		Name:        name,
		URL:         url,
		Dir:         filepath.Base(dest),
		Binaries:    append([]string(nil), binaries...),
		Checksum:    archive.checksum,
		InstalledAt: time.Now().UTC().Format(time.RFC3339),
	}
	if err := recordEntry(ctx, c.root, entry); err != nil {
		return nil, false, err
	}
	logger.Debug().Str("checksum", archive.checksum).Msg("artifact installed")
	return &Download{root: dest}, true, nil
}

func (c *Cache) unpack(archivePath, dest, name string, binaries []string) error {
	tmpDir, err := os.MkdirTemp(c.root, ".tmp-"+name+"-")
	if err != nil {
		return fmt.Errorf("create temp dir: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = os.RemoveAll(tmpDir)
		}
	}()

	if err := extractBinaries(archivePath, tmpDir, binaries); err != nil {
		return err
	}
	if err := os.Rename(tmpDir, dest); err != nil {
		return fmt.Errorf("commit cache dir: %w", err)
	}
	committed = true
	return nil
}

func (c *Cache) entryDir(name, url string) string {
	return filepath.Join(c.root, name+"-"+hashURL(url))
}

func hashURL(url string) string {
	sum := sha256.Sum256([]byte(url))
	return hex.EncodeToString(sum[:8])
}

func dirExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("stat %s: %w", path, err)
	}
	return info.IsDir(), nil
}

func executableName(base string) string {
	if runtime.GOOS == "windows" {
		return base + ".exe"
	}
	return base
}
