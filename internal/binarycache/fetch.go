package binarycache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
)

type fetchedArchive struct {
	path     string
	checksum string
}

// fetch streams url into a temp file under the cache root. A 404 reports
// ok=false so callers can treat an unpublished asset as "not installable".
func (c *Cache) fetch(ctx context.Context, name, url string) (fetchedArchive, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fetchedArchive{}, false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return fetchedArchive{}, false, fmt.Errorf("download %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fetchedArchive{}, false, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fetchedArchive{}, false, fmt.Errorf("download %s: unexpected status %s", url, resp.Status)
	}

	tmpFile, err := os.CreateTemp(c.root, ".download-*.tar.gz")
	if err != nil {
		return fetchedArchive{}, false, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	var body io.Reader = resp.Body
	if c.progress != nil {
		body = &progressReader{r: resp.Body, name: name, total: resp.ContentLength, report: c.progress}
	}

	h := sha256.New()
	if _, err := io.Copy(io.MultiWriter(tmpFile, h), body); err != nil {
		tmpFile.Close()
		_ = os.Remove(tmpPath)
		return fetchedArchive{}, false, fmt.Errorf("write temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fetchedArchive{}, false, fmt.Errorf("close temp file: %w", err)
	}

	return fetchedArchive{path: tmpPath, checksum: hex.EncodeToString(h.Sum(nil))}, true, nil
}

type progressReader struct {
	r      io.Reader
	name   string
	read   int64
	total  int64
	report ProgressFunc
}

func (p *progressReader) Read(buf []byte) (int, error) {
	n, err := p.r.Read(buf)
	if n > 0 {
		p.read += int64(n)
		p.report(p.name, p.read, p.total)
	}
	return n, err
}
