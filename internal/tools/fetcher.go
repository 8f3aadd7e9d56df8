package tools

import (
	"context"
	"fmt"
)

// Artifact is a cached or freshly downloaded release archive.
type Artifact interface {
	// Binary returns the path of the named executable inside the artifact.
	Binary(name string) (string, error)
}

// ArtifactCache stores downloaded release archives across runs. Download
// returns ok=false when the artifact is not cached and permitInstall is false,
// or when the release asset does not exist upstream.
type ArtifactCache interface {
	Download(ctx context.Context, permitInstall bool, name string, binaries []string, url string) (Artifact, bool, error)
}

// Fetcher builds release URLs and asks the cache for the matching artifact.
// Cached never touches the network; Install is the only network write.
type Fetcher struct {
	cache ArtifactCache
}

// NewFetcher returns a Fetcher backed by cache.
func NewFetcher(cache ArtifactCache) *Fetcher {
	return &Fetcher{cache: cache}
}

// Cached returns an already downloaded artifact for def, if any.
func (f *Fetcher) Cached(ctx context.Context, def Definition, p Platform) (Artifact, bool, error) {
	return f.download(ctx, false, def, p)
}

// Install downloads the artifact for def.
func (f *Fetcher) Install(ctx context.Context, def Definition, p Platform) (Artifact, bool, error) {
	return f.download(ctx, true, def, p)
}

func (f *Fetcher) download(ctx context.Context, permit bool, def Definition, p Platform) (Artifact, bool, error) {
	url := DownloadURL(def, p)
	artifact, ok, err := f.cache.Download(ctx, permit, def.Name, def.Binaries, url)
	if err != nil {
		return nil, false, fmt.Errorf("%s: download %s: %w", def.Name, url, err)
	}
	return artifact, ok, nil
}
