package tools

import (
	"context"

	"wasmkit/internal/binarycache"
)

// BinaryCache adapts an on-disk binarycache.Cache to ArtifactCache.
func BinaryCache(c *binarycache.Cache) ArtifactCache {
	return binaryCache{cache: c}
}

type binaryCache struct {
	cache *binarycache.Cache
}

func (b binaryCache) Download(ctx context.Context, permitInstall bool, name string, binaries []string, url string) (Artifact, bool, error) {
	dl, ok, err := b.cache.Download(ctx, permitInstall, name, binaries, url)
	if err != nil || !ok {
		return nil, false, err
	}
	return dl, true, nil
}
