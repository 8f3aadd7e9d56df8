package tools

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"wasmkit/internal/child"
)

// Resolver locates tool executables: PATH first, then the artifact cache, then
// a download when installing is permitted. Nothing is memoized between calls,
// so every Resolve re-searches PATH and re-queries the cache.
type Resolver struct {
	fetcher  *Fetcher
	runner   child.Runner
	log      zerolog.Logger
	notify   func(string)
	lookPath func(string) (string, bool, error)
	platform func() (Platform, bool)
}

// NewResolver returns a Resolver that downloads through cache. notify receives
// user-facing progress lines and may be nil.
func NewResolver(cache ArtifactCache, log zerolog.Logger, notify func(string)) *Resolver {
	if notify == nil {
		notify = func(string) {}
	}
	return &Resolver{
		fetcher:  NewFetcher(cache),
		runner:   child.CmdRunner{Log: log},
		log:      log,
		notify:   notify,
		lookPath: LookPath,
		platform: CurrentPlatform,
	}
}

// Resolve finds or installs tool. PlatformNotSupported and CannotInstall are
// normal outcomes; a non-nil error means the environment is broken (lookup,
// transport, or extraction failure) and no Resolution is returned.
func (r *Resolver) Resolve(ctx context.Context, tool Tool, installPermitted bool) (Resolution, error) {
	def, err := tool.Definition()
	if err != nil {
		return Resolution{}, err
	}
	logger := r.log.With().Str("tool", def.Name).Logger()

	path, ok, err := r.lookPath(def.Name)
	if err != nil {
		return Resolution{}, err
	}
	if ok {
		logger.Debug().Str("path", path).Msg("found on PATH")
		return found(tool, path, SourceSystem), nil
	}

	platform, ok := r.platform()
	if !ok {
		logger.Debug().Msg("no precompiled release for this platform")
		return notFound(tool, PlatformNotSupported), nil
	}

	source := SourceCache
	artifact, ok, err := r.fetcher.Cached(ctx, def, platform)
	if err != nil {
		return Resolution{}, err
	}
	if !ok {
		if !installPermitted {
			logger.Debug().Msg("not cached and installing is not permitted")
			return notFound(tool, CannotInstall), nil
		}

		r.notify(fmt.Sprintf("Installing %s %s...", def.Name, def.Version))
		logger.Debug().Str("url", DownloadURL(def, platform)).Msg("downloading release")
		artifact, ok, err = r.fetcher.Install(ctx, def, platform)
		if err != nil {
			return Resolution{}, err
		}
		if !ok {
			logger.Debug().Msg("release asset not published")
			return notFound(tool, CannotInstall), nil
		}
		source = SourceDownload
	}

	bin, err := artifact.Binary(def.Name)
	if err != nil {
		return Resolution{}, fmt.Errorf("%s: %w", def.Name, err)
	}
	logger.Debug().Str("path", bin).Str("source", string(source)).Msg("resolved from artifact cache")
	return found(tool, bin, source), nil
}
