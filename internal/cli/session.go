package cli

import (
	"context"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"wasmkit/internal/binarycache"
	"wasmkit/internal/child"
	"wasmkit/internal/config"
	"wasmkit/internal/logx"
	"wasmkit/internal/paths"
	"wasmkit/internal/toolkit"
	"wasmkit/internal/tools"
	"wasmkit/internal/tui"
)

// session bundles everything a command needs to resolve and run tools.
type session struct {
	paths    paths.ProjectPaths
	cfg      config.Config
	log      zerolog.Logger
	closer   io.Closer
	cache    *binarycache.Cache
	resolver *tools.Resolver
	toolkit  *toolkit.Toolkit
	notifier *tui.Notifier
	status   *tui.StatusWriter
}

// openSession loads the project config, applies environment and flag
// overrides, and wires the resolver and toolkit. Callers must Close it.
func openSession(cmd *cobra.Command) (*session, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	pp, err := paths.Resolve(projectDir)
	if err != nil {
		return nil, err
	}

	cfg, err := loadEffectiveConfig(ctx, pp)
	if err != nil {
		return nil, err
	}

	notifier := tui.NewNotifier(cmd.ErrOrStderr())
	results := cfg.Validate()
	for _, v := range results {
		if v.Level == "warning" {
			notifier.Warn("%s", v.Message)
		}
	}
	if err := config.Errors(results); err != nil {
		return nil, err
	}
	pp = paths.ApplyConfig(pp, cfg)

	cacheRoot, err := paths.CacheRoot(cfg.CacheDir)
	if err != nil {
		return nil, err
	}

	logger, closer, err := logx.New(logx.Options{
		Level:   cfg.LogLevel,
		Console: cmd.ErrOrStderr(),
		LogsDir: paths.LogsDir(cacheRoot),
	})
	if err != nil {
		return nil, err
	}
	logger.Debug().Str("project", pp.Root).Str("cache", cacheRoot).Msg("wasmkit session")

	s := &session{
		paths:    pp,
		cfg:      cfg,
		log:      logger,
		closer:   closer,
		notifier: notifier,
	}

	var progress binarycache.ProgressFunc
	if !outputJSON && tui.IsTerminal(cmd.ErrOrStderr()) {
		s.status = tui.NewStatusWriter(cmd.ErrOrStderr())
		progress = s.status.Download
	}

	s.cache = binarycache.New(cacheRoot, binarycache.Options{
		Logger:   logger.With().Str("component", "binarycache").Logger(),
		Progress: progress,
	})
	s.resolver = tools.NewResolver(tools.BinaryCache(s.cache), logger, func(line string) {
		s.notifier.Info("%s", line)
	})
	s.toolkit = toolkit.New(s.resolver, child.CmdRunner{Log: logger}, toolkit.Options{
		Notifier: s.notifier,
		Logger:   logger,
		Stdout:   cmd.OutOrStdout(),
		Stderr:   cmd.ErrOrStderr(),
	})
	return s, nil
}

// loadEffectiveConfig reads wasmkit.yaml and layers WASMKIT_* variables and
// command-line flags on top, in that order.
func loadEffectiveConfig(ctx context.Context, pp paths.ProjectPaths) (config.Config, error) {
	cfg, err := config.Load(pp.ConfigFile)
	if err != nil {
		return config.Config{}, err
	}
	if err := cfg.ApplyEnv(ctx); err != nil {
		return config.Config{}, err
	}
	applyFlagOverrides(&cfg)
	return cfg, nil
}

func applyFlagOverrides(cfg *config.Config) {
	if lvl := strings.TrimSpace(logLevel); lvl != "" {
		cfg.LogLevel = lvl
	}
	if noInstall {
		v := false
		cfg.Install = &v
	}
}

// installPermitted reports whether missing tools may be downloaded.
func (s *session) installPermitted() bool {
	return s.cfg.InstallPermitted()
}

// Close stops the status spinner and flushes the run log.
func (s *session) Close() error {
	if s.status != nil {
		s.status.Stop()
	}
	return s.closer.Close()
}
