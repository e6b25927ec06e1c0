package cli

import (
	"context"
	"io"
	"log/slog"

	"github.com/roach88/grove/internal/bridge"
	"github.com/roach88/grove/internal/localstore"
)

// openProvider opens the database and builds a provider over it. The caller
// must call the returned close func.
func openProvider(ctx context.Context, opts *RootOptions, formatter *OutputFormatter) (*bridge.Provider, *localstore.Store, func(), error) {
	store, err := localstore.Open(opts.DBPath)
	if err != nil {
		return nil, nil, nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if opts.Verbose {
		logger = slog.New(slog.NewTextHandler(formatter.errWriter(), nil))
	}

	provider, err := bridge.NewProvider(ctx,
		bridge.WithStorage(store),
		bridge.WithLogger(logger),
	)
	if err != nil {
		store.Close()
		return nil, nil, nil, WrapExitError(ExitCommandError, "failed to load event log", err)
	}

	return provider, store, func() { store.Close() }, nil
}

func (f *OutputFormatter) errWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}
