package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/grove/internal/eventlog"
	"github.com/roach88/grove/internal/localstore"
	"github.com/roach88/grove/internal/migration"
)

// MigrateResult reports a migration run.
type MigrateResult struct {
	Migrated           bool   `json:"migrated"`
	Reason             string `json:"reason,omitempty"`
	JourneyCompletions int    `json:"journeyCompletions"`
	TopicExplorations  int    `json:"topicExplorations"`
	SproutCaptures     int    `json:"sproutCaptures"`
	SessionCount       int    `json:"sessionCount"`
	NewSessionID       string `json:"newSessionId,omitempty"`
}

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Upgrade legacy cumulative metrics to the event log",
		Long: `Read the legacy v2 cumulative metrics document from the database,
convert it into a version 3 event log, verify the conversion, and persist
the result under the event log key.

Refuses to overwrite an existing valid event log.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(rootOpts, cmd)
		},
	}
}

func runMigrate(opts *RootOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	store, err := localstore.Open(opts.DBPath)
	if err != nil {
		formatter.Error(ErrCodeStore, "failed to open database", err.Error())
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer store.Close()

	// An existing valid log wins; migration never clobbers it.
	if raw, ok, err := store.Get(ctx, eventlog.StorageKey); err == nil && ok {
		if _, parseErr := eventlog.Parse([]byte(raw)); parseErr == nil {
			return outputMigrate(opts, cmd, formatter, &MigrateResult{
				Migrated: false, Reason: "event log already present",
			})
		}
		formatter.VerboseLog("stored event log is invalid, proceeding with migration")
	}

	raw, ok, err := store.Get(ctx, migration.LegacyMetricsKey)
	if err != nil {
		formatter.Error(ErrCodeStore, "failed to read legacy metrics", err.Error())
		return WrapExitError(ExitCommandError, "failed to read legacy metrics", err)
	}
	if !ok {
		return outputMigrate(opts, cmd, formatter, &MigrateResult{
			Migrated: false, Reason: "no legacy metrics found",
		})
	}
	if !migration.IsCumulativeMetricsV2([]byte(raw)) {
		formatter.Error(ErrCodeMigrate, "stored legacy document is not v2 cumulative metrics", nil)
		return NewExitError(ExitFailure, "stored legacy document is not v2 cumulative metrics")
	}

	v2, err := migration.ParseLegacy([]byte(raw))
	if err != nil {
		formatter.Error(ErrCodeMigrate, "failed to parse legacy metrics", err.Error())
		return WrapExitError(ExitFailure, "failed to parse legacy metrics", err)
	}

	l := migration.FromCumulativeMetricsV2(v2, eventlog.UUIDSource)
	if !migration.Verify(v2, l) {
		formatter.Error(ErrCodeMigrate, "migration verification failed", nil)
		return NewExitError(ExitFailure, "migration verification failed")
	}

	data, err := l.Encode()
	if err != nil {
		formatter.Error(ErrCodeGeneric, "failed to encode migrated log", err.Error())
		return WrapExitError(ExitCommandError, "failed to encode migrated log", err)
	}
	if err := store.Set(ctx, eventlog.StorageKey, string(data)); err != nil {
		formatter.Error(ErrCodeStore, "failed to persist migrated log", err.Error())
		return WrapExitError(ExitCommandError, "failed to persist migrated log", err)
	}

	return outputMigrate(opts, cmd, formatter, &MigrateResult{
		Migrated:           true,
		JourneyCompletions: len(l.CumulativeEvents.JourneyCompletions),
		TopicExplorations:  len(l.CumulativeEvents.TopicExplorations),
		SproutCaptures:     len(l.CumulativeEvents.InsightCaptures),
		SessionCount:       l.SessionCount,
		NewSessionID:       l.CurrentSessionID,
	})
}

func outputMigrate(opts *RootOptions, cmd *cobra.Command, formatter *OutputFormatter, result *MigrateResult) error {
	if opts.Format == "json" {
		return formatter.Success(result)
	}
	out := cmd.OutOrStdout()
	if !result.Migrated {
		fmt.Fprintf(out, "nothing to migrate: %s\n", result.Reason)
		return nil
	}
	fmt.Fprintf(out, "migrated %d journeys, %d topics, %d sprouts (%d sessions)\n",
		result.JourneyCompletions, result.TopicExplorations,
		result.SproutCaptures, result.SessionCount)
	fmt.Fprintf(out, "new session: %s\n", result.NewSessionID)
	return nil
}
