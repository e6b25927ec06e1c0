package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/grove/internal/canonical"
	"github.com/roach88/grove/internal/projection"
	"github.com/roach88/grove/internal/telemetry"
)

// InspectResult is the projection summary of the stored log.
type InspectResult struct {
	SessionID     string                         `json:"sessionId"`
	SessionCount  int                            `json:"sessionCount"`
	SessionEvents int                            `json:"sessionEvents"`
	Session       *projection.SessionState       `json:"session"`
	Context       *projection.ContextState       `json:"context"`
	Moment        *projection.MomentContext      `json:"moment"`
	Stream        *projection.StreamState        `json:"stream"`
	Telemetry     *telemetry.CumulativeMetricsV2 `json:"telemetry"`
	Computed      projection.Computed            `json:"computed"`
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect",
		Short: "Show the stored event log's projections",
		Long: `Load the event log from the database and print every projection:
session, context, moments, stream, and the legacy telemetry rendering.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(rootOpts, cmd)
		},
	}
}

func runInspect(opts *RootOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	provider, _, closeStore, err := openProvider(cmd.Context(), opts, formatter)
	if err != nil {
		formatter.Error(ErrCodeStore, err.Error(), nil)
		return err
	}
	defer closeStore()

	l := provider.Log()
	result := &InspectResult{
		SessionID:     l.CurrentSessionID,
		SessionCount:  l.SessionCount,
		SessionEvents: l.SessionEventCount(),
		Session:       provider.Session(),
		Context:       provider.ContextState(),
		Moment:        provider.MomentContext(),
		Stream:        provider.Stream(),
		Telemetry:     provider.Telemetry(),
		Computed:      projection.ComputedMetrics(l),
	}

	if opts.Format == "json" {
		return formatter.Success(result)
	}

	// Text mode prints the canonical JSON document, indented. Key order is
	// deterministic, so output is diffable across runs.
	data, err := canonical.MarshalIndent(result)
	if err != nil {
		formatter.Error(ErrCodeGeneric, "failed to render projections", err.Error())
		return WrapExitError(ExitCommandError, "failed to render projections", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
