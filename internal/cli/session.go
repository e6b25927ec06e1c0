package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// SessionResult reports a session rotation.
type SessionResult struct {
	SessionID    string `json:"sessionId"`
	SessionCount int    `json:"sessionCount"`
}

// NewSessionCommand creates the session command group.
func NewSessionCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Session operations",
	}
	cmd.AddCommand(newSessionNewCommand(rootOpts))
	return cmd
}

func newSessionNewCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "new",
		Short: "Start a fresh session",
		Long: `Rotate the stored log to a new session: session events are cleared,
a fresh session id is generated, and the session counter increments.
Cumulative history is kept.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSessionNew(rootOpts, cmd)
		},
	}
}

func runSessionNew(opts *RootOptions, cmd *cobra.Command) error {
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

	sessionID := provider.StartNewSession(cmd.Context())
	result := &SessionResult{
		SessionID:    sessionID,
		SessionCount: provider.Log().SessionCount,
	}
	if opts.Format == "json" {
		return formatter.Success(result)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "started session %s (session #%d)\n",
		result.SessionID, result.SessionCount)
	return nil
}
