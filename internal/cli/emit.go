package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/grove/internal/event"
)

// EmitResult reports a successful append.
type EmitResult struct {
	Type          string `json:"type"`
	SessionID     string `json:"sessionId"`
	Timestamp     int64  `json:"timestamp"`
	SessionEvents int    `json:"sessionEvents"`
}

// NewEmitCommand creates the emit command.
func NewEmitCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "emit <event-file>",
		Short: "Validate and append an event to the log",
		Long: `Read an event JSON document, validate it against the event schema, and
append it to the stored log. Use "-" to read from stdin.

Envelope fields (fieldId, timestamp, sessionId) may be omitted; missing
ones are stamped from the current log and clock.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEmit(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runEmit(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	raw, err := readEventInput(path, cmd.InOrStdin())
	if err != nil {
		formatter.Error(ErrCodeInput, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to read event", err)
	}

	provider, _, closeStore, err := openProvider(cmd.Context(), opts, formatter)
	if err != nil {
		formatter.Error(ErrCodeStore, err.Error(), nil)
		return err
	}
	defer closeStore()

	ev, err := decodeWithEnvelope(raw, provider)
	if err != nil {
		formatter.Error(errCodeFor(err), err.Error(), nil)
		return WrapExitError(ExitFailure, "event rejected", err)
	}

	if err := provider.Dispatch(cmd.Context(), ev); err != nil {
		formatter.Error(errCodeFor(err), err.Error(), nil)
		return WrapExitError(ExitFailure, "event rejected", err)
	}

	meta := ev.Meta()
	result := &EmitResult{
		Type:          string(ev.Kind()),
		SessionID:     meta.SessionID,
		Timestamp:     meta.Timestamp,
		SessionEvents: provider.Log().SessionEventCount(),
	}
	if opts.Format == "json" {
		return formatter.Success(result)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "appended %s to session %s (%d session events)\n",
		result.Type, result.SessionID, result.SessionEvents)
	return nil
}

func readEventInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}

// decodeWithEnvelope fills in absent envelope fields from the provider
// before decoding, so callers can supply just the variant payload.
func decodeWithEnvelope(raw []byte, provider interface {
	Envelope(t event.Type) event.Envelope
}) (event.Event, error) {
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, &event.ValidationError{
			Field: "(root)", Message: "malformed JSON", Code: event.ErrMalformedJSON,
		}
	}

	typeName, _ := payload["type"].(string)
	if typeName == "" {
		return nil, &event.ValidationError{
			Field: "type", Message: "missing event type", Code: event.ErrUnknownType,
		}
	}

	env := provider.Envelope(event.Type(typeName))
	if _, ok := payload["fieldId"]; !ok {
		payload["fieldId"] = env.FieldID
	}
	if _, ok := payload["timestamp"]; !ok {
		payload["timestamp"] = env.Timestamp
	}
	if _, ok := payload["sessionId"]; !ok {
		payload["sessionId"] = env.SessionID
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("re-encode event: %w", err)
	}
	return event.Decode(data)
}

// errCodeFor maps an error to a CLI error code, surfacing the event
// package's schema codes directly.
func errCodeFor(err error) string {
	var verr *event.ValidationError
	if errors.As(err, &verr) {
		return verr.Code
	}
	return ErrCodeGeneric
}
