package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuccessJSON(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "json", Writer: &buf}

	require.NoError(t, f.Success(map[string]string{"key": "value"}))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Nil(t, resp.Error)
	data := resp.Data.(map[string]any)
	assert.Equal(t, "value", data["key"])
}

func TestErrorJSON(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "json", Writer: &buf}

	require.NoError(t, f.Error(ErrCodeStore, "database locked", "retry later"))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeStore, resp.Error.Code)
	assert.Equal(t, "database locked", resp.Error.Message)
	assert.Equal(t, "retry later", resp.Error.Details)
}

func TestErrorText(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "text", Writer: &buf}

	require.NoError(t, f.Error(ErrCodeInput, "bad input", nil))
	assert.Equal(t, "Error [E101]: bad input\n", buf.String())
}

func TestVerboseLogRouting(t *testing.T) {
	var out, errOut bytes.Buffer
	f := &OutputFormatter{Format: "json", Writer: &out, ErrWriter: &errOut, Verbose: true}

	f.VerboseLog("loaded %d events", 3)
	assert.Empty(t, out.String())
	assert.Equal(t, "loaded 3 events\n", errOut.String())

	f.Verbose = false
	errOut.Reset()
	f.VerboseLog("suppressed")
	assert.Empty(t, errOut.String())
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "boom")))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))

	wrapped := WrapExitError(ExitCommandError, "outer", errors.New("inner"))
	assert.Equal(t, ExitCommandError, GetExitCode(wrapped))
	assert.Equal(t, "outer: inner", wrapped.Error())
	assert.EqualError(t, errors.Unwrap(wrapped), "inner")
}
