package cmd

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripline/server/internal/domain/datecontext"
)

// withoutModel keeps the resolver off the network whatever the host environment holds.
func withoutModel(t *testing.T) {
	t.Helper()
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("DATECONTEXT_TIMEZONE", "")
	t.Setenv("LOG_LEVEL", "error")
}

func runResolve(t *testing.T, args ...string) (datecontext.DateContext, string, error) {
	t.Helper()
	root := newRootCommand()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append([]string{"resolve"}, args...))

	err := root.Execute()
	var dc datecontext.DateContext
	if err == nil {
		require.NoError(t, json.Unmarshal(stdout.Bytes(), &dc), stdout.String())
	}
	return dc, stderr.String(), err
}

func TestResolveCommand_PastWeeks(t *testing.T) {
	withoutModel(t)

	dc, _, err := runResolve(t, "--at", "2024-03-13T10:00:00Z", "trips", "in", "the", "past", "2", "weeks")
	require.NoError(t, err)

	assert.True(t, dc.HasDateReference)
	assert.Equal(t, "Africa/Lagos", dc.Timezone)
	assert.True(t, dc.StartDate.Before(dc.EndDate))
	assert.False(t, dc.EndDate.After(time.Date(2024, 3, 13, 23, 0, 0, 0, time.UTC)))
}

func TestResolveCommand_NoDateReference(t *testing.T) {
	withoutModel(t)

	dc, _, err := runResolve(t, "--at", "2024-03-13T10:00:00Z", "how much have I spent on rides")
	require.NoError(t, err)

	assert.False(t, dc.HasDateReference)
	assert.Equal(t, "Africa/Lagos", dc.Timezone)
	assert.False(t, dc.StartDate.After(dc.EndDate))
}

func TestResolveCommand_Errors(t *testing.T) {
	withoutModel(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "no message", args: nil, want: "requires at least 1 arg"},
		{name: "blank message", args: []string{"  "}, want: "must not be blank"},
		{name: "bad timestamp", args: []string{"--at", "yesterday", "rides last week"}, want: "invalid --at"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := runResolve(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
