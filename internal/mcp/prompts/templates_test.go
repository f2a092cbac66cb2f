package prompts

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScopeTripSearchPrompt_Definition(t *testing.T) {
	prompt := NewPromptTemplates("Africa/Lagos").ScopeTripSearchPrompt()

	assert.Equal(t, "scope_trip_search", prompt.Name)
	require.Len(t, prompt.Arguments, 2)
	assert.True(t, prompt.Arguments[0].Required)
	assert.False(t, prompt.Arguments[1].Required)
}

func TestScopeTripSearchHandler(t *testing.T) {
	var request mcp.GetPromptRequest
	request.Params.Name = "scope_trip_search"
	request.Params.Arguments = map[string]string{
		"message":          "trips from last Tuesday",
		"client_timestamp": "2024-03-14T10:00:00+01:00",
	}

	result, err := NewPromptTemplates("Africa/Lagos").ScopeTripSearchHandler(context.Background(), request)
	require.NoError(t, err)
	require.Len(t, result.Messages, 1)
	assert.Equal(t, mcp.RoleUser, result.Messages[0].Role)

	text, ok := mcp.AsTextContent(result.Messages[0].Content)
	require.True(t, ok)
	assert.Contains(t, text.Text, "resolve_date_context")
	assert.Contains(t, text.Text, `"2024-03-14T10:00:00+01:00"`)
	assert.Contains(t, text.Text, "Africa/Lagos")
	assert.Contains(t, text.Text, "trips from last Tuesday")
}

func TestScopeTripSearchHandler_RequiresMessage(t *testing.T) {
	var request mcp.GetPromptRequest
	request.Params.Arguments = map[string]string{"message": "  "}

	_, err := NewPromptTemplates("Africa/Lagos").ScopeTripSearchHandler(context.Background(), request)
	assert.Error(t, err)
}
