package tools

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/tripline/server/internal/domain/datecontext"
)

const (
	ResolveDateContextName = "resolve_date_context"
	maxMessageRunes        = 4000
)

// Resolver resolves the date context of a chat message.
type Resolver interface {
	Resolve(ctx context.Context, message string, clientTimestamp time.Time) datecontext.DateContext
}

// DateContextTools exposes the resolver to MCP clients.
type DateContextTools struct {
	resolver Resolver
}

func NewDateContextTools(resolver Resolver) *DateContextTools {
	return &DateContextTools{resolver: resolver}
}

// ResolveDateContextTool returns the tool definition for resolve_date_context.
func (t *DateContextTools) ResolveDateContextTool() mcp.Tool {
	return mcp.Tool{
		Name: ResolveDateContextName,
		Description: "Resolve the date or date range a chat message refers to (for example \"last Tuesday\" or \"past 3 days\"). " +
			"Returns start and end instants in UTC, the period kind, a readable label, the service timezone and a confidence score. " +
			"Messages without a date reference resolve to today.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"message": map[string]interface{}{
					"type":        "string",
					"description": "The user's chat message",
				},
				"client_timestamp": map[string]interface{}{
					"type":        "string",
					"description": "The user's current time (RFC 3339). Defaults to the server clock.",
				},
			},
			Required: []string{"message"},
		},
	}
}

// ResolveDateContextHandler handles the resolve_date_context tool call.
func (t *DateContextTools) ResolveDateContextHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if t == nil || t.resolver == nil {
		return mcp.NewToolResultError("date context resolver not configured"), nil
	}

	var args struct {
		Message         string `json:"message"`
		ClientTimestamp string `json:"client_timestamp"`
	}
	if err := decodeArguments(request, &args); err != nil {
		return mcp.NewToolResultErrorFromErr("invalid arguments", err), nil
	}

	if strings.TrimSpace(args.Message) == "" {
		return mcp.NewToolResultError("message is required"), nil
	}
	if utf8.RuneCountInString(args.Message) > maxMessageRunes {
		return mcp.NewToolResultError("message must be at most 4000 characters"), nil
	}

	var clientTimestamp time.Time
	if ts := strings.TrimSpace(args.ClientTimestamp); ts != "" {
		parsed, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return mcp.NewToolResultErrorFromErr("client_timestamp must be RFC 3339", err), nil
		}
		clientTimestamp = parsed
	}

	return toolResultJSON(t.resolver.Resolve(ctx, args.Message, clientTimestamp))
}
