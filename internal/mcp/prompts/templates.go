package prompts

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

const scopeTripSearchPrompt = "scope_trip_search"

type PromptTemplates struct {
	timezone string
}

func NewPromptTemplates(timezone string) *PromptTemplates {
	return &PromptTemplates{timezone: timezone}
}

func (p *PromptTemplates) ScopeTripSearchPrompt() mcp.Prompt {
	return mcp.NewPrompt(
		scopeTripSearchPrompt,
		mcp.WithPromptDescription("Scope a trip history question to the date range the user means"),
		mcp.WithArgument("message", mcp.ArgumentDescription("The user's chat message"), mcp.RequiredArgument()),
		mcp.WithArgument("client_timestamp", mcp.ArgumentDescription("The user's current time (RFC 3339)")),
	)
}

func (p *PromptTemplates) ScopeTripSearchHandler(_ context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	message := strings.TrimSpace(request.Params.Arguments["message"])
	if message == "" {
		return nil, fmt.Errorf("prompt %s: message argument is required", scopeTripSearchPrompt)
	}

	var b strings.Builder
	b.WriteString("Before searching the user's trips, call the resolve_date_context tool with the message below")
	if ts := strings.TrimSpace(request.Params.Arguments["client_timestamp"]); ts != "" {
		fmt.Fprintf(&b, " and client_timestamp %q", ts)
	}
	fmt.Fprintf(&b, ". Dates are interpreted in %s. ", p.timezone)
	b.WriteString("Filter trips to the returned startDate and endDate. If hasDateReference is false, say that you are showing today's trips.\n\n")
	fmt.Fprintf(&b, "Message:\n%s", message)

	return &mcp.GetPromptResult{
		Description: "Scope a trip search to the resolved date context",
		Messages: []mcp.PromptMessage{
			{
				Role:    mcp.RoleUser,
				Content: mcp.NewTextContent(b.String()),
			},
		},
	}, nil
}
