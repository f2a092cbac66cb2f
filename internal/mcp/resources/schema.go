package resources

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/tripline/server/internal/domain/datecontext"
)

const (
	schemaMIMEType     = "application/json"
	serverInfoResource = "info://server"
	configResource     = "datecontext://config"
)

type ServerCapabilities struct {
	Tools     bool `json:"tools"`
	Resources bool `json:"resources"`
	Prompts   bool `json:"prompts"`
}

type ServerInfo struct {
	Name         string             `json:"name"`
	Version      string             `json:"version,omitempty"`
	Capabilities ServerCapabilities `json:"capabilities"`
	Transport    string             `json:"transport,omitempty"`
}

// ResolverConfig describes how date contexts are interpreted.
type ResolverConfig struct {
	Timezone string               `json:"timezone"`
	Periods  []datecontext.Period `json:"periods"`
	Format   string               `json:"instant_format"`
}

// SchemaResources serves read-only metadata about the server and resolver.
// Both documents are rendered once and cached.
type SchemaResources struct {
	info     ServerInfo
	timezone string

	infoOnce sync.Once
	infoJSON string
	infoErr  error

	configOnce sync.Once
	configJSON string
	configErr  error
}

func NewSchemaResources(info ServerInfo, timezone string) *SchemaResources {
	if timezone == "" {
		timezone = datecontext.DefaultTimezone
	}
	return &SchemaResources{info: info, timezone: timezone}
}

func (r *SchemaResources) InfoResource() mcp.Resource {
	return mcp.NewResource(
		serverInfoResource,
		"Server Info",
		mcp.WithResourceDescription("MCP server metadata and capabilities"),
		mcp.WithMIMEType(schemaMIMEType),
	)
}

func (r *SchemaResources) ConfigResource() mcp.Resource {
	return mcp.NewResource(
		configResource,
		"Date Context Configuration",
		mcp.WithResourceDescription("Timezone and period vocabulary used when resolving date contexts"),
		mcp.WithMIMEType(schemaMIMEType),
	)
}

func (r *SchemaResources) InfoReadHandler() func(context.Context, mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return func(_ context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		r.infoOnce.Do(func() {
			r.infoJSON, r.infoErr = marshal(r.info)
		})
		if r.infoErr != nil {
			return nil, r.infoErr
		}
		return textContents(request, serverInfoResource, r.infoJSON), nil
	}
}

func (r *SchemaResources) ConfigReadHandler() func(context.Context, mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return func(_ context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		r.configOnce.Do(func() {
			r.configJSON, r.configErr = marshal(ResolverConfig{
				Timezone: r.timezone,
				Periods: []datecontext.Period{
					datecontext.PeriodDay,
					datecontext.PeriodWeek,
					datecontext.PeriodMonth,
					datecontext.PeriodYear,
					datecontext.PeriodRange,
					datecontext.PeriodNone,
				},
				Format: "2006-01-02T15:04:05.000Z",
			})
		})
		if r.configErr != nil {
			return nil, r.configErr
		}
		return textContents(request, configResource, r.configJSON), nil
	}
}

func marshal(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal resource: %w", err)
	}
	return string(data), nil
}

func textContents(request mcp.ReadResourceRequest, uri, text string) []mcp.ResourceContents {
	if request.Params.URI != "" {
		uri = request.Params.URI
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: schemaMIMEType,
			Text:     text,
		},
	}
}
