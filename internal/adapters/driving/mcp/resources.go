package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for threadrag resources.
	uriScheme = "threadrag://"
)

// sourceInfo is the JSON shape of a configured source.
type sourceInfo struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	Channel    string `json:"channel"`
	Collection string `json:"collection"`
}

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "sources",
		Name:        "sources",
		Description: "Configured conversation sources",
		MIMEType:    "application/json",
	}, s.handleSourcesResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "sources/{name}/channels",
		Name:        "source-channels",
		Description: "Channels, streams or repositories visible to a source",
		MIMEType:    "application/json",
	}, s.handleChannelsResource)
}

// handleSourcesResource returns the configured sources.
func (s *Server) handleSourcesResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	infos := []sourceInfo{}
	if s.ports.Sources != nil {
		for _, src := range s.ports.Sources.Sources() {
			infos = append(infos, sourceInfo{
				Name:       src.Name,
				Type:       src.Type.String(),
				Channel:    src.Channel,
				Collection: src.CollectionName(),
			})
		}
	}

	return jsonResource(req.Params.URI, infos)
}

// handleChannelsResource lists the channels a source's connector can see.
func (s *Server) handleChannelsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Sources == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	name := extractSourceName(req.Params.URI)
	if name == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	channels, err := s.ports.Sources.Channels(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("listing channels: %w", err)
	}
	if channels == nil {
		channels = []string{}
	}

	return jsonResource(req.Params.URI, channels)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling resource: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractSourceName extracts the source name from threadrag://sources/{name}/channels.
func extractSourceName(uri string) string {
	const prefix = uriScheme + "sources/"
	const suffix = "/channels"

	if !strings.HasPrefix(uri, prefix) || !strings.HasSuffix(uri, suffix) {
		return ""
	}
	name := strings.TrimSuffix(strings.TrimPrefix(uri, prefix), suffix)
	if name == "" || strings.Contains(name, "/") {
		return ""
	}
	return name
}
