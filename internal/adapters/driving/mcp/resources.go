package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/sercha-view/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for stored objects.
	uriScheme = "sercha-view://"
)

// objectInfo is the JSON shape of a stored source object.
type objectInfo struct {
	Name         string    `json:"name"`
	Size         int64     `json:"size"`
	ContentType  string    `json:"content_type"`
	FileType     string    `json:"file_type"`
	LastModified time.Time `json:"last_modified"`
	ViewURL      string    `json:"view_url,omitempty"`
}

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "objects",
		Name:        "objects",
		Description: "Source documents in the store",
		MIMEType:    "application/json",
	}, s.handleObjectsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "objects/{name}",
		Name:        "object",
		Description: "Metadata and a view link for one source document",
		MIMEType:    "application/json",
	}, s.handleObjectResource)
}

// handleObjectsResource lists source objects. Derived artifacts are hidden.
func (s *Server) handleObjectsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Store == nil {
		return jsonResult(req.Params.URI, []objectInfo{})
	}

	all, err := s.ports.Store.List(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("listing objects: %w", err)
	}

	infos := make([]objectInfo, 0, len(all))
	for _, info := range all {
		if domain.IsDerivedName(info.Name) {
			continue
		}
		infos = append(infos, toObjectInfo(info))
	}
	return jsonResult(req.Params.URI, infos)
}

// handleObjectResource describes one source object.
func (s *Server) handleObjectResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	name := extractObjectName(req.Params.URI)
	if name == "" || s.ports.Store == nil || domain.IsDerivedName(name) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	info, err := s.ports.Store.Properties(ctx, name)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("reading object: %w", err)
	}

	out := toObjectInfo(*info)
	if link, err := s.ports.Search.ViewURL(ctx, name); err == nil {
		out.ViewURL = link
	}
	return jsonResult(req.Params.URI, out)
}

func toObjectInfo(info domain.ObjectInfo) objectInfo {
	return objectInfo{
		Name:         info.Name,
		Size:         info.Size,
		ContentType:  info.ContentType,
		FileType:     string(domain.FileTypeFromName(info.Name)),
		LastModified: info.LastModified.UTC(),
	}
}

func jsonResult(uri string, v any) (*mcp.ReadResourceResult, error) {
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

// extractObjectName extracts the object name from a URI like sercha-view://objects/{name}.
// Names containing slashes arrive percent-encoded.
func extractObjectName(uri string) string {
	const prefix = uriScheme + "objects/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	name, err := url.PathUnescape(strings.TrimPrefix(uri, prefix))
	if err != nil {
		return ""
	}
	return name
}
