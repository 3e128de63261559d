package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

const (
	pagesURI       = "pages://list"
	pageURIPrefix  = "pages://page/"
	pageHTMLSuffix = "/html"
)

func (s *Server) registerResources() {
	// ── pages://list ───────────────────────────────────
	s.mcp.AddResource(mcp.NewResource(
		pagesURI,
		"All Pages",
		mcp.WithMIMEType("application/json"),
	), s.handlePagesResource)

	// ── pages://page/{pageId} ──────────────────────────
	s.mcp.AddResourceTemplate(
		mcp.NewResourceTemplate(
			pageURIPrefix+"{pageId}",
			"Page with Blocks",
		),
		s.handlePageResource,
	)

	// ── pages://page/{pageId}/html ─────────────────────
	s.mcp.AddResourceTemplate(
		mcp.NewResourceTemplate(
			pageURIPrefix+"{pageId}"+pageHTMLSuffix,
			"Rendered Page",
		),
		s.handlePageResource,
	)
}

func (s *Server) handlePagesResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	pages, err := s.pages.ListPages()
	if err != nil {
		return nil, err
	}
	summaries := make([]pageSummary, len(pages))
	for i, p := range pages {
		summaries[i] = pageSummary{ID: p.ID, Title: p.Title, Slug: p.Slug, Status: string(p.Status), Blocks: len(p.Blocks)}
	}
	data, err := json.MarshalIndent(summaries, "", "  ")
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{URI: pagesURI, MIMEType: "application/json", Text: string(data)},
	}, nil
}

func (s *Server) handlePageResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := req.Params.URI
	pageID, asHTML := parsePageURI(uri)
	if pageID == "" {
		return nil, fmt.Errorf("could not extract pageId from URI: %s", uri)
	}

	p, err := s.pages.GetPage(pageID)
	if err != nil {
		return nil, err
	}

	if asHTML {
		html, err := s.renderHTML(ctx, p)
		if err != nil {
			return nil, err
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{URI: uri, MIMEType: "text/html", Text: html},
		}, nil
	}

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{URI: uri, MIMEType: "application/json", Text: string(data)},
	}, nil
}

// parsePageURI extracts the page id from "pages://page/{id}" or
// "pages://page/{id}/html".
func parsePageURI(uri string) (id string, asHTML bool) {
	rest, ok := strings.CutPrefix(uri, pageURIPrefix)
	if !ok {
		return "", false
	}
	if trimmed, ok := strings.CutSuffix(rest, pageHTMLSuffix); ok {
		rest, asHTML = trimmed, true
	}
	if rest == "" || strings.Contains(rest, "/") {
		return "", false
	}
	return rest, asHTML
}
