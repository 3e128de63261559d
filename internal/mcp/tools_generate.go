package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"pagebuilder/internal/block"
	"pagebuilder/internal/domain"
	"pagebuilder/internal/generate"
)

func (s *Server) registerGenerateTools() {
	s.mcp.AddTool(mcp.NewTool("generate_blocks",
		mcp.WithDescription("Generate blocks from a prompt and insert the validated batch into a page. With kind a single block is generated, otherwise a full page section list. Invalid candidates are reported and skipped."),
		mcp.WithString("prompt", mcp.Description("What to generate"), mcp.Required()),
		mcp.WithString("kind", mcp.Description("Block kind (optional)"), mcp.Enum(kindNames()...)),
		mcp.WithString("pageId", mcp.Description("Page ID (optional, defaults to active page)")),
		mcp.WithNumber("index", mcp.Description("Insert position (optional, appends)")),
	), s.handleGenerateBlocks)

	if s.grounding == nil {
		return
	}
	s.mcp.AddTool(mcp.NewTool("generate_from_rows",
		mcp.WithDescription("Generate blocks grounded on rows read from a database connection"),
		mcp.WithString("prompt", mcp.Description("What to generate"), mcp.Required()),
		mcp.WithString("connectionId", mcp.Description("Database connection ID"), mcp.Required()),
		mcp.WithString("query", mcp.Description("Read query selecting the grounding rows"), mcp.Required()),
		mcp.WithNumber("limit", mcp.Description("Maximum rows (default 50)")),
		mcp.WithString("pageId", mcp.Description("Page ID (optional, defaults to active page)")),
		mcp.WithNumber("index", mcp.Description("Insert position (optional, appends)")),
	), s.handleGenerateFromRows)
}

// generationReport is returned by the generation tools.
type generationReport struct {
	Inserted []blockSummary       `json:"inserted"`
	Rejected []generate.Rejection `json:"rejected,omitempty"`
	Blocks   []blockSummary       `json:"blocks"`
}

func report(p *domain.Page, res *generate.Result) generationReport {
	inserted := make([]blockSummary, 0, len(res.Blocks))
	ids := make(map[string]bool, len(res.Blocks))
	for _, b := range res.Blocks {
		ids[b.ID] = true
	}
	all := summarize(p)
	for _, b := range all {
		if ids[b.ID] {
			inserted = append(inserted, b)
		}
	}
	return generationReport{Inserted: inserted, Rejected: res.Rejected, Blocks: all}
}

func (s *Server) handleGenerateBlocks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	prompt, err := requireString(args, "prompt")
	if err != nil {
		return nil, err
	}
	pageID, err := s.resolvePageID(args)
	if err != nil {
		return nil, err
	}
	kind := block.Kind(req.GetString("kind", ""))
	p, res, err := s.pages.GenerateIntoPage(ctx, pageID, prompt, kind, getInt(args, "index", -1))
	if err != nil {
		return nil, err
	}
	return jsonResult(report(p, res))
}

func (s *Server) handleGenerateFromRows(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	prompt, err := requireString(args, "prompt")
	if err != nil {
		return nil, err
	}
	connID, err := requireString(args, "connectionId")
	if err != nil {
		return nil, err
	}
	query, err := requireString(args, "query")
	if err != nil {
		return nil, err
	}
	pageID, err := s.resolvePageID(args)
	if err != nil {
		return nil, err
	}
	rows, err := s.grounding.Rows(ctx, connID, query, getInt(args, "limit", 0))
	if err != nil {
		return nil, err
	}
	if len(rows.Records) == 0 {
		return nil, fmt.Errorf("query returned no rows to ground on")
	}
	p, res, err := s.pages.GenerateFromRowsIntoPage(ctx, pageID, prompt, rows.Records, getInt(args, "index", -1))
	if err != nil {
		return nil, err
	}
	return jsonResult(report(p, res))
}
