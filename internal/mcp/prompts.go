package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerPrompts() {
	s.mcp.AddPrompt(mcp.NewPrompt("landing_page",
		mcp.WithPromptDescription("Guide through building and publishing a storefront landing page"),
		mcp.WithArgument("topic",
			mcp.ArgumentDescription("Campaign or theme of the page"),
			mcp.RequiredArgument(),
		),
	), s.handleLandingPagePrompt)

	s.mcp.AddPrompt(mcp.NewPrompt("grounded_section",
		mcp.WithPromptDescription("Generate a page section grounded on rows from a database connection"),
		mcp.WithArgument("connectionId",
			mcp.ArgumentDescription("Database connection to read from"),
			mcp.RequiredArgument(),
		),
		mcp.WithArgument("goal",
			mcp.ArgumentDescription("What the section should show"),
			mcp.RequiredArgument(),
		),
	), s.handleGroundedSectionPrompt)
}

func userPrompt(description, text string) *mcp.GetPromptResult {
	return &mcp.GetPromptResult{
		Description: description,
		Messages: []mcp.PromptMessage{
			{Role: mcp.RoleUser, Content: mcp.TextContent{Type: "text", Text: text}},
		},
	}
}

func (s *Server) handleLandingPagePrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	topic := req.Params.Arguments["topic"]
	return userPrompt(fmt.Sprintf("Build a landing page for: %s", topic), fmt.Sprintf(`Build a landing page about "%s". Follow these steps:

1. Use create_page with fromLayout=true so the page starts from the default layout.
2. Call list_block_kinds to see the available blocks and their fields.
3. Use generate_blocks with a prompt about "%s" to draft a hero and supporting text, or add_block + update_block to write them by hand.
4. Add a product-row block and set its category to one returned by curate_categories.
5. Check the result with render_page, fix any block with update_block, then publish_page.

Keep the page short: one hero, at most two text or grid sections, one product row.`, topic, topic)), nil
}

func (s *Server) handleGroundedSectionPrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	connID := req.Params.Arguments["connectionId"]
	goal := req.Params.Arguments["goal"]
	return userPrompt(fmt.Sprintf("Grounded section from %s", connID), fmt.Sprintf(`Create a page section that %s, using only facts from connection %q.

1. Call introspect_database with connectionId=%q to find the relevant table.
2. Use query_rows to check that your query returns the rows you expect (keep it under 20 rows).
3. Call generate_from_rows with the same query and a prompt describing the section.
4. Review the inserted blocks in the tool result; remove any that state facts not present in the rows.`, goal, connID, connID)), nil
}
