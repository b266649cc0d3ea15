// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Mindvault card search tools for LLM integration via stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/mindvault/internal/apperr"
	"github.com/starford/mindvault/internal/cardservice"
	"github.com/starford/mindvault/internal/logging"
	"github.com/starford/mindvault/internal/search"
)

const (
	querySyntaxURI     = "mindvault://query-syntax"
	defaultResultLimit = 50
	snippetRunes       = 160
)

// Option configures a Server.
type Option func(*Server)

// WithResultLimit caps how many cards a search tool returns. Counts and ids
// always cover the full match set.
func WithResultLimit(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.limit = n
		}
	}
}

// WithLogger sets the logger. MCP runs over stdio, so it must not write to
// stdout.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// Server wraps the MCP server with Mindvault tools.
type Server struct {
	mcp    *server.MCPServer
	svc    *cardservice.Service
	limit  int
	logger *slog.Logger
}

// New creates a new MCP server with all tools registered.
func New(svc *cardservice.Service, version string, opts ...Option) *Server {
	s := &Server{svc: svc, limit: defaultResultLimit}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.Component(s.logger, "mcp")

	s.mcp = server.NewMCPServer(
		"Mindvault",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_cards",
		mcp.WithDescription("Filter workspace cards with a boolean card query. "+
			"Read get_query_syntax or the "+querySyntaxURI+" resource for the grammar."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Card query, e.g. `tag:thesis NOT draft`")),
		mcp.WithString("group", mcp.Description("Optional group id; restricts the search to its cards")),
		mcp.WithString("include_tags", mcp.Description("Optional comma separated tags; cards need one of them")),
		mcp.WithString("exclude_tags", mcp.Description("Optional comma separated tags; cards with any are hidden")),
	), s.searchCards)

	s.mcp.AddTool(mcp.NewTool("find_group_candidates",
		mcp.WithDescription("Find cards that are NOT yet in a group and match a card query."),
		mcp.WithString("group", mcp.Required(), mcp.Description("Group id")),
		mcp.WithString("query", mcp.Required(), mcp.Description("Card query")),
	), s.findGroupCandidates)

	s.mcp.AddTool(mcp.NewTool("add_to_group",
		mcp.WithDescription("Add cards to a group, usually ids returned by find_group_candidates."),
		mcp.WithString("group", mcp.Required(), mcp.Description("Group id")),
		mcp.WithArray("ids", mcp.Required(), mcp.Description("Card ids"), mcp.Items(map[string]any{"type": "string"})),
	), s.addToGroup)

	s.mcp.AddTool(mcp.NewTool("read_card",
		mcp.WithDescription("Read one card with all its fields."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Card id")),
	), s.readCard)

	s.mcp.AddTool(mcp.NewTool("list_groups",
		mcp.WithDescription("List groups with their member card ids."),
	), s.listGroups)

	s.mcp.AddTool(mcp.NewTool("get_query_syntax",
		mcp.WithDescription("Returns the card query syntax: fields, aliases, operators and date forms."),
	), s.getQuerySyntax)

	s.mcp.AddResource(
		mcp.NewResource(querySyntaxURI, "Card Query Syntax",
			mcp.WithResourceDescription("Grammar of the boolean card query language."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readQuerySyntaxResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

type cardSummary struct {
	ID        string   `json:"id"`
	Title     string   `json:"title,omitempty"`
	Type      string   `json:"type"`
	Tags      []string `json:"tags"`
	CreatedAt string   `json:"created_at,omitempty"`
	Snippet   string   `json:"snippet,omitempty"`
}

type searchOutput struct {
	Count     int           `json:"count"`
	IDs       []string      `json:"ids"`
	Cards     []cardSummary `json:"cards"`
	Truncated bool          `json:"truncated,omitempty"`
}

func (s *Server) summarize(res search.Result) searchOutput {
	out := searchOutput{Count: res.Count, IDs: res.IDs, Cards: []cardSummary{}}
	for i, c := range res.Cards {
		if i == s.limit {
			out.Truncated = true
			break
		}
		out.Cards = append(out.Cards, cardSummary{
			ID:        c.ID,
			Title:     c.Title,
			Type:      c.Type,
			Tags:      c.Tags,
			CreatedAt: c.CreatedAt,
			Snippet:   snippet(c.Content),
		})
	}
	return out
}

func snippet(content string) string {
	content = strings.Join(strings.Fields(content), " ")
	r := []rune(content)
	if len(r) <= snippetRunes {
		return content
	}
	return string(r[:snippetRunes]) + "…"
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) toolError(tool string, err error) *mcp.CallToolResult {
	if errors.Is(err, apperr.ErrNotFound) {
		return mcp.NewToolResultError("not found")
	}
	if errors.Is(err, apperr.ErrInvalidInput) {
		return mcp.NewToolResultError(err.Error())
	}
	s.logger.Error("tool failed", slog.String("tool", tool), slog.String("error", err.Error()))
	return mcp.NewToolResultError(fmt.Sprintf("%s failed", tool))
}

func (s *Server) searchCards(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	tags := search.TagFilter{
		Include: search.ParseTagList(req.GetString("include_tags", "")),
		Exclude: search.ParseTagList(req.GetString("exclude_tags", "")),
	}
	res, err := s.svc.Search(ctx, query, req.GetString("group", ""), tags)
	if err != nil {
		return s.toolError("search_cards", err), nil
	}
	return jsonResult(s.summarize(res))
}

func (s *Server) findGroupCandidates(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	group, err := req.RequireString("group")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.svc.SearchOutside(ctx, query, group)
	if err != nil {
		return s.toolError("find_group_candidates", err), nil
	}
	return jsonResult(s.summarize(res))
}

func (s *Server) addToGroup(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	group, err := req.RequireString("group")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	ids, err := req.RequireStringSlice("ids")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	g, err := s.svc.AddCards(ctx, group, ids)
	if err != nil {
		return s.toolError("add_to_group", err), nil
	}
	return jsonResult(g)
}

func (s *Server) readCard(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	c, err := s.svc.GetCard(ctx, id)
	if err != nil {
		return s.toolError("read_card", err), nil
	}
	return jsonResult(c)
}

func (s *Server) listGroups(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	groups, err := s.svc.ListGroups(ctx)
	if err != nil {
		return s.toolError("list_groups", err), nil
	}
	if len(groups) == 0 {
		return mcp.NewToolResultText("no groups"), nil
	}
	return jsonResult(groups)
}

func (s *Server) getQuerySyntax(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(QuerySyntax), nil
}

func (s *Server) readQuerySyntaxResource(context.Context, mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      querySyntaxURI,
			MIMEType: "text/markdown",
			Text:     QuerySyntax,
		},
	}, nil
}

