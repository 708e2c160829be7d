// Package mcp exposes an agent's mailbox as Model Context Protocol tools,
// so an AI agent can send and inspect messages without a shell.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aki/agentbox/internal/core/logger"
	"github.com/aki/agentbox/internal/core/mailbox"
)

// Options configures the server
type Options struct {
	Layout  mailbox.Layout
	AgentID string
	Version string
	Logger  logger.Logger
}

// Server implements the MCP server using mcp-go
type Server struct {
	mcpServer *server.MCPServer
	agentID   string
	sender    *mailbox.Sender
	announcer *mailbox.Announcer
	collector *mailbox.Collector
	logger    logger.Logger
}

// NewServer creates a mailbox MCP server for one agent
func NewServer(opts Options) (*Server, error) {
	if err := mailbox.ValidateAgentID(opts.AgentID); err != nil {
		return nil, err
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}

	mcpServer := server.NewMCPServer(
		"agentbox",
		opts.Version,
		server.WithLogging(),
	)

	s := &Server{
		mcpServer: mcpServer,
		agentID:   opts.AgentID,
		sender:    mailbox.NewSender(opts.Layout, opts.AgentID),
		announcer: mailbox.NewAnnouncer(opts.Layout, opts.AgentID, log),
		collector: mailbox.NewCollector(opts.Layout.Home(opts.AgentID), log),
		logger:    log,
	}

	s.registerTools()

	return s, nil
}

// ServeStdio serves MCP over stdin/stdout until the client disconnects
func (s *Server) ServeStdio() error {
	s.logger.Info("serving mailbox tools over stdio")
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("mailbox_send",
		mcp.WithDescription("Send a Markdown message to another agent's mailbox"),
		mcp.WithString("to",
			mcp.Description("Receiving agent id"),
			mcp.Required(),
		),
		mcp.WithString("body",
			mcp.Description("Message content (Markdown)"),
			mcp.Required(),
		),
		mcp.WithString("name",
			mcp.Description("Short name used in the file name (optional)"),
		),
	), s.handleSend)

	s.mcpServer.AddTool(mcp.NewTool("mailbox_pending",
		mcp.WithDescription("List messages waiting in this agent's mailbox, oldest first"),
	), s.handlePending)

	s.mcpServer.AddTool(mcp.NewTool("mailbox_peers",
		mcp.WithDescription("List agents that share the message root"),
	), s.handlePeers)

	s.mcpServer.AddTool(mcp.NewTool("mailbox_read",
		mcp.WithDescription("Read a pending message without archiving it"),
		mcp.WithString("path",
			mcp.Description("Message path as returned by mailbox_pending"),
			mcp.Required(),
		),
	), s.handleRead)
}

// Tool handlers

func (s *Server) handleSend(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	to, ok := args["to"].(string)
	if !ok || to == "" {
		return nil, InvalidParameterError("to", "agent id")
	}
	body, ok := args["body"].(string)
	if !ok {
		return nil, InvalidParameterError("body", "string")
	}
	name, _ := args["name"].(string)

	path, err := s.sender.Send(to, name, body)
	if err != nil {
		if errors.Is(err, mailbox.ErrUnknownAgent) {
			return nil, UnknownAgentError(to)
		}
		return nil, fmt.Errorf("failed to send message: %w", err)
	}
	s.logger.Info("message sent", "to", to, "path", path)

	return jsonResult(map[string]string{"to": to, "path": path})
}

func (s *Server) handlePending(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	messages := s.collector.Collect(nil)
	mailbox.SortByArrival(messages)
	if messages == nil {
		messages = []mailbox.Message{}
	}
	return jsonResult(messages)
}

// PeerInfo describes a peer agent
type PeerInfo struct {
	ID        string `json:"id"`
	Footprint bool   `json:"footprint"`
}

func (s *Server) handlePeers(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	peers, err := s.announcer.Peers()
	if err != nil {
		return nil, fmt.Errorf("failed to list peers: %w", err)
	}

	infos := make([]PeerInfo, 0, len(peers))
	for _, peer := range peers {
		infos = append(infos, PeerInfo{ID: peer, Footprint: s.announcer.HasFootprint(peer)})
	}
	return jsonResult(infos)
}

func (s *Server) handleRead(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	path, ok := args["path"].(string)
	if !ok || path == "" {
		return nil, InvalidParameterError("path", "message path")
	}

	delivery, err := s.collector.Read(path)
	if err != nil {
		if errors.Is(err, mailbox.ErrNotPending) {
			return nil, MessageNotFoundError(path)
		}
		return nil, err
	}
	return jsonResult(delivery)
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{
				Type: "text",
				Text: string(data),
			},
		},
	}, nil
}
