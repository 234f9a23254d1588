package mcpserver

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"

	"github.com/germanamz/promptcall/pkg/tools/toolbox"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// MCPServer serves tools over the MCP protocol using the official MCP Go SDK.
type MCPServer struct {
	server *mcp.Server
	log    *slog.Logger
	names  []string
}

// New creates a new MCPServer with the given name and version. A nil logger
// uses slog.Default.
func New(name, version string, logger *slog.Logger) *MCPServer {
	if logger == nil {
		logger = slog.Default()
	}

	server := mcp.NewServer(&mcp.Implementation{
		Name:    name,
		Version: version,
	}, nil)

	return &MCPServer{server: server, log: logger}
}

// Register adds tools to the server.
func (s *MCPServer) Register(tools ...toolbox.Tool) {
	for _, t := range tools {
		s.server.AddTool(toSDKTool(t), s.toSDKHandler(t))
		s.names = append(s.names, t.Name)
	}
}

// Mount registers every tool in tb.
func (s *MCPServer) Mount(tb *toolbox.ToolBox) {
	s.Register(tb.Tools()...)
}

// ToolNames returns the registered tool names in registration order.
func (s *MCPServer) ToolNames() []string {
	return append([]string(nil), s.names...)
}

// Serve reads requests from in and writes responses to out. It blocks until
// ctx is cancelled or the transport closes.
func (s *MCPServer) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	transport := &mcp.IOTransport{
		Reader: io.NopCloser(in),
		Writer: nopWriteCloser{out},
	}

	return s.run(ctx, transport)
}

func (s *MCPServer) run(ctx context.Context, transport mcp.Transport) error {
	return s.server.Run(ctx, transport)
}

func toSDKTool(t toolbox.Tool) *mcp.Tool {
	return &mcp.Tool{
		Name:        t.Name,
		Description: t.Description,
		InputSchema: t.InputSchema,
	}
}

// toSDKHandler adapts a tool handler. Handler errors become IsError results so
// the client sees them as tool output, not protocol failures.
func (s *MCPServer) toSDKHandler(t toolbox.Tool) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := req.Params.Arguments
		if args == nil {
			args = json.RawMessage("{}")
		}

		result, err := t.Handler(ctx, args)
		if err != nil {
			s.log.WarnContext(ctx, "tool call failed", "tool", t.Name, "error", err)
			return &mcp.CallToolResult{
				Content: []mcp.Content{&mcp.TextContent{Text: err.Error()}},
				IsError: true,
			}, nil
		}

		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: result}},
		}, nil
	}
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
