// Package tools exposes configured providers as tools.
//
// It is organized into sub-packages:
//   - [github.com/germanamz/promptcall/pkg/tools/toolbox]: the Tool type, the ToolBox collection and AskTool, which wraps an invoker as an ask_<name> tool
//   - [github.com/germanamz/promptcall/pkg/tools/mcpserver]: an MCP server built on the official MCP Go SDK that serves a ToolBox over stdio
package tools
