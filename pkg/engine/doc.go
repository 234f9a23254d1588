// Package engine is the composition root that turns a YAML configuration into
// named invokers. Frontends (the CLI and the MCP server) look providers up by
// name through Engine and never construct provider packages directly.
package engine
