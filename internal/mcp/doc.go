// Package mcp probes local MCP (Model Context Protocol) servers over stdio.
//
// Every request launches a fresh server process: the request is written to
// the process's stdin as one JSON-RPC line, stdin is closed, and the process
// is expected to print its response and exit. There is no initialize
// handshake and no persistent session. A process that outlives its timeout
// is killed.
//
// # Server Profiles
//
// A [Server] holds the command line and environment for a server:
//
//	server := &mcp.Server{
//	    Name:          "zen",
//	    Command:       "npx",
//	    Args:          []string{"zen-mcp-server-199bio"},
//	    Env:           map[string]string{"GEMINI_API_KEY": "${GEMINI_API_KEY}"},
//	    DefaultModel:  "auto",
//	    DisabledTools: []string{"analyze", "refactor"},
//	}
//
// Secrets are referenced from the parent environment with ${VAR} and are
// expanded only into the child's environment.
//
// # Requests
//
//	client := mcp.NewClient(server)
//	tools, ex, err := client.ListTools(ctx, 15*time.Second)
//	if errors.Is(err, mcperrors.ErrTimeout) {
//	    // the process was killed; ex.Stderr holds what it printed
//	}
package mcp
