// Package config provides configuration management for the mcpcheck CLI.
//
// # Configuration File
//
// Load looks for ./mcpcheck.yaml first, then config.yaml in the XDG config
// directory (~/.config/mcpcheck/config.yaml on Linux). [WriteDefault]
// creates a starting file:
//
//	server:
//	  name: zen
//	  command: npx
//	  args: [zen-mcp-server-199bio]
//	  env:
//	    GEMINI_API_KEY: ${GEMINI_API_KEY}
//	  disabled_tools: [analyze, refactor, testgen, secaudit, docgen, tracer]
//	  default_model: auto
//	  log_level: INFO
//	  force_env_override: true
//	timeouts:
//	  ping: 10s
//	  tools: 15s
//	  call: 20s
//	login:
//	  url: https://admin.example.com/api/admin/login
//	  email: admin@example.com
//	  timeout: 30s
//	analysis:
//	  format: json
//	  steps: [...]
//
// # Environment
//
// Every key can be overridden with an MCPCHECK_ variable, dots becoming
// underscores: MCPCHECK_LOGIN_PASSWORD, MCPCHECK_TIMEOUTS_CALL=45s.
// Keys under server.env and analysis.steps[].arguments keep the case
// written in the file.
//
// # Validation
//
// Load validates automatically. [Validate] returns every problem as a
// [FieldError]:
//
//	for _, e := range config.Validate(cfg) {
//	    fmt.Println(e)
//	}
package config
