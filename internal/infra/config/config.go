// Package config provides application-wide configuration.
// Runtime settings come from env vars with safe defaults so the binary runs
// locally without any setup; MCP server definitions and static beta flags
// come from an optional YAML file because they are structured lists.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds runtime configuration for beacond.
type Config struct {
	// Storage
	DBPath string // BEACON_DB_PATH — default: "beacon.db"

	// Upstream LLM API
	UpstreamBaseURL string // BEACON_UPSTREAM_BASE_URL — default: "https://api.anthropic.com"
	UpstreamAPIKey  string // BEACON_UPSTREAM_API_KEY — default: "" (chat relay disabled without it)
	UpstreamModel   string // BEACON_UPSTREAM_MODEL — default: "claude-sonnet-4-5"

	// MCPBetaFlag is the capability marker appended to the anthropic-beta
	// header once any MCP tool has been used in a session. The default is the
	// upstream API's published MCP client flag; deployments can override it.
	MCPBetaFlag string // BEACON_MCP_BETA_FLAG — default: "mcp-client-2025-04-04"

	// MCPConfigPath points to the optional YAML file with MCP server
	// definitions and static beta flags. Empty means no file is loaded.
	MCPConfigPath string // BEACON_MCP_CONFIG — default: ""
}

const (
	envKeyDBPath          = "BEACON_DB_PATH"
	envKeyUpstreamBaseURL = "BEACON_UPSTREAM_BASE_URL"
	envKeyUpstreamAPIKey  = "BEACON_UPSTREAM_API_KEY"
	envKeyUpstreamModel   = "BEACON_UPSTREAM_MODEL"
	envKeyMCPBetaFlag     = "BEACON_MCP_BETA_FLAG"
	envKeyMCPConfigPath   = "BEACON_MCP_CONFIG"
)

// Load reads configuration from environment variables, applying defaults for missing values.
func Load() Config {
	return Config{
		DBPath:          envOr(envKeyDBPath, "beacon.db"),
		UpstreamBaseURL: envOr(envKeyUpstreamBaseURL, "https://api.anthropic.com"),
		UpstreamAPIKey:  os.Getenv(envKeyUpstreamAPIKey),
		UpstreamModel:   envOr(envKeyUpstreamModel, "claude-sonnet-4-5"),
		MCPBetaFlag:     envOr(envKeyMCPBetaFlag, "mcp-client-2025-04-04"),
		MCPConfigPath:   os.Getenv(envKeyMCPConfigPath),
	}
}

// MCPServer describes one MCP server to launch and proxy tools from.
// Tools discovered on it are registered as mcp__<name>__<tool>.
type MCPServer struct {
	Name    string   `yaml:"name"`
	Command string   `yaml:"command"`
	Args    []string `yaml:"args,omitempty"`
}

// FileConfig is the YAML file schema referenced by BEACON_MCP_CONFIG.
type FileConfig struct {
	// MCPServers lists the MCP servers to connect at startup.
	MCPServers []MCPServer `yaml:"mcp_servers"`

	// BetaFlags are static beta header values always sent upstream,
	// independent of MCP usage.
	BetaFlags []string `yaml:"beta_flags,omitempty"`
}

// LoadFile parses the YAML file at path. A missing path returns an empty
// FileConfig and no error; a present but unreadable or invalid file is an
// error — a deployment that points at a broken file should not start.
func LoadFile(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return FileConfig{}, fmt.Errorf("config: read %q: %w", path, err)
	}

	var fc FileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return FileConfig{}, fmt.Errorf("config: parse %q: %w", path, err)
	}

	for i, srv := range fc.MCPServers {
		if srv.Name == "" || srv.Command == "" {
			return FileConfig{}, fmt.Errorf("config: mcp_servers[%d]: name and command are required", i)
		}
	}

	return fc, nil
}

// envOr returns the value of the environment variable key, or fallback if not set.
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
