// Package mcp provides an MCP (Model Context Protocol) server for a3e.
// This lets AI agents map evidence and query compliance scores through MCP
// tools instead of CLI commands.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/jeremyje1/MapMyStandards-sub001/internal/config"
	"github.com/jeremyje1/MapMyStandards-sub001/internal/engine"
	"github.com/jeremyje1/MapMyStandards-sub001/internal/store"
	"github.com/mark3labs/mcp-go/server"
)

// Server wraps the MCP server with a3e-specific functionality
type Server struct {
	mcpServer    *server.MCPServer
	engine       *engine.Engine
	db           *store.Store
	a3eDir       string
	tools        map[string]bool
	lastActivity time.Time
	timeout      time.Duration
	mu           sync.RWMutex
}

// Config holds server configuration
type Config struct {
	Tools   []string      // Which tools to expose (empty = all)
	Timeout time.Duration // Inactivity timeout (0 = no timeout)
}

// DefaultTools is the default set of tools to expose
var DefaultTools = []string{"a3e_map_evidence", "a3e_risk", "a3e_compliance", "a3e_crosswalk"}

// AllTools lists all available tools
var AllTools = []string{"a3e_map_evidence", "a3e_risk", "a3e_compliance", "a3e_crosswalk", "a3e_trust", "a3e_metadata"}

// New creates a new MCP server for a3e
func New(cfg Config) (*Server, error) {
	a3eDir, err := config.FindConfigDir(".")
	if err != nil {
		return nil, fmt.Errorf("a3e not initialized: run 'a3e init && a3e load' first")
	}

	appCfg, err := config.LoadFromPath(filepath.Join(a3eDir, config.ConfigFileName))
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	db, err := store.Open(a3eDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	eng, err := engine.New(appCfg, db)
	if err != nil {
		db.Close()
		return nil, err
	}

	// corpus dir is relative to the project root
	corpusDir := appCfg.Corpus.Dir
	if !filepath.IsAbs(corpusDir) {
		corpusDir = filepath.Join(filepath.Dir(a3eDir), corpusDir)
	}
	if _, _, err := eng.LoadCorpus(corpusDir); err != nil {
		db.Close()
		return nil, fmt.Errorf("loading corpus from %s: %w", corpusDir, err)
	}

	mcpServer := server.NewMCPServer(
		"a3e",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	s := &Server{
		mcpServer:    mcpServer,
		engine:       eng,
		db:           db,
		a3eDir:       a3eDir,
		tools:        make(map[string]bool),
		lastActivity: time.Now(),
		timeout:      cfg.Timeout,
	}

	toolsToRegister := cfg.Tools
	if len(toolsToRegister) == 0 {
		toolsToRegister = DefaultTools
	}

	for _, toolName := range toolsToRegister {
		if err := s.registerTool(toolName); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to register tool %s: %w", toolName, err)
		}
		s.tools[toolName] = true
	}

	return s, nil
}

// registerTool registers a single tool with the MCP server
func (s *Server) registerTool(name string) error {
	switch name {
	case "a3e_map_evidence":
		return s.registerMapEvidenceTool()
	case "a3e_risk":
		return s.registerRiskTool()
	case "a3e_compliance":
		return s.registerComplianceTool()
	case "a3e_crosswalk":
		return s.registerCrosswalkTool()
	case "a3e_trust":
		return s.registerTrustTool()
	case "a3e_metadata":
		return s.registerMetadataTool()
	default:
		return fmt.Errorf("unknown tool: %s", name)
	}
}

// ServeStdio starts the server using stdio transport
func (s *Server) ServeStdio() error {
	if s.timeout > 0 {
		go s.timeoutChecker()
	}

	return server.ServeStdio(s.mcpServer)
}

// timeoutChecker monitors for inactivity and exits if timeout exceeded
func (s *Server) timeoutChecker() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		s.mu.RLock()
		elapsed := time.Since(s.lastActivity)
		s.mu.RUnlock()

		if elapsed > s.timeout {
			fmt.Fprintf(os.Stderr, "a3e serve: timeout after %v of inactivity\n", s.timeout)
			os.Exit(0)
		}
	}
}

// updateActivity updates the last activity timestamp
func (s *Server) updateActivity() {
	s.mu.Lock()
	s.lastActivity = time.Now()
	s.mu.Unlock()
}

// Close closes the server and its resources
func (s *Server) Close() error {
	if s.engine != nil {
		s.engine.Close()
	}
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// ListTools returns the list of registered tools
func (s *Server) ListTools() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tools := make([]string, 0, len(s.tools))
	for t := range s.tools {
		tools = append(tools, t)
	}
	return tools
}

// ToolSchema describes a tool's name, description, and parameters.
type ToolSchema struct {
	Name        string            `json:"name" yaml:"name"`
	Description string            `json:"description" yaml:"description"`
	Parameters  []ParameterSchema `json:"parameters" yaml:"parameters"`
}

// ParameterSchema describes a single tool parameter.
type ParameterSchema struct {
	Name        string `json:"name" yaml:"name"`
	Type        string `json:"type" yaml:"type"`
	Description string `json:"description" yaml:"description"`
	Required    bool   `json:"required" yaml:"required"`
}

// toolSchemaRegistry holds the schema definitions for all tools.
// These mirror the mcp.NewTool() definitions in the register*Tool() functions.
var toolSchemaRegistry = map[string]ToolSchema{
	"a3e_map_evidence": {
		Name:        "a3e_map_evidence",
		Description: "Map an evidence document against loaded accreditation standards. Returns confidence-scored mappings with supporting excerpts.",
		Parameters: []ParameterSchema{
			{Name: "document_id", Type: "string", Description: "Stable identifier of the evidence document", Required: true},
			{Name: "text", Type: "string", Description: "Raw document text, with optional '--- Page N ---' markers", Required: true},
			{Name: "accreditor", Type: "string", Description: "Restrict candidates to one accreditor code (default: all loaded)"},
		},
	},
	"a3e_risk": {
		Name:        "a3e_risk",
		Description: "Compute gap risk for one standard or every standard of an accreditor, with bucket classification.",
		Parameters: []ParameterSchema{
			{Name: "standard_id", Type: "string", Description: "Namespaced standard id (e.g. HLC_3.C)"},
			{Name: "accreditor", Type: "string", Description: "Score every standard of this accreditor and aggregate"},
		},
	},
	"a3e_compliance": {
		Name:        "a3e_compliance",
		Description: "Compute the compliance score (coverage + trust) for one accreditor or all loaded corpora.",
		Parameters: []ParameterSchema{
			{Name: "accreditor", Type: "string", Description: "Accreditor code (default: all loaded)"},
		},
	},
	"a3e_crosswalk": {
		Name:        "a3e_crosswalk",
		Description: "Find equivalent standards across two accreditors by description similarity.",
		Parameters: []ParameterSchema{
			{Name: "source", Type: "string", Description: "Source accreditor code", Required: true},
			{Name: "target", Type: "string", Description: "Target accreditor code", Required: true},
			{Name: "threshold", Type: "number", Description: "Minimum similarity (default: 0.3)"},
			{Name: "top_k", Type: "number", Description: "Matches kept per source standard (default: 10)"},
		},
	},
	"a3e_trust": {
		Name:        "a3e_trust",
		Description: "Compute the aggregated evidence trust of one standard.",
		Parameters: []ParameterSchema{
			{Name: "standard_id", Type: "string", Description: "Namespaced standard id", Required: true},
		},
	},
	"a3e_metadata": {
		Name:        "a3e_metadata",
		Description: "List provenance metadata (version, effective date, counts) for every loaded corpus.",
		Parameters:  []ParameterSchema{},
	},
}

// GetToolSchemas returns schemas for all registered tools.
func (s *Server) GetToolSchemas() []ToolSchema {
	s.mu.RLock()
	defer s.mu.RUnlock()

	schemas := make([]ToolSchema, 0, len(s.tools))
	for name := range s.tools {
		if schema, ok := toolSchemaRegistry[name]; ok {
			schemas = append(schemas, schema)
		}
	}
	return schemas
}

// CallTool dispatches a tool call by name with the given arguments.
// Returns the JSON result string or an error.
func (s *Server) CallTool(ctx context.Context, name string, args map[string]interface{}) (string, error) {
	s.mu.RLock()
	registered := s.tools[name]
	s.mu.RUnlock()

	if !registered {
		return "", fmt.Errorf("unknown tool: %s", name)
	}

	switch name {
	case "a3e_map_evidence":
		docID, _ := args["document_id"].(string)
		text, _ := args["text"].(string)
		if docID == "" || text == "" {
			return "", fmt.Errorf("document_id and text parameters are required")
		}
		accreditor, _ := args["accreditor"].(string)
		return s.executeMapEvidence(ctx, docID, text, accreditor)

	case "a3e_risk":
		standardID, _ := args["standard_id"].(string)
		accreditor, _ := args["accreditor"].(string)
		if standardID == "" && accreditor == "" {
			return "", fmt.Errorf("either standard_id or accreditor is required")
		}
		return s.executeRisk(ctx, standardID, accreditor)

	case "a3e_compliance":
		accreditor, _ := args["accreditor"].(string)
		return s.executeCompliance(accreditor)

	case "a3e_crosswalk":
		source, _ := args["source"].(string)
		target, _ := args["target"].(string)
		if source == "" || target == "" {
			return "", fmt.Errorf("source and target parameters are required")
		}
		threshold := 0.0
		if t, ok := args["threshold"].(float64); ok {
			threshold = t
		}
		topK := 0
		if k, ok := args["top_k"].(float64); ok {
			topK = int(k)
		}
		return s.executeCrosswalk(ctx, source, target, threshold, topK)

	case "a3e_trust":
		standardID, _ := args["standard_id"].(string)
		if standardID == "" {
			return "", fmt.Errorf("standard_id parameter is required")
		}
		return s.executeTrust(standardID)

	case "a3e_metadata":
		return s.executeMetadata()
	}

	return "", fmt.Errorf("unknown tool: %s", name)
}

// toJSON renders a tool result payload.
func toJSON(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding result: %w", err)
	}
	return string(data), nil
}
