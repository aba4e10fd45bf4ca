package mcp

import (
	"context"
	"fmt"

	"github.com/jeremyje1/MapMyStandards-sub001/internal/engine"
	"github.com/jeremyje1/MapMyStandards-sub001/internal/store"
	"github.com/mark3labs/mcp-go/mcp"
)

// registerMapEvidenceTool registers the a3e_map_evidence tool
func (s *Server) registerMapEvidenceTool() error {
	tool := mcp.NewTool("a3e_map_evidence",
		mcp.WithDescription("Map an evidence document against loaded accreditation standards. Returns confidence-scored mappings with supporting excerpts."),
		mcp.WithString("document_id",
			mcp.Required(),
			mcp.Description("Stable identifier of the evidence document"),
		),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("Raw document text, with optional '--- Page N ---' markers"),
		),
		mcp.WithString("accreditor",
			mcp.Description("Restrict candidates to one accreditor code (default: all loaded)"),
		),
	)

	s.mcpServer.AddTool(tool, s.handleMapEvidence)
	return nil
}

// registerRiskTool registers the a3e_risk tool
func (s *Server) registerRiskTool() error {
	tool := mcp.NewTool("a3e_risk",
		mcp.WithDescription("Compute gap risk for one standard or every standard of an accreditor, with bucket classification."),
		mcp.WithString("standard_id",
			mcp.Description("Namespaced standard id (e.g. HLC_3.C)"),
		),
		mcp.WithString("accreditor",
			mcp.Description("Score every standard of this accreditor and aggregate"),
		),
	)

	s.mcpServer.AddTool(tool, s.handleRisk)
	return nil
}

// registerComplianceTool registers the a3e_compliance tool
func (s *Server) registerComplianceTool() error {
	tool := mcp.NewTool("a3e_compliance",
		mcp.WithDescription("Compute the compliance score (coverage + trust) for one accreditor or all loaded corpora."),
		mcp.WithString("accreditor",
			mcp.Description("Accreditor code (default: all loaded)"),
		),
	)

	s.mcpServer.AddTool(tool, s.handleCompliance)
	return nil
}

// registerCrosswalkTool registers the a3e_crosswalk tool
func (s *Server) registerCrosswalkTool() error {
	tool := mcp.NewTool("a3e_crosswalk",
		mcp.WithDescription("Find equivalent standards across two accreditors by description similarity."),
		mcp.WithString("source",
			mcp.Required(),
			mcp.Description("Source accreditor code"),
		),
		mcp.WithString("target",
			mcp.Required(),
			mcp.Description("Target accreditor code"),
		),
		mcp.WithNumber("threshold",
			mcp.Description("Minimum similarity (default: 0.3)"),
		),
		mcp.WithNumber("top_k",
			mcp.Description("Matches kept per source standard (default: 10)"),
		),
	)

	s.mcpServer.AddTool(tool, s.handleCrosswalk)
	return nil
}

// registerTrustTool registers the a3e_trust tool
func (s *Server) registerTrustTool() error {
	tool := mcp.NewTool("a3e_trust",
		mcp.WithDescription("Compute the aggregated evidence trust of one standard."),
		mcp.WithString("standard_id",
			mcp.Required(),
			mcp.Description("Namespaced standard id"),
		),
	)

	s.mcpServer.AddTool(tool, s.handleTrust)
	return nil
}

// registerMetadataTool registers the a3e_metadata tool
func (s *Server) registerMetadataTool() error {
	tool := mcp.NewTool("a3e_metadata",
		mcp.WithDescription("List provenance metadata (version, effective date, counts) for every loaded corpus."),
	)

	s.mcpServer.AddTool(tool, s.handleMetadata)
	return nil
}

func (s *Server) handleMapEvidence(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.updateActivity()

	args := req.GetArguments()
	docID, ok := args["document_id"].(string)
	if !ok || docID == "" {
		return mcp.NewToolResultError("document_id parameter is required"), nil
	}
	text, ok := args["text"].(string)
	if !ok || text == "" {
		return mcp.NewToolResultError("text parameter is required"), nil
	}
	accreditor, _ := args["accreditor"].(string)

	result, err := s.executeMapEvidence(ctx, docID, text, accreditor)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(result), nil
}

func (s *Server) handleRisk(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.updateActivity()

	args := req.GetArguments()
	standardID, _ := args["standard_id"].(string)
	accreditor, _ := args["accreditor"].(string)
	if standardID == "" && accreditor == "" {
		return mcp.NewToolResultError("either standard_id or accreditor is required"), nil
	}

	result, err := s.executeRisk(ctx, standardID, accreditor)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(result), nil
}

func (s *Server) handleCompliance(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.updateActivity()

	args := req.GetArguments()
	accreditor, _ := args["accreditor"].(string)

	result, err := s.executeCompliance(accreditor)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(result), nil
}

func (s *Server) handleCrosswalk(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.updateActivity()

	args := req.GetArguments()
	source, ok := args["source"].(string)
	if !ok || source == "" {
		return mcp.NewToolResultError("source parameter is required"), nil
	}
	target, ok := args["target"].(string)
	if !ok || target == "" {
		return mcp.NewToolResultError("target parameter is required"), nil
	}

	threshold := 0.0
	if t, ok := args["threshold"].(float64); ok {
		threshold = t
	}
	topK := 0
	if k, ok := args["top_k"].(float64); ok {
		topK = int(k)
	}

	result, err := s.executeCrosswalk(ctx, source, target, threshold, topK)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(result), nil
}

func (s *Server) handleTrust(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.updateActivity()

	args := req.GetArguments()
	standardID, ok := args["standard_id"].(string)
	if !ok || standardID == "" {
		return mcp.NewToolResultError("standard_id parameter is required"), nil
	}

	result, err := s.executeTrust(standardID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(result), nil
}

func (s *Server) handleMetadata(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.updateActivity()

	result, err := s.executeMetadata()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(result), nil
}

// executeMapEvidence maps the document and returns the persisted mappings.
func (s *Server) executeMapEvidence(ctx context.Context, docID, text, accreditor string) (string, error) {
	doc := &store.EvidenceDocument{ID: docID, Text: text}
	mappings, err := s.engine.MapEvidence(ctx, doc, accreditor)
	if err != nil {
		return "", err
	}

	type mappingView struct {
		StandardID string          `json:"standard_id"`
		Confidence float64         `json:"confidence_score"`
		Band       string          `json:"confidence_band"`
		Method     string          `json:"mapping_method"`
		Excerpts   []store.Excerpt `json:"excerpts,omitempty"`
	}
	views := make([]mappingView, 0, len(mappings))
	for _, m := range mappings {
		views = append(views, mappingView{
			StandardID: m.StandardID,
			Confidence: m.Confidence,
			Band:       store.ConfidenceBand(m.Confidence),
			Method:     m.Method,
			Excerpts:   m.Excerpts,
		})
	}

	return toJSON(map[string]any{
		"document_id": docID,
		"page_count":  doc.PageCount,
		"mappings":    views,
	})
}

// executeRisk scores one standard, or a whole accreditor with an aggregate.
func (s *Server) executeRisk(ctx context.Context, standardID, accreditor string) (string, error) {
	if standardID != "" {
		score, err := s.engine.ScoreRisk(standardID)
		if err != nil {
			return "", err
		}
		return toJSON(score)
	}

	snap, err := s.engine.Snapshot()
	if err != nil {
		return "", err
	}
	var ids []string
	if accreditor != "" {
		if !snap.HasAccreditor(accreditor) {
			return "", fmt.Errorf("%w: accreditor %q is not loaded", engine.ErrValidation, accreditor)
		}
		for _, std := range snap.StandardsFor(accreditor) {
			ids = append(ids, std.ID)
		}
	} else {
		for _, std := range snap.AllStandards() {
			ids = append(ids, std.ID)
		}
	}

	scores, skipped, err := s.engine.ScoreRiskBulk(ctx, ids)
	if err != nil {
		return "", err
	}
	return toJSON(map[string]any{
		"accreditor": accreditor,
		"scores":     scores,
		"skipped":    skipped,
		"summary":    s.engine.AggregateRisk(scores),
	})
}

func (s *Server) executeCompliance(accreditor string) (string, error) {
	rep, err := s.engine.ComputeCompliance(accreditor)
	if err != nil {
		return "", err
	}
	return toJSON(rep)
}

func (s *Server) executeCrosswalk(ctx context.Context, source, target string, threshold float64, topK int) (string, error) {
	res, err := s.engine.Crosswalk(ctx, source, target, threshold, topK)
	if err != nil {
		return "", err
	}
	return toJSON(res)
}

func (s *Server) executeTrust(standardID string) (string, error) {
	st, err := s.engine.StandardTrust(standardID)
	if err != nil {
		return "", err
	}
	return toJSON(st)
}

func (s *Server) executeMetadata() (string, error) {
	metas, err := s.engine.CorpusMetadata()
	if err != nil {
		return "", err
	}
	return toJSON(map[string]any{"corpora": metas})
}
