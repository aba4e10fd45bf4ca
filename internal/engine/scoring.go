package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jeremyje1/MapMyStandards-sub001/internal/compliance"
	"github.com/jeremyje1/MapMyStandards-sub001/internal/crosswalk"
	"github.com/jeremyje1/MapMyStandards-sub001/internal/risk"
	"github.com/jeremyje1/MapMyStandards-sub001/internal/trust"
)

// ScoreTrust computes the trust score of one stored mapping. The source
// document is looked up for its structural signals; a document that is no
// longer stored degrades the document-derived components instead of failing.
func (e *Engine) ScoreTrust(documentID, standardID string) (*trust.Score, error) {
	m, err := e.db.GetMapping(documentID, standardID)
	if err != nil {
		return nil, validationErrorf("no mapping exists for document %q and standard %q", documentID, standardID)
	}
	doc, err := e.db.GetDocument(documentID)
	if err != nil {
		doc = nil
	}
	return e.trust.Score(doc, m), nil
}

// StandardTrust aggregates trust across every mapping of one standard.
func (e *Engine) StandardTrust(standardID string) (trust.StandardTrust, error) {
	mappings, err := e.db.GetMappingsForStandard(standardID)
	if err != nil {
		return trust.StandardTrust{}, err
	}
	scores := make([]*trust.Score, 0, len(mappings))
	for _, m := range mappings {
		doc, err := e.db.GetDocument(m.DocumentID)
		if err != nil {
			doc = nil
		}
		scores = append(scores, e.trust.Score(doc, m))
	}
	return trust.ForStandard(standardID, scores), nil
}

// ScoreRisk computes the gap risk of one standard. Unknown standard ids are
// a validation error.
func (e *Engine) ScoreRisk(standardID string) (*risk.Score, error) {
	snap, err := e.corpus.Snapshot()
	if err != nil {
		return nil, err
	}
	if _, ok := snap.Standard(standardID); !ok {
		return nil, validationErrorf("standard %q is not loaded", standardID)
	}

	in, err := e.riskInput(standardID)
	if err != nil {
		return nil, err
	}
	return e.risk.ScoreStandard(in), nil
}

// ScoreRiskBulk scores many standards in parallel. Unknown ids are skipped
// and returned separately rather than zero-filled.
func (e *Engine) ScoreRiskBulk(ctx context.Context, standardIDs []string) ([]*risk.Score, []string, error) {
	snap, err := e.corpus.Snapshot()
	if err != nil {
		return nil, nil, err
	}

	var inputs []risk.Input
	var skipped []string
	for _, id := range standardIDs {
		if _, ok := snap.Standard(id); !ok {
			skipped = append(skipped, id)
			continue
		}
		in, err := e.riskInput(id)
		if err != nil {
			return nil, nil, err
		}
		inputs = append(inputs, in)
	}

	scores, err := e.risk.ScoreBulk(ctx, inputs)
	if err != nil {
		return nil, skipped, err
	}
	return scores, skipped, nil
}

// AggregateRisk summarizes a set of risk scores into buckets and an average.
func (e *Engine) AggregateRisk(scores []*risk.Score) risk.Summary {
	return risk.Aggregate(scores)
}

// riskInput assembles the evidence state of one standard from the database.
func (e *Engine) riskInput(standardID string) (risk.Input, error) {
	mappings, err := e.db.GetMappingsForStandard(standardID)
	if err != nil {
		return risk.Input{}, err
	}

	in := risk.Input{StandardID: standardID, Mappings: mappings}

	if len(mappings) > 0 {
		st, err := e.StandardTrust(standardID)
		if err != nil {
			return risk.Input{}, err
		}
		in.Trust = st.Trust
		in.HasTrust = st.MappingCount > 0
	}

	seen := make(map[string]struct{})
	for _, m := range mappings {
		if _, ok := seen[m.DocumentID]; ok {
			continue
		}
		seen[m.DocumentID] = struct{}{}
		if doc, err := e.db.GetDocument(m.DocumentID); err == nil {
			in.EvidenceTimes = append(in.EvidenceTimes, doc.UploadedAt)
		}
	}
	return in, nil
}

// ComputeCompliance builds the compliance report for one accreditor, or for
// every loaded corpus when scope is empty.
func (e *Engine) ComputeCompliance(scope string) (compliance.Report, error) {
	snap, err := e.corpus.Snapshot()
	if err != nil {
		return compliance.Report{}, err
	}

	var standards []string
	label := scope
	if scope == "" {
		label = "all"
		for _, std := range snap.AllStandards() {
			standards = append(standards, std.ID)
		}
	} else {
		if !snap.HasAccreditor(scope) {
			return compliance.Report{}, validationErrorf("accreditor %q is not loaded", scope)
		}
		for _, std := range snap.StandardsFor(scope) {
			standards = append(standards, std.ID)
		}
	}

	var trusts []trust.StandardTrust
	mapped := 0
	for _, id := range standards {
		st, err := e.StandardTrust(id)
		if err != nil {
			return compliance.Report{}, err
		}
		if st.MappingCount > 0 {
			mapped++
			trusts = append(trusts, st)
		}
	}

	avgTrust, trustExpl := trust.Average(trusts)
	return compliance.Compute(label, len(standards), mapped, avgTrust, trustExpl), nil
}

// Crosswalk matches the source accreditor's standards against the target's.
// The run carries the configured time budget; exceeding it returns the
// partial result flagged as timed out.
func (e *Engine) Crosswalk(ctx context.Context, source, target string, threshold float64, topK int) (*crosswalk.Result, error) {
	snap, err := e.corpus.Snapshot()
	if err != nil {
		return nil, err
	}

	if budget := time.Duration(e.cfg.Crosswalk.BudgetSeconds) * time.Second; budget > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, budget)
		defer cancel()
	}

	res, err := crosswalk.Run(ctx, snap, source, target, crosswalk.Options{Threshold: threshold, TopK: topK})
	if err != nil {
		var verr *crosswalk.ValidationError
		if errors.As(err, &verr) {
			return nil, fmt.Errorf("%w: %s", ErrValidation, verr.Reason)
		}
		return nil, err
	}
	return res, nil
}
