package risk

import (
	"context"
	"fmt"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"
)

// ScoreBulk scores many standards in parallel against a fixed snapshot of
// evidence state. Inputs are independent, so the work fans out across a
// bounded worker group. Results come back ordered by descending final risk,
// ties broken by standard id.
func (p *Predictor) ScoreBulk(ctx context.Context, inputs []Input) ([]*Score, error) {
	scores := make([]*Score, len(inputs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, in := range inputs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			scores[i] = p.ScoreStandard(in)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(scores, func(i, j int) bool {
		if scores[i].FinalRisk != scores[j].FinalRisk {
			return scores[i].FinalRisk > scores[j].FinalRisk
		}
		return scores[i].StandardID < scores[j].StandardID
	})
	return scores, nil
}

// Summary aggregates a set of risk scores into bucket counts and an average.
type Summary struct {
	Buckets     map[string]int `json:"buckets"`
	AverageRisk float64        `json:"average_risk"`
	ScoredCount int            `json:"scored_count"`
	Explanation string         `json:"explanation"`
}

// Aggregate counts scores per bucket and averages the final risk. An empty
// input aggregates to 0.0 with an explanatory note, never an error.
func Aggregate(scores []*Score) Summary {
	buckets := map[string]int{
		BucketCritical: 0,
		BucketHigh:     0,
		BucketMedium:   0,
		BucketLow:      0,
		BucketMinimal:  0,
	}

	if len(scores) == 0 {
		return Summary{
			Buckets:     buckets,
			AverageRisk: 0.0,
			Explanation: "no standards were scored; average risk is reported as 0.0",
		}
	}

	vals := make([]float64, len(scores))
	for i, sc := range scores {
		buckets[sc.Bucket]++
		vals[i] = sc.FinalRisk
	}
	avg := clamp01(stat.Mean(vals, nil))
	return Summary{
		Buckets:     buckets,
		AverageRisk: avg,
		ScoredCount: len(scores),
		Explanation: fmt.Sprintf("average risk %.2f across %d scored standard(s), %d critical", avg, len(scores), buckets[BucketCritical]),
	}
}
