package trust

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// StandardTrust is the trust value of one standard: the mean overall score
// across its evidence mappings.
type StandardTrust struct {
	StandardID   string  `json:"standard_id"`
	Trust        float64 `json:"trust"`
	MappingCount int     `json:"mapping_count"`
	Explanation  string  `json:"explanation"`
}

// ForStandard averages the overall trust of the given per-mapping scores.
// Zero scores yields 0.0 with an explanation, never an error; unmapped
// standards are the risk predictor's concern and are not penalized here.
func ForStandard(standardID string, scores []*Score) StandardTrust {
	if len(scores) == 0 {
		return StandardTrust{
			StandardID:  standardID,
			Trust:       0.0,
			Explanation: "no evidence mappings exist for this standard",
		}
	}

	vals := make([]float64, len(scores))
	for i, sc := range scores {
		vals[i] = sc.Overall
	}
	mean := clamp01(stat.Mean(vals, nil))
	return StandardTrust{
		StandardID:   standardID,
		Trust:        mean,
		MappingCount: len(scores),
		Explanation:  fmt.Sprintf("mean trust %.2f across %d evidence mapping(s)", mean, len(scores)),
	}
}

// Average computes the corpus-wide average trust over standards that have at
// least one mapping. Standards without mappings are excluded from the mean.
// If no standard has any mapping the average is 0.0 with an explanation.
func Average(standards []StandardTrust) (float64, string) {
	var vals []float64
	for _, st := range standards {
		if st.MappingCount > 0 {
			vals = append(vals, st.Trust)
		}
	}
	if len(vals) == 0 {
		return 0.0, "no standard has any evidence mapping; average trust is undefined and reported as 0.0"
	}
	mean := clamp01(stat.Mean(vals, nil))
	return mean, fmt.Sprintf("average trust %.2f across %d standard(s) with evidence", mean, len(vals))
}
