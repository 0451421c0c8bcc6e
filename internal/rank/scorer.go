package rank

import "daymark-engine/internal/domain"

// MatchResult is the outcome of scoring one job against a skill set.
type MatchResult struct {
	Job               domain.Job `json:"job"`
	Score             int        `json:"score"`
	MatchedKeywords   []string   `json:"matchedKeywords"`
	MatchesRoleFilter bool       `json:"matchesRoleFilter"`
	HasResumeMatch    bool       `json:"hasResumeMatch"`
}

type Scorer interface {
	Score(job domain.Job, skills domain.UserSkills, hasResume bool) MatchResult
}

func uniq(in []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(in))
	for _, t := range in {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}
