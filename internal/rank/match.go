package rank

import (
	"math"
	"sort"
	"strings"

	"daymark-engine/internal/domain"
	"daymark-engine/internal/skills"
)

const (
	matchBase        = 50
	matchRatioBonus  = 50
	perMatchBonus    = 10
	perMatchBonusCap = 40
	genericJobScore  = 60
)

// MatchScorer scores jobs from their title and company against a user's
// skills. It is safe for concurrent use.
type MatchScorer struct {
	roles RoleTable
	vocab []string
}

func NewMatchScorer(roles RoleTable) *MatchScorer {
	if roles == nil {
		roles = NewRoleTable(nil)
	}
	return &MatchScorer{roles: roles, vocab: skills.Vocabulary()}
}

func (m *MatchScorer) Score(job domain.Job, us domain.UserSkills, hasResume bool) MatchResult {
	jobText := strings.ToLower(job.Role + " " + job.Company)

	matchesRole, matchedRoles := m.roleMatch(jobText, us.RoleTypes)
	if len(us.RoleTypes) > 0 && !matchesRole {
		return MatchResult{Job: job.WithoutScore(), MatchedKeywords: []string{}}
	}

	noScore := MatchResult{
		Job:               job.WithoutScore(),
		MatchedKeywords:   matchedRoles,
		MatchesRoleFilter: matchesRole,
	}
	if !hasResume {
		return noScore
	}

	var resume []string
	for _, t := range us.Tokens() {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			resume = append(resume, t)
		}
	}
	if len(resume) == 0 {
		return noScore
	}

	var jobKeywords []string
	for _, kw := range m.vocab {
		if skills.ContainsTerm(jobText, kw) {
			jobKeywords = append(jobKeywords, kw)
		}
	}

	var matched []string
	for _, kw := range jobKeywords {
		for _, skill := range resume {
			if sameSkill(skill, kw) {
				matched = append(matched, kw)
				break
			}
		}
	}
	for _, skill := range resume {
		if skills.ContainsTerm(jobText, skill) && !contains(matched, skill) {
			matched = append(matched, skill)
		}
	}

	score := 0
	switch {
	case len(matched) > 0 && len(jobKeywords) > 0:
		ratio := float64(len(matched)) / float64(len(jobKeywords))
		score = matchBase + int(math.Round(ratio*matchRatioBonus))
	case len(matched) > 0:
		score = matchBase + min(len(matched)*perMatchBonus, perMatchBonusCap)
	case len(jobKeywords) == 0:
		score = genericJobScore
	}
	score = max(0, min(100, score))

	return MatchResult{
		Job:               job.WithScore(score),
		Score:             score,
		MatchedKeywords:   uniq(append(append([]string{}, matchedRoles...), matched...)),
		MatchesRoleFilter: matchesRole,
		HasResumeMatch:    true,
	}
}

// MatchesRoleFilter reports whether job falls under any of roles. An empty
// role list matches everything.
func (m *MatchScorer) MatchesRoleFilter(job domain.Job, roles []string) bool {
	ok, _ := m.roleMatch(strings.ToLower(job.Role+" "+job.Company), roles)
	return ok
}

func (m *MatchScorer) roleMatch(jobText string, roles []string) (bool, []string) {
	matches := len(roles) == 0
	matched := []string{}
	for _, role := range roles {
		for _, kw := range m.roles.Keywords(role) {
			if strings.Contains(jobText, strings.ToLower(kw)) {
				matches = true
				matched = append(matched, role)
				break
			}
		}
	}
	return matches, matched
}

// Rank scores every job, drops role-filter misses when roles are selected
// and, with resume evidence, orders by descending score. The sort is stable
// so equal scores keep input order.
func (m *MatchScorer) Rank(jobs []domain.Job, us domain.UserSkills, hasResume bool) []domain.Job {
	results := make([]MatchResult, 0, len(jobs))
	for _, j := range jobs {
		r := m.Score(j, us, hasResume)
		if len(us.RoleTypes) > 0 && !r.MatchesRoleFilter {
			continue
		}
		results = append(results, r)
	}
	if hasResume {
		sort.SliceStable(results, func(a, b int) bool {
			return results[a].Score > results[b].Score
		})
	}
	out := make([]domain.Job, len(results))
	for i, r := range results {
		out[i] = r.Job
	}
	return out
}

// sameSkill matches a resume token with a detected job keyword: equal once
// normalized, or one contains the other on word boundaries.
func sameSkill(skill, keyword string) bool {
	if strings.EqualFold(skills.Normalize(skill), skills.Normalize(keyword)) {
		return true
	}
	return skills.ContainsTerm(skill, keyword) || skills.ContainsTerm(keyword, skill)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
