package skills

import (
	"regexp"
	"strings"

	"daymark-engine/internal/domain"
)

// JobTitles are the role names picked out of resume text.
var JobTitles = []string{
	"Software Engineer", "Software Developer", "Frontend Developer",
	"Frontend Engineer", "Backend Developer", "Backend Engineer",
	"Full Stack Developer", "Full Stack Engineer", "Web Developer",
	"Mobile Developer", "iOS Developer", "Android Developer",
	"DevOps Engineer", "Site Reliability Engineer", "SRE", "Data Scientist",
	"Data Analyst", "Data Engineer", "Machine Learning Engineer",
	"ML Engineer", "AI Engineer", "Research Engineer", "Research Scientist",
	"QA Engineer", "Test Engineer", "SDET", "Security Engineer",
	"Cloud Engineer", "Platform Engineer", "Systems Engineer",
	"Embedded Engineer", "Product Manager", "Technical Program Manager",
	"Engineering Manager", "Tech Lead", "Intern", "Co-op",
}

// Qualifications are degree and field terms picked out of resume text.
var Qualifications = []string{
	"Bachelor", "Master", "PhD", "BS", "MS", "BA", "MA",
	"Computer Science", "Computer Engineering", "Software Engineering",
	"Electrical Engineering", "Information Technology", "Mathematics",
	"Statistics", "Data Science", "Physics",
}

var wordToken = regexp.MustCompile(`[\w.#+]+`)

// Extract derives skill evidence from plain resume text. Titles and
// qualifications land in OtherKeywords; RoleTypes is left empty for the
// user to pick.
func Extract(text string) domain.UserSkills {
	lower := strings.ToLower(text)
	words := wordToken.FindAllString(lower, -1)

	other := append(findMatches(lower, words, JobTitles), findMatches(lower, words, Qualifications)...)
	return domain.UserSkills{
		Languages:     findMatches(lower, words, Languages),
		Frameworks:    findMatches(lower, words, Frameworks),
		Tools:         findMatches(lower, words, Tools),
		OtherKeywords: NormalizeAll(other),
		RoleTypes:     []string{},
	}
}

// findMatches returns the keywords present in text as whole terms, plus
// keywords reached through a synonym of a single word ("k8s", "postgres").
func findMatches(text string, words, keywords []string) []string {
	var out []string
	seen := map[string]bool{}
	add := func(k string) {
		if !seen[strings.ToLower(k)] {
			seen[strings.ToLower(k)] = true
			out = append(out, k)
		}
	}
	for _, k := range keywords {
		if ContainsTerm(text, strings.ToLower(k)) {
			add(k)
		}
	}
	for _, w := range words {
		n := Normalize(strings.TrimRight(w, "."))
		for _, k := range keywords {
			if strings.EqualFold(n, k) {
				add(k)
				break
			}
		}
	}
	if out == nil {
		out = []string{}
	}
	return out
}
