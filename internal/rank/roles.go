package rank

import "strings"

// DefaultRoleKeywords maps a role type to the title fragments that identify
// it. Matching is plain substring containment on the lowercased job text.
var DefaultRoleKeywords = map[string][]string{
	"Software Engineer": {"software engineer", "software developer", "swe", "sde", "engineer intern", "developer intern", "engineering intern"},
	"Frontend":          {"frontend", "front-end", "front end", "ui engineer", "react", "vue", "angular", "web developer"},
	"Backend":           {"backend", "back-end", "back end", "server", "api engineer"},
	"Full Stack":        {"full stack", "fullstack", "full-stack"},
	"Mobile":            {"mobile", "react native", "flutter"},
	"iOS":               {"ios", "swift", "objective-c", "iphone", "ipad"},
	"Android":           {"android", "kotlin"},
	"DevOps":            {"devops", "dev ops", "ci/cd", "jenkins", "kubernetes", "docker"},
	"SRE":               {"sre", "site reliability", "reliability engineer"},
	"Data Science":      {"data science", "data scientist", "analytics", "statistics"},
	"Machine Learning":  {"machine learning", "ml engineer", "deep learning", "neural network"},
	"AI":                {"ai ", "artificial intelligence", "llm", "gpt", "nlp", "computer vision", "generative ai"},
	"Data Engineering":  {"data engineer", "data engineering", "etl", "pipeline", "spark", "hadoop", "airflow"},
	"Data Analyst":      {"data analyst", "analytics", "business intelligence", "bi analyst"},
	"Security":          {"security", "cybersecurity", "infosec", "penetration", "vulnerability", "appsec"},
	"QA":                {"qa", "quality assurance", "test engineer", "sdet"},
	"Testing":           {"test", "testing", "automation test"},
	"Embedded":          {"embedded", "firmware", "hardware", "iot", "microcontroller"},
	"Systems":           {"systems engineer", "systems programming", "kernel", "os engineer"},
	"Cloud":             {"cloud", "aws", "azure", "gcp", "google cloud", "cloud engineer"},
	"Infrastructure":    {"infrastructure", "platform engineer"},
	"Product":           {"product", "pm intern", "product manager", "apm"},
	"UX/UI":             {"ux", "ui", "design", "user experience", "user interface", "product design"},
	"Research":          {"research", "researcher", "r&d", "research engineer", "research scientist"},
}

// RoleTable resolves role types to keyword lists.
type RoleTable map[string][]string

// NewRoleTable copies the defaults and applies overrides. An override with
// the same role name replaces the default list.
func NewRoleTable(overrides map[string][]string) RoleTable {
	t := make(RoleTable, len(DefaultRoleKeywords)+len(overrides))
	for k, v := range DefaultRoleKeywords {
		t[k] = v
	}
	for k, v := range overrides {
		if strings.TrimSpace(k) == "" || len(v) == 0 {
			continue
		}
		t[k] = v
	}
	return t
}

// Keywords returns the keyword list for role. Unknown roles match on their
// own lowercased name.
func (t RoleTable) Keywords(role string) []string {
	if kw, ok := t[role]; ok {
		return kw
	}
	for name, kw := range t {
		if strings.EqualFold(name, role) {
			return kw
		}
	}
	return []string{strings.ToLower(role)}
}
