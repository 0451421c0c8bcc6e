// Package skills canonicalizes skill tokens and holds the technology
// vocabularies used for job keyword detection.
package skills

import "strings"

// synonyms maps lowercase variants to the canonical skill name.
// Every canonical value either is absent as a key or maps to itself, which
// keeps Normalize idempotent.
var synonyms = map[string]string{
	"reactjs":    "React",
	"react.js":   "React",
	"react js":   "React",
	"node":       "Node.js",
	"nodejs":     "Node.js",
	"node js":    "Node.js",
	"vuejs":      "Vue",
	"vue.js":     "Vue",
	"vue js":     "Vue",
	"angularjs":  "Angular",
	"angular.js": "Angular",
	"angular js": "Angular",

	"js":         "JavaScript",
	"javascript": "JavaScript",
	"ecmascript": "JavaScript",
	"ts":         "TypeScript",
	"typescript": "TypeScript",
	"python":     "Python",
	"python3":    "Python",
	"py":         "Python",
	"java":       "Java",

	"k8s":        "Kubernetes",
	"kube":       "Kubernetes",
	"postgres":   "PostgreSQL",
	"postgresql": "PostgreSQL",
	"psql":       "PostgreSQL",
	"mongo":      "MongoDB",
	"mongodb":    "MongoDB",

	"amazon web services":   "AWS",
	"aws":                   "AWS",
	"google cloud":          "GCP",
	"google cloud platform": "GCP",
	"gcp":                   "GCP",
	"azure":                 "Azure",
	"microsoft azure":       "Azure",

	"dotnet":  ".NET",
	"dot net": ".NET",
	".net":    ".NET",
	"asp.net": "ASP.NET Core",
	"aspnet":  "ASP.NET Core",

	"continuous integration": "CI/CD",
	"continuous deployment":  "CI/CD",
	"ci/cd":                  "CI/CD",
	"cicd":                   "CI/CD",

	"ml":                      "Machine Learning",
	"machine learning":        "Machine Learning",
	"ai":                      "AI",
	"artificial intelligence": "AI",

	"front-end":  "Frontend",
	"front end":  "Frontend",
	"frontend":   "Frontend",
	"back-end":   "Backend",
	"back end":   "Backend",
	"backend":    "Backend",
	"fullstack":  "Full Stack",
	"full-stack": "Full Stack",
	"full stack": "Full Stack",

	"git":        "Git",
	"github":     "GitHub",
	"gitlab":     "GitLab",
	"docker":     "Docker",
	"containers": "Docker",

	"sql":        "SQL",
	"mysql":      "MySQL",
	"mssql":      "SQL",
	"sql server": "SQL",

	"graphql":     "GraphQL",
	"graph ql":    "GraphQL",
	"rest":        "REST",
	"rest api":    "REST",
	"restful":     "REST",
	"restful api": "REST",

	"redux":         "Redux",
	"redux toolkit": "Redux",
	"tensorflow":    "TensorFlow",
	"tf":            "TensorFlow",
	"pytorch":       "PyTorch",
	"torch":         "PyTorch",

	"c++":       "C++",
	"cpp":       "C++",
	"cplusplus": "C++",
	"c#":        "C#",
	"csharp":    "C#",
	"c sharp":   "C#",

	"springboot":  "Spring Boot",
	"spring boot": "Spring Boot",
	"nextjs":      "Next.js",
	"next.js":     "Next.js",
	"next js":     "Next.js",
	"sveltejs":    "Svelte",
	"svelte.js":   "Svelte",

	"tailwind":     "Tailwind CSS",
	"tailwindcss":  "Tailwind CSS",
	"tailwind css": "Tailwind CSS",
}

// Normalize returns the canonical name for token. Unknown tokens are
// returned unchanged.
func Normalize(token string) string {
	if canonical, ok := synonyms[strings.ToLower(strings.TrimSpace(token))]; ok {
		return canonical
	}
	return token
}

// NormalizeAll normalizes every token and drops case-insensitive duplicates,
// keeping the first spelling.
func NormalizeAll(tokens []string) []string {
	seen := make(map[string]bool, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		n := Normalize(t)
		if strings.TrimSpace(n) == "" {
			continue
		}
		k := strings.ToLower(n)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, n)
	}
	return out
}
