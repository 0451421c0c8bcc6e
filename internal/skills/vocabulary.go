package skills

import "strings"

var Languages = []string{
	"Python", "JavaScript", "TypeScript", "Java", "C++", "C", "C#", "Go",
	"Rust", "Ruby", "PHP", "Swift", "Kotlin", "Scala", "R", "MATLAB", "SQL",
	"Shell", "Bash", "Perl", "Dart", "Lua", "Haskell", "Elixir", "Erlang",
	"F#", "Clojure", "Julia", "Objective-C", "Assembly", "VHDL", "Verilog",
}

var Frameworks = []string{
	// frontend
	"React", "Vue", "Angular", "Next.js", "Svelte", "SvelteKit", "Solid.js",
	"Qwik", "Remix", "Nuxt.js", "Astro",
	// backend
	"Node.js", "Express", "NestJS", "Django", "Flask", "FastAPI", "Spring",
	"Spring Boot", "Rails", "Laravel", "Symfony", ".NET", "ASP.NET Core",
	// mobile
	"React Native", "Flutter", "Ionic", "Xamarin",
	// ml
	"TensorFlow", "PyTorch", "Keras", "Scikit-learn", "OpenCV",
	"Hugging Face", "LangChain",
	// data
	"Pandas", "NumPy", "Apache Spark", "Hadoop", "Airflow", "dbt",
	"Hibernate", "gRPC", "GraphQL", "Kafka", "RabbitMQ", "Celery",
}

var Tools = []string{
	"Git", "GitHub", "GitLab", "Bitbucket", "SVN",
	"Docker", "Kubernetes", "K8s", "Helm", "Rancher",
	"AWS", "Azure", "GCP", "Vercel", "Netlify", "Railway", "Heroku", "DigitalOcean",
	"PostgreSQL", "MySQL", "MongoDB", "Redis", "Elasticsearch", "Cassandra",
	"DynamoDB", "Supabase", "Firebase", "PlanetScale", "Neon", "SQLite", "MariaDB",
	"Jenkins", "GitHub Actions", "GitLab CI", "CircleCI", "Travis CI", "ArgoCD", "Flux",
	"Terraform", "Ansible", "Puppet", "Chef", "CloudFormation",
	"Prometheus", "Grafana", "Datadog", "New Relic", "Sentry", "Splunk",
	"Webpack", "Vite", "Rollup", "Turbopack", "esbuild", "Parcel",
	"Postman", "Insomnia", "REST", "Swagger", "OpenAPI",
	"Tableau", "Power BI", "Looker", "Databricks", "Snowflake", "Apache Kafka",
	"Jira", "Confluence", "Trello", "Asana", "Linear",
	"Figma", "Sketch", "Adobe XD",
	"Jest", "Pytest", "Selenium", "Cypress", "Playwright", "JUnit", "Mocha", "Vitest",
	"Linux", "Unix", "macOS", "Windows", "Nginx", "Apache", "Prisma", "tRPC",
}

// commonJobKeywords are the generic terms job titles tend to carry.
var commonJobKeywords = []string{
	"python", "javascript", "typescript", "java", "c++", "c#", "go", "rust",
	"ruby", "php", "swift", "kotlin", "scala", "sql",
	"react", "vue", "angular", "node", "express", "django", "flask", "spring",
	"rails", ".net", "next.js", "fastapi",
	"git", "docker", "kubernetes", "aws", "azure", "gcp", "linux",
	"postgresql", "mysql", "mongodb", "redis", "graphql",
	"tensorflow", "pytorch", "pandas", "numpy", "scikit-learn",
	"machine learning", "deep learning",
	"api", "rest", "microservices", "agile", "ci/cd", "testing", "debugging",
}

var vocabulary = buildVocabulary()

func buildVocabulary() []string {
	seen := map[string]bool{}
	var out []string
	for _, list := range [][]string{commonJobKeywords, Languages, Frameworks, Tools} {
		for _, t := range list {
			k := strings.ToLower(t)
			if seen[k] {
				continue
			}
			seen[k] = true
			out = append(out, k)
		}
	}
	return out
}

// Vocabulary returns the lowercase technology terms searched for in job text:
// the common job keywords first, then languages, frameworks and tools.
func Vocabulary() []string {
	out := make([]string, len(vocabulary))
	copy(out, vocabulary)
	return out
}
