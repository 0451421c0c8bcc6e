package domain

// Company is a job board owner polled by the ATS sources (greenhouse, lever).
type Company struct {
	Name string `yaml:"name" json:"name"`
	Slug string `yaml:"slug" json:"slug"`
}
