package skills

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtract(t *testing.T) {
	text := `Experienced Software Engineer with Go, Python and k8s.
BS in Computer Science. Used reactjs and postgres daily.`

	got := Extract(text)

	assert.Equal(t, []string{"Python", "Go"}, got.Languages)
	assert.Equal(t, []string{"React"}, got.Frameworks)
	assert.Equal(t, []string{"K8s", "Kubernetes", "PostgreSQL"}, got.Tools)
	assert.Equal(t, []string{"Software Engineer", "BS", "Computer Science"}, got.OtherKeywords)
	assert.Empty(t, got.RoleTypes)
	assert.NotNil(t, got.RoleTypes)
}

func TestExtract_NoFalsePrefixMatches(t *testing.T) {
	got := Extract("JavaScript and golang enthusiast")
	assert.Equal(t, []string{"JavaScript"}, got.Languages, "java and go must not match inside longer words")
}

func TestExtract_Empty(t *testing.T) {
	got := Extract("")
	assert.Empty(t, got.Languages)
	assert.Empty(t, got.Tools)
	assert.Empty(t, got.OtherKeywords)
}
