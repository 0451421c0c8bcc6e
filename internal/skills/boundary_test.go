package skills

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContainsTerm(t *testing.T) {
	cases := []struct {
		text, term string
		want       bool
	}{
		{"senior java engineer", "java", true},
		{"javascript engineer", "java", false},
		{"c++ developer", "c++", true},
		{"asp.net developer", ".net", false},
		{".net developer", ".net", true},
		{"devops (ci/cd)", "ci/cd", true},
		{"golang", "go", false},
		{"go", "go", true},
		{"", "go", false},
		{"go", "", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ContainsTerm(tc.text, tc.term), "%q in %q", tc.term, tc.text)
	}
}
