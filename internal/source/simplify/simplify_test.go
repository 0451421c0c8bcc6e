package simplify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"daymark-engine/internal/domain"
	"daymark-engine/internal/source"
)

const readme = `# Summer 2026 Tech Internships

Use this repo to share and keep track of software internships.

<table>
<thead>
<tr>
<th>Company</th>
<th>Role</th>
<th>Location</th>
<th>Application</th>
<th>Age</th>
</tr>
</thead>
<tbody>
<tr>
<td><strong><a href="https://simplify.jobs/c/Acme">Acme</a></strong></td>
<td>Software Engineer Intern 🛂</td>
<td>Austin, TX</td>
<td><div align="center"><a href="https://simplify.jobs/p/123"><img alt="Simplify"></a> <a href="https://acme.example/jobs/1?utm_source=Simplify"><img alt="Apply"></a></div></td>
<td>3d</td>
</tr>
<tr>
<td>↳</td>
<td>Data Engineer Intern 🇺🇸</td>
<td>NYC</br>Remote in USA</br>Boston, MA</td>
<td><a href="https://simplify.jobs/p/456"><img alt="Simplify"></a></td>
<td>0d</td>
</tr>
<tr>
<td><strong><a href="https://simplify.jobs/c/Globex">Globex</a></strong></td>
<td>ML Intern</td>
<td><details><summary><strong>4 locations</strong></summary>SF<br>LA</details></td>
<td>🔒</td>
<td>10d</td>
</tr>
<tr>
<td>Initech</td>
<td>Backend Intern</td>
<td>Remote</td>
<td>no link yet</td>
<td>1d</td>
</tr>
<tr>
<td>Umbrella</td>
<td>QA Intern</td>
<td><details><summary>3 locations</summary>a<br>b</details></td>
<td><a href="https://umbrella.example/apply">Apply</a></td>
<td>soon</td>
</tr>
<tr><td>short</td><td>row</td></tr>
</tbody>
</table>
`

var now = time.Date(2026, 10, 16, 15, 0, 0, 0, time.UTC)

func TestParse(t *testing.T) {
	jobs, err := Parse(strings.NewReader(readme), now)
	require.NoError(t, err)
	require.Len(t, jobs, 3)

	acme := jobs[0]
	assert.Equal(t, "Acme", acme.Company)
	assert.Equal(t, "Software Engineer Intern", acme.Role)
	assert.Equal(t, "Austin, TX", acme.Location)
	assert.Equal(t, "https://acme.example/jobs/1?utm_source=Simplify", acme.ApplicationURL)
	assert.True(t, acme.NoSponsorship)
	assert.False(t, acme.Sponsorship)
	assert.False(t, acme.USOnly)
	assert.Equal(t, time.Date(2026, 10, 13, 0, 0, 0, 0, time.UTC), acme.DatePosted)
	assert.Equal(t, domain.SourceSimplify, acme.Source)
	assert.NotEmpty(t, acme.ID)

	sub := jobs[1]
	assert.Equal(t, "Acme", sub.Company)
	assert.Equal(t, "Data Engineer Intern", sub.Role)
	assert.Equal(t, "NYC (+2 more)", sub.Location)
	assert.Equal(t, "https://simplify.jobs/p/456", sub.ApplicationURL)
	assert.True(t, sub.USOnly)
	assert.True(t, sub.Sponsorship)
	assert.Equal(t, time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC), sub.DatePosted)

	umbrella := jobs[2]
	assert.Equal(t, "Umbrella", umbrella.Company)
	assert.Equal(t, "3 locations", umbrella.Location)
	assert.Equal(t, time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC), umbrella.DatePosted)
}

func TestParse_IDIsStable(t *testing.T) {
	a, err := Parse(strings.NewReader(readme), now)
	require.NoError(t, err)
	b, err := Parse(strings.NewReader(readme), now.Add(time.Hour))
	require.NoError(t, err)
	for i := range a {
		assert.Equal(t, a[i].ID, b[i].ID)
	}
}

func TestParse_NoTable(t *testing.T) {
	jobs, err := Parse(strings.NewReader("# nothing here"), now)
	require.NoError(t, err)
	assert.Empty(t, jobs)
}

func TestAdapterFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(readme))
	}))
	defer srv.Close()

	a := New(srv.URL, nil)
	assert.True(t, a.IsConfigured())
	jobs, err := a.Fetch(context.Background(), source.Params{})
	require.NoError(t, err)
	assert.Len(t, jobs, 3)
}

func TestAdapterFetch_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := New(srv.URL, nil).Fetch(context.Background(), source.Params{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}
