package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"daymark-engine/internal/domain"
)

func TestEnsureUserConfigWritesExampleOnce(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")

	path, err := EnsureUserConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "config.yml"), path)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, Example(), b)

	require.NoError(t, os.WriteFile(path, []byte("app:\n  port: 9000\n"), 0o644))
	_, err = EnsureUserConfig(dir)
	require.NoError(t, err)
	b, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "app:\n  port: 9000\n", string(b))
}

func TestExampleIsValid(t *testing.T) {
	path, err := EnsureUserConfig(t.TempDir())
	require.NoError(t, err)

	cfg, err := Load(path)
	require.NoError(t, err)
	_, res := NormalizeAndValidate(cfg)
	assert.Empty(t, res.Errors)
	assert.Equal(t, 5, cfg.Jobs.PerDay)
	assert.True(t, cfg.Schedule.AutoShift)
	assert.Equal(t, []string{"simplify-jobs", "jsearch", "remotive", "adzuna"}, cfg.Sources.Enabled)
}

func TestLoadKeepsDefaultsForMissingKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("jobs:\n  per_day: 8\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Jobs.PerDay)
	assert.Equal(t, 5, cfg.Jobs.DisplayLimit)
	assert.Equal(t, "09:00", cfg.Schedule.WorkStart)
	assert.True(t, cfg.Schedule.AutoShift)
	assert.Equal(t, "@every 60m", cfg.Polling.FetchCron)
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("jobs: [\n"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("DAYMARK_PORT", "40000")
	t.Setenv("DAYMARK_DATA_DIR", "/tmp/daymark")
	cfg := Default()
	require.NoError(t, ApplyEnv(&cfg))
	assert.Equal(t, 40000, cfg.App.Port)
	assert.Equal(t, "/tmp/daymark", cfg.App.DataDir)

	t.Setenv("DAYMARK_PORT", "abc")
	assert.Error(t, ApplyEnv(&cfg))
}

func TestNormalizeAndValidate(t *testing.T) {
	cfg := Default()
	cfg.Filters.RedFlags = []string{" Clearance ", "clearance", ""}
	cfg.Sources.Enabled = []string{"Remotive", "remotive", "monster"}
	cfg.Sources.Search.EmploymentType = "fulltime"
	cfg.App.UserID = " "
	cfg.Schedule.WorkStart = "18:00"
	cfg.Polling.FetchCron = "every hour"

	out, res := NormalizeAndValidate(cfg)
	assert.False(t, res.OK())
	assert.Equal(t, []string{"Clearance"}, out.Filters.RedFlags)
	assert.Equal(t, []string{"remotive", "monster"}, out.Sources.Enabled)
	assert.Equal(t, "FULLTIME", out.Sources.Search.EmploymentType)
	assert.Equal(t, "local", out.App.UserID)
	assert.Contains(t, res.Errors, `sources.enabled: unknown source "monster"`)
	assert.Contains(t, res.Errors, "schedule.work_start must be before schedule.work_end")

	var cronErr bool
	for _, e := range res.Errors {
		cronErr = cronErr || strings.HasPrefix(e, "polling.fetch_cron")
	}
	assert.True(t, cronErr)
	assert.ErrorContains(t, res.Err(), "config validation failed")
}

func TestNormalizeAndValidateBoards(t *testing.T) {
	cfg := Default()
	cfg.Sources.Enabled = []string{"greenhouse", "lever"}
	cfg.Sources.Lever.Companies = []domain.Company{
		{Slug: " netflix "},
		{Name: "Nameless"},
	}

	out, res := NormalizeAndValidate(cfg)
	assert.Equal(t, "netflix", out.Sources.Lever.Companies[0].Name)
	assert.Equal(t, "netflix", out.Sources.Lever.Companies[0].Slug)
	assert.Contains(t, res.Errors, "sources.lever.companies[1].slug is required")
	assert.Contains(t, res.Warnings, "greenhouse is enabled but sources.greenhouse.companies is empty.")
}

func TestValidationErrRoleRules(t *testing.T) {
	cfg := Default()
	cfg.Scoring.RoleKeywords = []RoleRule{{Role: "", Any: []string{"x", " "}}, {Role: "Platform"}}
	_, res := NormalizeAndValidate(cfg)
	assert.Equal(t, []string{
		"scoring.role_keywords[0].role is required",
		"scoring.role_keywords[0].any[1] cannot be empty",
		"scoring.role_keywords[1].any must have at least 1 term",
	}, res.Errors)
}

func TestSaveAtomicKeepsBackup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("old: true\n"), 0o644))

	cfg := Default()
	cfg.Jobs.PerDay = 7
	saved, err := SaveAtomic(path, cfg)
	require.NoError(t, err)
	assert.Equal(t, 7, saved.Jobs.PerDay)

	bak, err := os.ReadFile(path + ".bak")
	require.NoError(t, err)
	assert.Equal(t, "old: true\n", string(bak))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, got.Jobs.PerDay)
	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestSaveAtomicRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	cfg := Default()
	cfg.App.Port = 0
	_, err := SaveAtomic(path, cfg)
	assert.ErrorContains(t, err, "app.port must be 1..65535")
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestOverlayCompanies(t *testing.T) {
	dir := t.TempDir()
	cfg := Default()
	require.NoError(t, OverlayCompanies(&cfg, filepath.Join(dir, "missing.yml")))
	assert.Empty(t, cfg.Sources.Greenhouse.Companies)

	path := filepath.Join(dir, "companies.yml")
	require.NoError(t, os.WriteFile(path, []byte(`sources:
  greenhouse:
    companies:
      - { name: Stripe, slug: stripe }
`), 0o644))
	require.NoError(t, OverlayCompanies(&cfg, path))
	require.Len(t, cfg.Sources.Greenhouse.Companies, 1)
	assert.Equal(t, "stripe", cfg.Sources.Greenhouse.Companies[0].Slug)
	assert.Empty(t, cfg.Sources.Lever.Companies)
}

func TestRoleOverridesAndLocation(t *testing.T) {
	cfg := Default()
	assert.Nil(t, cfg.RoleOverrides())
	cfg.Scoring.RoleKeywords = []RoleRule{{Role: "Platform", Any: []string{"platform"}}, {Role: "Platform", Any: []string{"k8s"}}}
	assert.Equal(t, map[string][]string{"Platform": {"platform", "k8s"}}, cfg.RoleOverrides())

	cfg.App.Timezone = "America/Chicago"
	assert.Equal(t, "America/Chicago", cfg.Location().String())
	cfg.App.Timezone = "Nowhere/City"
	assert.Equal(t, "Local", cfg.Location().String())
}
