package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"daymark-engine/internal/domain"
	"daymark-engine/internal/source"
	"daymark-engine/internal/timeshift"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// Err joins the errors into one, or returns nil when there are none.
func (v Validation) Err() error {
	if v.OK() {
		return nil
	}
	return errors.New("config validation failed:\n- " + strings.Join(v.Errors, "\n- "))
}

var (
	datePostedValues = map[string]bool{"": true, "all": true, "today": true, "3days": true, "week": true, "month": true}
	employmentValues = map[string]bool{"": true, "FULLTIME": true, "PARTTIME": true, "INTERN": true, "CONTRACTOR": true}
)

// NormalizeAndValidate returns a normalized copy of cfg and what is wrong
// with it. Lists are trimmed and deduplicated, blank fields that have a
// default get it.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	var out = cfg
	var res Validation
	def := Default()

	trimList := func(xs []string) []string {
		seen := map[string]bool{}
		var ys []string
		for _, x := range xs {
			x = strings.TrimSpace(x)
			if x == "" {
				continue
			}
			key := strings.ToLower(x)
			if seen[key] {
				continue
			}
			seen[key] = true
			ys = append(ys, x)
		}
		return ys
	}

	out.Filters.LocationsBlock = trimList(out.Filters.LocationsBlock)
	out.Filters.RedFlags = trimList(out.Filters.RedFlags)
	out.Sources.Enabled = trimList(out.Sources.Enabled)
	for i := range out.Sources.Enabled {
		out.Sources.Enabled[i] = strings.ToLower(out.Sources.Enabled[i])
	}

	// app
	if out.App.Port <= 0 || out.App.Port > 65535 {
		res.addErr("app.port must be 1..65535")
	}
	out.App.UserID = strings.TrimSpace(out.App.UserID)
	if out.App.UserID == "" {
		out.App.UserID = def.App.UserID
	}
	out.App.Timezone = strings.TrimSpace(out.App.Timezone)
	if out.App.Timezone != "" {
		if _, err := time.LoadLocation(out.App.Timezone); err != nil {
			res.addErr("app.timezone %q is not a known zone", out.App.Timezone)
		}
	}

	// jobs
	if out.Jobs.PerDay <= 0 {
		res.addErr("jobs.per_day must be > 0")
	} else if out.Jobs.PerDay > 25 {
		res.addWarn("jobs.per_day is high (%d); the daily list only shows %d at a time.", out.Jobs.PerDay, out.Jobs.DisplayLimit)
	}
	if out.Jobs.DisplayLimit <= 0 {
		res.addErr("jobs.display_limit must be > 0")
	}

	// schedule
	if out.Schedule.WorkStart == "" {
		out.Schedule.WorkStart = def.Schedule.WorkStart
	}
	if out.Schedule.WorkEnd == "" {
		out.Schedule.WorkEnd = def.Schedule.WorkEnd
	}
	sh, sm, err1 := timeshift.ParseClock(out.Schedule.WorkStart)
	eh, em, err2 := timeshift.ParseClock(out.Schedule.WorkEnd)
	if err1 != nil {
		res.addErr("schedule.work_start: %v", err1)
	}
	if err2 != nil {
		res.addErr("schedule.work_end: %v", err2)
	}
	if err1 == nil && err2 == nil && sh*60+sm >= eh*60+em {
		res.addErr("schedule.work_start must be before schedule.work_end")
	}
	if out.Schedule.BufferMinutes < 0 || out.Schedule.BufferMinutes > 120 {
		res.addErr("schedule.buffer_minutes must be 0..120")
	}

	// sources
	for _, s := range out.Sources.Enabled {
		if !source.Known(domain.Source(s)) {
			res.addErr("sources.enabled: unknown source %q", s)
		}
	}
	if len(out.Sources.Enabled) == 0 {
		res.addWarn("sources.enabled is empty; no jobs will be fetched.")
	}
	s := &out.Sources.Search
	s.Query = strings.TrimSpace(s.Query)
	s.DatePosted = strings.ToLower(strings.TrimSpace(s.DatePosted))
	s.EmploymentType = strings.ToUpper(strings.TrimSpace(s.EmploymentType))
	if !datePostedValues[s.DatePosted] {
		res.addErr("sources.search.date_posted must be one of all, today, 3days, week, month")
	}
	if !employmentValues[s.EmploymentType] {
		res.addErr("sources.search.employment_type must be one of FULLTIME, PARTTIME, INTERN, CONTRACTOR")
	}
	if s.Limit < 0 {
		res.addErr("sources.search.limit must be >= 0")
	}
	if s.Query == "" {
		res.addWarn("sources.search.query is empty; search sources will return broad results.")
	}
	out.Sources.Adzuna.Country = strings.ToLower(strings.TrimSpace(out.Sources.Adzuna.Country))
	if out.Sources.Adzuna.Country == "" {
		out.Sources.Adzuna.Country = def.Sources.Adzuna.Country
	}

	checkBoard := func(name string, b *Board) {
		for i := range b.Companies {
			c := &b.Companies[i]
			c.Slug = strings.TrimSpace(c.Slug)
			c.Name = strings.TrimSpace(c.Name)
			if c.Slug == "" {
				res.addErr("sources.%s.companies[%d].slug is required", name, i)
			}
			if c.Name == "" {
				c.Name = c.Slug
			}
		}
		if enabled(out.Sources.Enabled, name) && len(b.Companies) == 0 {
			res.addWarn("%s is enabled but sources.%s.companies is empty.", name, name)
		}
	}
	checkBoard(string(domain.SourceGreenhouse), &out.Sources.Greenhouse)
	checkBoard(string(domain.SourceLever), &out.Sources.Lever)

	// polling sanity
	out.Polling.FetchCron = strings.TrimSpace(out.Polling.FetchCron)
	if out.Polling.FetchCron == "" {
		out.Polling.FetchCron = def.Polling.FetchCron
	}
	if _, err := cron.ParseStandard(out.Polling.FetchCron); err != nil {
		res.addErr("polling.fetch_cron: %v", err)
	}
	if out.Polling.TimeoutSeconds <= 0 {
		res.addErr("polling.timeout_seconds must be > 0")
	} else if out.Polling.TimeoutSeconds < 10 {
		res.addWarn("polling.timeout_seconds is very low (%d); slow sources will time out.", out.Polling.TimeoutSeconds)
	}
	if out.Polling.RetentionDays < 0 {
		res.addErr("polling.retention_days must be >= 0")
	}
	if out.Polling.HostRPS <= 0 {
		res.addErr("polling.host_rps must be > 0")
	} else if out.Polling.HostRPS > 10 {
		res.addWarn("polling.host_rps is high (%.1f) and may cause rate limits.", out.Polling.HostRPS)
	}
	if out.Polling.HostBurst < 1 {
		out.Polling.HostBurst = 1
	}

	// scoring
	for i, r := range out.Scoring.RoleKeywords {
		if strings.TrimSpace(r.Role) == "" {
			res.addErr("scoring.role_keywords[%d].role is required", i)
		}
		if len(r.Any) == 0 {
			res.addErr("scoring.role_keywords[%d].any must have at least 1 term", i)
		}
		for j, term := range r.Any {
			if strings.TrimSpace(term) == "" {
				res.addErr("scoring.role_keywords[%d].any[%d] cannot be empty", i, j)
			}
		}
	}

	return out, res
}

func enabled(list []string, name string) bool {
	for _, s := range list {
		if s == name {
			return true
		}
	}
	return false
}
