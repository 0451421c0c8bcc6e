// Package adzuna queries the Adzuna job search API.
package adzuna

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"daymark-engine/internal/domain"
	"daymark-engine/internal/source"
	"daymark-engine/internal/source/util"
)

const (
	DefaultBaseURL = "https://api.adzuna.com/v1/api/jobs"

	defaultCountry  = "us"
	defaultQuery    = "software engineer"
	defaultPageSize = 20
	category        = "it-jobs"
	maxDescription  = 500
)

var countryCodes = map[string]string{
	"usa":            "us",
	"us":             "us",
	"united states":  "us",
	"uk":             "gb",
	"united kingdom": "gb",
	"canada":         "ca",
	"australia":      "au",
	"germany":        "de",
	"france":         "fr",
	"india":          "in",
	"netherlands":    "nl",
	"spain":          "es",
	"italy":          "it",
	"brazil":         "br",
	"mexico":         "mx",
	"poland":         "pl",
	"russia":         "ru",
	"south africa":   "za",
	"new zealand":    "nz",
	"singapore":      "sg",
	"austria":        "at",
	"belgium":        "be",
	"switzerland":    "ch",
}

var maxDaysOld = map[string]int{
	"today": 1,
	"3days": 3,
	"week":  7,
	"month": 30,
}

type rawJob struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Company struct {
		DisplayName string `json:"display_name"`
	} `json:"company"`
	Location struct {
		DisplayName string `json:"display_name"`
	} `json:"location"`
	RedirectURL  string  `json:"redirect_url"`
	Created      string  `json:"created"`
	Description  string  `json:"description"`
	ContractType string  `json:"contract_type"`
	ContractTime string  `json:"contract_time"`
	SalaryMin    float64 `json:"salary_min"`
	SalaryMax    float64 `json:"salary_max"`
}

type response struct {
	Results []rawJob `json:"results"`
	Count   int      `json:"count"`
}

type Adapter struct {
	baseURL string
	appID   source.Secret
	appKey  source.Secret
	country string
	hc      *http.Client
	limiter *util.HostLimiter
	now     func() time.Time
}

// New builds the adapter. country is the fallback Adzuna country code used
// when the search location names no known country.
func New(baseURL string, appID, appKey source.Secret, country string, limiter *util.HostLimiter) *Adapter {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if appID == nil {
		appID = source.Static("")
	}
	if appKey == nil {
		appKey = source.Static("")
	}
	country = strings.ToLower(strings.TrimSpace(country))
	if country == "" {
		country = defaultCountry
	}
	return &Adapter{
		baseURL: strings.TrimRight(baseURL, "/"),
		appID:   appID,
		appKey:  appKey,
		country: country,
		hc:      util.NewClient(),
		limiter: limiter,
		now:     time.Now,
	}
}

func (a *Adapter) Source() domain.Source { return domain.SourceAdzuna }

// IsConfigured needs both the app id and the app key.
func (a *Adapter) IsConfigured() bool { return a.appID() != "" && a.appKey() != "" }

func (a *Adapter) Fetch(ctx context.Context, p source.Params) ([]domain.Job, error) {
	id, key := a.appID(), a.appKey()
	if id == "" || key == "" {
		log.Printf("[source:adzuna] ADZUNA_APP_ID / ADZUNA_APP_KEY not set, skipping")
		return nil, nil
	}

	h := http.Header{}
	h.Set("Accept", "application/json")

	var body response
	if _, err := util.GetJSON(ctx, a.hc, a.limiter, a.searchURL(p, id, key), h, &body); err != nil {
		var se *util.StatusError
		if errors.As(err, &se) {
			switch se.Code {
			case http.StatusUnauthorized:
				log.Printf("[source:adzuna] authentication failed, check credentials")
			case http.StatusTooManyRequests:
				log.Printf("[source:adzuna] rate limit exceeded")
			}
		}
		return nil, fmt.Errorf("adzuna: %w", err)
	}

	fetched := a.now().UTC()
	out := make([]domain.Job, 0, len(body.Results))
	for _, r := range body.Results {
		out = append(out, normalize(r, fetched))
	}
	return out, nil
}

func (a *Adapter) searchURL(p source.Params, id, key string) string {
	page := p.Page
	if page < 1 {
		page = 1
	}
	size := p.Limit
	if size <= 0 {
		size = defaultPageSize
	}
	what := p.Query
	if what == "" {
		what = defaultQuery
	}

	q := url.Values{}
	q.Set("app_id", id)
	q.Set("app_key", key)
	q.Set("results_per_page", strconv.Itoa(size))
	q.Set("category", category)
	q.Set("what", what)
	if where := whereOf(p.Location); where != "" {
		q.Set("where", where)
	}
	if days, ok := maxDaysOld[p.DatePosted]; ok {
		q.Set("max_days_old", strconv.Itoa(days))
	}
	switch t := strings.ToUpper(p.EmploymentType); {
	case strings.Contains(t, "FULL"):
		q.Set("full_time", "1")
		q.Set("part_time", "0")
	case strings.Contains(t, "PART"):
		q.Set("full_time", "0")
		q.Set("part_time", "1")
	}

	return fmt.Sprintf("%s/%s/search/%d?%s", a.baseURL, a.countryFor(p.Location), page, q.Encode())
}

// countryFor picks the Adzuna country from the comma separated parts of
// loc, last part first, and falls back to the configured country.
func (a *Adapter) countryFor(loc string) string {
	parts := strings.Split(strings.ToLower(loc), ",")
	for i := len(parts) - 1; i >= 0; i-- {
		if code, ok := countryCodes[strings.TrimSpace(parts[i])]; ok {
			return code
		}
	}
	return a.country
}

// whereOf is the first location part, unless that part is itself a country.
func whereOf(loc string) string {
	if strings.TrimSpace(loc) == "" {
		return ""
	}
	first := strings.TrimSpace(strings.ToLower(strings.Split(loc, ",")[0]))
	if _, isCountry := countryCodes[first]; isCountry {
		return ""
	}
	return first
}

func normalize(r rawJob, fetched time.Time) domain.Job {
	company := r.Company.DisplayName
	if company == "" {
		company = "Unknown Company"
	}
	role := r.Title
	if role == "" {
		role = "Unknown Role"
	}
	loc := r.Location.DisplayName
	if loc == "" {
		loc = "Not specified"
	}

	posted := fetched.Truncate(24 * time.Hour)
	if d, err := time.Parse("2006-01-02", strings.SplitN(r.Created, "T", 2)[0]); err == nil {
		posted = d
	}

	var contract []string
	for _, s := range []string{r.ContractType, r.ContractTime} {
		if s != "" {
			contract = append(contract, s)
		}
	}

	return domain.Job{
		ID:             "adzuna-" + r.ID,
		Company:        company,
		Role:           role,
		Location:       loc,
		ApplicationURL: r.RedirectURL,
		DatePosted:     posted,
		Source:         domain.SourceAdzuna,
		Salary:         salary(r.SalaryMin, r.SalaryMax),
		Description:    util.Truncate(r.Description, maxDescription),
		EmploymentType: strings.Join(contract, " - "),
		Remote:         util.LooksRemote(loc, r.Title),
		FetchedAt:      &fetched,
	}
}

func salary(lo, hi float64) string {
	l, h := int64(math.Round(max(lo, 0))), int64(math.Round(max(hi, 0)))
	switch {
	case l == 0 && h == 0:
		return ""
	case l > 0 && h > 0:
		return fmt.Sprintf("$%s-$%s/year", util.Thousands(l), util.Thousands(h))
	default:
		return fmt.Sprintf("$%s/year", util.Thousands(max(l, h)))
	}
}
