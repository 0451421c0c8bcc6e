// Package lever reads the public Lever postings API for a configured list
// of companies.
package lever

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"

	"daymark-engine/internal/domain"
	"daymark-engine/internal/source"
	"daymark-engine/internal/source/util"
)

const (
	DefaultBaseURL = "https://api.lever.co"

	workers        = 8
	companyTimeout = 10 * time.Second
	maxDescription = 500
)

type posting struct {
	ID         string `json:"id"`
	Text       string `json:"text"`
	HostedURL  string `json:"hostedUrl"`
	CreatedAt  int64  `json:"createdAt"`
	Categories struct {
		Location   string `json:"location"`
		Team       string `json:"team"`
		Commitment string `json:"commitment"`
	} `json:"categories"`
	Description      string `json:"description"`
	DescriptionPlain string `json:"descriptionPlain"`
}

type Adapter struct {
	baseURL   string
	companies []domain.Company
	hc        *http.Client
	limiter   *util.HostLimiter
	now       func() time.Time
}

func New(baseURL string, companies []domain.Company, limiter *util.HostLimiter) *Adapter {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Adapter{
		baseURL:   strings.TrimRight(baseURL, "/"),
		companies: companies,
		hc:        util.NewClient(),
		limiter:   limiter,
		now:       time.Now,
	}
}

func (a *Adapter) Source() domain.Source { return domain.SourceLever }

func (a *Adapter) IsConfigured() bool { return len(a.companies) > 0 }

// Fetch reads every company with a small worker pool. Results keep the
// configured company order.
func (a *Adapter) Fetch(ctx context.Context, _ source.Params) ([]domain.Job, error) {
	batches := make([][]domain.Job, len(a.companies))
	work := make(chan int)

	var wg sync.WaitGroup
	for range min(workers, len(a.companies)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range work {
				co := a.companies[i]
				cctx, cancel := context.WithTimeout(ctx, companyTimeout)
				jobs, err := a.fetchCompany(cctx, co)
				cancel()
				if err != nil {
					log.Printf("[source:lever] company=%q slug=%q err=%v", co.Name, co.Slug, err)
					continue
				}
				batches[i] = jobs
			}
		}()
	}

	go func() {
		defer close(work)
		for i := range a.companies {
			select {
			case <-ctx.Done():
				return
			case work <- i:
			}
		}
	}()
	wg.Wait()

	var out []domain.Job
	for _, b := range batches {
		out = append(out, b...)
	}
	log.Printf("[source:lever] companies=%d jobs=%d", len(a.companies), len(out))
	return out, nil
}

func (a *Adapter) fetchCompany(ctx context.Context, co domain.Company) ([]domain.Job, error) {
	apiURL := fmt.Sprintf("%s/v0/postings/%s?mode=json", a.baseURL, co.Slug)

	var postings []posting
	if _, err := util.GetJSON(ctx, a.hc, a.limiter, apiURL, nil, &postings); err != nil {
		return nil, fmt.Errorf("lever get: %w", err)
	}

	fetched := a.now().UTC()
	out := make([]domain.Job, 0, len(postings))
	for _, p := range postings {
		title := strings.TrimSpace(p.Text)
		if p.ID == "" || p.HostedURL == "" || title == "" {
			continue
		}
		posted := fetched
		if p.CreatedAt > 0 {
			posted = time.UnixMilli(p.CreatedAt).UTC()
		}
		desc := p.DescriptionPlain
		if desc == "" {
			desc = util.StripHTML(p.Description)
		}
		loc := util.NormalizeLocation(p.Categories.Location)

		out = append(out, domain.Job{
			ID:             fmt.Sprintf("lever-%s-%s", co.Slug, p.ID),
			Company:        co.Name,
			Role:           title,
			Location:       loc,
			ApplicationURL: p.HostedURL,
			DatePosted:     posted.Truncate(24 * time.Hour),
			Source:         domain.SourceLever,
			Description:    util.Truncate(util.CleanText(desc), maxDescription),
			EmploymentType: p.Categories.Commitment,
			FetchedAt:      &fetched,
		})
	}

	for i := range out {
		if out[i].Location == "" {
			if err := a.hydrate(ctx, &out[i]); err != nil {
				log.Printf("[source:lever] hydrate url=%s err=%v", out[i].ApplicationURL, err)
			}
		}
		if out[i].Location == "" {
			out[i].Location = "Not specified"
		}
		out[i].Remote = util.LooksRemote(out[i].Location, out[i].Role)
	}
	return out, nil
}

// hydrate looks for a location on the hosted posting page.
func (a *Adapter) hydrate(ctx context.Context, j *domain.Job) error {
	res, err := util.Get(ctx, a.hc, a.limiter, j.ApplicationURL, nil)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		return err
	}
	for _, sel := range []string{
		"[itemprop='jobLocation']",
		"[data-qa='location']",
		".location",
		".posting-categories .location",
	} {
		if t := util.CleanText(doc.Find(sel).First().Text()); t != "" {
			j.Location = util.NormalizeLocation(t)
			return nil
		}
	}
	return nil
}
