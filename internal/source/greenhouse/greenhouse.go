// Package greenhouse scrapes public Greenhouse job boards for a configured
// list of companies.
package greenhouse

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"daymark-engine/internal/domain"
	"daymark-engine/internal/source"
	"daymark-engine/internal/source/util"
)

const (
	DefaultBaseURL = "https://boards.greenhouse.io"
	maxDescription = 500
)

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

func (a *Adapter) Source() domain.Source { return domain.SourceGreenhouse }

// IsConfigured reports whether any board is listed.
func (a *Adapter) IsConfigured() bool { return len(a.companies) > 0 }

// Fetch walks every board. A board that fails is logged and skipped so one
// dead board never empties the whole source.
func (a *Adapter) Fetch(ctx context.Context, _ source.Params) ([]domain.Job, error) {
	var out []domain.Job
	for _, co := range a.companies {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		jobs, err := a.fetchBoard(ctx, co)
		if err != nil {
			log.Printf("[source:greenhouse] company=%q slug=%q err=%v", co.Name, co.Slug, err)
			continue
		}
		out = append(out, jobs...)
	}
	return out, nil
}

func (a *Adapter) fetchBoard(ctx context.Context, co domain.Company) ([]domain.Job, error) {
	res, err := util.Get(ctx, a.hc, a.limiter, a.baseURL+"/"+co.Slug, nil)
	if err != nil {
		return nil, fmt.Errorf("get board: %w", err)
	}
	defer res.Body.Close()

	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		return nil, fmt.Errorf("parse board html: %w", err)
	}

	fetched := a.now().UTC()
	seen := map[string]bool{}
	var jobs []domain.Job
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href := strings.TrimSpace(s.AttrOr("href", ""))
		if href == "" {
			return
		}
		abs := href
		if strings.HasPrefix(href, "/") {
			abs = a.baseURL + href
		}
		if !strings.HasPrefix(abs, a.baseURL) || !strings.Contains(abs, "/jobs/") {
			return
		}
		id := extractJobID(abs)
		if id == "" || seen[id] {
			return
		}
		seen[id] = true

		title := util.CleanText(s.Text())
		if looksLikeJunkTitle(title) {
			title = ""
		}
		loc := util.NormalizeLocation(s.Closest(".opening").Find(".location").First().Text())

		jobs = append(jobs, domain.Job{
			ID:             fmt.Sprintf("greenhouse-%s-%s", co.Slug, id),
			Company:        co.Name,
			Role:           title,
			Location:       loc,
			ApplicationURL: util.CanonicalURL(abs),
			DatePosted:     fetched.Truncate(24 * time.Hour),
			Source:         domain.SourceGreenhouse,
			FetchedAt:      &fetched,
		})
	})

	kept := jobs[:0]
	for i := range jobs {
		if jobs[i].Role == "" || jobs[i].Location == "" {
			if err := a.hydrate(ctx, &jobs[i]); err != nil {
				log.Printf("[source:greenhouse] hydrate url=%s err=%v", jobs[i].ApplicationURL, err)
			}
		}
		if jobs[i].Role == "" {
			continue
		}
		if jobs[i].Location == "" {
			jobs[i].Location = "Not specified"
		}
		jobs[i].Remote = util.LooksRemote(jobs[i].Location, jobs[i].Role)
		kept = append(kept, jobs[i])
	}
	return kept, nil
}

// hydrate fills title, location and description from the job page.
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
	if j.Role == "" {
		j.Role = util.CleanText(doc.Find("h1").First().Text())
	}
	if j.Location == "" {
		j.Location = util.NormalizeLocation(doc.Find(".location").First().Text())
	}
	if j.Description == "" {
		j.Description = util.Truncate(util.CleanText(doc.Find("#content").First().Text()), maxDescription)
	}
	return nil
}

// extractJobID returns the run of digits after /jobs/.
func extractJobID(u string) string {
	_, tail, ok := strings.Cut(u, "/jobs/")
	if !ok {
		return ""
	}
	end := 0
	for end < len(tail) && tail[end] >= '0' && tail[end] <= '9' {
		end++
	}
	return tail[:end]
}

func looksLikeJunkTitle(t string) bool {
	l := strings.ToLower(t)
	return l == "" || strings.Contains(l, "view") || strings.Contains(l, "apply")
}
