// Package simplify reads the SimplifyJobs internship list, a README whose
// listings live in an HTML table.
package simplify

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"daymark-engine/internal/domain"
	"daymark-engine/internal/source"
	"daymark-engine/internal/source/util"
)

const DefaultURL = "https://raw.githubusercontent.com/SimplifyJobs/Summer2026-Internships/dev/README.md"

const (
	markNoSponsorship = "🛂"
	markUSOnly        = "🇺🇸"
	markClosed        = "🔒"
	markSubEntry      = "↳"
	redirectMarker    = "simplify.jobs/p/"
)

var (
	brSplit = regexp.MustCompile(`(?i)<\s*/?\s*br\s*/?\s*>`)
	ageDays = regexp.MustCompile(`(\d+)d`)
	marks   = strings.NewReplacer("🛂", "", "🇺🇸", "", "🔒", "", "🔥", "", "🎓", "", "↳", "", "**", "")
)

type Adapter struct {
	url     string
	hc      *http.Client
	limiter *util.HostLimiter
	now     func() time.Time
}

// New returns an adapter reading from url, or DefaultURL when empty.
func New(url string, limiter *util.HostLimiter) *Adapter {
	if strings.TrimSpace(url) == "" {
		url = DefaultURL
	}
	return &Adapter{url: url, hc: util.NewClient(), limiter: limiter, now: time.Now}
}

func (a *Adapter) Source() domain.Source { return domain.SourceSimplify }

func (a *Adapter) IsConfigured() bool { return true }

// Fetch downloads and parses the list. Params are ignored; the list is
// filtered downstream.
func (a *Adapter) Fetch(ctx context.Context, _ source.Params) ([]domain.Job, error) {
	res, err := util.Get(ctx, a.hc, a.limiter, a.url, nil)
	if err != nil {
		return nil, fmt.Errorf("simplify get: %w", err)
	}
	defer res.Body.Close()

	jobs, err := Parse(res.Body, a.now())
	if err != nil {
		return nil, fmt.Errorf("simplify parse: %w", err)
	}
	log.Printf("[source:simplify] parsed=%d", len(jobs))
	return jobs, nil
}

// Parse extracts open listings from the README table. The header row and
// rows with fewer than four cells are skipped, as are closed listings and
// listings without an application link. A sub-entry row inherits the company
// of the last full row.
func Parse(r io.Reader, now time.Time) ([]domain.Job, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}

	fetched := now.UTC()
	var (
		jobs        []domain.Job
		lastCompany string
	)
	doc.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		cells := tr.ChildrenFiltered("td")
		if cells.Length() < 4 {
			return
		}
		companyCell, roleCell := cells.Eq(0), cells.Eq(1)
		locationCell, applyCell := cells.Eq(2), cells.Eq(3)

		company, sub := parseCompany(companyCell, lastCompany)
		if !sub {
			lastCompany = company
		}

		if strings.Contains(applyCell.Text(), markClosed) {
			return
		}
		link := parseLink(applyCell)
		if link == "" {
			return
		}

		roleRaw := roleCell.Text()
		role := clean(roleRaw)
		location := parseLocation(locationCell)
		noSponsorship := strings.Contains(roleRaw, markNoSponsorship)

		age := ""
		if cells.Length() > 4 {
			age = cells.Eq(4).Text()
		}

		jobs = append(jobs, domain.Job{
			ID:             util.HashID(company, role, location),
			Company:        company,
			Role:           role,
			Location:       location,
			ApplicationURL: link,
			DatePosted:     postedDate(age, now),
			Source:         domain.SourceSimplify,
			Sponsorship:    !noSponsorship,
			NoSponsorship:  noSponsorship,
			USOnly:         strings.Contains(roleRaw, markUSOnly),
			Remote:         util.LooksRemote(location),
			EmploymentType: "INTERN",
			FetchedAt:      &fetched,
		})
	})
	return jobs, nil
}

func parseCompany(cell *goquery.Selection, last string) (string, bool) {
	if strings.Contains(cell.Text(), markSubEntry) {
		return last, true
	}
	if a := cell.Find("a").First(); a.Length() > 0 {
		if name := clean(a.Text()); name != "" {
			return name, false
		}
	}
	return clean(cell.Text()), false
}

func parseLocation(cell *goquery.Selection) string {
	if cell.Find("details").Length() > 0 {
		if s := clean(cell.Find("summary").First().Text()); s != "" {
			return s
		}
		return "Multiple Locations"
	}

	inner, err := cell.Html()
	if err != nil {
		return clean(cell.Text())
	}
	var locs []string
	for _, part := range brSplit.Split(inner, -1) {
		if p := clean(util.StripHTML(part)); p != "" {
			locs = append(locs, p)
		}
	}
	switch len(locs) {
	case 0:
		return clean(cell.Text())
	case 1:
		return locs[0]
	default:
		return fmt.Sprintf("%s (+%d more)", locs[0], len(locs)-1)
	}
}

// parseLink prefers the direct company link over the Simplify redirect.
func parseLink(cell *goquery.Selection) string {
	var direct, first string
	cell.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href := strings.TrimSpace(a.AttrOr("href", ""))
		if href == "" {
			return true
		}
		if first == "" {
			first = href
		}
		if !strings.Contains(href, redirectMarker) {
			direct = href
			return false
		}
		return true
	})
	if direct != "" {
		return direct
	}
	return first
}

// postedDate turns an age like "3d" into the date that many days before now.
// Anything else is today.
func postedDate(age string, now time.Time) time.Time {
	day := now.UTC().Truncate(24 * time.Hour)
	m := ageDays.FindStringSubmatch(clean(age))
	if m == nil {
		return day
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return day
	}
	return day.AddDate(0, 0, -n)
}

func clean(s string) string {
	s = marks.Replace(s)
	s = util.CleanText(s)
	s = strings.TrimLeft(s, "-• ")
	return strings.TrimSpace(s)
}
