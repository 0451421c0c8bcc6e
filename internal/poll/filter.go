package poll

import (
	"strings"

	"daymark-engine/internal/domain"
)

// ContainsRedFlag reports whether any red flag term appears, ignoring case,
// in the job's role, company or description.
func ContainsRedFlag(j domain.Job, redFlags []string) bool {
	if len(redFlags) == 0 {
		return false
	}
	combined := strings.ToLower(j.Role + " " + j.Company + " " + j.Description)
	for _, flag := range redFlags {
		if flag == "" {
			continue
		}
		if strings.Contains(combined, strings.ToLower(flag)) {
			return true
		}
	}
	return false
}

// BlockedLocation reports whether loc contains any blocked term.
func BlockedLocation(loc string, block []string) bool {
	l := strings.ToLower(loc)
	for _, b := range block {
		if b != "" && strings.Contains(l, strings.ToLower(b)) {
			return true
		}
	}
	return false
}

// Filter drops jobs in blocked locations or carrying a red flag and returns
// the rest in order.
func Filter(jobs []domain.Job, block, redFlags []string) (kept []domain.Job, dropped int) {
	kept = make([]domain.Job, 0, len(jobs))
	for _, j := range jobs {
		if BlockedLocation(j.Location, block) || ContainsRedFlag(j, redFlags) {
			dropped++
			continue
		}
		kept = append(kept, j)
	}
	return kept, dropped
}
