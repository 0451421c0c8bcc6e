package poll

import (
	"daymark-engine/internal/config"
	"daymark-engine/internal/domain"
	"daymark-engine/internal/secrets"
	"daymark-engine/internal/source"
	"daymark-engine/internal/source/adzuna"
	"daymark-engine/internal/source/greenhouse"
	"daymark-engine/internal/source/jsearch"
	"daymark-engine/internal/source/lever"
	"daymark-engine/internal/source/remotive"
	"daymark-engine/internal/source/simplify"
	"daymark-engine/internal/source/util"
)

// BuildRegistry wires every adapter with the shared host limiter.
// Credentials are read from the keychain on each fetch.
func BuildRegistry(cfg config.Config) *source.Registry {
	limiter := util.NewHostLimiter(cfg.Polling.HostRPS, cfg.Polling.HostBurst)

	return source.NewRegistry(cfg.FetchTimeout(),
		simplify.New(cfg.Sources.Simplify.URL, limiter),
		jsearch.New("", secrets.Lookup(secrets.JSearchAPIKey), limiter),
		remotive.New("", limiter),
		adzuna.New("", secrets.Lookup(secrets.AdzunaAppID), secrets.Lookup(secrets.AdzunaAppKey), cfg.Sources.Adzuna.Country, limiter),
		greenhouse.New("", cfg.Sources.Greenhouse.Companies, limiter),
		lever.New("", cfg.Sources.Lever.Companies, limiter),
	)
}

// ParamsFrom maps the search section onto fetch params.
func ParamsFrom(cfg config.Config) source.Params {
	s := cfg.Sources.Search
	return source.Params{
		Query:          s.Query,
		Location:       s.Location,
		Remote:         s.Remote,
		EmploymentType: s.EmploymentType,
		DatePosted:     s.DatePosted,
		Page:           1,
		Limit:          s.Limit,
	}
}

// EnabledSources converts the config's enabled list.
func EnabledSources(cfg config.Config) []domain.Source {
	out := make([]domain.Source, 0, len(cfg.Sources.Enabled))
	for _, s := range cfg.Sources.Enabled {
		out = append(out, domain.Source(s))
	}
	return out
}
