package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// CompaniesFile is the optional <data>/companies.yml that lists ATS board
// companies apart from the main config.
type CompaniesFile struct {
	Sources struct {
		Greenhouse Board `yaml:"greenhouse"`
		Lever      Board `yaml:"lever"`
	} `yaml:"sources"`
}

// OverlayCompanies replaces the board company lists with the ones in
// companiesPath. A missing file leaves cfg unchanged.
func OverlayCompanies(cfg *Config, companiesPath string) error {
	b, err := os.ReadFile(companiesPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}

	var cf CompaniesFile
	if err := yaml.Unmarshal(b, &cf); err != nil {
		return fmt.Errorf("parse %s: %w", companiesPath, err)
	}

	if len(cf.Sources.Greenhouse.Companies) > 0 {
		cfg.Sources.Greenhouse.Companies = cf.Sources.Greenhouse.Companies
	}
	if len(cf.Sources.Lever.Companies) > 0 {
		cfg.Sources.Lever.Companies = cf.Sources.Lever.Companies
	}
	return nil
}
