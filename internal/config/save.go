package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// SaveAtomic validates cfg and writes it atomically, keeping the previous file as
// path.bak.
func SaveAtomic(path string, cfg Config) (Config, error) {
	out, res := NormalizeAndValidate(cfg)
	if !res.OK() {
		return cfg, res.Err()
	}

	b, err := yaml.Marshal(&out)
	if err != nil {
		return cfg, err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return cfg, err
	}

	tmp := path + ".tmp"
	bak := path + ".bak"

	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return cfg, err
	}

	_ = os.Remove(bak)
	_ = os.Rename(path, bak)

	if err := os.Rename(tmp, path); err != nil {
		return cfg, err
	}
	return out, nil
}
