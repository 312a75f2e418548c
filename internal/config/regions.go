package config

import (
	"fmt"
	"os"

	"github.com/Sparsh-Bhaskar/Sample-Fit/internal/domain"
	"gopkg.in/yaml.v3"
)

// DefaultRegions is the catalogue seeded when no regions file is configured.
func DefaultRegions() []domain.RegionSeed {
	return []domain.RegionSeed{
		{Name: "Kolkata (ER)", Capacity: 125},
		{Name: "Ghaziabad (NR)", Capacity: 225},
		{Name: "Mumbai (WR)", Capacity: 50},
		{Name: "Chennai (SR)", Capacity: 100},
		{Name: "Jaipur (NWR)", Capacity: 100},
	}
}

type regionsFile struct {
	Regions []domain.RegionSeed `yaml:"regions"`
}

// LoadRegions reads region seeds from a YAML file, or returns the defaults
// when path is empty.
func LoadRegions(path string) ([]domain.RegionSeed, error) {
	if path == "" {
		return DefaultRegions(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read regions file: %w", err)
	}

	var f regionsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse regions file %s: %w", path, err)
	}
	if len(f.Regions) == 0 {
		return nil, fmt.Errorf("regions file %s lists no regions", path)
	}
	seen := make(map[string]struct{}, len(f.Regions))
	for _, r := range f.Regions {
		if _, dup := seen[r.Name]; dup {
			return nil, fmt.Errorf("regions file %s: duplicate region %q", path, r.Name)
		}
		seen[r.Name] = struct{}{}
	}
	return f.Regions, nil
}
