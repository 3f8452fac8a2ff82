package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mamadbah2/smartstore/internal/domain/models"
)

type profilesFile struct {
	Profiles []models.StorageProfile `yaml:"profiles"`
}

// LoadProfiles reads a storage-profile table from a YAML file of the form
//
//	profiles:
//	  - name: Tomato
//	    optimal_temp: 12
//	    optimal_humidity: 85
//	    shelf_life_days: 7
func LoadProfiles(path string) ([]models.StorageProfile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profiles file %s: %w", path, err)
	}

	var file profilesFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse profiles file %s: %w", path, err)
	}

	seen := make(map[string]struct{}, len(file.Profiles))
	for i, p := range file.Profiles {
		if p.Name == "" {
			return nil, fmt.Errorf("profile %d: name must not be empty", i)
		}
		if _, dup := seen[p.Name]; dup {
			return nil, fmt.Errorf("profile %q declared twice", p.Name)
		}
		seen[p.Name] = struct{}{}
	}
	if len(file.Profiles) == 0 {
		return nil, errors.New("profiles file declares no profiles")
	}

	return file.Profiles, nil
}
