// Package citydata provides city dataset sources for the resolver.
package citydata

import (
	"context"
	"fmt"

	"github.com/okian/meetglobe/internal/domain/model"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// datasetKey is the top-level list holding the cities.
const datasetKey = "cities"

// FileSource reads a YAML document of the form
//
//	cities:
//	  - normalizedName: paris
//	    displayName: Paris
//	    lat: 48.8566
//	    lng: 2.3522
//	    countryCode: FR
//
// JSON files with the same shape are accepted too.
type FileSource struct {
	path string
}

// NewFileSource returns a source reading path on every Load.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Load implements geo.CitySource. Range checks are left to the resolver so
// a single bad entry does not reject the file.
func (s *FileSource) Load(_ context.Context) ([]model.City, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(s.path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrReadDataset, s.path, err)
	}
	var cities []model.City
	if err := k.UnmarshalWithConf(datasetKey, &cities, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrReadDataset, s.path, err)
	}
	return cities, nil
}
