package gis

import (
	"os"

	"github.com/goccy/go-yaml"
	"github.com/rotisserie/eris"
)

// Manifest lists the overlay datasets to cache at startup.
//
//	overlays:
//	  - key: forestTypes
//	    file: forrest-type-cnx.json
type Manifest struct {
	Overlays []Overlay `yaml:"overlays"`
}

// LoadManifest reads an overlay manifest. An empty path returns the built-in list.
func LoadManifest(path string) ([]Overlay, error) {
	if path == "" {
		return DefaultOverlays, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "gis: read manifest %s", path)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, eris.Wrapf(err, "gis: parse manifest %s", path)
	}

	seen := make(map[string]bool, len(m.Overlays))
	for i, o := range m.Overlays {
		if o.Key == "" || o.File == "" {
			return nil, eris.Errorf("gis: manifest entry %d needs key and file", i)
		}
		if seen[o.Key] {
			return nil, eris.Errorf("gis: manifest key %q listed twice", o.Key)
		}
		seen[o.Key] = true
	}

	return m.Overlays, nil
}
