package gis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrMandatoryData marks a failure to read the village or plan file.
// The server cannot start without them.
var ErrMandatoryData = eris.New("gis: mandatory dataset unavailable")

// Loader reads the startup datasets from disk.
type Loader struct {
	VillagesPath string
	PlansPath    string
	OverlayDir   string
	Overlays     []Overlay
	Log          *zap.Logger
}

// Load reads the two mandatory files and every overlay. Overlay failures are
// logged and recorded as nil; mandatory failures are wrapped in ErrMandatoryData.
func (l Loader) Load(ctx context.Context) (*Datasets, error) {
	log := l.Log
	if log == nil {
		log = zap.L()
	}

	log.Info("loading data files into memory")

	features, err := ReadFeatures(l.VillagesPath)
	if err != nil {
		return nil, eris.Wrapf(ErrMandatoryData, "%v", err)
	}

	data, err := os.ReadFile(l.PlansPath)
	if err != nil {
		return nil, eris.Wrapf(ErrMandatoryData, "gis: read %s: %v", l.PlansPath, err)
	}
	plans, err := ParsePlans(data)
	if err != nil {
		return nil, eris.Wrapf(ErrMandatoryData, "%v", err)
	}

	overlays := l.loadOverlays(ctx, log)

	log.Info("datasets loaded",
		zap.Int("villages", len(features)),
		zap.Int("community_plans", len(plans)),
		zap.Int("overlays", len(overlays)),
	)

	keys := make([]string, 0, len(l.Overlays))
	for _, o := range l.Overlays {
		keys = append(keys, o.Key)
	}

	return &Datasets{Features: features, Plans: plans, Overlays: overlays, OverlayKeys: keys}, nil
}

// loadOverlays reads overlay files concurrently. It never fails.
func (l Loader) loadOverlays(ctx context.Context, log *zap.Logger) map[string]json.RawMessage {
	var mu sync.Mutex
	out := make(map[string]json.RawMessage, len(l.Overlays))

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, o := range l.Overlays {
		o := o
		g.Go(func() error {
			raw, err := readOverlay(filepath.Join(l.OverlayDir, o.File))
			switch {
			case errors.Is(err, fs.ErrNotExist):
				log.Warn("overlay file not found", zap.String("dataset", o.Key), zap.String("file", o.File))
			case err != nil:
				log.Error("overlay file failed to load", zap.String("dataset", o.Key), zap.String("file", o.File), zap.Error(err))
			default:
				log.Info("cached overlay", zap.String("dataset", o.Key), zap.Int("bytes", len(raw)))
			}

			mu.Lock()
			out[o.Key] = raw
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return out
}

func readOverlay(path string) (json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if !json.Valid(data) {
		return nil, eris.Errorf("gis: %s is not valid JSON", filepath.Base(path))
	}
	return json.RawMessage(bytes.TrimSpace(data)), nil
}

// ReadFeatures reads and decodes a GeoJSON feature collection.
func ReadFeatures(path string) ([]Feature, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "gis: read %s", path)
	}
	return ParseFeatures(data)
}

// ParseFeatures decodes a feature collection, keeping numbers as json.Number
// so identifiers and codes round-trip exactly.
func ParseFeatures(data []byte) ([]Feature, error) {
	var fc struct {
		Features []Feature `json:"features"`
	}
	if err := unmarshalNumbers(data, &fc); err != nil {
		return nil, eris.Wrap(err, "gis: decode feature collection")
	}
	if fc.Features == nil {
		return nil, eris.New("gis: feature collection has no features array")
	}
	for i := range fc.Features {
		if fc.Features[i].Properties == nil {
			fc.Features[i].Properties = map[string]any{}
		}
	}
	return fc.Features, nil
}
