package gis

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/forrest-fire-fund/cnx-backend/internal/cache"
	"github.com/forrest-fire-fund/cnx-backend/internal/metrics"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

var (
	// ErrNoBuildings means no footprint file exists for the village.
	ErrNoBuildings = eris.New("gis: no building data for village")
	// ErrInvalidUID rejects identifiers that could escape the buildings directory.
	ErrInvalidUID = eris.New("gis: invalid village uid")
)

var uidPattern = regexp.MustCompile(`^[A-Za-z0-9_.-]{1,64}$`)

// Buildings serves per-village building footprints from
// <Dir>/new-uid_<uid>.geojson, read on demand.
type Buildings struct {
	Dir   string
	Cache cache.Cache
}

// NewBuildings returns a footprint reader. A nil cache disables caching.
func NewBuildings(dir string, c cache.Cache) *Buildings {
	if c == nil {
		c = cache.Noop{}
	}
	return &Buildings{Dir: dir, Cache: c}
}

// Get returns the footprint collection for uid.
func (b *Buildings) Get(ctx context.Context, uid string) (json.RawMessage, error) {
	if !uidPattern.MatchString(uid) || strings.Contains(uid, "..") {
		return nil, ErrInvalidUID
	}

	if data, ok, err := b.Cache.Get(ctx, uid); err != nil {
		zap.L().Warn("building cache read failed", zap.String("uid", uid), zap.Error(err))
	} else if ok {
		metrics.BuildingCacheHitsTotal.Inc()
		return json.RawMessage(data), nil
	}
	metrics.BuildingCacheMissesTotal.Inc()

	path := filepath.Join(b.Dir, "new-uid_"+uid+".geojson")
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNoBuildings
	}
	if err != nil {
		return nil, eris.Wrapf(err, "gis: read buildings for %s", uid)
	}
	if !json.Valid(data) {
		return nil, eris.Errorf("gis: building file for %s is not valid JSON", uid)
	}

	if err := b.Cache.Set(ctx, uid, data); err != nil {
		zap.L().Warn("building cache write failed", zap.String("uid", uid), zap.Error(err))
	}

	return json.RawMessage(data), nil
}
