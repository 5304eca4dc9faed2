package villages

import (
	"fmt"
	"strings"

	"github.com/forrest-fire-fund/cnx-backend/internal/metrics"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Batch keys that are not plain overlays.
const (
	KeyVillages            = "villages"
	KeyVillagesLight       = "villagesLight"
	KeyStats               = "stats"
	KeyBurnAreasSimplified = "burnAreasSimplified"
)

// BatchResult is the body of a batch response, minus the success flag.
type BatchResult struct {
	Data      map[string]any    `json:"data"`
	Requested []any             `json:"requested"`
	Available []string          `json:"available"`
	Errors    map[string]string `json:"errors,omitempty"`
}

// AvailableDatasets lists every key the batch endpoint understands.
func (s *Snapshot) AvailableDatasets() []string {
	keys := []string{KeyVillages, KeyVillagesLight, KeyStats}
	keys = append(keys, s.OverlayKeys()...)
	return append(keys, KeyBurnAreasSimplified)
}

// Batch resolves each requested key independently. A key that fails or is
// unknown is reported in Errors and does not affect the others.
func (s *Snapshot) Batch(requested []any) BatchResult {
	available := s.AvailableDatasets()
	known := make(map[string]bool, len(available))
	for _, k := range available {
		known[k] = true
	}

	res := BatchResult{
		Data:      map[string]any{},
		Requested: requested,
		Available: available,
	}

	for _, item := range requested {
		key, isString := item.(string)
		if !isString {
			key = fmt.Sprint(item)
		}

		if !isString || !known[key] {
			res.addError(key, fmt.Sprintf("Unknown dataset: %s. Available: %s", key, strings.Join(available, ", ")))
			metrics.BatchDatasetsTotal.WithLabelValues("unknown", "error").Inc()
			continue
		}

		v, err := s.resolve(key)
		if err != nil {
			zap.L().Warn("batch dataset failed", zap.String("dataset", key), zap.Error(err))
			res.addError(key, err.Error())
			metrics.BatchDatasetsTotal.WithLabelValues(key, "error").Inc()
			continue
		}
		res.Data[key] = v
		metrics.BatchDatasetsTotal.WithLabelValues(key, "ok").Inc()
	}

	return res
}

func (r *BatchResult) addError(key, msg string) {
	if r.Errors == nil {
		r.Errors = map[string]string{}
	}
	r.Errors[key] = msg
}

// resolve produces one dataset. Panics are turned into errors.
func (s *Snapshot) resolve(key string) (v any, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = eris.Errorf("villages: dataset %s: %v", key, p)
		}
	}()

	switch key {
	case KeyVillages:
		return s.SummaryVillages(), nil
	case KeyVillagesLight:
		return s.LightVillages(), nil
	case KeyStats:
		return s.Stats(), nil
	case KeyBurnAreasSimplified:
		burns, _, err := s.SimplifiedBurnAreas()
		if eris.Is(err, ErrNoBurnAreas) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return burns, nil
	default:
		if raw := s.Overlay(key); raw != nil {
			return raw, nil
		}
		return nil, nil
	}
}
