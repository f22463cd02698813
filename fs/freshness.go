package fs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fwojciec/penalty"
)

// Ensure FreshnessStore implements penalty.FreshnessStore at compile time.
var _ penalty.FreshnessStore = (*FreshnessStore)(nil)

// FreshnessStore keeps the sync marker in a small JSON file.
// Writes go to a temporary file that is renamed over the old one.
type FreshnessStore struct {
	path string
}

// NewFreshnessStore returns a store backed by the file at path.
func NewFreshnessStore(path string) *FreshnessStore {
	return &FreshnessStore{path: path}
}

// LastSync reads the marker. A missing file means no sync has completed.
func (s *FreshnessStore) LastSync(ctx context.Context) (*penalty.SyncMarker, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	var raw struct {
		LastUpdate string `json:"last_update"`
		RunID      string `json:"run_id"`
		FromYear   int    `json:"from_year"`
		ToYear     int    `json:"to_year"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, penalty.Errorf(penalty.EINVALID, "corrupt sync marker %s: %v", s.path, err)
	}

	lastUpdate, err := parseMarkerTime(raw.LastUpdate)
	if err != nil {
		return nil, penalty.Errorf(penalty.EINVALID, "corrupt sync marker %s: bad last_update %q", s.path, raw.LastUpdate)
	}
	return &penalty.SyncMarker{
		LastUpdate: lastUpdate,
		RunID:      raw.RunID,
		FromYear:   raw.FromYear,
		ToYear:     raw.ToYear,
	}, nil
}

// parseMarkerTime accepts RFC 3339 and zone-less ISO 8601 timestamps, the
// latter as local time.
func parseMarkerTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	return time.ParseInLocation("2006-01-02T15:04:05.999999999", s, time.Local)
}

// MarkSynced replaces the marker.
func (s *FreshnessStore) MarkSynced(ctx context.Context, marker penalty.SyncMarker) error {
	data, err := json.MarshalIndent(marker, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace sync marker: %w", err)
	}
	return nil
}
