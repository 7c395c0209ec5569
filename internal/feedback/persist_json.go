package feedback

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// jsonPersister serializes the whole table to a single JSON file on every
// write. The write is atomic (temp file + rename) so a crash mid-write
// leaves the previous state intact rather than a corrupt file.
type jsonPersister struct {
	path string
}

// stateFile is the on-disk format.
type stateFile struct {
	Version int         `json:"version"`
	Entries []fileEntry `json:"entries"`
}

type fileEntry struct {
	Query     string    `json:"query"`
	ToolID    string    `json:"tool_id"`
	Score     float64   `json:"score"`
	UpdatedAt time.Time `json:"updated_at"`
}

func newJSONPersister(path string) *jsonPersister {
	return &jsonPersister{path: path}
}

func (p *jsonPersister) load() (map[key]Entry, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var sf stateFile
	if err := json.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("corrupt feedback state: %w", err)
	}

	entries := make(map[key]Entry, len(sf.Entries))
	for _, fe := range sf.Entries {
		if fe.Query == "" || fe.ToolID == "" {
			continue
		}
		entries[key{Query: fe.Query, ToolID: fe.ToolID}] = Entry{
			Score:     fe.Score,
			UpdatedAt: fe.UpdatedAt,
		}
	}
	return entries, nil
}

func (p *jsonPersister) store(all map[key]Entry, _ key, _ Entry) error {
	sf := stateFile{Version: 1, Entries: make([]fileEntry, 0, len(all))}
	for k, e := range all {
		sf.Entries = append(sf.Entries, fileEntry{
			Query:     k.Query,
			ToolID:    k.ToolID,
			Score:     e.Score,
			UpdatedAt: e.UpdatedAt,
		})
	}

	data, err := json.MarshalIndent(sf, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(p.path), 0o755); err != nil {
		return err
	}

	tmp := p.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, p.path)
}

func (p *jsonPersister) close() error {
	return nil
}
