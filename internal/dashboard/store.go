package dashboard

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/KaramelBytes/dashloom-cli/internal/utils"
)

const (
	recordFileName = "config.json"
	dataFileName   = "data.csv"
)

// ChartRef is one entry of a record's chart list. On disk it may be a plain
// type string or an object with a "type" field.
type ChartRef struct {
	ID   string `json:"id,omitempty"`
	Type string `json:"type"`
}

// UnmarshalJSON accepts both "bar" and {"type":"bar"}.
func (c *ChartRef) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*c = ChartRef{Type: s}
		return nil
	}
	var obj struct {
		ID   string `json:"id"`
		Type string `json:"type"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return fmt.Errorf("chart entry must be a string or an object with a type: %w", err)
	}
	*c = ChartRef{ID: obj.ID, Type: obj.Type}
	return nil
}

// Record is the structured state persisted beside the CSV text.
type Record struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	DataPath  string     `json:"data_path"`
	Charts    []ChartRef `json:"charts"`
	CreatedAt time.Time  `json:"created_at"`

	// Not serialized: whether config.json reached disk on the last Save.
	stored bool
}

// Stored reports whether the record was written to disk. A false value after
// Save means the dashboard exists only in memory for this process.
func (r *Record) Stored() bool { return r.stored }

// ChartTypes returns the stored tokens, skipping entries without a type.
func (r *Record) ChartTypes() []string {
	out := make([]string, 0, len(r.Charts))
	for _, c := range r.Charts {
		if c.Type != "" {
			out = append(out, c.Type)
		}
	}
	return out
}

// State is the minimal input needed to rebuild a dashboard.
type State struct {
	ID     string
	Title  string
	CSV    string
	Charts []string
}

// Store persists dashboard state under root/<id>/.
type Store struct {
	root string
	log  *utils.Logger
	now  func() time.Time
}

// NewStore returns a Store rooted at dir. A nil logger discards output.
func NewStore(dir string, log *utils.Logger) *Store {
	if log == nil {
		log = utils.NopLogger()
	}
	return &Store{root: dir, log: log, now: time.Now}
}

// Root returns the storage root directory.
func (s *Store) Root() string { return s.root }

// Dir returns the directory holding a dashboard's files.
func (s *Store) Dir(id string) string { return filepath.Join(s.root, id) }

// Save writes the CSV text and the structured record. Overwriting an existing
// id is allowed. A CSV write failure is returned; a record write failure is
// logged and reported through Record.Stored.
func (s *Store) Save(st State) (*Record, error) {
	if err := validateID(st.ID); err != nil {
		return nil, err
	}
	dir := s.Dir(st.ID)
	if err := utils.EnsureDir(dir); err != nil {
		return nil, fmt.Errorf("ensure dir: %w", err)
	}
	csvPath := filepath.Join(dir, dataFileName)
	if err := utils.SafeWriteFile(csvPath, []byte(st.CSV)); err != nil {
		return nil, fmt.Errorf("write csv: %w", err)
	}

	rec := &Record{
		ID:        st.ID,
		Title:     st.Title,
		DataPath:  csvPath,
		CreatedAt: s.now().UTC(),
	}
	if prev, err := s.LoadRecord(st.ID); err == nil && !prev.CreatedAt.IsZero() {
		rec.CreatedAt = prev.CreatedAt
	}
	charts := st.Charts
	if len(charts) > Slots {
		charts = charts[:Slots]
	}
	for i, t := range charts {
		rec.Charts = append(rec.Charts, ChartRef{ID: chartID(st.ID, i, t), Type: t})
	}

	data, err := utils.PrettyJSON(rec)
	if err == nil {
		err = utils.SafeWriteFile(filepath.Join(dir, recordFileName), data)
	}
	if err != nil {
		s.log.Warn("dashboard %s: record not persisted, keeping it in memory only: %v", st.ID, err)
		return rec, nil
	}
	rec.stored = true
	return rec, nil
}

// LoadRecord reads the structured record for id.
func (s *Store) LoadRecord(id string) (*Record, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	path := filepath.Join(s.Dir(id), recordFileName)
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, newError(KindNotFound, "load", fmt.Sprintf("dashboard %s not found", id), err)
		}
		return nil, fmt.Errorf("read record: %w", err)
	}
	var rec Record
	if err := json.Unmarshal(b, &rec); err != nil {
		return nil, newError(KindInvalidInput, "load", fmt.Sprintf("dashboard %s record is corrupt", id), err)
	}
	if rec.ID == "" {
		rec.ID = id
	}
	rec.stored = true
	return &rec, nil
}

// ReadCSV returns the CSV text referenced by rec. A missing or relative
// data_path resolves inside the dashboard directory, falling back to data.csv.
func (s *Store) ReadCSV(rec *Record) (string, error) {
	dir := s.Dir(rec.ID)
	path := rec.DataPath
	if path != "" && !filepath.IsAbs(path) {
		path = filepath.Join(dir, filepath.Base(path))
	}
	if path == "" || !fileExists(path) {
		path = filepath.Join(dir, dataFileName)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", newError(KindNotFound, "load", fmt.Sprintf("data for dashboard %s not found", rec.ID), err)
		}
		return "", fmt.Errorf("read csv: %w", err)
	}
	return string(b), nil
}

// Delete removes the dashboard directory.
func (s *Store) Delete(id string) error {
	if err := validateID(id); err != nil {
		return err
	}
	dir := s.Dir(id)
	if !fileExists(dir) {
		return newError(KindNotFound, "delete", fmt.Sprintf("dashboard %s not found", id), nil)
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("remove dashboard: %w", err)
	}
	return nil
}

// IDs lists dashboards that have a record on disk, sorted.
func (s *Store) IDs() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read dashboards dir: %w", err)
	}
	var ids []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if fileExists(filepath.Join(s.root, e.Name(), recordFileName)) {
			ids = append(ids, e.Name())
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func validateID(id string) error {
	if strings.TrimSpace(id) == "" {
		return newError(KindInvalidInput, "store", "dashboard id is required", nil)
	}
	if id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
		return newError(KindInvalidInput, "store", fmt.Sprintf("invalid dashboard id %q", id), nil)
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
