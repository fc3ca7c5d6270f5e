package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/KaramelBytes/dashloom-cli/internal/analysis"
	"github.com/KaramelBytes/dashloom-cli/internal/catalog"
	"github.com/KaramelBytes/dashloom-cli/internal/utils"
)

// DefaultTitle is used when neither the caller nor the config supplies one.
const DefaultTitle = "AI Dashboard"

// ErrCatalogDisabled is returned by History when no catalog is configured.
var ErrCatalogDisabled = errors.New("catalog is disabled")

// Catalog is the index the Service reports to. *catalog.Catalog satisfies it.
type Catalog interface {
	Upsert(ctx context.Context, e catalog.Entry) error
	Get(ctx context.Context, id string) (catalog.Entry, bool, error)
	Remove(ctx context.Context, id string) error
	List(ctx context.Context) ([]catalog.Entry, error)
	Record(ctx context.Context, dashboardID, action string, charts int) error
	History(ctx context.Context, dashboardID string) ([]catalog.Event, error)
}

// Result is the envelope returned for a built dashboard. On failure only
// Success, Error and Kind are set.
type Result struct {
	Success     bool             `json:"success" yaml:"success"`
	Error       string           `json:"error,omitempty" yaml:"error,omitempty"`
	Kind        string           `json:"error_kind,omitempty" yaml:"error_kind,omitempty"`
	DashboardID string           `json:"dashboard_id,omitempty" yaml:"dashboard_id,omitempty"`
	Title       string           `json:"title,omitempty" yaml:"title,omitempty"`
	ChartTypes  []string         `json:"chart_types,omitempty" yaml:"chart_types,omitempty"`
	Charts      []ChartSpec      `json:"charts,omitempty" yaml:"charts,omitempty"`
	Skipped     []SkippedSlot    `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	Analysis    *analysis.Report `json:"analysis,omitempty" yaml:"analysis,omitempty"`
	Stored      bool             `json:"stored" yaml:"stored"`
	CreatedAt   *time.Time       `json:"created_at,omitempty" yaml:"created_at,omitempty"`
}

// Failure wraps err in a Result envelope.
func Failure(err error) *Result {
	if err == nil {
		return &Result{Success: true}
	}
	return &Result{Error: err.Error(), Kind: KindOf(err).String()}
}

func (r *Result) clone() *Result {
	if r == nil {
		return nil
	}
	c := *r
	c.ChartTypes = append([]string(nil), r.ChartTypes...)
	c.Charts = append([]ChartSpec(nil), r.Charts...)
	c.Skipped = append([]SkippedSlot(nil), r.Skipped...)
	return &c
}

// Options configures a Service.
type Options struct {
	Dir          string
	DefaultTitle string
	CacheSize    int
	Analysis     analysis.Options
	// Catalog may be nil to run without an index.
	Catalog Catalog
	Logger  *utils.Logger
}

// Service ties the pipeline to storage, the cache and the catalog.
type Service struct {
	store   *Store
	pipe    *Pipeline
	cache   *Cache
	catalog Catalog
	log     *utils.Logger
	title   string

	// Dashboards whose record could not be written live here until deleted
	// or saved again, whatever the cache size.
	mu      sync.Mutex
	memOnly map[string]*Result
}

// NewService builds a Service from opts.
func NewService(opts Options) (*Service, error) {
	if strings.TrimSpace(opts.Dir) == "" {
		return nil, fmt.Errorf("dashboards dir is required")
	}
	log := opts.Logger
	if log == nil {
		log = utils.NopLogger()
	}
	cache, err := NewCache(opts.CacheSize)
	if err != nil {
		return nil, err
	}
	title := strings.TrimSpace(opts.DefaultTitle)
	if title == "" {
		title = DefaultTitle
	}
	return &Service{
		store:   NewStore(opts.Dir, log),
		pipe:    NewPipeline(opts.Analysis, log),
		cache:   cache,
		catalog: opts.Catalog,
		log:     log,
		title:   title,
		memOnly: map[string]*Result{},
	}, nil
}

// Store exposes the underlying store.
func (s *Service) Store() *Store { return s.store }

// Cache exposes the dashboard cache.
func (s *Service) Cache() *Cache { return s.cache }

// Analyze classifies csv and recommends charts without storing anything.
func (s *Service) Analyze(csv string) (*analysis.Report, error) {
	rep, _, err := s.pipe.Analyze(csv)
	return rep, err
}

// Create builds a dashboard from csv and persists it under id. The CSV is
// validated before anything is written. Record and catalog write failures are
// logged; the returned Result reports whether the record reached disk.
func (s *Service) Create(ctx context.Context, id, title, csv string, charts []string) (*Result, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	plan, rep, err := s.pipe.Build(id, csv, charts)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(title) == "" {
		title = s.title
	}
	rec, err := s.store.Save(State{ID: id, Title: title, CSV: csv, Charts: plan.ChartTypes})
	if err != nil {
		return nil, fmt.Errorf("save dashboard %s: %w", id, err)
	}
	res := newResult(rec, plan, rep)
	if perr := plan.Partial(); perr != nil {
		s.log.Info("dashboard %s: %v", id, perr)
	}

	s.setMemOnly(res)
	s.catalogUpsert(ctx, rec)
	s.catalogRecord(ctx, id, catalog.ActionCreate, len(res.Charts))
	s.cache.Add(res)
	s.log.Info("dashboard %s created with %d charts", id, len(res.Charts))
	return res, nil
}

// Get returns the dashboard for id, rebuilding it from storage on a cache miss.
func (s *Service) Get(ctx context.Context, id string) (*Result, error) {
	if res, ok := s.cache.Get(id); ok {
		s.log.Debug("dashboard %s served from cache", id)
		return res, nil
	}
	if res, ok := s.getMemOnly(id); ok {
		return res, nil
	}
	rec, err := s.store.LoadRecord(id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.dropStale(ctx, id)
		}
		return nil, err
	}
	csv, err := s.store.ReadCSV(rec)
	if err != nil {
		return nil, err
	}
	plan, rep, err := s.pipe.Build(id, csv, rec.ChartTypes())
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(rec.Title) == "" {
		rec.Title = s.title
	}
	res := newResult(rec, plan, rep)
	s.log.Info("dashboard %s reconstructed from %s", id, s.store.Dir(id))
	s.catalogRecord(ctx, id, catalog.ActionLoad, len(res.Charts))
	s.cache.Add(res)
	return res, nil
}

// Delete removes a stored dashboard and forgets it in the cache and catalog.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(id); err != nil {
		return err
	}
	s.cache.Remove(id)
	s.mu.Lock()
	delete(s.memOnly, id)
	s.mu.Unlock()
	if s.catalog != nil {
		if err := s.catalog.Remove(ctx, id); err != nil {
			s.log.Warn("catalog: %v", err)
		}
	}
	s.catalogRecord(ctx, id, catalog.ActionDelete, 0)
	s.log.Info("dashboard %s deleted", id)
	return nil
}

// List returns known dashboards. The catalog is authoritative when present;
// otherwise, or if it fails, the storage directory is scanned.
func (s *Service) List(ctx context.Context) ([]catalog.Entry, error) {
	if s.catalog != nil {
		entries, err := s.catalog.List(ctx)
		if err == nil {
			return entries, nil
		}
		s.log.Warn("catalog list failed, scanning %s: %v", s.store.Root(), err)
	}
	ids, err := s.store.IDs()
	if err != nil {
		return nil, err
	}
	out := make([]catalog.Entry, 0, len(ids))
	for _, id := range ids {
		rec, err := s.store.LoadRecord(id)
		if err != nil {
			s.log.Warn("skipping %s: %v", id, err)
			continue
		}
		out = append(out, catalog.Entry{ID: rec.ID, Title: rec.Title, Charts: rec.ChartTypes(), CreatedAt: rec.CreatedAt})
	}
	return out, nil
}

// History returns the catalog events for id.
func (s *Service) History(ctx context.Context, id string) ([]catalog.Event, error) {
	if s.catalog == nil {
		return nil, ErrCatalogDisabled
	}
	return s.catalog.History(ctx, id)
}

// ExportCSV returns the CSV text stored for id.
func (s *Service) ExportCSV(id string) (string, error) {
	rec, err := s.store.LoadRecord(id)
	if err != nil {
		return "", err
	}
	return s.store.ReadCSV(rec)
}

func (s *Service) setMemOnly(res *Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if res.Stored {
		delete(s.memOnly, res.DashboardID)
		return
	}
	s.memOnly[res.DashboardID] = res.clone()
}

func (s *Service) getMemOnly(id string) (*Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, ok := s.memOnly[id]
	if !ok {
		return nil, false
	}
	return res.clone(), true
}

// dropStale removes a catalog entry whose files are gone from disk.
func (s *Service) dropStale(ctx context.Context, id string) {
	if s.catalog == nil {
		return
	}
	if _, ok, err := s.catalog.Get(ctx, id); err != nil || !ok {
		return
	}
	s.log.Warn("dashboard %s is catalogued but missing from %s; removing catalog entry", id, s.store.Root())
	if err := s.catalog.Remove(ctx, id); err != nil {
		s.log.Warn("catalog: %v", err)
	}
}

func (s *Service) catalogUpsert(ctx context.Context, rec *Record) {
	if s.catalog == nil {
		return
	}
	e := catalog.Entry{ID: rec.ID, Title: rec.Title, Charts: rec.ChartTypes(), CreatedAt: rec.CreatedAt}
	if err := s.catalog.Upsert(ctx, e); err != nil {
		s.log.Warn("catalog: %v", err)
	}
}

func (s *Service) catalogRecord(ctx context.Context, id, action string, charts int) {
	if s.catalog == nil {
		return
	}
	if err := s.catalog.Record(ctx, id, action, charts); err != nil {
		s.log.Warn("catalog: %v", err)
	}
}

func newResult(rec *Record, plan *Plan, rep *analysis.Report) *Result {
	created := rec.CreatedAt
	return &Result{
		Success:     true,
		DashboardID: rec.ID,
		Title:       rec.Title,
		ChartTypes:  append([]string(nil), plan.ChartTypes...),
		Charts:      plan.Charts,
		Skipped:     plan.Skipped,
		Analysis:    rep,
		Stored:      rec.Stored(),
		CreatedAt:   &created,
	}
}
