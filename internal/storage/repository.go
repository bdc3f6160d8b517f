package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"savingsdash/internal/core"
	"savingsdash/internal/log"
	"savingsdash/internal/sources"

	_ "modernc.org/sqlite"
)

const (
	dateLayout = "2006-01-02"
	// fixed width so text order is time order
	timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

// Coupon statuses.
const (
	StatusActive  = "active"
	StatusUsed    = "used"
	StatusExpired = "expired"
)

var (
	ErrInvalidCoupon = errors.New("invalid coupon")
)

// Coupon is one purchased voucher in the ledger.
type Coupon struct {
	Company       string
	Value         float64
	Cost          float64
	UsedValue     float64
	Status        string
	DateAdded     time.Time
	ExcludeSaving bool
}

func (c Coupon) Validate() error {
	switch {
	case strings.TrimSpace(c.Company) == "":
		return fmt.Errorf("%w: empty company", ErrInvalidCoupon)
	case c.Value < 0 || c.Cost < 0 || c.UsedValue < 0:
		return fmt.Errorf("%w: negative amount", ErrInvalidCoupon)
	case c.UsedValue > c.Value:
		return fmt.Errorf("%w: used value exceeds value", ErrInvalidCoupon)
	case c.DateAdded.IsZero():
		return fmt.Errorf("%w: missing date", ErrInvalidCoupon)
	}
	switch c.Status {
	case "", StatusActive, StatusUsed, StatusExpired:
		return nil
	}
	return fmt.Errorf("%w: unknown status %q", ErrInvalidCoupon, c.Status)
}

// SelectionEvent is one stored selection.changed analytics record.
type SelectionEvent struct {
	ID           string
	SessionID    string
	Event        string
	All          bool
	Keys         []string
	EntityCount  int
	TotalSavings float64
	OccurredAt   time.Time
}

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	logger  *log.Logger
}

var _ sources.DatasetReader = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string, logger *log.Logger) (*SQLiteRepository, error) {
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentStorage)

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	version, err := RunMigrations(dbPath)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("SQLite database ready",
		log.FieldOperation, log.OpMigrate,
		"db_path", dbPath,
		"schema_version", version)

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
		logger:  logger,
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks the database connection for readiness probes.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// AddCoupon records a coupon in the ledger and returns its id.
func (r *SQLiteRepository) AddCoupon(ctx context.Context, c Coupon) (int64, error) {
	if err := c.Validate(); err != nil {
		return 0, err
	}
	status := c.Status
	if status == "" {
		status = StatusActive
	}
	id, err := r.queries.CreateCoupon(ctx, CreateCouponParams{
		Company:       strings.TrimSpace(c.Company),
		Value:         c.Value,
		Cost:          c.Cost,
		UsedValue:     c.UsedValue,
		Status:        status,
		DateAdded:     c.DateAdded.Format(dateLayout),
		ExcludeSaving: c.ExcludeSaving,
	})
	if err != nil {
		return 0, fmt.Errorf("create coupon: %w", err)
	}
	return id, nil
}

// ReadDataset computes company statistics and the monthly timeline from the
// coupon ledger. The three queries run concurrently.
func (r *SQLiteRepository) ReadDataset(ctx context.Context) (sources.RawDataset, error) {
	var (
		stats     []CompanyStatsRow
		months    []MonthlyStatsRow
		companies []MonthCompaniesRow
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats, err = r.queries.CompanyStats(gctx)
		return wrap("company stats", err)
	})
	g.Go(func() (err error) {
		months, err = r.queries.MonthlyStats(gctx)
		return wrap("monthly stats", err)
	})
	g.Go(func() (err error) {
		companies, err = r.queries.MonthCompanies(gctx)
		return wrap("month companies", err)
	})
	if err := g.Wait(); err != nil {
		return sources.RawDataset{}, err
	}

	entities := make([]core.Entity, 0, len(stats))
	for _, s := range stats {
		entities = append(entities, core.Entity{
			Key:             s.Company,
			Savings:         s.Savings,
			TotalValue:      s.TotalValue,
			CouponsCount:    int(s.CouponsCount),
			ActiveCoupons:   int(s.ActiveCoupons),
			UsagePercentage: min(core.Ratio(s.UsedValue, s.TotalValue), 100),
			RemainingValue:  s.RemainingValue,
		})
	}

	byMonth := make(map[string][]string, len(months))
	for _, mc := range companies {
		byMonth[mc.Month] = append(byMonth[mc.Month], mc.Company)
	}
	timeline := make([]core.TimelinePoint, 0, len(months))
	for _, m := range months {
		timeline = append(timeline, core.TimelinePoint{
			Month:              m.Month,
			Value:              m.Savings,
			OriginalValue:      core.Float(m.OriginalValue),
			RemainingValue:     core.Float(m.RemainingValue),
			CouponsCount:       core.Int(int(m.CouponsCount)),
			DiscountPercentage: core.Float(core.Ratio(m.Savings, m.OriginalValue)),
			Companies:          byMonth[m.Month],
		})
	}

	rawEntities, err := json.Marshal(entities)
	if err != nil {
		return sources.RawDataset{}, fmt.Errorf("encode entities: %w", err)
	}
	rawTimeline, err := json.Marshal(timeline)
	if err != nil {
		return sources.RawDataset{}, fmt.Errorf("encode timeline: %w", err)
	}
	r.logger.DebugContext(ctx, "Computed dataset from coupon ledger",
		log.FieldOperation, log.OpRead,
		log.FieldEntities, len(entities),
		log.FieldTimeline, len(timeline))
	return sources.RawDataset{Entities: rawEntities, Timeline: rawTimeline}, nil
}

// RecordSelectionEvent stores an analytics event. It reports false when the
// id was already stored.
func (r *SQLiteRepository) RecordSelectionEvent(ctx context.Context, e SelectionEvent) (bool, error) {
	if e.ID == "" || e.SessionID == "" {
		return false, errors.New("selection event needs an id and a session id")
	}
	n, err := r.queries.InsertSelectionEvent(ctx, InsertSelectionEventParams{
		ID:           e.ID,
		SessionID:    e.SessionID,
		Event:        e.Event,
		AllSelected:  e.All,
		SelectedKeys: strings.Join(e.Keys, "\n"),
		EntityCount:  int64(e.EntityCount),
		TotalSavings: e.TotalSavings,
		OccurredAt:   e.OccurredAt.UTC().Format(timestampLayout),
	})
	if err != nil {
		return false, fmt.Errorf("insert selection event: %w", err)
	}
	return n > 0, nil
}

// ListSelectionEvents returns the stored events of a session, oldest first.
func (r *SQLiteRepository) ListSelectionEvents(ctx context.Context, sessionID string) ([]SelectionEvent, error) {
	rows, err := r.queries.ListSelectionEvents(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list selection events: %w", err)
	}
	out := make([]SelectionEvent, 0, len(rows))
	for _, row := range rows {
		at, err := time.Parse(timestampLayout, row.OccurredAt)
		if err != nil {
			return nil, fmt.Errorf("parse occurred_at of %s: %w", row.ID, err)
		}
		var keys []string
		if row.SelectedKeys != "" {
			keys = strings.Split(row.SelectedKeys, "\n")
		}
		out = append(out, SelectionEvent{
			ID:           row.ID,
			SessionID:    row.SessionID,
			Event:        row.Event,
			All:          row.AllSelected,
			Keys:         keys,
			EntityCount:  int(row.EntityCount),
			TotalSavings: row.TotalSavings,
			OccurredAt:   at,
		})
	}
	return out, nil
}

func wrap(what string, err error) error {
	if err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	return nil
}
