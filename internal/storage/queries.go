package storage

import (
	"context"
)

const createCoupon = `
INSERT INTO coupons (company, value, cost, used_value, status, date_added, exclude_saving)
VALUES (?, ?, ?, ?, ?, ?, ?)
RETURNING id
`

type CreateCouponParams struct {
	Company       string
	Value         float64
	Cost          float64
	UsedValue     float64
	Status        string
	DateAdded     string
	ExcludeSaving bool
}

func (q *Queries) CreateCoupon(ctx context.Context, arg CreateCouponParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, createCoupon,
		arg.Company,
		arg.Value,
		arg.Cost,
		arg.UsedValue,
		arg.Status,
		arg.DateAdded,
		arg.ExcludeSaving,
	)
	var id int64
	err := row.Scan(&id)
	return id, err
}

const companyStats = `
SELECT
    company,
    COALESCE(SUM(CASE WHEN exclude_saving = 0 THEN value - cost ELSE 0 END), 0) AS savings,
    COALESCE(SUM(value), 0) AS total_value,
    COUNT(*) AS coupons_count,
    COALESCE(SUM(CASE WHEN status = 'active' THEN 1 ELSE 0 END), 0) AS active_coupons,
    COALESCE(SUM(used_value), 0) AS used_value,
    COALESCE(SUM(CASE WHEN status = 'active' THEN value - used_value ELSE 0 END), 0) AS remaining_value
FROM coupons
GROUP BY company
ORDER BY savings DESC, company
`

type CompanyStatsRow struct {
	Company        string
	Savings        float64
	TotalValue     float64
	CouponsCount   int64
	ActiveCoupons  int64
	UsedValue      float64
	RemainingValue float64
}

func (q *Queries) CompanyStats(ctx context.Context) ([]CompanyStatsRow, error) {
	rows, err := q.db.QueryContext(ctx, companyStats)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []CompanyStatsRow
	for rows.Next() {
		var i CompanyStatsRow
		if err := rows.Scan(
			&i.Company,
			&i.Savings,
			&i.TotalValue,
			&i.CouponsCount,
			&i.ActiveCoupons,
			&i.UsedValue,
			&i.RemainingValue,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const monthlyStats = `
SELECT
    substr(date_added, 1, 7) AS month,
    COALESCE(SUM(CASE WHEN exclude_saving = 0 THEN value - cost ELSE 0 END), 0) AS savings,
    COALESCE(SUM(value), 0) AS original_value,
    COALESCE(SUM(CASE WHEN status = 'active' THEN value - used_value ELSE 0 END), 0) AS remaining_value,
    COUNT(*) AS coupons_count
FROM coupons
GROUP BY month
ORDER BY month
`

type MonthlyStatsRow struct {
	Month          string
	Savings        float64
	OriginalValue  float64
	RemainingValue float64
	CouponsCount   int64
}

func (q *Queries) MonthlyStats(ctx context.Context) ([]MonthlyStatsRow, error) {
	rows, err := q.db.QueryContext(ctx, monthlyStats)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []MonthlyStatsRow
	for rows.Next() {
		var i MonthlyStatsRow
		if err := rows.Scan(
			&i.Month,
			&i.Savings,
			&i.OriginalValue,
			&i.RemainingValue,
			&i.CouponsCount,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const monthCompanies = `
SELECT DISTINCT substr(date_added, 1, 7) AS month, company
FROM coupons
ORDER BY month, company
`

type MonthCompaniesRow struct {
	Month   string
	Company string
}

func (q *Queries) MonthCompanies(ctx context.Context) ([]MonthCompaniesRow, error) {
	rows, err := q.db.QueryContext(ctx, monthCompanies)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []MonthCompaniesRow
	for rows.Next() {
		var i MonthCompaniesRow
		if err := rows.Scan(&i.Month, &i.Company); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const insertSelectionEvent = `
INSERT OR IGNORE INTO selection_events (id, session_id, event, all_selected, selected_keys, entity_count, total_savings, occurred_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`

type InsertSelectionEventParams struct {
	ID           string
	SessionID    string
	Event        string
	AllSelected  bool
	SelectedKeys string
	EntityCount  int64
	TotalSavings float64
	OccurredAt   string
}

// InsertSelectionEvent ignores an id it has already stored, so redelivered
// messages are harmless. It returns the number of inserted rows.
func (q *Queries) InsertSelectionEvent(ctx context.Context, arg InsertSelectionEventParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, insertSelectionEvent,
		arg.ID,
		arg.SessionID,
		arg.Event,
		arg.AllSelected,
		arg.SelectedKeys,
		arg.EntityCount,
		arg.TotalSavings,
		arg.OccurredAt,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const listSelectionEvents = `
SELECT id, session_id, event, all_selected, selected_keys, entity_count, total_savings, occurred_at
FROM selection_events
WHERE session_id = ?
ORDER BY occurred_at, id
`

type SelectionEventRow struct {
	ID           string
	SessionID    string
	Event        string
	AllSelected  bool
	SelectedKeys string
	EntityCount  int64
	TotalSavings float64
	OccurredAt   string
}

func (q *Queries) ListSelectionEvents(ctx context.Context, sessionID string) ([]SelectionEventRow, error) {
	rows, err := q.db.QueryContext(ctx, listSelectionEvents, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []SelectionEventRow
	for rows.Next() {
		var i SelectionEventRow
		if err := rows.Scan(
			&i.ID,
			&i.SessionID,
			&i.Event,
			&i.AllSelected,
			&i.SelectedKeys,
			&i.EntityCount,
			&i.TotalSavings,
			&i.OccurredAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
