package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/praveengyadahalli143-byte/TechpG/core/stats"
)

type visitorStatRow struct {
	VisitDate    time.Time `db:"visit_date"`
	VisitorCount int       `db:"visitor_count"`
}

type statsRepository struct {
	db *sqlx.DB
}

var _ stats.Repository = (*statsRepository)(nil) // interface compliance check

func NewStatsRepository(db *sqlx.DB) *statsRepository {
	return &statsRepository{db: db}
}

func (repo statsRepository) IncrementVisitors(ctx context.Context, date string) error {
	query := `
		INSERT INTO visitor_stats (visit_date, visitor_count)
		VALUES ($1, 1)
		ON CONFLICT (visit_date) DO UPDATE SET visitor_count = visitor_stats.visitor_count + 1`
	if _, err := repo.db.ExecContext(ctx, query, date); err != nil {
		return errors.Wrap(err, "incrementing visitor count")
	}
	return nil
}

func (repo statsRepository) QueryVisitorStats(ctx context.Context) ([]stats.VisitorStat, error) {
	var rows []visitorStatRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM visitor_stats ORDER BY visit_date`); err != nil {
		return nil, errors.Wrap(err, "querying visitor stats")
	}
	all := make([]stats.VisitorStat, 0, len(rows))
	for _, r := range rows {
		all = append(all, stats.VisitorStat{
			VisitDate:    r.VisitDate.Format(stats.DateFormat),
			VisitorCount: r.VisitorCount,
		})
	}
	return all, nil
}
