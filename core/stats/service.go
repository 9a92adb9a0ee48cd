package stats

import (
	"context"
	"time"
)

// DateFormat is the canonical visit_date layout.
const DateFormat = "2006-01-02"

type (
	VisitorStat struct {
		VisitDate    string `json:"visit_date" db:"visit_date"`
		VisitorCount int    `json:"visitor_count" db:"visitor_count"`
	}

	Summary struct {
		TotalVisitors int `json:"total_visitors"`
		TodayVisitors int `json:"today_visitors"`
	}

	Repository interface {
		// IncrementVisitors bumps the counter for the date, inserting the
		// row on its first visit.
		IncrementVisitors(ctx context.Context, date string) error
		QueryVisitorStats(ctx context.Context) ([]VisitorStat, error)
	}

	Service struct {
		repo Repository
		now  func() time.Time
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Track records one visit against today's counter.
func (svc *Service) Track(ctx context.Context) error {
	return svc.repo.IncrementVisitors(ctx, svc.now().UTC().Format(DateFormat))
}

func (svc *Service) Summarize(ctx context.Context) (Summary, error) {
	all, err := svc.repo.QueryVisitorStats(ctx)
	if err != nil {
		return Summary{}, err
	}
	var sum Summary
	today := svc.now().UTC().Format(DateFormat)
	for _, s := range all {
		sum.TotalVisitors += s.VisitorCount
		if s.VisitDate == today {
			sum.TodayVisitors = s.VisitorCount
		}
	}
	return sum, nil
}
