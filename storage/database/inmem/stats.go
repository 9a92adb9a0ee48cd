package inmemrepos

import (
	"context"
	"sort"

	"github.com/praveengyadahalli143-byte/TechpG/core/stats"
)

type statsRepository struct {
	db *DB
}

var _ stats.Repository = (*statsRepository)(nil)

func NewStatsRepository(db *DB) *statsRepository {
	return &statsRepository{db: db}
}

func (r *statsRepository) IncrementVisitors(_ context.Context, date string) error {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	s := r.db.visitorStats[date]
	s.VisitDate = date
	s.VisitorCount++
	r.db.visitorStats[date] = s
	return nil
}

func (r *statsRepository) QueryVisitorStats(context.Context) ([]stats.VisitorStat, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	all := make([]stats.VisitorStat, 0, len(r.db.visitorStats))
	for _, s := range r.db.visitorStats {
		all = append(all, s)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].VisitDate < all[j].VisitDate })
	return all, nil
}
