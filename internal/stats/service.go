package stats

import (
	"context"
	"strings"
	"time"

	"diningroom/internal/apperror"
	"diningroom/internal/models"
	"diningroom/internal/store"
)

// DefaultRangeDays is the window used when no range is given.
const DefaultRangeDays = 30

type Service struct {
	store store.Store
	now   func() time.Time
}

func NewService(st store.Store) *Service {
	return &Service{store: st, now: time.Now}
}

// Report loads the PAID orders of [from, to] and computes the report.
func (s *Service) Report(ctx context.Context, from, to time.Time) (Report, error) {
	fromDay, toDay := truncateDay(from), truncateDay(to)
	if fromDay.After(toDay) {
		return Report{}, apperror.Validation("from must not be after to")
	}

	orders, err := s.store.Orders().List(ctx, store.OrderFilter{
		Status: models.OrderPaid,
		From:   fromDay,
		To:     toDay.AddDate(0, 0, 1),
	})
	if err != nil {
		return Report{}, apperror.FromStore(err, "order")
	}
	return Compute(orders, fromDay, toDay), nil
}

// Today computes the report for the current UTC day.
func (s *Service) Today(ctx context.Context) (Report, error) {
	now := s.now()
	return s.Report(ctx, now, now)
}

// ParseRange reads YYYY-MM-DD bounds. A missing to means today (UTC); a
// missing from means DefaultRangeDays days ending at to.
func ParseRange(fromRaw, toRaw string, now time.Time) (time.Time, time.Time, error) {
	to := truncateDay(now)
	if v := strings.TrimSpace(toRaw); v != "" {
		parsed, err := time.Parse(dateLayout, v)
		if err != nil {
			return time.Time{}, time.Time{}, apperror.Validation("to must be YYYY-MM-DD")
		}
		to = parsed
	}

	from := to.AddDate(0, 0, -(DefaultRangeDays - 1))
	if v := strings.TrimSpace(fromRaw); v != "" {
		parsed, err := time.Parse(dateLayout, v)
		if err != nil {
			return time.Time{}, time.Time{}, apperror.Validation("from must be YYYY-MM-DD")
		}
		from = parsed
	}

	if from.After(to) {
		return time.Time{}, time.Time{}, apperror.Validation("from must not be after to")
	}
	return from, to, nil
}
