// Package tables is the table registry: seating state, reservations and
// closures.
package tables

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"diningroom/internal/apperror"
	"diningroom/internal/models"
	"diningroom/internal/store"
)

const (
	reservationDateLayout = "2006-01-02"
	reservationTimeLayout = "15:04"
)

// StatusChange is the command accepted by SetStatus. Reservation is read only
// for RESERVED and ClosedReason only for CLOSED.
type StatusChange struct {
	Status       models.TableStatus
	Reservation  *models.Reservation
	ClosedReason string
}

type Service struct {
	store store.Store
	now   func() time.Time
}

func NewService(st store.Store) *Service {
	return &Service{store: st, now: time.Now}
}

func (s *Service) List(ctx context.Context) ([]models.Table, error) {
	tables, err := s.store.Tables().List(ctx)
	if err != nil {
		return nil, apperror.FromStore(err, "table")
	}
	return tables, nil
}

func (s *Service) Get(ctx context.Context, id primitive.ObjectID) (models.Table, error) {
	t, err := s.store.Tables().FindByID(ctx, id)
	if err != nil {
		return models.Table{}, apperror.FromStore(err, "table")
	}
	return t, nil
}

func (s *Service) Create(ctx context.Context, number int) (models.Table, error) {
	if number <= 0 {
		return models.Table{}, apperror.Validation("table number must be a positive integer")
	}

	now := s.now()
	t := models.Table{
		Number:    number,
		Status:    models.TableFree,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Tables().Insert(ctx, &t); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return models.Table{}, apperror.Conflict("table number %d already exists", number)
		}
		return models.Table{}, apperror.FromStore(err, "table")
	}

	log.Printf("[TABLE] [INFO] table %d created", number)
	return t, nil
}

func (s *Service) Renumber(ctx context.Context, id primitive.ObjectID, number int) (models.Table, error) {
	if number <= 0 {
		return models.Table{}, apperror.Validation("table number must be a positive integer")
	}

	var updated models.Table
	err := s.store.InTx(ctx, func(ctx context.Context, r store.Repos) error {
		t, err := r.Tables().FindByID(ctx, id)
		if err != nil {
			return apperror.FromStore(err, "table")
		}
		t.Number = number
		t.UpdatedAt = s.now()
		if err := r.Tables().Replace(ctx, t); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				return apperror.Conflict("table number %d already exists", number)
			}
			return apperror.FromStore(err, "table")
		}
		updated = t
		return nil
	})
	if err != nil {
		return models.Table{}, err
	}
	return updated, nil
}

// SetStatus validates the command, then applies it with the side effects of
// the target status.
func (s *Service) SetStatus(ctx context.Context, id primitive.ObjectID, change StatusChange) (models.Table, error) {
	if err := validateChange(&change); err != nil {
		return models.Table{}, err
	}

	var updated models.Table
	err := s.store.InTx(ctx, func(ctx context.Context, r store.Repos) error {
		t, err := r.Tables().FindByID(ctx, id)
		if err != nil {
			return apperror.FromStore(err, "table")
		}

		if t.Status == models.TableOccupied && change.Status != models.TableOccupied {
			_, err := r.Orders().FindOpenByTable(ctx, t.ID)
			if err == nil {
				return apperror.Conflict("table %d has an open order; pay or cancel it first", t.Number)
			}
			if !errors.Is(err, store.ErrNotFound) {
				return apperror.FromStore(err, "order")
			}
		}

		if change.Status == models.TableReserved && t.Status != models.TableFree && t.Status != models.TableReserved {
			return apperror.Conflict("table %d is %s; only free tables can be reserved", t.Number, t.Status)
		}

		prev := t.Status
		applyChange(&t, change)
		t.UpdatedAt = s.now()
		if err := r.Tables().Replace(ctx, t); err != nil {
			return apperror.FromStore(err, "table")
		}
		updated = t
		log.Printf("[TABLE] [INFO] table %d %s -> %s", t.Number, prev, t.Status)
		return nil
	})
	if err != nil {
		return models.Table{}, err
	}
	return updated, nil
}

func (s *Service) Reserve(ctx context.Context, id primitive.ObjectID, reservation models.Reservation) (models.Table, error) {
	return s.SetStatus(ctx, id, StatusChange{Status: models.TableReserved, Reservation: &reservation})
}

func (s *Service) Close(ctx context.Context, id primitive.ObjectID, reason string) (models.Table, error) {
	return s.SetStatus(ctx, id, StatusChange{Status: models.TableClosed, ClosedReason: reason})
}

func (s *Service) Free(ctx context.Context, id primitive.ObjectID) (models.Table, error) {
	return s.SetStatus(ctx, id, StatusChange{Status: models.TableFree})
}

// Delete removes a table that has no open order.
func (s *Service) Delete(ctx context.Context, id primitive.ObjectID) error {
	return s.store.InTx(ctx, func(ctx context.Context, r store.Repos) error {
		t, err := r.Tables().FindByID(ctx, id)
		if err != nil {
			return apperror.FromStore(err, "table")
		}

		_, err = r.Orders().FindOpenByTable(ctx, id)
		if err == nil {
			return apperror.Conflict("table %d has an open order", t.Number)
		}
		if !errors.Is(err, store.ErrNotFound) {
			return apperror.FromStore(err, "order")
		}

		if err := r.Tables().Delete(ctx, id); err != nil {
			return apperror.FromStore(err, "table")
		}
		log.Printf("[TABLE] [INFO] table %d deleted", t.Number)
		return nil
	})
}

func validateChange(change *StatusChange) error {
	if !change.Status.Valid() {
		return apperror.Validation("invalid table status %q", change.Status)
	}

	switch change.Status {
	case models.TableReserved:
		if change.Reservation == nil {
			return apperror.Validation("reservation name, date and time are required")
		}
		res := change.Reservation
		res.Name = strings.TrimSpace(res.Name)
		res.Phone = strings.TrimSpace(res.Phone)
		res.Date = strings.TrimSpace(res.Date)
		res.Time = strings.TrimSpace(res.Time)
		if res.Name == "" || res.Date == "" || res.Time == "" {
			return apperror.Validation("reservation name, date and time are required")
		}
		if _, err := time.Parse(reservationDateLayout, res.Date); err != nil {
			return apperror.Validation("reservation date must be YYYY-MM-DD")
		}
		if _, err := time.Parse(reservationTimeLayout, res.Time); err != nil {
			return apperror.Validation("reservation time must be HH:MM")
		}
		if res.Guests < 0 {
			return apperror.Validation("guest count cannot be negative")
		}
	case models.TableClosed:
		change.ClosedReason = strings.TrimSpace(change.ClosedReason)
		if change.ClosedReason == "" {
			return apperror.Validation("a reason is required to close a table")
		}
	}
	return nil
}

// applyChange keeps reservation fields only on RESERVED tables and the closed
// reason only on CLOSED tables.
func applyChange(t *models.Table, change StatusChange) {
	t.Status = change.Status
	switch change.Status {
	case models.TableReserved:
		res := *change.Reservation
		t.Reservation = &res
		t.ClosedReason = ""
	case models.TableClosed:
		t.Reservation = nil
		t.ClosedReason = change.ClosedReason
	default:
		t.Reservation = nil
		t.ClosedReason = ""
	}
}
