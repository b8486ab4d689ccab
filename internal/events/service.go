package events

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	ErrInvalidTime  = errors.New("timestamp must be RFC 3339")
	ErrInvalidMonth = errors.New("month must be YYYY-MM")
)

// Service applies business rules for calendar events.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Get(ctx context.Context, profileID, id int64) (*Event, error) {
	return s.repo.Get(ctx, profileID, id)
}

// ListMonth returns the events of a single calendar month. month is "YYYY-MM";
// an empty value means the current month in UTC.
func (s *Service) ListMonth(ctx context.Context, profileID int64, month string) ([]Event, error) {
	var from time.Time
	if month == "" {
		now := time.Now().UTC()
		from = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	} else {
		parsed, err := time.Parse("2006-01", month)
		if err != nil {
			return nil, ErrInvalidMonth
		}
		from = parsed
	}
	return s.repo.ListRange(ctx, profileID, from, from.AddDate(0, 1, 0))
}

func (s *Service) Create(ctx context.Context, profileID, accountID int64, req CreateEventRequest) (*Event, error) {
	startsAt, err := time.Parse(time.RFC3339, req.StartsAt)
	if err != nil {
		return nil, ErrInvalidTime
	}
	e := Event{
		ProfileID: profileID,
		Title:     strings.TrimSpace(req.Title),
		StartsAt:  startsAt,
		AllDay:    req.AllDay,
		Note:      req.Note,
		CreatedBy: accountID,
	}
	if req.RemindAt != "" {
		remindAt, err := time.Parse(time.RFC3339, req.RemindAt)
		if err != nil {
			return nil, ErrInvalidTime
		}
		e.RemindAt = &remindAt
	}
	return s.repo.Create(ctx, e)
}

func (s *Service) Update(ctx context.Context, profileID, id int64, req UpdateEventRequest) (*Event, error) {
	updates := make(map[string]interface{})
	if req.Title != nil {
		updates["title"] = strings.TrimSpace(*req.Title)
	}
	if req.StartsAt != nil {
		startsAt, err := time.Parse(time.RFC3339, *req.StartsAt)
		if err != nil {
			return nil, ErrInvalidTime
		}
		updates["starts_at"] = startsAt
	}
	if req.AllDay != nil {
		updates["all_day"] = *req.AllDay
	}
	if req.Note != nil {
		updates["note"] = *req.Note
	}
	if req.RemindAt != nil {
		if *req.RemindAt == "" {
			updates["remind_at"] = nil
		} else {
			remindAt, err := time.Parse(time.RFC3339, *req.RemindAt)
			if err != nil {
				return nil, ErrInvalidTime
			}
			updates["remind_at"] = remindAt
		}
	}
	if len(updates) > 0 {
		if err := s.repo.Update(ctx, profileID, id, updates); err != nil {
			return nil, err
		}
	}
	return s.repo.Get(ctx, profileID, id)
}

func (s *Service) Delete(ctx context.Context, profileID, id int64) error {
	return s.repo.Delete(ctx, profileID, id)
}
