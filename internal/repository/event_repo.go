package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/sprint-connect-api/internal/models"
)

// EventFilter narrows event listings.
type EventFilter struct {
	UpcomingFrom *time.Time
	Limit        int
}

// EventRepository persists events and RSVPs.
type EventRepository interface {
	List(ctx context.Context, filter EventFilter) ([]models.Event, error)
	FindByID(ctx context.Context, id uint) (models.Event, error)
	Create(ctx context.Context, event *models.Event) error
	FirstOrCreateByTitle(ctx context.Context, event *models.Event) (bool, error)
	RSVP(ctx context.Context, eventID, userID uint, at time.Time) (models.Event, error)
	FindAttendee(ctx context.Context, eventID, userID uint) (models.EventAttendee, error)
	MarkAttended(ctx context.Context, attendee *models.EventAttendee, at time.Time) error
	CountUpcoming(ctx context.Context, from time.Time) (int64, error)
}

type eventRepository struct {
	db *gorm.DB
}

// NewEventRepository constructs the repository implementation.
func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) List(ctx context.Context, filter EventFilter) ([]models.Event, error) {
	query := r.db.WithContext(ctx).Model(&models.Event{})
	if filter.UpcomingFrom != nil {
		query = query.Where("event_date >= ?", *filter.UpcomingFrom)
	}

	var events []models.Event
	if err := query.Order("event_date ASC, id ASC").Limit(normalizeLimit(filter.Limit, 50, 200)).Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

func (r *eventRepository) FindByID(ctx context.Context, id uint) (models.Event, error) {
	var event models.Event
	if err := r.db.WithContext(ctx).First(&event, id).Error; err != nil {
		return models.Event{}, err
	}
	return event, nil
}

func (r *eventRepository) Create(ctx context.Context, event *models.Event) error {
	return r.db.WithContext(ctx).Create(event).Error
}

// FirstOrCreateByTitle inserts the event unless one with the same title
// exists, and reports whether a row was created.
func (r *eventRepository) FirstOrCreateByTitle(ctx context.Context, event *models.Event) (bool, error) {
	result := r.db.WithContext(ctx).Where("title = ?", event.Title).FirstOrCreate(event)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// RSVP registers the user under a lock on the event row. Duplicates return
// ErrDuplicate and full events return ErrCapacityReached.
func (r *eventRepository) RSVP(ctx context.Context, eventID, userID uint, at time.Time) (models.Event, error) {
	var event models.Event
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&event, eventID).Error; err != nil {
			return err
		}

		var existing int64
		if err := tx.Model(&models.EventAttendee{}).Where("event_id = ? AND user_id = ?", eventID, userID).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return ErrDuplicate
		}
		if event.IsFull() {
			return ErrCapacityReached
		}

		if err := tx.Create(&models.EventAttendee{EventID: eventID, UserID: userID, RSVPAt: at}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Event{}).Where("id = ?", eventID).
			UpdateColumn("attendee_count", gorm.Expr("attendee_count + ?", 1)).Error; err != nil {
			return err
		}
		return tx.First(&event, eventID).Error
	})
	return event, err
}

func (r *eventRepository) FindAttendee(ctx context.Context, eventID, userID uint) (models.EventAttendee, error) {
	var attendee models.EventAttendee
	if err := r.db.WithContext(ctx).Where("event_id = ? AND user_id = ?", eventID, userID).First(&attendee).Error; err != nil {
		return models.EventAttendee{}, err
	}
	return attendee, nil
}

func (r *eventRepository) MarkAttended(ctx context.Context, attendee *models.EventAttendee, at time.Time) error {
	attendee.Attended = &at
	return r.db.WithContext(ctx).Model(attendee).Update("attended", at).Error
}

func (r *eventRepository) CountUpcoming(ctx context.Context, from time.Time) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Event{}).Where("event_date >= ?", from).Count(&total).Error
	return total, err
}
