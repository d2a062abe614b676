package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/noah-isme/sprint-connect-api/internal/models"
)

// Models lists every persisted type in migration order.
func Models() []interface{} {
	return []interface{}{
		&models.Profile{},
		&models.Course{},
		&models.StudyCircle{},
		&models.CircleMember{},
		&models.CircleResource{},
		&models.ResourceUpvote{},
		&models.CircleMessage{},
		&models.VideoRoom{},
		&models.WellnessCheckin{},
		&models.CommunityPost{},
		&models.PostLike{},
		&models.Comment{},
		&models.Event{},
		&models.EventAttendee{},
		&models.UserPoints{},
		&models.PointsTransaction{},
		&models.Badge{},
		&models.UserBadge{},
		&models.PomodoroSession{},
		&models.StudySession{},
		&models.PeerSupportRequest{},
		&models.Notification{},
	}
}

// Migrate creates or updates the schema for all models.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
