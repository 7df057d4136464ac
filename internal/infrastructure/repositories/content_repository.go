package repositories

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"vod-pipeline/internal/domain/dto"
	"vod-pipeline/internal/domain/entities"
	"vod-pipeline/pkg/constants"
)

type ContentRepository struct {
	db *gorm.DB
}

func NewContentRepository(db *gorm.DB) *ContentRepository {
	return &ContentRepository{db: db}
}

func (r *ContentRepository) CreateContent(content *entities.Content) error {
	if content.ID == uuid.Nil {
		content.ID = uuid.New()
	}
	if content.Status == "" {
		content.Status = constants.StatusPending
	}
	content.CreatedAt = time.Now()
	content.UpdatedAt = time.Now()
	return r.db.Create(content).Error
}

func (r *ContentRepository) GetContentByID(id string) (*dto.ContentDTO, error) {
	var entity entities.Content
	if err := r.db.First(&entity, "id = ?", id).Error; err != nil {
		return nil, err
	}

	content := dto.ContentDTO{
		ID:                entity.ID.String(),
		TitleID:           entity.TitleID.String(),
		LocationURL:       entity.LocationURL,
		StreamURL:         entity.StreamURL,
		Status:            entity.Status,
		SizeInBytes:       entity.SizeInBytes,
		DurationInSeconds: entity.DurationInSeconds,
		CreatedAt:         entity.CreatedAt,
	}
	return &content, nil
}

// MarkProcessing flips a pending content to processing. Rows already in
// a terminal state are left untouched and the transition is rejected,
// which is what makes redelivered jobs harmless.
func (r *ContentRepository) MarkProcessing(id string) error {
	return r.transition(id, constants.StatusPending, map[string]interface{}{
		"status":     constants.StatusProcessing,
		"updated_at": time.Now(),
	})
}

func (r *ContentRepository) MarkFailed(id string) error {
	return r.transition(id, constants.StatusProcessing, map[string]interface{}{
		"status":     constants.StatusFailed,
		"updated_at": time.Now(),
	})
}

// MarkReady sets status, stream URL and the measured metrics in a
// single update so a reader never observes a ready content without its
// stream URL.
func (r *ContentRepository) MarkReady(id string, streamURL string, sizeInBytes, durationInSeconds int64) error {
	return r.transition(id, constants.StatusProcessing, map[string]interface{}{
		"status":              constants.StatusReady,
		"stream_url":          streamURL,
		"size_in_bytes":       sizeInBytes,
		"duration_in_seconds": durationInSeconds,
		"updated_at":          time.Now(),
	})
}

// transition performs a guarded status update: the row must currently
// hold fromStatus, otherwise no row is touched and an error is
// returned with the actual state.
func (r *ContentRepository) transition(id, fromStatus string, updates map[string]interface{}) error {
	result := r.db.Model(&entities.Content{}).
		Where("id = ? AND status = ?", id, fromStatus).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		current, err := r.GetContentByID(id)
		if err != nil {
			return fmt.Errorf("content %s not found for status transition: %w", id, err)
		}
		return fmt.Errorf("content %s is %s, refusing transition from %s", id, current.Status, fromStatus)
	}
	return nil
}
