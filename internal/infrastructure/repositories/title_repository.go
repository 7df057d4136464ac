package repositories

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"vod-pipeline/internal/domain/entities"
	"vod-pipeline/pkg/constants"
)

type TitleRepository struct {
	db *gorm.DB
}

func NewTitleRepository(db *gorm.DB) *TitleRepository {
	return &TitleRepository{db: db}
}

func (r *TitleRepository) CreateTitleWithContent(title *entities.Title, content *entities.Content) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if title.ID == uuid.Nil {
			title.ID = uuid.New()
		}
		title.CreatedAt = time.Now()
		title.UpdatedAt = time.Now()
		if err := tx.Create(title).Error; err != nil {
			return err
		}

		content.TitleID = title.ID
		if content.ID == uuid.Nil {
			content.ID = uuid.New()
		}
		content.Status = constants.StatusPending
		content.SizeInBytes = constants.MetricUnknown
		content.DurationInSeconds = constants.MetricUnknown
		content.CreatedAt = time.Now()
		content.UpdatedAt = time.Now()
		return tx.Create(content).Error
	})
}

func (r *TitleRepository) ListTitles(page, perPage int, search string) ([]*entities.Title, int64, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}

	query := r.db.Model(&entities.Title{})
	if search != "" {
		query = query.Where("title ILIKE ?", "%"+search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var titles []*entities.Title
	err := query.
		Preload("Contents").
		Order("created_at DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&titles).Error
	if err != nil {
		return nil, 0, err
	}
	return titles, total, nil
}
