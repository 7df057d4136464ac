package entities

import (
	"time"

	"github.com/google/uuid"
)

type Title struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Title       string    `gorm:"type:varchar(255);not null"`
	Description string    `gorm:"type:text;not null"`
	Category    string    `gorm:"type:text;not null"` // comma-joined category list
	PosterURL   string    `gorm:"type:varchar(500);not null"`
	ReleaseDate time.Time `gorm:"not null"`
	Contents    []Content `gorm:"foreignKey:TitleID"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Content struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey"`
	TitleID           uuid.UUID `gorm:"type:uuid;not null;index"`
	LocationURL       string    `gorm:"type:varchar(500);not null"` // immutable source location
	StreamURL         *string   `gorm:"type:varchar(500)"`          // set once, on the ready transition
	Status            string    `gorm:"type:varchar(20);not null"`
	SizeInBytes       int64     `gorm:"not null"`
	DurationInSeconds int64     `gorm:"not null"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
