package dto

import "time"

type ContentDTO struct {
	ID                string    `json:"id"`
	TitleID           string    `json:"title_id"`
	LocationURL       string    `json:"location_url"`
	StreamURL         *string   `json:"stream_url"`
	Status            string    `json:"status"`
	SizeInBytes       int64     `json:"size_in_bytes"`
	DurationInSeconds int64     `json:"duration_in_seconds"`
	CreatedAt         time.Time `json:"created_at"`
}

type TitleDTO struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Category    []string         `json:"category"`
	PosterURL   string           `json:"poster_url"`
	ReleaseDate time.Time        `json:"release_date"`
	Content     *TitleContentDTO `json:"content"`
}

// TitleContentDTO is the playable view of a title's content; present
// only once the pipeline has marked the content ready.
type TitleContentDTO struct {
	DurationInSeconds int64  `json:"duration_in_seconds"`
	StreamURL         string `json:"stream_url"`
}

type CreateTitleRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    []string `json:"category"`
	PosterURL   string   `json:"poster_url"`
	ReleaseDate string   `json:"release_date"`
	LocationURL string   `json:"location_url"`
}

// ContentCreated is the event payload carried by the job queue.
type ContentCreated struct {
	Content ContentDTO `json:"content"`
}
