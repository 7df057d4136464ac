package repositories

import (
	"vod-pipeline/internal/domain/dto"
	"vod-pipeline/internal/domain/entities"
)

// ContentRepository owns the content status machine. After creation a
// content row is mutated exclusively through the Mark* methods, all of
// which refuse to move a row out of a terminal state.
type ContentRepository interface {
	CreateContent(content *entities.Content) error
	GetContentByID(id string) (*dto.ContentDTO, error)

	// MarkProcessing moves pending -> processing.
	MarkProcessing(id string) error
	// MarkFailed moves processing -> failed.
	MarkFailed(id string) error
	// MarkReady moves processing -> ready, setting the stream URL and
	// the measured metrics in the same update.
	MarkReady(id string, streamURL string, sizeInBytes, durationInSeconds int64) error
}

type TitleRepository interface {
	// CreateTitleWithContent inserts the title and its pending content
	// row in one transaction.
	CreateTitleWithContent(title *entities.Title, content *entities.Content) error
	ListTitles(page, perPage int, search string) ([]*entities.Title, int64, error)
}
