package usecases

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"vod-pipeline/internal/domain/dto"
	"vod-pipeline/internal/domain/entities"
	"vod-pipeline/internal/domain/repositories"
	"vod-pipeline/pkg/constants"
)

// ErrDispatchFailed wraps an enqueue failure after the title row is
// already committed: the title exists but processing is not scheduled.
type ErrDispatchFailed struct {
	TitleID string
	Err     error
}

func (e *ErrDispatchFailed) Error() string {
	return fmt.Sprintf("title %s created but content job was not enqueued: %v", e.TitleID, e.Err)
}

func (e *ErrDispatchFailed) Unwrap() error { return e.Err }

type ContentService interface {
	CreateTitle(ctx context.Context, req dto.CreateTitleRequest) (string, error)
	ListTitles(ctx context.Context, page, perPage int, search string) ([]*dto.TitleDTO, int64, error)
}

type contentService struct {
	titles     repositories.TitleRepository
	dispatcher repositories.JobDispatcher
	log        *logrus.Logger
}

func NewContentService(titles repositories.TitleRepository, dispatcher repositories.JobDispatcher, log *logrus.Logger) ContentService {
	return &contentService{titles: titles, dispatcher: dispatcher, log: log}
}

func (s *contentService) CreateTitle(ctx context.Context, req dto.CreateTitleRequest) (string, error) {
	if len(strings.TrimSpace(req.Title)) < 5 {
		return "", fmt.Errorf("title must be at least 5 characters")
	}
	if len(strings.TrimSpace(req.Description)) < 10 {
		return "", fmt.Errorf("description must be at least 10 characters")
	}
	if strings.TrimSpace(req.LocationURL) == "" {
		return "", fmt.Errorf("location_url is required")
	}

	releaseDate, err := time.Parse(time.RFC3339, req.ReleaseDate)
	if err != nil {
		return "", fmt.Errorf("invalid release_date: %w", err)
	}

	title := &entities.Title{
		Title:       req.Title,
		Description: req.Description,
		Category:    strings.Join(req.Category, ","),
		PosterURL:   req.PosterURL,
		ReleaseDate: releaseDate,
	}
	content := &entities.Content{
		LocationURL: req.LocationURL,
	}

	if err := s.titles.CreateTitleWithContent(title, content); err != nil {
		return "", fmt.Errorf("could not create title: %w", err)
	}

	event := dto.ContentCreated{Content: dto.ContentDTO{
		ID:          content.ID.String(),
		TitleID:     title.ID.String(),
		LocationURL: content.LocationURL,
		Status:      content.Status,
	}}
	if err := s.dispatcher.DispatchContentCreated(ctx, event); err != nil {
		s.log.WithField("title_id", title.ID).Errorf("dispatch failed: %v", err)
		return title.ID.String(), &ErrDispatchFailed{TitleID: title.ID.String(), Err: err}
	}

	return title.ID.String(), nil
}

func (s *contentService) ListTitles(ctx context.Context, page, perPage int, search string) ([]*dto.TitleDTO, int64, error) {
	titles, total, err := s.titles.ListTitles(page, perPage, search)
	if err != nil {
		return nil, 0, err
	}

	out := make([]*dto.TitleDTO, 0, len(titles))
	for _, t := range titles {
		item := &dto.TitleDTO{
			ID:          t.ID.String(),
			Title:       t.Title,
			Description: t.Description,
			PosterURL:   t.PosterURL,
			ReleaseDate: t.ReleaseDate,
		}
		if t.Category != "" {
			item.Category = strings.Split(t.Category, ",")
		}

		// A title exposes playable content only once the pipeline has
		// marked it ready; failed or in-flight contents surface as no
		// content rather than a dead link.
		for _, c := range t.Contents {
			if c.Status == constants.StatusReady && c.StreamURL != nil {
				item.Content = &dto.TitleContentDTO{
					DurationInSeconds: c.DurationInSeconds,
					StreamURL:         *c.StreamURL,
				}
				break
			}
		}
		out = append(out, item)
	}
	return out, total, nil
}
