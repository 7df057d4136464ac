package usecases

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/google/uuid"

	"vod-pipeline/internal/domain/dto"
	"vod-pipeline/internal/domain/entities"
	"vod-pipeline/pkg/constants"
)

type fakeTitles struct {
	created   int
	titles    []*entities.Title
	createErr error
}

func (f *fakeTitles) CreateTitleWithContent(title *entities.Title, content *entities.Content) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created++
	title.ID = uuid.New()
	content.ID = uuid.New()
	content.TitleID = title.ID
	content.Status = constants.StatusPending
	return nil
}

func (f *fakeTitles) ListTitles(page, perPage int, search string) ([]*entities.Title, int64, error) {
	return f.titles, int64(len(f.titles)), nil
}

type fakeDispatcher struct {
	events []dto.ContentCreated
	err    error
}

func (f *fakeDispatcher) DispatchContentCreated(ctx context.Context, event dto.ContentCreated) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	return nil
}

func validRequest() dto.CreateTitleRequest {
	return dto.CreateTitleRequest{
		Title:       "The Long Voyage",
		Description: "A documentary about deep sea exploration.",
		Category:    []string{"documentary", "nature"},
		PosterURL:   "https://img.example.com/poster.jpg",
		ReleaseDate: "2024-03-15T00:00:00Z",
		LocationURL: "https://media.example.com/voyage.mp4",
	}
}

func TestCreateTitleDispatchesJob(t *testing.T) {
	titles := &fakeTitles{}
	dispatcher := &fakeDispatcher{}
	svc := NewContentService(titles, dispatcher, quietLogger())

	titleID, err := svc.CreateTitle(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("CreateTitle: %v", err)
	}
	if titleID == "" {
		t.Fatal("no title ID returned")
	}
	if titles.created != 1 {
		t.Fatalf("created %d titles, want 1", titles.created)
	}
	if len(dispatcher.events) != 1 {
		t.Fatalf("dispatched %d events, want 1", len(dispatcher.events))
	}
	event := dispatcher.events[0]
	if event.Content.TitleID != titleID {
		t.Errorf("event title ID = %s, want %s", event.Content.TitleID, titleID)
	}
	if event.Content.LocationURL != "https://media.example.com/voyage.mp4" {
		t.Errorf("event location = %s", event.Content.LocationURL)
	}
	if event.Content.Status != constants.StatusPending {
		t.Errorf("event status = %s, want pending", event.Content.Status)
	}
}

func TestCreateTitleValidation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*dto.CreateTitleRequest)
	}{
		{"short title", func(r *dto.CreateTitleRequest) { r.Title = "abc" }},
		{"short description", func(r *dto.CreateTitleRequest) { r.Description = "too short" }},
		{"missing location", func(r *dto.CreateTitleRequest) { r.LocationURL = "  " }},
		{"bad release date", func(r *dto.CreateTitleRequest) { r.ReleaseDate = "15-03-2024" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			titles := &fakeTitles{}
			svc := NewContentService(titles, &fakeDispatcher{}, quietLogger())
			req := validRequest()
			tc.mutate(&req)
			if _, err := svc.CreateTitle(context.Background(), req); err == nil {
				t.Fatal("expected validation error")
			}
			if titles.created != 0 {
				t.Error("invalid request must not be persisted")
			}
		})
	}
}

func TestCreateTitleDispatchFailure(t *testing.T) {
	titles := &fakeTitles{}
	dispatcher := &fakeDispatcher{err: stderrors.New("redis down")}
	svc := NewContentService(titles, dispatcher, quietLogger())

	titleID, err := svc.CreateTitle(context.Background(), validRequest())
	if err == nil {
		t.Fatal("expected dispatch error")
	}

	// The row is committed before the enqueue, so the caller gets both
	// the ID and the failure.
	var dispatchErr *ErrDispatchFailed
	if !stderrors.As(err, &dispatchErr) {
		t.Fatalf("want ErrDispatchFailed, got %v", err)
	}
	if titleID == "" || dispatchErr.TitleID != titleID {
		t.Errorf("error title ID = %s, returned %s", dispatchErr.TitleID, titleID)
	}
}

func TestListTitlesExposesOnlyReadyContent(t *testing.T) {
	streamURL := "http://cdn/streams/c2/master.m3u8"
	titles := &fakeTitles{titles: []*entities.Title{
		{
			ID:       uuid.New(),
			Title:    "Processing Still",
			Category: "drama",
			Contents: []entities.Content{
				{ID: uuid.New(), Status: constants.StatusProcessing},
			},
		},
		{
			ID:    uuid.New(),
			Title: "Ready To Watch",
			Contents: []entities.Content{
				{ID: uuid.New(), Status: constants.StatusFailed},
				{ID: uuid.New(), Status: constants.StatusReady, StreamURL: &streamURL, DurationInSeconds: 120},
			},
		},
	}}

	svc := NewContentService(titles, &fakeDispatcher{}, quietLogger())
	out, total, err := svc.ListTitles(context.Background(), 1, 10, "")
	if err != nil {
		t.Fatalf("ListTitles: %v", err)
	}
	if total != 2 || len(out) != 2 {
		t.Fatalf("got %d titles, total %d", len(out), total)
	}

	if out[0].Content != nil {
		t.Error("in-flight content must not surface a stream URL")
	}
	if out[0].Category == nil || out[0].Category[0] != "drama" {
		t.Errorf("category = %v", out[0].Category)
	}
	if out[1].Content == nil {
		t.Fatal("ready content missing from listing")
	}
	if out[1].Content.StreamURL != streamURL || out[1].Content.DurationInSeconds != 120 {
		t.Errorf("content view = %+v", out[1].Content)
	}
}
