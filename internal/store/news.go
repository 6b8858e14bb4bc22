package store

import (
	"context"
	"fmt"

	"easel-ticket/internal/status"
	"easel-ticket/models"

	"github.com/pocketbase/pocketbase/core"
)

func newsFromRecord(r *core.Record) *models.News {
	return &models.News{
		ID:          r.Id,
		Title:       r.GetString("title"),
		Content:     r.GetString("content"),
		PublishedAt: r.GetDateTime("published_at").Time(),
		Category:    r.GetString("category"),
	}
}

func applyNews(r *core.Record, n *models.News) {
	r.Set("title", n.Title)
	r.Set("content", n.Content)
	r.Set("published_at", n.PublishedAt)
	r.Set("category", n.Category)
}

func (s *Store) CreateNews(ctx context.Context, n *models.News) error {
	r, err := s.newRecord(collectionNews)
	if err != nil {
		return err
	}
	applyNews(r, n)
	if err := s.app.SaveWithContext(ctx, r); err != nil {
		return fmt.Errorf("save news: %w", err)
	}
	n.ID = r.Id
	return nil
}

func (s *Store) SaveNews(ctx context.Context, n *models.News) error {
	r, err := s.app.FindRecordById(collectionNews, n.ID)
	if err != nil {
		if isNotFound(err) {
			return status.ErrNewsNotFound
		}
		return err
	}
	applyNews(r, n)
	return s.app.SaveWithContext(ctx, r)
}

func (s *Store) DeleteNews(ctx context.Context, id string) error {
	r, err := s.app.FindRecordById(collectionNews, id)
	if err != nil {
		if isNotFound(err) {
			return status.ErrNewsNotFound
		}
		return err
	}
	return s.app.DeleteWithContext(ctx, r)
}

func (s *Store) FindNewsByID(id string) (*models.News, error) {
	r, err := s.app.FindRecordById(collectionNews, id)
	if err != nil {
		if isNotFound(err) {
			return nil, status.ErrNewsNotFound
		}
		return nil, err
	}
	return newsFromRecord(r), nil
}

func (s *Store) ListNews() ([]*models.News, error) {
	records := []*core.Record{}
	if err := s.app.RecordQuery(collectionNews).OrderBy("published_at DESC").All(&records); err != nil {
		return nil, err
	}

	news := make([]*models.News, 0, len(records))
	for _, r := range records {
		news = append(news, newsFromRecord(r))
	}
	return news, nil
}
