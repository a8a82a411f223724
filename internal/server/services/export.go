package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/focustodo/internal/common"
	"github.com/dmitrijs2005/focustodo/internal/server/models"
	"github.com/dmitrijs2005/focustodo/internal/server/objectstore"
	"github.com/dmitrijs2005/focustodo/internal/server/ratelimit"
)

// ObjectStore uploads export archives and signs download links.
type ObjectStore interface {
	Put(ctx context.Context, key string, body []byte, contentType string) error
	PresignGet(ctx context.Context, key string) (string, error)
}

// Archive is the JSON document written by an export.
type Archive struct {
	UserID        string                      `json:"userId"`
	ExportedAt    time.Time                   `json:"exportedAt"`
	Todos         []*models.Todo              `json:"todos"`
	Threads       []*models.Thread            `json:"threads"`
	Messages      []*models.Message           `json:"messages"`
	Notifications []*models.EmailNotification `json:"emailNotifications"`
	Preferences   *models.UserPreferences     `json:"preferences,omitempty"`
}

// ExportResult locates an uploaded archive.
type ExportResult struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ExportService writes a copy of everything the caller owns to object
// storage.
type ExportService struct {
	base
	store ObjectStore
}

func NewExportService(d Deps, store ObjectStore) *ExportService {
	return &ExportService{base: newBase(d), store: store}
}

func (s *ExportService) Export(ctx context.Context) (*ExportResult, error) {
	userID, err := s.begin(ctx, ratelimit.ExportData)
	if err != nil {
		return nil, err
	}

	now := s.now()
	archive, err := s.collect(ctx, userID, now)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(archive)
	if err != nil {
		return nil, fmt.Errorf("encode export: %w", err)
	}

	key := objectstore.ExportKey(userID, now, newID())
	if err := s.store.Put(ctx, key, body, "application/json"); err != nil {
		return nil, fmt.Errorf("upload export: %w", err)
	}

	url, err := s.store.PresignGet(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("sign export link: %w", err)
	}

	s.logger.Info(ctx, "data exported", "user_id", userID, "key", key, "bytes", len(body))

	return &ExportResult{Key: key, URL: url, ExpiresAt: now.Add(objectstore.PresignExpiry)}, nil
}

func (s *ExportService) collect(ctx context.Context, userID string, now time.Time) (*Archive, error) {
	db := s.conn()
	a := &Archive{UserID: userID, ExportedAt: now}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		a.Todos, err = s.repomanager.Todos(db).ListByUser(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		a.Threads, err = s.repomanager.Threads(db).ListByUser(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		a.Messages, err = s.repomanager.Messages(db).ListByUser(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		a.Notifications, err = s.repomanager.Notifications(db).ListByUser(gctx, userID)
		return err
	})
	g.Go(func() error {
		prefs, err := s.repomanager.Preferences(db).GetByUserID(gctx, userID)
		if errors.Is(err, common.ErrNotFound) {
			return nil
		}
		a.Preferences = prefs
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("collect export: %w", err)
	}
	return a, nil
}
