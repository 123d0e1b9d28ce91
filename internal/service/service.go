package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bookwyrm/catalog/internal/errs"
	"github.com/bookwyrm/catalog/internal/model"
	"github.com/bookwyrm/catalog/internal/repository"
	"github.com/bookwyrm/catalog/pkg/breaker"
	"github.com/bookwyrm/catalog/pkg/kafka"
)

// Publisher pushes mutation events to the event topic.
type Publisher interface {
	Publish(topic string, v any) error
}

type Service struct {
	log  *zap.Logger
	repo repository.Repository

	pub Publisher
	cb  breaker.Breaker
}

func NewService(repo repository.Repository, pub Publisher, log *zap.Logger) *Service {
	return &Service{
		log:  log,
		repo: repo,
		pub:  pub,
		cb:   breaker.New(20, 30*time.Second, 0.5, 3),
	}
}

func (s *Service) ListBooks(ctx context.Context, spec model.QuerySpec) (model.BookList, error) {
	return s.repo.ListBooks(ctx, spec)
}

func (s *Service) GetBook(ctx context.Context, id string) (model.Book, error) {
	return s.repo.GetBook(ctx, id)
}

func (s *Service) GetBookBySlug(ctx context.Context, slug string) (model.Book, error) {
	return s.repo.GetBookBySlug(ctx, slug)
}

// CreateBook derives the slug from the title, normalizes empty date
// strings to NULL and forces deleted=false on the new row.
func (s *Service) CreateBook(ctx context.Context, req model.CreateBookRequest) (model.Book, error) {
	book := model.Book{
		ID:              uuid.New().String(),
		Title:           req.Title,
		Author:          req.Author,
		Series:          req.Series,
		Genre:           req.Genre,
		PublishDate:     emptyToNil(req.PublishDate),
		Pages:           req.Pages,
		Rating:          req.Rating,
		Description:     req.Description,
		Review:          req.Review,
		ReviewDate:      emptyToNil(req.ReviewDate),
		CoverImage:      req.CoverImage,
		GoodreadsLink:   req.GoodreadsLink,
		StorygraphLink:  req.StorygraphLink,
		BookshopLink:    req.BookshopLink,
		BarnesNobleLink: req.BarnesNobleLink,
		ReadAlikesImage: req.ReadAlikesImage,
		Slug:            model.Slugify(req.Title),
		Deleted:         false,
	}

	created, err := s.repo.CreateBook(ctx, book)
	if err != nil {
		return model.Book{}, err
	}
	s.publish(model.EventCreated, created.ID, created.Slug)
	return created, nil
}

// UpdateBook recomputes the slug whenever a title is available. When
// the request has no title the current one is read back first, so a
// partial update still keeps the slug consistent.
func (s *Service) UpdateBook(ctx context.Context, id string, req model.UpdateBookRequest) (model.Book, error) {
	title := req.Title
	if title == nil {
		current, err := s.repo.GetBook(ctx, id)
		if err != nil {
			return model.Book{}, err
		}
		title = &current.Title
	}

	var slug *string
	if title != nil && *title != "" {
		v := model.Slugify(*title)
		slug = &v
	}

	book, err := s.repo.UpdateBook(ctx, id, req, slug)
	if err != nil {
		return model.Book{}, err
	}
	s.publish(model.EventUpdated, book.ID, book.Slug)
	return book, nil
}

func (s *Service) SoftDeleteBook(ctx context.Context, id string) error {
	n, err := s.repo.SoftDeleteBooks(ctx, []string{id})
	if err != nil {
		return err
	}
	if n == 0 {
		return errs.ErrNotFound
	}
	s.publish(model.EventSoftDeleted, id, "")
	return nil
}

// SoftDeleteBooks marks every listed id deleted. Missing ids are not an
// error; the returned count says how many rows were actually touched.
func (s *Service) SoftDeleteBooks(ctx context.Context, ids []string) (int64, error) {
	n, err := s.repo.SoftDeleteBooks(ctx, ids)
	if err != nil {
		return 0, err
	}
	for _, id := range ids {
		s.publish(model.EventSoftDeleted, id, "")
	}
	return n, nil
}

func (s *Service) RestoreBook(ctx context.Context, id string) (model.Book, error) {
	book, err := s.repo.RestoreBook(ctx, id)
	if err != nil {
		return model.Book{}, err
	}
	s.publish(model.EventRestored, book.ID, book.Slug)
	return book, nil
}

func (s *Service) HardDeleteBook(ctx context.Context, id string) error {
	if err := s.repo.HardDeleteBook(ctx, id); err != nil {
		return err
	}
	s.publish(model.EventHardDeleted, id, "")
	return nil
}

// publish is best-effort: a broker outage must not fail the mutation,
// the breaker keeps a dead broker from stalling every call.
func (s *Service) publish(op model.EventOp, id, slug string) {
	if s.pub == nil {
		return
	}
	err := s.cb.Call(func() error {
		return s.pub.Publish(kafka.BookEventsTopic, model.BookEvent{
			Op:     op,
			BookID: id,
			Slug:   slug,
			At:     time.Now().UTC(),
		})
	})
	if err != nil {
		s.log.Warn("publish event", zap.String("op", string(op)), zap.Error(err))
	}
}

func emptyToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
