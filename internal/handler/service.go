package handler

import (
	"context"

	"github.com/bookwyrm/catalog/internal/model"
	"github.com/bookwyrm/catalog/internal/service"
)

//go:generate go run github.com/golang/mock/mockgen -source=service.go -destination=mocks/mock.go

type CatalogService interface {
	ListBooks(ctx context.Context, spec model.QuerySpec) (model.BookList, error)
	GetBook(ctx context.Context, id string) (model.Book, error)
	GetBookBySlug(ctx context.Context, slug string) (model.Book, error)
	CreateBook(ctx context.Context, req model.CreateBookRequest) (model.Book, error)
	UpdateBook(ctx context.Context, id string, req model.UpdateBookRequest) (model.Book, error)
	SoftDeleteBook(ctx context.Context, id string) error
	SoftDeleteBooks(ctx context.Context, ids []string) (int64, error)
	RestoreBook(ctx context.Context, id string) (model.Book, error)
	HardDeleteBook(ctx context.Context, id string) error
}

var _ CatalogService = (*service.Service)(nil)
