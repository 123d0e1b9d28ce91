package repository

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bookwyrm/catalog/internal/errs"
	"github.com/bookwyrm/catalog/internal/model"
)

//go:generate go run github.com/golang/mock/mockgen -source=repository.go -destination=mocks/mock.go

type Repository interface {
	ListBooks(ctx context.Context, spec model.QuerySpec) (model.BookList, error)
	GetBook(ctx context.Context, id string) (model.Book, error)
	GetBookBySlug(ctx context.Context, slug string) (model.Book, error)
	CreateBook(ctx context.Context, book model.Book) (model.Book, error)
	UpdateBook(ctx context.Context, id string, upd model.UpdateBookRequest, slug *string) (model.Book, error)
	SoftDeleteBooks(ctx context.Context, ids []string) (int64, error)
	RestoreBook(ctx context.Context, id string) (model.Book, error)
	HardDeleteBook(ctx context.Context, id string) error
}

type repository struct {
	db  *sqlx.DB
	log *zap.Logger
}

func NewRepository(db *sqlx.DB, log *zap.Logger) (*repository, error) {
	return &repository{
		db:  db,
		log: log.Named("repo"),
	}, nil
}

const booksTableName = `books`

var bookColumns = []string{
	"id", "title", "author", "series", "genre", "publish_date", "pages",
	"rating", "description", "review", "review_date", "cover_image",
	"goodreads_link", "storygraph_link", "bookshop_link",
	"barnes_noble_link", "read_alikes_image", "slug", "deleted",
	"deleted_at", "created_at", "updated_at",
}

var sortColumns = map[model.SortField]string{
	model.SortCreatedAt:  "created_at",
	model.SortTitle:      "title",
	model.SortAuthor:     "author",
	model.SortRating:     "rating",
	model.SortReviewDate: "review_date",
}

var qb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

func validateSpec(spec model.QuerySpec) error {
	if _, ok := sortColumns[spec.SortField]; !ok {
		return errors.Wrapf(errs.ErrInvalidQuery, "unknown sort field %q", spec.SortField)
	}
	if spec.SortDirection != model.SortAsc && spec.SortDirection != model.SortDesc {
		return errors.Wrapf(errs.ErrInvalidQuery, "unknown sort direction %q", spec.SortDirection)
	}
	if spec.Page < 1 {
		return errors.Wrapf(errs.ErrInvalidQuery, "page %d < 1", spec.Page)
	}
	if spec.PageSize < 1 {
		return errors.Wrapf(errs.ErrInvalidQuery, "page size %d < 1", spec.PageSize)
	}
	return nil
}

// filterPredicates builds the conjunction for spec filters. The search
// term alone expands into a disjunction: case-insensitive substring
// over title, author, review_date and publish_date.
func filterPredicates(f model.BookFilters) sq.And {
	var and sq.And
	if f.Genre != nil {
		and = append(and, sq.Eq{"genre": *f.Genre})
	}
	if f.Author != nil {
		and = append(and, sq.Eq{"author": *f.Author})
	}
	if f.Rating != nil {
		and = append(and, sq.Eq{"rating": *f.Rating})
	}
	if f.Deleted != nil {
		and = append(and, sq.Eq{"deleted": *f.Deleted})
	}
	if f.SearchTerm != nil && *f.SearchTerm != "" {
		pattern := "%" + *f.SearchTerm + "%"
		and = append(and, sq.Or{
			sq.ILike{"title": pattern},
			sq.ILike{"author": pattern},
			sq.ILike{"review_date": pattern},
			sq.ILike{"publish_date": pattern},
		})
	}
	return and
}

// ListBooks resolves a query spec into records plus the exact total.
// Every sort field except reviewDate delegates ordering and ranging to
// the database; the count query runs concurrently over the same
// predicates. reviewDate takes the in-memory path, see listByReviewDate.
func (r *repository) ListBooks(ctx context.Context, spec model.QuerySpec) (model.BookList, error) {
	if err := validateSpec(spec); err != nil {
		return model.BookList{}, err
	}
	if spec.SortField == model.SortReviewDate {
		return r.listByReviewDate(ctx, spec)
	}

	where := filterPredicates(spec.Filters)
	sel := qb.Select(bookColumns...).From(booksTableName)
	cnt := qb.Select("count(*)").From(booksTableName)
	if len(where) > 0 {
		sel = sel.Where(where)
		cnt = cnt.Where(where)
	}

	orderBy := sortColumns[spec.SortField]
	if spec.SortDirection == model.SortDesc {
		orderBy += " DESC"
	}
	sel = sel.OrderBy(orderBy).
		Limit(uint64(spec.PageSize)).
		Offset(uint64((spec.Page - 1) * spec.PageSize))

	var (
		items []model.Book
		total int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		query, args, err := sel.ToSql()
		if err != nil {
			return errors.Wrap(errs.ErrInvalidQuery, err.Error())
		}
		r.log.Debug("ListBooks", zap.String("query", query), zap.Any("args", args))
		return errs.Classify(r.db.SelectContext(gctx, &items, query, args...))
	})
	g.Go(func() error {
		query, args, err := cnt.ToSql()
		if err != nil {
			return errors.Wrap(errs.ErrInvalidQuery, err.Error())
		}
		return errs.Classify(r.db.GetContext(gctx, &total, query, args...))
	})
	if err := g.Wait(); err != nil {
		return model.BookList{}, err
	}

	return model.BookList{
		Paging: model.Paging{
			Page:          spec.Page,
			PageSize:      spec.PageSize,
			TotalElements: total,
		},
		Items: items,
	}, nil
}

// listByReviewDate fetches every matching row in one request and sorts
// here. Server-side lexical order over a nullable, possibly non-padded
// text date is unreliable, so the window is sliced after a stable
// in-memory sort; the total is the pre-slice length.
func (r *repository) listByReviewDate(ctx context.Context, spec model.QuerySpec) (model.BookList, error) {
	sel := qb.Select(bookColumns...).From(booksTableName)
	if where := filterPredicates(spec.Filters); len(where) > 0 {
		sel = sel.Where(where)
	}

	query, args, err := sel.ToSql()
	if err != nil {
		return model.BookList{}, errors.Wrap(errs.ErrInvalidQuery, err.Error())
	}
	r.log.Debug("listByReviewDate", zap.String("query", query), zap.Any("args", args))

	var items []model.Book
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return model.BookList{}, errs.Classify(err)
	}

	total := len(items)
	sortByReviewDate(items, spec.SortDirection)

	return model.BookList{
		Paging: model.Paging{
			Page:          spec.Page,
			PageSize:      spec.PageSize,
			TotalElements: total,
		},
		Items: pageWindow(items, spec.Page, spec.PageSize),
	}, nil
}

func (r *repository) GetBook(ctx context.Context, id string) (model.Book, error) {
	query, args, err := qb.Select(bookColumns...).
		From(booksTableName).
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return model.Book{}, errors.Wrap(errs.ErrInvalidQuery, err.Error())
	}

	var book model.Book
	if err := r.db.GetContext(ctx, &book, query, args...); err != nil {
		return model.Book{}, errs.Classify(err)
	}
	return book, nil
}

func (r *repository) GetBookBySlug(ctx context.Context, slug string) (model.Book, error) {
	query, args, err := qb.Select(bookColumns...).
		From(booksTableName).
		Where(sq.Eq{"slug": slug, "deleted": false}).
		Limit(1).
		ToSql()
	if err != nil {
		return model.Book{}, errors.Wrap(errs.ErrInvalidQuery, err.Error())
	}

	var book model.Book
	if err := r.db.GetContext(ctx, &book, query, args...); err != nil {
		return model.Book{}, errs.Classify(err)
	}
	return book, nil
}

func (r *repository) CreateBook(ctx context.Context, book model.Book) (model.Book, error) {
	query, args, err := qb.Insert(booksTableName).
		Columns("id", "title", "author", "series", "genre", "publish_date",
			"pages", "rating", "description", "review", "review_date",
			"cover_image", "goodreads_link", "storygraph_link",
			"bookshop_link", "barnes_noble_link", "read_alikes_image",
			"slug", "deleted").
		Values(book.ID, book.Title, book.Author, book.Series, book.Genre,
			book.PublishDate, book.Pages, book.Rating, book.Description,
			book.Review, book.ReviewDate, book.CoverImage,
			book.GoodreadsLink, book.StorygraphLink, book.BookshopLink,
			book.BarnesNobleLink, book.ReadAlikesImage,
			book.Slug, book.Deleted).
		Suffix("returning *").
		ToSql()
	if err != nil {
		return model.Book{}, errors.Wrap(errs.ErrInvalidQuery, err.Error())
	}

	var created model.Book
	if err := r.db.GetContext(ctx, &created, query, args...); err != nil {
		r.log.Error("CreateBook", zap.String("q", query), zap.Error(err))
		return model.Book{}, errs.Classify(err)
	}
	return created, nil
}

func (r *repository) UpdateBook(ctx context.Context, id string, upd model.UpdateBookRequest, slug *string) (model.Book, error) {
	set := updateMap(upd)
	if slug != nil {
		set["slug"] = *slug
	}
	set["updated_at"] = time.Now().UTC()

	query, args, err := qb.Update(booksTableName).
		SetMap(set).
		Where(sq.Eq{"id": id}).
		Suffix("returning *").
		ToSql()
	if err != nil {
		return model.Book{}, errors.Wrap(errs.ErrInvalidQuery, err.Error())
	}

	var book model.Book
	if err := r.db.GetContext(ctx, &book, query, args...); err != nil {
		r.log.Error("UpdateBook", zap.String("q", query), zap.Error(err))
		return model.Book{}, errs.Classify(err)
	}
	return book, nil
}

func updateMap(upd model.UpdateBookRequest) map[string]interface{} {
	set := make(map[string]interface{})
	if upd.Title != nil {
		set["title"] = *upd.Title
	}
	if upd.Author != nil {
		set["author"] = *upd.Author
	}
	if upd.Series != nil {
		set["series"] = *upd.Series
	}
	if upd.Genre != nil {
		set["genre"] = *upd.Genre
	}
	if upd.PublishDate != nil {
		set["publish_date"] = nullableDate(upd.PublishDate)
	}
	if upd.Pages != nil {
		set["pages"] = *upd.Pages
	}
	if upd.Rating != nil {
		set["rating"] = *upd.Rating
	}
	if upd.Description != nil {
		set["description"] = *upd.Description
	}
	if upd.Review != nil {
		set["review"] = *upd.Review
	}
	if upd.ReviewDate != nil {
		set["review_date"] = nullableDate(upd.ReviewDate)
	}
	if upd.CoverImage != nil {
		set["cover_image"] = *upd.CoverImage
	}
	if upd.GoodreadsLink != nil {
		set["goodreads_link"] = *upd.GoodreadsLink
	}
	if upd.StorygraphLink != nil {
		set["storygraph_link"] = *upd.StorygraphLink
	}
	if upd.BookshopLink != nil {
		set["bookshop_link"] = *upd.BookshopLink
	}
	if upd.BarnesNobleLink != nil {
		set["barnes_noble_link"] = *upd.BarnesNobleLink
	}
	if upd.ReadAlikesImage != nil {
		set["read_alikes_image"] = *upd.ReadAlikesImage
	}
	return set
}

// nullableDate maps an empty date string onto NULL.
func nullableDate(s *string) interface{} {
	if s == nil || *s == "" {
		return nil
	}
	return *s
}

func (r *repository) SoftDeleteBooks(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	query, args, err := qb.Update(booksTableName).
		Set("deleted", true).
		Set("deleted_at", time.Now().UTC()).
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"id": ids}).
		ToSql()
	if err != nil {
		return 0, errors.Wrap(errs.ErrInvalidQuery, err.Error())
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, errs.Classify(err)
	}
	return res.RowsAffected()
}

// RestoreBook flips deleted back and clears deleted_at, keeping the
// "deleted_at set iff deleted" invariant.
func (r *repository) RestoreBook(ctx context.Context, id string) (model.Book, error) {
	query, args, err := qb.Update(booksTableName).
		Set("deleted", false).
		Set("deleted_at", nil).
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"id": id}).
		Suffix("returning *").
		ToSql()
	if err != nil {
		return model.Book{}, errors.Wrap(errs.ErrInvalidQuery, err.Error())
	}

	var book model.Book
	if err := r.db.GetContext(ctx, &book, query, args...); err != nil {
		return model.Book{}, errs.Classify(err)
	}
	return book, nil
}

func (r *repository) HardDeleteBook(ctx context.Context, id string) error {
	query, args, err := qb.Delete(booksTableName).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return errors.Wrap(errs.ErrInvalidQuery, err.Error())
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return errs.Classify(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errs.ErrNotFound
	}
	return nil
}
