package model

import "time"

type Book struct {
	ID              string     `json:"id" db:"id"`
	Title           string     `json:"title" db:"title"`
	Author          string     `json:"author" db:"author"`
	Series          *string    `json:"series,omitempty" db:"series"`
	Genre           *string    `json:"genre,omitempty" db:"genre"`
	PublishDate     *string    `json:"publishDate,omitempty" db:"publish_date"`
	Pages           *int       `json:"pages,omitempty" db:"pages"`
	Rating          float64    `json:"rating" db:"rating"`
	Description     *string    `json:"description,omitempty" db:"description"`
	Review          *string    `json:"review,omitempty" db:"review"`
	ReviewDate      *string    `json:"reviewDate,omitempty" db:"review_date"`
	CoverImage      *string    `json:"coverImage,omitempty" db:"cover_image"`
	GoodreadsLink   *string    `json:"goodreadsLink,omitempty" db:"goodreads_link"`
	StorygraphLink  *string    `json:"storygraphLink,omitempty" db:"storygraph_link"`
	BookshopLink    *string    `json:"bookshopLink,omitempty" db:"bookshop_link"`
	BarnesNobleLink *string    `json:"barnesNobleLink,omitempty" db:"barnes_noble_link"`
	ReadAlikesImage *string    `json:"readAlikesImage,omitempty" db:"read_alikes_image"`
	Slug            string     `json:"slug" db:"slug"`
	Deleted         bool       `json:"deleted" db:"deleted"`
	DeletedAt       *time.Time `json:"deletedAt,omitempty" db:"deleted_at"`
	CreatedAt       time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time  `json:"updatedAt" db:"updated_at"`
}

type Paging struct {
	Page          int `json:"page"`
	PageSize      int `json:"pageSize"`
	TotalElements int `json:"totalElements"`
}

type BookList struct {
	Paging `json:",inline"`
	Items  []Book `json:"items"`
}

type SortField string

const (
	SortCreatedAt  SortField = "createdAt"
	SortTitle      SortField = "title"
	SortAuthor     SortField = "author"
	SortRating     SortField = "rating"
	SortReviewDate SortField = "reviewDate"
)

type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// BookFilters is the closed set of list predicates. All fields are
// optional; nil means "not applied". SearchTerm expands to a
// case-insensitive substring match over title, author, review_date and
// publish_date; the remaining fields match exactly.
type BookFilters struct {
	Genre      *string  `json:"genre,omitempty"`
	Author     *string  `json:"author,omitempty"`
	Rating     *float64 `json:"rating,omitempty"`
	SearchTerm *string  `json:"searchTerm,omitempty"`
	Deleted    *bool    `json:"deleted,omitempty"`
}

func (f BookFilters) Equal(o BookFilters) bool {
	return eqPtr(f.Genre, o.Genre) &&
		eqPtr(f.Author, o.Author) &&
		eqPtr(f.Rating, o.Rating) &&
		eqPtr(f.SearchTerm, o.SearchTerm) &&
		eqPtr(f.Deleted, o.Deleted)
}

func eqPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// QuerySpec is an immutable description of one list request.
type QuerySpec struct {
	SortField     SortField
	SortDirection SortDirection
	Filters       BookFilters
	Page          int
	PageSize      int
}

// Equal is the fingerprint used for fetch de-duplication: deep value
// equality over all five fields.
func (s QuerySpec) Equal(o QuerySpec) bool {
	return s.SortField == o.SortField &&
		s.SortDirection == o.SortDirection &&
		s.Page == o.Page &&
		s.PageSize == o.PageSize &&
		s.Filters.Equal(o.Filters)
}

// CreateBookRequest carries caller-supplied fields for a new entry.
type CreateBookRequest struct {
	Title           string   `json:"title" validate:"required"`
	Author          string   `json:"author" validate:"required"`
	Series          *string  `json:"series"`
	Genre           *string  `json:"genre"`
	PublishDate     *string  `json:"publishDate"`
	Pages           *int     `json:"pages" validate:"omitempty,gt=0"`
	Rating          float64  `json:"rating" validate:"min=1,max=5"`
	Description     *string  `json:"description"`
	Review          *string  `json:"review"`
	ReviewDate      *string  `json:"reviewDate"`
	CoverImage      *string  `json:"coverImage" validate:"omitempty,url"`
	GoodreadsLink   *string  `json:"goodreadsLink" validate:"omitempty,url"`
	StorygraphLink  *string  `json:"storygraphLink" validate:"omitempty,url"`
	BookshopLink    *string  `json:"bookshopLink" validate:"omitempty,url"`
	BarnesNobleLink *string  `json:"barnesNobleLink" validate:"omitempty,url"`
	ReadAlikesImage *string  `json:"readAlikesImage" validate:"omitempty,url"`
}

// UpdateBookRequest carries a partial update; nil fields are left
// untouched. Slug handling lives in the service layer.
type UpdateBookRequest struct {
	Title           *string  `json:"title"`
	Author          *string  `json:"author"`
	Series          *string  `json:"series"`
	Genre           *string  `json:"genre"`
	PublishDate     *string  `json:"publishDate"`
	Pages           *int     `json:"pages" validate:"omitempty,gt=0"`
	Rating          *float64 `json:"rating" validate:"omitempty,min=1,max=5"`
	Description     *string  `json:"description"`
	Review          *string  `json:"review"`
	ReviewDate      *string  `json:"reviewDate"`
	CoverImage      *string  `json:"coverImage" validate:"omitempty,url"`
	GoodreadsLink   *string  `json:"goodreadsLink" validate:"omitempty,url"`
	StorygraphLink  *string  `json:"storygraphLink" validate:"omitempty,url"`
	BookshopLink    *string  `json:"bookshopLink" validate:"omitempty,url"`
	BarnesNobleLink *string  `json:"barnesNobleLink" validate:"omitempty,url"`
	ReadAlikesImage *string  `json:"readAlikesImage" validate:"omitempty,url"`
}

type EventOp string

const (
	EventCreated     EventOp = "created"
	EventUpdated     EventOp = "updated"
	EventSoftDeleted EventOp = "soft_deleted"
	EventRestored    EventOp = "restored"
	EventHardDeleted EventOp = "hard_deleted"
)

// BookEvent is published to the event topic after each mutation.
type BookEvent struct {
	Op     EventOp   `json:"op"`
	BookID string    `json:"bookId"`
	Slug   string    `json:"slug,omitempty"`
	At     time.Time `json:"at"`
}
