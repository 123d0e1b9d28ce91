package handler_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bookwyrm/catalog/internal/errs"
	"github.com/bookwyrm/catalog/internal/handler"
	service_mocks "github.com/bookwyrm/catalog/internal/handler/mocks"
	"github.com/bookwyrm/catalog/internal/model"
	"github.com/bookwyrm/catalog/pkg/validate"
)

func newTestRouter(svc *service_mocks.MockCatalogService) *echo.Echo {
	h := handler.New(svc, zap.NewExample().Named("test"))
	e := echo.New()
	e.Validator = validate.NewCustomValidator()
	e.GET("/books", h.ListBooks)
	e.POST("/books", h.CreateBook)
	e.DELETE("/books/:id", h.SoftDeleteBook)
	e.POST("/books/:id/restore", h.RestoreBook)
	return e
}

func TestHandler_ListBooks(t *testing.T) {
	t.Parallel()
	type response struct {
		expectedCode int
		expectedBody string
	}
	type mockBehavior func(r *service_mocks.MockCatalogService)

	deletedFalse := false
	deletedTrue := true

	var tests = []struct {
		name         string
		target       string
		mockBehavior mockBehavior
		response     response
	}{
		{
			name:   "ok",
			target: "/books?sortBy=title&sortDir=asc",
			mockBehavior: func(r *service_mocks.MockCatalogService) {
				spec := model.QuerySpec{
					SortField:     model.SortTitle,
					SortDirection: model.SortAsc,
					Filters:       model.BookFilters{Deleted: &deletedFalse},
					Page:          1,
					PageSize:      9,
				}
				r.EXPECT().
					ListBooks(gomock.Any(), spec).
					Return(model.BookList{
						Paging: model.Paging{Page: 1, PageSize: 9, TotalElements: 1},
						Items: []model.Book{
							{
								ID:     "9e4c7c92-8f2a-4f50-9f21-1f6a6c2b0f11",
								Title:  "Dune",
								Author: "Frank Herbert",
								Rating: 4.5,
								Slug:   "dune",
							},
						},
					}, nil)
			},
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: `{"page":1,"pageSize":9,"totalElements":1,"items":[{"id":"9e4c7c92-8f2a-4f50-9f21-1f6a6c2b0f11","title":"Dune","author":"Frank Herbert","rating":4.5,"slug":"dune","deleted":false,"createdAt":"0001-01-01T00:00:00Z","updatedAt":"0001-01-01T00:00:00Z"}]}`,
			},
		},
		{
			name:   "recycling bin view",
			target: "/books?deleted=true",
			mockBehavior: func(r *service_mocks.MockCatalogService) {
				spec := model.QuerySpec{
					SortField:     model.SortCreatedAt,
					SortDirection: model.SortDesc,
					Filters:       model.BookFilters{Deleted: &deletedTrue},
					Page:          1,
					PageSize:      9,
				}
				r.EXPECT().
					ListBooks(gomock.Any(), spec).
					Return(model.BookList{
						Paging: model.Paging{Page: 1, PageSize: 9, TotalElements: 0},
						Items:  []model.Book{},
					}, nil)
			},
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: `{"page":1,"pageSize":9,"totalElements":0,"items":[]}`,
			},
		},
		{
			name:         "err. bad page",
			target:       "/books?page=two",
			mockBehavior: func(r *service_mocks.MockCatalogService) {},
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"message":"page is invalid"}`,
			},
		},
		{
			name:   "err. invalid sort field",
			target: "/books?sortBy=publisher",
			mockBehavior: func(r *service_mocks.MockCatalogService) {
				r.EXPECT().
					ListBooks(gomock.Any(), gomock.Any()).
					Return(model.BookList{}, errors.Wrap(errs.ErrInvalidQuery, `unknown sort field "publisher"`))
			},
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"message":"unknown sort field \"publisher\": invalid query"}`,
			},
		},
		{
			name:   "err. internal",
			target: "/books",
			mockBehavior: func(r *service_mocks.MockCatalogService) {
				r.EXPECT().
					ListBooks(gomock.Any(), gomock.Any()).
					Return(model.BookList{}, errors.New("db internal"))
			},
			response: response{
				expectedCode: http.StatusInternalServerError,
				expectedBody: `{"message":"db internal"}`,
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := gomock.NewController(t)
			defer c.Finish()
			svc := service_mocks.NewMockCatalogService(c)
			tt.mockBehavior(svc)
			e := newTestRouter(svc)

			r := httptest.NewRequest(http.MethodGet, tt.target, http.NoBody)
			r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			w := httptest.NewRecorder()
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}

func TestHandler_CreateBook(t *testing.T) {
	t.Parallel()
	type response struct {
		expectedCode int
	}
	type mockBehavior func(r *service_mocks.MockCatalogService)

	var tests = []struct {
		name         string
		body         string
		mockBehavior mockBehavior
		response     response
	}{
		{
			name: "ok",
			body: `{"title":"Foo Bar!!","author":"A","rating":4}`,
			mockBehavior: func(r *service_mocks.MockCatalogService) {
				r.EXPECT().
					CreateBook(gomock.Any(), model.CreateBookRequest{Title: "Foo Bar!!", Author: "A", Rating: 4}).
					Return(model.Book{ID: "id-1", Title: "Foo Bar!!", Author: "A", Rating: 4, Slug: "foo-bar"}, nil)
			},
			response: response{expectedCode: http.StatusCreated},
		},
		{
			name:         "err. missing author",
			body:         `{"title":"Foo","rating":4}`,
			mockBehavior: func(r *service_mocks.MockCatalogService) {},
			response:     response{expectedCode: http.StatusBadRequest},
		},
		{
			name:         "err. rating out of range",
			body:         `{"title":"Foo","author":"A","rating":9}`,
			mockBehavior: func(r *service_mocks.MockCatalogService) {},
			response:     response{expectedCode: http.StatusBadRequest},
		},
		{
			name: "err. internal",
			body: `{"title":"Foo","author":"A","rating":4}`,
			mockBehavior: func(r *service_mocks.MockCatalogService) {
				r.EXPECT().
					CreateBook(gomock.Any(), gomock.Any()).
					Return(model.Book{}, errors.New("db internal"))
			},
			response: response{expectedCode: http.StatusInternalServerError},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := gomock.NewController(t)
			defer c.Finish()
			svc := service_mocks.NewMockCatalogService(c)
			tt.mockBehavior(svc)
			e := newTestRouter(svc)

			r := httptest.NewRequest(http.MethodPost, "/books", strings.NewReader(tt.body))
			r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			w := httptest.NewRecorder()
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
		})
	}
}

func TestHandler_SoftDeleteAndRestore(t *testing.T) {
	t.Parallel()
	c := gomock.NewController(t)
	defer c.Finish()
	svc := service_mocks.NewMockCatalogService(c)
	e := newTestRouter(svc)

	svc.EXPECT().SoftDeleteBook(gomock.Any(), "id-1").Return(nil)
	r := httptest.NewRequest(http.MethodDelete, "/books/id-1", http.NoBody)
	w := httptest.NewRecorder()
	e.ServeHTTP(w, r)
	require.Equal(t, http.StatusNoContent, w.Code)

	svc.EXPECT().SoftDeleteBook(gomock.Any(), "missing").Return(errs.ErrNotFound)
	r = httptest.NewRequest(http.MethodDelete, "/books/missing", http.NoBody)
	w = httptest.NewRecorder()
	e.ServeHTTP(w, r)
	require.Equal(t, http.StatusNotFound, w.Code)

	svc.EXPECT().
		RestoreBook(gomock.Any(), "id-1").
		Return(model.Book{ID: "id-1", Slug: "foo-bar"}, nil)
	r = httptest.NewRequest(http.MethodPost, "/books/id-1/restore", http.NoBody)
	w = httptest.NewRecorder()
	e.ServeHTTP(w, r)
	require.Equal(t, http.StatusOK, w.Code)
}
