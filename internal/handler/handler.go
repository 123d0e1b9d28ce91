package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/bookwyrm/catalog/internal/errs"
	"github.com/bookwyrm/catalog/internal/model"
	md "github.com/bookwyrm/catalog/pkg/middleware"
	"github.com/bookwyrm/catalog/pkg/validate"
)

type Handler struct {
	catalogSvc CatalogService
	log        *zap.Logger
}

func New(catalogSvc CatalogService, log *zap.Logger) *Handler {
	return &Handler{
		catalogSvc: catalogSvc,
		log:        log,
	}
}

func (h *Handler) NewRouter() *echo.Echo {
	e := echo.New()
	const (
		baseRPS = 10
		apiRPS  = 100
	)
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 4 << 10, // 4 KB
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{http.MethodGet, http.MethodOptions, http.MethodHead, http.MethodPut, http.MethodPatch, http.MethodPost, http.MethodDelete},
		AllowCredentials: true,
	}))

	base := e.Group("", md.NewRateLimiter(baseRPS))
	base.GET("/manage/health", h.Health)

	e.Validator = validate.NewCustomValidator()
	api := e.Group("/api/v1",
		middleware.RequestLoggerWithConfig(md.RequestLoggerConfig()),
		middleware.RequestID(),
		md.NewRateLimiter(apiRPS),
	)

	api.GET("/books", h.ListBooks)
	api.GET("/books/:id", h.GetBook)
	api.GET("/books/slug/:slug", h.GetBookBySlug)
	api.POST("/books", h.CreateBook)
	api.PATCH("/books/:id", h.UpdateBook)
	api.DELETE("/books/:id", h.SoftDeleteBook)
	api.POST("/books/delete", h.SoftDeleteBooks)
	api.POST("/books/:id/restore", h.RestoreBook)
	api.DELETE("/books/:id/permanent", h.HardDeleteBook)

	return e
}

func (h *Handler) Health(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

func httpError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, errs.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, errs.ErrInvalidQuery):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

// querySpec assembles a QuerySpec from list query parameters. The
// default browsing view excludes deleted rows; ?deleted=true is the
// recycling-bin view.
func querySpec(c echo.Context) (model.QuerySpec, error) {
	spec := model.QuerySpec{
		SortField:     model.SortCreatedAt,
		SortDirection: model.SortDesc,
		Page:          1,
		PageSize:      9,
	}

	if v := c.QueryParam("sortBy"); v != "" {
		spec.SortField = model.SortField(v)
	}
	if v := c.QueryParam("sortDir"); v != "" {
		spec.SortDirection = model.SortDirection(v)
	}
	if v := c.QueryParam("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil {
			return model.QuerySpec{}, errors.New("page is invalid")
		}
		spec.Page = page
	}
	if v := c.QueryParam("size"); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil {
			return model.QuerySpec{}, errors.New("size is invalid")
		}
		spec.PageSize = size
	}

	if v := c.QueryParam("genre"); v != "" {
		spec.Filters.Genre = &v
	}
	if v := c.QueryParam("author"); v != "" {
		spec.Filters.Author = &v
	}
	if v := c.QueryParam("rating"); v != "" {
		rating, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return model.QuerySpec{}, errors.New("rating is invalid")
		}
		spec.Filters.Rating = &rating
	}
	if v := c.QueryParam("search"); v != "" {
		spec.Filters.SearchTerm = &v
	}

	deleted := false
	if v := c.QueryParam("deleted"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return model.QuerySpec{}, errors.New("deleted is invalid")
		}
		deleted = parsed
	}
	spec.Filters.Deleted = &deleted

	return spec, nil
}

func (h *Handler) ListBooks(c echo.Context) error {
	spec, err := querySpec(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	list, err := h.catalogSvc.ListBooks(c.Request().Context(), spec)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *Handler) GetBook(c echo.Context) error {
	id := c.Param("id")
	book, err := h.catalogSvc.GetBook(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, book)
}

func (h *Handler) GetBookBySlug(c echo.Context) error {
	slug := c.Param("slug")
	book, err := h.catalogSvc.GetBookBySlug(c.Request().Context(), slug)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, book)
}

func (h *Handler) CreateBook(c echo.Context) error {
	var req model.CreateBookRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	book, err := h.catalogSvc.CreateBook(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, book)
}

func (h *Handler) UpdateBook(c echo.Context) error {
	id := c.Param("id")
	var req model.UpdateBookRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	book, err := h.catalogSvc.UpdateBook(c.Request().Context(), id, req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, book)
}

func (h *Handler) SoftDeleteBook(c echo.Context) error {
	id := c.Param("id")
	if err := h.catalogSvc.SoftDeleteBook(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) SoftDeleteBooks(c echo.Context) error {
	type Req struct {
		IDs []string `json:"ids" validate:"required,min=1"`
	}
	var req Req
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	n, err := h.catalogSvc.SoftDeleteBooks(c.Request().Context(), req.IDs)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]int64{"deleted": n})
}

func (h *Handler) RestoreBook(c echo.Context) error {
	id := c.Param("id")
	book, err := h.catalogSvc.RestoreBook(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, book)
}

func (h *Handler) HardDeleteBook(c echo.Context) error {
	id := c.Param("id")
	if err := h.catalogSvc.HardDeleteBook(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
