package repository

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bookwyrm/catalog/internal/errs"
	"github.com/bookwyrm/catalog/internal/model"
)

func validSpec() model.QuerySpec {
	return model.QuerySpec{
		SortField:     model.SortTitle,
		SortDirection: model.SortAsc,
		Page:          1,
		PageSize:      9,
	}
}

func TestValidateSpec(t *testing.T) {
	t.Parallel()

	require.NoError(t, validateSpec(validSpec()))

	spec := validSpec()
	spec.SortField = "publisher"
	require.ErrorIs(t, validateSpec(spec), errs.ErrInvalidQuery)

	spec = validSpec()
	spec.SortDirection = "sideways"
	require.ErrorIs(t, validateSpec(spec), errs.ErrInvalidQuery)

	spec = validSpec()
	spec.Page = 0
	require.ErrorIs(t, validateSpec(spec), errs.ErrInvalidQuery)

	spec = validSpec()
	spec.PageSize = 0
	require.ErrorIs(t, validateSpec(spec), errs.ErrInvalidQuery)
}

func TestFilterPredicates(t *testing.T) {
	t.Parallel()

	genre := "fantasy"
	deleted := false
	term := "dune"
	rating := 4.5

	where := filterPredicates(model.BookFilters{
		Genre:      &genre,
		Rating:     &rating,
		SearchTerm: &term,
		Deleted:    &deleted,
	})

	query, args, err := qb.Select("id").From(booksTableName).Where(where).ToSql()
	require.NoError(t, err)

	require.Contains(t, query, "genre = $")
	require.Contains(t, query, "rating = $")
	require.Contains(t, query, "deleted = $")
	// the search term is one disjunction over the four candidate columns
	require.Contains(t, query, "title ILIKE $")
	require.Contains(t, query, "author ILIKE $")
	require.Contains(t, query, "review_date ILIKE $")
	require.Contains(t, query, "publish_date ILIKE $")
	require.Contains(t, query, " OR ")

	require.Contains(t, args, "fantasy")
	require.Contains(t, args, 4.5)
	require.Contains(t, args, false)
	require.Contains(t, args, "%dune%")
}

func TestFilterPredicates_Empty(t *testing.T) {
	t.Parallel()
	require.Empty(t, filterPredicates(model.BookFilters{}))
}

func TestUpdateMap(t *testing.T) {
	t.Parallel()

	title := "New Title"
	emptyDate := ""
	pages := 320

	set := updateMap(model.UpdateBookRequest{
		Title:       &title,
		Pages:       &pages,
		ReviewDate:  &emptyDate,
		PublishDate: nil,
	})

	require.Equal(t, "New Title", set["title"])
	require.Equal(t, 320, set["pages"])
	// explicit empty date string becomes NULL
	require.Contains(t, set, "review_date")
	require.Nil(t, set["review_date"])
	// absent fields stay absent
	require.NotContains(t, set, "publish_date")
	require.NotContains(t, set, "author")
	require.NotContains(t, set, "slug")
}

func TestNullableDate(t *testing.T) {
	t.Parallel()

	d := "2023-07-04"
	empty := ""
	require.Equal(t, "2023-07-04", nullableDate(&d))
	require.Nil(t, nullableDate(&empty))
	require.Nil(t, nullableDate(nil))
}

func TestListQueryShape(t *testing.T) {
	t.Parallel()

	// same builder the paged path uses: order, limit, offset delegated
	spec := validSpec()
	spec.Page = 3
	sel := qb.Select(bookColumns...).From(booksTableName).
		OrderBy(sortColumns[spec.SortField]).
		Limit(uint64(spec.PageSize)).
		Offset(uint64((spec.Page - 1) * spec.PageSize))

	query, _, err := sel.ToSql()
	require.NoError(t, err)
	require.Contains(t, query, "ORDER BY title")
	require.Contains(t, query, "LIMIT 9")
	require.Contains(t, query, "OFFSET 18")
}
