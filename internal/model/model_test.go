package model_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bookwyrm/catalog/internal/model"
)

func TestSlugify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		title string
		want  string
	}{
		{name: "plain", title: "Foo Bar!!", want: "foo-bar"},
		{name: "case collapse", title: "FOO bar", want: "foo-bar"},
		{name: "punctuation runs", title: "A -- Wizard's... Guide", want: "a-wizard-s-guide"},
		{name: "leading trailing", title: "  ...Dune...  ", want: "dune"},
		{name: "digits kept", title: "Fahrenheit 451", want: "fahrenheit-451"},
		{name: "empty", title: "", want: ""},
		{name: "only punctuation", title: "!!!", want: ""},
		{name: "unicode stripped", title: "Café Société", want: "caf-soci-t"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, model.Slugify(tt.title))
		})
	}
}

func TestSlugify_Idempotent(t *testing.T) {
	t.Parallel()
	for _, title := range []string{"Foo Bar!!", "The Fifth Season", "a-b-c", "Café 451", strings.Repeat("very long title ", 40)} {
		once := model.Slugify(title)
		require.Equal(t, once, model.Slugify(once), "title %q", title)
	}
}

func TestSlugify_Truncates(t *testing.T) {
	t.Parallel()
	long := strings.Repeat("abcde ", 100)
	slug := model.Slugify(long)
	require.LessOrEqual(t, len(slug), 200)
	require.False(t, strings.HasSuffix(slug, "-"))
}

func TestSlugify_CaseAndPunctuationCollapse(t *testing.T) {
	t.Parallel()
	require.Equal(t, model.Slugify("Foo, Bar"), model.Slugify("foo bar!"))
	require.Equal(t, model.Slugify("DUNE: Messiah"), model.Slugify("dune messiah"))
}

func TestQuerySpec_Equal(t *testing.T) {
	t.Parallel()

	genre := "fantasy"
	genre2 := "fantasy"
	term := "dune"
	base := model.QuerySpec{
		SortField:     model.SortTitle,
		SortDirection: model.SortAsc,
		Filters:       model.BookFilters{Genre: &genre, SearchTerm: &term},
		Page:          1,
		PageSize:      9,
	}

	same := base
	same.Filters.Genre = &genre2 // equal value, distinct pointer
	require.True(t, base.Equal(same))

	diff := base
	diff.Page = 2
	require.False(t, base.Equal(diff))

	diff = base
	other := "horror"
	diff.Filters.Genre = &other
	require.False(t, base.Equal(diff))

	diff = base
	diff.Filters.Genre = nil
	require.False(t, base.Equal(diff))

	diff = base
	diff.SortDirection = model.SortDesc
	require.False(t, base.Equal(diff))
}
