package repository

import (
	"sort"
	"strconv"
	"strings"

	"github.com/bookwyrm/catalog/internal/model"
)

// dateKey is a review date decomposed into integer parts. Text dates
// are not guaranteed zero-padded, so "2023-7-4" and "2023-07-04" must
// compare equal.
type dateKey struct {
	year, month, day int
	valid            bool
}

func parseReviewDate(s *string) dateKey {
	if s == nil {
		return dateKey{}
	}
	parts := strings.Split(strings.TrimSpace(*s), "-")
	if len(parts) != 3 {
		return dateKey{}
	}
	year, err1 := strconv.Atoi(parts[0])
	month, err2 := strconv.Atoi(parts[1])
	day, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return dateKey{}
	}
	return dateKey{year: year, month: month, day: day, valid: true}
}

func (k dateKey) compare(o dateKey) int {
	switch {
	case k.year != o.year:
		return k.year - o.year
	case k.month != o.month:
		return k.month - o.month
	default:
		return k.day - o.day
	}
}

// sortByReviewDate orders items by (year, month, day). Records without
// a parsable date count as the oldest regardless of direction: first
// when ascending, last when descending. The sort is stable, ties keep
// their database-returned relative order.
func sortByReviewDate(items []model.Book, dir model.SortDirection) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := parseReviewDate(items[i].ReviewDate), parseReviewDate(items[j].ReviewDate)
		switch {
		case !a.valid && !b.valid:
			return false
		case !a.valid:
			return dir == model.SortAsc
		case !b.valid:
			return dir == model.SortDesc
		}
		if dir == model.SortAsc {
			return a.compare(b) < 0
		}
		return a.compare(b) > 0
	})
}

// pageWindow slices the 1-based page out of the full ordered set.
func pageWindow(items []model.Book, page, size int) []model.Book {
	from := (page - 1) * size
	if from >= len(items) {
		return []model.Book{}
	}
	to := from + size
	if to > len(items) {
		to = len(items)
	}
	return items[from:to]
}
