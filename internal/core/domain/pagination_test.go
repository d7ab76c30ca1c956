package domain

import "testing"

func TestPageNormalizeClampsOutOfRangeLimit(t *testing.T) {
	cases := []struct {
		name      string
		in        Page
		wantPage  int
		wantLimit int
	}{
		{"defaults", Page{}, 1, DefaultPageLimit},
		{"page zero", Page{Page: 0, Limit: 20}, 1, 20},
		{"negative page", Page{Page: -3, Limit: 10}, 1, 10},
		{"limit too large", Page{Page: 2, Limit: 500}, 2, DefaultPageLimit},
		{"limit at max", Page{Page: 2, Limit: 100}, 2, 100},
		{"limit zero", Page{Page: 1, Limit: 0}, 1, DefaultPageLimit},
	}
	for _, tc := range cases {
		got := tc.in.Normalize()
		if got.Page != tc.wantPage || got.Limit != tc.wantLimit {
			t.Fatalf("%s: got page=%d limit=%d, want page=%d limit=%d", tc.name, got.Page, got.Limit, tc.wantPage, tc.wantLimit)
		}
	}
}

func TestPageNormalizeSortOrder(t *testing.T) {
	if got := (Page{SortOrder: "ASC"}).Normalize(); got.SortOrder != "asc" {
		t.Fatalf("expected asc, got %s", got.SortOrder)
	}
	if got := (Page{SortOrder: "sideways"}).Normalize(); got.SortOrder != "desc" {
		t.Fatalf("expected desc fallback, got %s", got.SortOrder)
	}
}

func TestNewPagination(t *testing.T) {
	page := Page{Page: 2, Limit: 20}.Normalize()
	p := NewPagination(page, 45)
	if p.TotalPages != 3 {
		t.Fatalf("expected 3 total pages, got %d", p.TotalPages)
	}
	if !p.HasNextPage || !p.HasPrevPage {
		t.Fatalf("expected middle page to have both neighbours")
	}

	last := NewPagination(Page{Page: 3, Limit: 20}.Normalize(), 45)
	if last.HasNextPage {
		t.Fatalf("last page must not have a next page")
	}

	empty := NewPagination(Page{Page: 1, Limit: 20}.Normalize(), 0)
	if empty.TotalPages != 0 || empty.HasNextPage || empty.HasPrevPage {
		t.Fatalf("empty result must have no pages: %+v", empty)
	}
}
