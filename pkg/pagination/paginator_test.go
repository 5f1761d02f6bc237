package pagination

import "testing"

func TestNewPaginatorClampsDefaults(t *testing.T) {
	p := NewPaginator(0, 0)
	if p.Page != 1 {
		t.Errorf("Page = %d, want 1", p.Page)
	}
	if p.PageSize != 10 {
		t.Errorf("PageSize = %d, want 10", p.PageSize)
	}
}

func TestNewPaginatorClampsPageSizeCeiling(t *testing.T) {
	p := NewPaginator(1, 500)
	if p.PageSize != 100 {
		t.Errorf("PageSize = %d, want 100", p.PageSize)
	}
}

func TestOffset(t *testing.T) {
	p := NewPaginator(3, 20)
	if got := p.Offset(); got != 40 {
		t.Errorf("Offset() = %d, want 40", got)
	}
}

func TestBuildPageComputesTotalPagesAndFlags(t *testing.T) {
	p := NewPaginator(2, 10)
	page := p.BuildPage([]int{1, 2, 3}, 25)

	if page.TotalPages != 3 {
		t.Errorf("TotalPages = %d, want 3", page.TotalPages)
	}
	if !page.HasNext {
		t.Error("HasNext should be true on page 2 of 3")
	}
	if !page.HasPrev {
		t.Error("HasPrev should be true on page 2 of 3")
	}
}

func TestBuildPageZeroTotalStillReportsOnePage(t *testing.T) {
	p := NewPaginator(1, 10)
	page := p.BuildPage([]int{}, 0)

	if page.TotalPages != 1 {
		t.Errorf("TotalPages = %d, want 1", page.TotalPages)
	}
	if page.HasNext || page.HasPrev {
		t.Error("a single empty page has neither a next nor previous page")
	}
}
