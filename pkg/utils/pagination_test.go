package utils

import "testing"

func TestPagination(t *testing.T) {
	p := NewPagination(2, 20)
	p.SetTotal(45)

	if p.TotalPages != 3 {
		t.Errorf("TotalPages = %d, ожидалось 3", p.TotalPages)
	}
	if !p.HasNext || !p.HasPrev {
		t.Errorf("HasNext = %v, HasPrev = %v на средней странице", p.HasNext, p.HasPrev)
	}
	if p.GetOffset() != 20 {
		t.Errorf("GetOffset = %d, ожидалось 20", p.GetOffset())
	}
	if p.GetLimit() != 20 {
		t.Errorf("GetLimit = %d, ожидалось 20", p.GetLimit())
	}
}

func TestPaginationNormalizesArguments(t *testing.T) {
	p := NewPagination(0, -5)
	if p.Page != 1 {
		t.Errorf("Page = %d, ожидалось 1", p.Page)
	}
	if p.PageSize != 10 {
		t.Errorf("PageSize = %d, ожидалось 10", p.PageSize)
	}
}

func TestPaginationEdges(t *testing.T) {
	p := NewPagination(1, 20)
	p.SetTotal(0)
	if p.TotalPages != 0 || p.HasNext || p.HasPrev {
		t.Errorf("пустая коллекция: %+v", p)
	}

	p = NewPagination(3, 20)
	p.SetTotal(60)
	if p.HasNext {
		t.Error("на последней странице HasNext = false")
	}
	if !p.HasPrev {
		t.Error("на последней странице HasPrev = true")
	}
}
