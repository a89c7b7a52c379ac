package models

import "testing"

func boolPtr(b bool) *bool       { return &b }
func floatPtr(f float64) *float64 { return &f }

func testEntries() []*CatalogEntry {
	return []*CatalogEntry{
		{
			ID:          "1",
			Name:        "Кроссовки беговые",
			Category:    "shoes",
			Brand:       "Nike",
			Description: "Лёгкие кроссовки для бега",
			Price:       100,
			InStock:     true,
			Sizes:       []string{"40", "41"},
			Colors:      []string{"black"},
			Tags:        []string{"sport", "new"},
			Rating:      floatPtr(4.5),
		},
		{
			ID:       "2",
			Name:     "Сумка городская",
			Category: "bags",
			Price:    50,
			InStock:  false,
			Colors:   []string{"brown"},
		},
		{
			ID:       "3",
			Name:     "Ботинки зимние",
			Category: "shoes",
			Brand:    "Ecco",
			Price:    200,
			InStock:  true,
			Sizes:    []string{"42"},
			Rating:   floatPtr(3.0),
		},
	}
}

func TestFilterSpecIsEmpty(t *testing.T) {
	var f FilterSpec
	if !f.IsEmpty() {
		t.Error("нулевой фильтр должен быть пустым")
	}

	f.Search = "x"
	if f.IsEmpty() {
		t.Error("фильтр с поиском не должен быть пустым")
	}
}

func TestFilterSpecMatches(t *testing.T) {
	entries := testEntries()

	tests := []struct {
		name   string
		filter FilterSpec
		want   []string // ожидаемые ID
	}{
		{
			name:   "пустой фильтр пропускает все",
			filter: FilterSpec{},
			want:   []string{"1", "2", "3"},
		},
		{
			name:   "поиск без учета регистра по имени",
			filter: FilterSpec{Search: "КРОССОВКИ"},
			want:   []string{"1"},
		},
		{
			name:   "поиск по бренду",
			filter: FilterSpec{Search: "ecco"},
			want:   []string{"3"},
		},
		{
			name:   "поиск по описанию",
			filter: FilterSpec{Search: "для бега"},
			want:   []string{"1"},
		},
		{
			name:   "поиск по идентификатору",
			filter: FilterSpec{Search: "2"},
			want:   []string{"2"},
		},
		{
			name:   "категории объединяются по ИЛИ",
			filter: FilterSpec{Categories: []string{"shoes", "bags"}},
			want:   []string{"1", "2", "3"},
		},
		{
			name:   "запись без бренда не проходит фильтр по бренду",
			filter: FilterSpec{Brands: []string{"Nike", "NoName"}},
			want:   []string{"1"},
		},
		{
			name:   "наличие строго",
			filter: FilterSpec{InStock: boolPtr(false)},
			want:   []string{"2"},
		},
		{
			name:   "границы цены включительно",
			filter: FilterSpec{PriceMin: floatPtr(50), PriceMax: floatPtr(100)},
			want:   []string{"1", "2"},
		},
		{
			name:   "размеры пересекаются хотя бы одним элементом",
			filter: FilterSpec{Sizes: []string{"41", "44"}},
			want:   []string{"1"},
		},
		{
			name:   "запись без рейтинга не проходит фильтр по рейтингу",
			filter: FilterSpec{Rating: floatPtr(4.0)},
			want:   []string{"1"},
		},
		{
			name: "условия объединяются по И",
			filter: FilterSpec{
				Categories: []string{"shoes"},
				InStock:    boolPtr(true),
				PriceMin:   floatPtr(150),
			},
			want: []string{"3"},
		},
		{
			name:   "несовместимые условия дают пустой результат",
			filter: FilterSpec{Categories: []string{"bags"}, InStock: boolPtr(true)},
			want:   []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.filter.Apply(entries)
			if len(got) != len(tt.want) {
				t.Fatalf("получено %d записей, ожидалось %d", len(got), len(tt.want))
			}
			for i, e := range got {
				if e.ID != tt.want[i] {
					t.Errorf("позиция %d: получен ID %q, ожидался %q", i, e.ID, tt.want[i])
				}
			}
		})
	}
}

func TestFilterSpecApplyPreservesOrder(t *testing.T) {
	entries := testEntries()
	f := FilterSpec{Categories: []string{"shoes"}}

	got := f.Apply(entries)
	if len(got) != 2 || got[0].ID != "1" || got[1].ID != "3" {
		t.Errorf("порядок исходной коллекции должен сохраняться, получено %v", ids(got))
	}
}

func ids(entries []*CatalogEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}
