package models

import "strings"

// FilterSpec представляет структурированную модель для фильтрации записей каталога.
// Все условия объединяются по И; незаполненное поле означает "без ограничения".
type FilterSpec struct {
	// Полнотекстовый поиск: подстрока без учета регистра
	// по имени, бренду, описанию и идентификатору
	Search string `json:"search,omitempty"`

	// Членство в списке (ИЛИ внутри поля)
	Categories []string `json:"categories,omitempty"`
	Brands     []string `json:"brands,omitempty"`

	// Фильтрация по наличию: строгое сравнение булева значения
	InStock *bool `json:"in_stock,omitempty"`

	// Фильтрация по цене, границы включительно
	PriceMin *float64 `json:"price_min,omitempty"`
	PriceMax *float64 `json:"price_max,omitempty"`

	// Пересечение множеств (достаточно одного общего элемента)
	Sizes  []string `json:"sizes,omitempty"`
	Colors []string `json:"colors,omitempty"`
	Tags   []string `json:"tags,omitempty"`

	// Минимальный рейтинг; записи без рейтинга не проходят этот фильтр
	Rating *float64 `json:"rating,omitempty"`
}

// IsEmpty сообщает, задано ли хотя бы одно условие
func (f *FilterSpec) IsEmpty() bool {
	return f.Search == "" &&
		len(f.Categories) == 0 &&
		len(f.Brands) == 0 &&
		f.InStock == nil &&
		f.PriceMin == nil &&
		f.PriceMax == nil &&
		len(f.Sizes) == 0 &&
		len(f.Colors) == 0 &&
		len(f.Tags) == 0 &&
		f.Rating == nil
}

// Matches проверяет запись по всем заданным условиям фильтра.
// Условия независимы, порядок проверки на результат не влияет;
// вычисление прерывается на первом несовпадении.
func (f *FilterSpec) Matches(e *CatalogEntry) bool {
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(e.Name), q) &&
			!strings.Contains(strings.ToLower(e.Brand), q) &&
			!strings.Contains(strings.ToLower(e.Description), q) &&
			!strings.Contains(strings.ToLower(e.ID), q) {
			return false
		}
	}

	if len(f.Categories) > 0 && !containsString(f.Categories, e.Category) {
		return false
	}

	if len(f.Brands) > 0 {
		if e.Brand == "" || !containsString(f.Brands, e.Brand) {
			return false
		}
	}

	if f.InStock != nil && e.InStock != *f.InStock {
		return false
	}

	if f.PriceMin != nil && e.Price < *f.PriceMin {
		return false
	}

	if f.PriceMax != nil && e.Price > *f.PriceMax {
		return false
	}

	if len(f.Sizes) > 0 && !intersects(f.Sizes, e.Sizes) {
		return false
	}

	if len(f.Colors) > 0 && !intersects(f.Colors, e.Colors) {
		return false
	}

	if len(f.Tags) > 0 && !intersects(f.Tags, e.Tags) {
		return false
	}

	if f.Rating != nil {
		if e.Rating == nil || *e.Rating < *f.Rating {
			return false
		}
	}

	return true
}

// Apply возвращает записи, проходящие фильтр, с сохранением исходного порядка
func (f *FilterSpec) Apply(entries []*CatalogEntry) []*CatalogEntry {
	if f == nil || f.IsEmpty() {
		return entries
	}

	result := make([]*CatalogEntry, 0, len(entries))
	for _, e := range entries {
		if f.Matches(e) {
			result = append(result, e)
		}
	}
	return result
}

func containsString(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}

func intersects(a, b []string) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}
