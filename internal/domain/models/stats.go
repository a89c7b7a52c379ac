package models

// Stats содержит сводные показатели каталога.
// Показатели всегда считаются по полной, неотфильтрованной коллекции:
// счетчики дашборда отвечают на вопрос "как дела у каталога в целом",
// а не "как выглядит текущая выборка".
type Stats struct {
	Total    int `json:"total"`
	Active   int `json:"active"`   // записи в наличии
	Inactive int `json:"inactive"` // записи не в наличии

	// AveragePrice — средняя цена; для пустого каталога ноль, не NaN
	AveragePrice float64 `json:"average_price"`

	// PriceSum — сумма цен всех записей (без учета остатков)
	PriceSum float64 `json:"price_sum"`

	Categories map[string]int `json:"categories"`
	Brands     map[string]int `json:"brands"`
}

// Aggregate считает сводку за один проход по коллекции
func Aggregate(entries []*CatalogEntry) Stats {
	stats := Stats{
		Categories: make(map[string]int),
		Brands:     make(map[string]int),
	}

	for _, e := range entries {
		stats.Total++

		if e.InStock {
			stats.Active++
		} else {
			stats.Inactive++
		}

		stats.PriceSum += e.Price

		if e.Category != "" {
			stats.Categories[e.Category]++
		}

		if e.Brand != "" {
			stats.Brands[e.Brand]++
		}
	}

	if stats.Total > 0 {
		stats.AveragePrice = stats.PriceSum / float64(stats.Total)
	}

	return stats
}
