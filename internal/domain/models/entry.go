package models

import (
	"encoding/json"
	"time"
)

// DefaultCurrency валюта по умолчанию для записей без явного кода валюты
const DefaultCurrency = "RUB"

// StringList — значение, которое в исходных данных встречается и как строка,
// и как список строк (например, поле season). Нормализуется к списку на
// границе десериализации, чтобы остальной код видел одну форму.
type StringList []string

// UnmarshalJSON принимает как "lето", так и ["лето","зима"]
func (s *StringList) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		if single == "" {
			*s = nil
		} else {
			*s = StringList{single}
		}
		return nil
	}

	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*s = StringList(many)
	return nil
}

// CatalogEntry представляет одну карточку товара в каталоге продавца
type CatalogEntry struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Brand       string  `json:"brand,omitempty"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	Currency    string  `json:"currency"`
	InStock     bool    `json:"in_stock"`

	Sizes  []string   `json:"sizes,omitempty"`
	Colors []string   `json:"colors,omitempty"`
	Tags   []string   `json:"tags,omitempty"`
	Season StringList `json:"season,omitempty"`

	// Rating — указатель: отсутствие рейтинга и нулевой рейтинг различаются
	Rating *float64 `json:"rating,omitempty"`

	// Images — упорядоченный список URL, первый элемент является превью
	Images []string `json:"images,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UnmarshalJSON нормализует запись на границе десериализации:
// пустой код валюты заменяется на DefaultCurrency
func (e *CatalogEntry) UnmarshalJSON(data []byte) error {
	type alias CatalogEntry
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	if a.Currency == "" {
		a.Currency = DefaultCurrency
	}
	*e = CatalogEntry(a)
	return nil
}

// PrimaryImage возвращает URL превью или пустую строку
func (e *CatalogEntry) PrimaryImage() string {
	if len(e.Images) == 0 {
		return ""
	}
	return e.Images[0]
}
