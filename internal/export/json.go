package export

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/sellerhub/backoffice/catalog-service/internal/domain/models"
)

// orderedRow сериализуется в JSON-объект с ключами в порядке проекции
type orderedRow struct {
	fields []string
	entry  *models.CatalogEntry
}

func (r orderedRow) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		value, err := json.Marshal(exportFields[f](r.entry))
		if err != nil {
			return nil, err
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// encodeJSON кодирует проекцию в форматированный JSON-массив объектов
func encodeJSON(entries []*models.CatalogEntry, fields []string) (*Result, error) {
	rows := make([]orderedRow, len(entries))
	for i, e := range entries {
		rows[i] = orderedRow{fields: fields, entry: e}
	}

	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("ошибка кодирования JSON: %w", err)
	}

	return &Result{
		Data:        data,
		ContentType: "application/json",
	}, nil
}
