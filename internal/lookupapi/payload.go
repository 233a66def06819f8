package lookupapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/kirillsaykov/lookup-gate/internal/models"
)

// parsePayload разбирает тело ответа апстрима в models.Payload,
// сохраняя порядок ключей JSON. Одиночный объект становится
// последовательностью из одного элемента.
func parsePayload(body []byte) (*models.Payload, error) {
	const op = "lookupapi.parsePayload"

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	payload := &models.Payload{}
	switch delim := tok.(type) {
	case json.Delim:
		switch delim {
		case '{':
			item, err := parseItem(dec)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", op, err)
			}
			payload.Items = append(payload.Items, *item)
		case '[':
			for dec.More() {
				tok, err := dec.Token()
				if err != nil {
					return nil, fmt.Errorf("%s: %w", op, err)
				}
				if d, ok := tok.(json.Delim); !ok || d != '{' {
					return nil, fmt.Errorf("%s: array element is not an object", op)
				}
				item, err := parseItem(dec)
				if err != nil {
					return nil, fmt.Errorf("%s: %w", op, err)
				}
				payload.Items = append(payload.Items, *item)
			}
		default:
			return nil, fmt.Errorf("%s: unexpected delimiter %v", op, delim)
		}
	default:
		return nil, fmt.Errorf("%s: unexpected token %v", op, tok)
	}
	return payload, nil
}

// parseItem читает поля объекта до закрывающей скобки.
// Декодер должен стоять сразу после '{'.
func parseItem(dec *json.Decoder) (*models.PayloadItem, error) {
	item := &models.PayloadItem{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("object key is not a string: %v", keyTok)
		}

		var raw any
		if err := dec.Decode(&raw); err != nil {
			return nil, err
		}
		item.Fields = append(item.Fields, models.PayloadField{
			Key:   key,
			Value: stringify(raw),
		})
	}
	// Закрывающая '}'
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return item, nil
}

// stringify приводит JSON-значение к строке для показа пользователю.
// Вложенные массивы склеиваются через запятую, вложенные объекты
// сериализуются обратно в компактный JSON.
func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			parts = append(parts, stringify(item))
		}
		return strings.Join(parts, ", ")
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(data)
	}
}
