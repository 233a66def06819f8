// Package format преобразует сырой ответ сервиса поиска в упорядоченный
// список полей для показа пользователю.
//
// Пакет чистый: не делает I/O, ничего не мутирует и для одинакового входа
// всегда возвращает одинаковый результат.
package format

import (
	"regexp"
	"strings"

	"github.com/kirillsaykov/lookup-gate/internal/models"
)

// fieldSpec фиксированная подпись и категория для известного ключа апстрима.
type fieldSpec struct {
	label    string
	category string
}

// knownFields отображение ключей апстрима в подписи и категории.
var knownFields = map[string]fieldSpec{
	"name":             {label: "Name", category: "personal"},
	"fname":            {label: "Father's Name", category: "personal"},
	"father_name":      {label: "Father's Name", category: "personal"},
	"mobile":           {label: "Mobile", category: "contact"},
	"alt":              {label: "Alternate Mobile", category: "contact"},
	"alt_mobile":       {label: "Alternate Mobile", category: "contact"},
	"alternate_mobile": {label: "Alternate Mobile", category: "contact"},
	"email":            {label: "Email", category: "contact"},
	"circle":           {label: "Region", category: "location"},
	"region":           {label: "Region", category: "location"},
	"address":          {label: "Address", category: "address"},
	"id":               {label: "ID Number", category: "identity"},
	"id_number":        {label: "ID Number", category: "identity"},
	"aadhar":           {label: "ID Number", category: "identity"},
}

// defaultCategory категория для ключей, не известных отображению.
const defaultCategory = "other"

// Format разворачивает ответ апстрима в плоский список отображаемых полей,
// сохраняя порядок записей и полей. Пустые поля и заглушки апстрима
// ("not found", "[not set]") отбрасываются.
func Format(payload *models.Payload) models.FormattedResult {
	var result models.FormattedResult
	if payload == nil {
		return result
	}

	for _, item := range payload.Items {
		for _, field := range item.Fields {
			value := strings.TrimSpace(field.Value)
			if dropValue(value) {
				continue
			}

			key := strings.ToLower(strings.TrimSpace(field.Key))
			spec, ok := knownFields[key]
			if !ok {
				spec = fieldSpec{label: titleCase(key), category: defaultCategory}
			}
			if spec.category == "address" {
				value = normalizeAddress(value)
				if value == "" {
					continue
				}
			}

			result.Fields = append(result.Fields, models.DisplayField{
				Label:    spec.label,
				Value:    value,
				Category: spec.category,
			})
		}
	}

	result.HasData = len(result.Fields) > 0
	return result
}

// dropValue сообщает, является ли значение пустым или заглушкой апстрима.
func dropValue(value string) bool {
	if value == "" {
		return true
	}
	switch strings.ToLower(value) {
	case "not found", "[not set]":
		return true
	}
	return false
}

var (
	repeatedCommas = regexp.MustCompile(`(,\s*)+`)
	repeatedSpaces = regexp.MustCompile(`\s{2,}`)
)

// normalizeAddress приводит адрес апстрима к читаемому виду: разделители
// "!" и "!!" схлопываются в ", ", повторные запятые — в одну,
// краевой мусор из разделителей обрезается.
func normalizeAddress(value string) string {
	s := strings.ReplaceAll(value, "!!", "!")
	s = strings.ReplaceAll(s, "!", ", ")
	s = repeatedCommas.ReplaceAllString(s, ", ")
	s = repeatedSpaces.ReplaceAllString(s, " ")
	s = strings.Trim(s, " ,")
	return s
}

// titleCase строит подпись из неизвестного ключа: "alt_mobile" -> "Alt Mobile".
func titleCase(key string) string {
	words := strings.FieldsFunc(key, func(r rune) bool {
		return r == '_' || r == '-' || r == ' '
	})
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
