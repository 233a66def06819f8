// Package markup собирает текст исходящих сообщений с HTML-разметкой.
//
// Любой текст, пришедший из внешних источников (ответ апстрима, сетевые ошибки,
// имена пользователей), обязан проходить через Escape до попадания в сообщение.
package markup

import "strings"

var escaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
)

// Escape экранирует значимые для HTML-разметки символы.
func Escape(s string) string {
	return escaper.Replace(s)
}

// Bold оборачивает текст в жирное начертание. Текст не экранируется.
func Bold(s string) string {
	return "<b>" + s + "</b>"
}

// Code оборачивает текст в моноширинное начертание. Текст не экранируется.
func Code(s string) string {
	return "<code>" + s + "</code>"
}

// Italic оборачивает текст в курсив. Текст не экранируется.
func Italic(s string) string {
	return "<i>" + s + "</i>"
}
