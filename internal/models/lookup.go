package models

// PayloadField одно поле ответа внешнего сервиса.
// Порядок полей в Payload повторяет порядок ключей в JSON апстрима.
type PayloadField struct {
	Key   string
	Value string
}

// PayloadItem одна запись ответа (апстрим может вернуть объект или массив объектов).
type PayloadItem struct {
	Fields []PayloadField
}

// Payload нормализованный ответ внешнего сервиса поиска.
type Payload struct {
	Items []PayloadItem
}

// DisplayField поле, подготовленное к показу пользователю.
type DisplayField struct {
	Label    string `json:"label"`
	Value    string `json:"value"`
	Category string `json:"category"`
}

// FormattedResult результат работы форматтера.
// HasData=false означает, что ни одно поле не прошло фильтрацию
// и оркестратор должен подставить сообщение "данные не найдены".
type FormattedResult struct {
	Fields  []DisplayField
	HasData bool
}

// LookupRequested нормализованное входящее событие поиска.
// Обе формы входа (голый номер в тексте и явная команда) приводятся
// к этой структуре до входа в конвейер.
type LookupRequested struct {
	UserID      string
	QueryKey    string
	DisplayName string
	Handle      string
}

// Button инлайн-кнопка исходящего сообщения: подпись и действие,
// которое транспорт отрисует сам.
type Button struct {
	Label  string `json:"label"`
	Action string `json:"action"`
}

// OutboundMessage исходящее сообщение для транспортного слоя.
// Text содержит HTML-разметку (жирный/моноширинный), рендеринг — забота транспорта.
type OutboundMessage struct {
	MessageID string   `json:"message_id"`
	ChatID    string   `json:"chat_id"`
	Text      string   `json:"text"`
	ParseMode string   `json:"parse_mode"`
	Buttons   []Button `json:"buttons,omitempty"`
}
