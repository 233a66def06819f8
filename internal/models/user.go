// Package models содержит доменные структуры сервиса: карточку пользователя
// с данными о пробном поиске и подписке, а также результат проверки доступа.
package models

import "time"

// UserRecord представляет пользователя, наблюдаемого сервисом.
// Запись создаётся лениво при первом входящем событии и дальше
// живёт в хранилище под ключом ID.
type UserRecord struct {
	ID             string     `json:"id"`                        // Идентификатор пользователя в транспорте (непрозрачен для ядра)
	DisplayName    string     `json:"display_name,omitempty"`    // Отображаемое имя, обновляется на каждом событии
	Handle         string     `json:"handle,omitempty"`          // Username/handle в транспорте
	JoinedAt       time.Time  `json:"joined_at"`                 // Момент создания записи, не изменяется
	FreeTrialsUsed int        `json:"free_trials_used"`          // Израсходованные бесплатные поиски, не убывает
	TotalLookups   int        `json:"total_lookups"`             // Успешные поиски за всё время, не убывает
	SubActive      bool       `json:"subscription_active"`       // Активна ли платная подписка
	SubExpiresAt   *time.Time `json:"subscription_expires_at"`   // Дата истечения подписки, nil если подписки нет
}

// Reason причина решения о допуске к поиску.
type Reason string

const (
	// ReasonSubscribed — доступ по активной подписке.
	ReasonSubscribed Reason = "SUBSCRIBED"
	// ReasonFreeTrial — доступ за счёт бесплатного пробного поиска.
	ReasonFreeTrial Reason = "FREE_TRIAL"
	// ReasonLimitReached — лимит исчерпан, нужен платный доступ.
	ReasonLimitReached Reason = "LIMIT_REACHED"
)

// Access результат проверки права на поиск.
type Access struct {
	Allowed bool
	Reason  Reason
}
