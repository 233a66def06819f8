package storage

import "time"

// Patch описывает частичное обновление записи пользователя.
// Нулевой указатель означает "поле не трогать".
type Patch struct {
	DisplayName    *string
	Handle         *string
	FreeTrialsUsed *int
	TotalLookups   *int
	// Subscription при ненулевом значении перезаписывает оба поля подписки целиком.
	Subscription *SubscriptionPatch
}

// SubscriptionPatch полная перезапись состояния подписки.
type SubscriptionPatch struct {
	Active    bool
	ExpiresAt *time.Time
}
