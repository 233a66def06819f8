// Package ratelimit реализует пер-пользовательский ограничитель частоты
// с жёстким минимальным интервалом между запросами.
//
// Это не token bucket: вызов допускается только если с момента предыдущего
// допущенного вызова прошло не меньше интервала, и отметка времени обновляется
// на каждом допущенном вызове. Состояние живёт в памяти процесса и теряется
// при рестарте — ограничитель гасит всплески, а не служит границей безопасности.
package ratelimit

import (
	"sync"
	"time"
)

// PerUser ограничитель минимального интервала по идентификатору пользователя.
type PerUser struct {
	mu       sync.Mutex
	interval time.Duration
	last     map[string]time.Time
	now      func() time.Time
}

// NewPerUser создает ограничитель с заданным минимальным интервалом.
func NewPerUser(interval time.Duration) *PerUser {
	return &PerUser{
		interval: interval,
		last:     make(map[string]time.Time),
		now:      time.Now,
	}
}

// Allow сообщает, допустим ли запрос для id, и при допуске
// безусловно обновляет отметку последнего допущенного вызова.
func (l *PerUser) Allow(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if prev, ok := l.last[id]; ok && now.Sub(prev) < l.interval {
		return false
	}
	l.last[id] = now
	return true
}
