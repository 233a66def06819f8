// Package entitlement содержит бизнес-логику допуска к платному поиску:
// один бесплатный пробный поиск, затем подписка с датой истечения.
//
// Истечение подписки ленивое: оно обнаруживается и записывается в хранилище
// в момент проверки, фонового процесса нет. Поэтому результат CanSearch
// нельзя кешировать — он зависит от времени вызова.
package entitlement

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/kirillsaykov/lookup-gate/internal/models"
	"github.com/kirillsaykov/lookup-gate/internal/storage"
)

// FreeTrialLimit количество бесплатных поисков на пользователя.
const FreeTrialLimit = 1

// Store определяет методы хранилища записей пользователей.
type Store interface {
	// Get возвращает запись, лениво создавая её при первом обращении.
	Get(id string) (*models.UserRecord, error)
	// Update применяет частичное обновление; для отсутствующего ID — no-op.
	Update(id string, patch storage.Patch) error
	// ListAll возвращает все записи.
	ListAll() ([]*models.UserRecord, error)
}

// Service реализует проверку допуска и админские операции над подпиской.
type Service struct {
	store Store
	log   *slog.Logger
	now   func() time.Time
}

// New создает сервис entitlement.
func New(store Store, log *slog.Logger) *Service {
	return &Service{
		store: store,
		log:   log,
		now:   time.Now,
	}
}

// CanSearch решает, допустим ли поиск для пользователя id, и классифицирует
// причину. Просроченная подписка сбрасывается в хранилище прямо здесь.
func (s *Service) CanSearch(id string) (models.Access, error) {
	const op = "entitlement.CanSearch"

	rec, err := s.store.Get(id)
	if err != nil {
		return models.Access{}, fmt.Errorf("%s: %w", op, err)
	}

	if rec.SubActive {
		if rec.SubExpiresAt != nil && rec.SubExpiresAt.After(s.now()) {
			return models.Access{Allowed: true, Reason: models.ReasonSubscribed}, nil
		}
		// Ленивое истечение: active без будущей даты — невалидное состояние.
		if err := s.store.Update(id, storage.Patch{
			Subscription: &storage.SubscriptionPatch{Active: false, ExpiresAt: nil},
		}); err != nil {
			return models.Access{}, fmt.Errorf("%s: %w", op, err)
		}
		s.log.Info("subscription expired", slog.String("user_id", id))
	}

	if rec.FreeTrialsUsed < FreeTrialLimit {
		return models.Access{Allowed: true, Reason: models.ReasonFreeTrial}, nil
	}
	return models.Access{Allowed: false, Reason: models.ReasonLimitReached}, nil
}

// Grant выдаёт подписку на durationDays дней от текущего момента.
// Повторный вызов перезаписывает дату истечения, а не продлевает её.
func (s *Service) Grant(id string, durationDays int) (time.Time, error) {
	const op = "entitlement.Grant"

	if _, err := s.store.Get(id); err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", op, err)
	}
	expiresAt := s.now().UTC().AddDate(0, 0, durationDays)
	if err := s.store.Update(id, storage.Patch{
		Subscription: &storage.SubscriptionPatch{Active: true, ExpiresAt: &expiresAt},
	}); err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("subscription granted",
		slog.String("user_id", id), slog.Int("days", durationDays))
	return expiresAt, nil
}

// Revoke снимает подписку. Для пользователя без подписки — идемпотентный no-op.
func (s *Service) Revoke(id string) error {
	const op = "entitlement.Revoke"

	if _, err := s.store.Get(id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.store.Update(id, storage.Patch{
		Subscription: &storage.SubscriptionPatch{Active: false, ExpiresAt: nil},
	}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("subscription revoked", slog.String("user_id", id))
	return nil
}

// Snapshot возвращает текущее состояние записи пользователя.
func (s *Service) Snapshot(id string) (*models.UserRecord, error) {
	const op = "entitlement.Snapshot"
	rec, err := s.store.Get(id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return rec, nil
}

// ListAll возвращает записи всех пользователей.
func (s *Service) ListAll() ([]*models.UserRecord, error) {
	const op = "entitlement.ListAll"
	recs, err := s.store.ListAll()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return recs, nil
}
