// Package storage реализует хранилище записей пользователей поверх одного
// JSON-файла. Каждая операция выполняет полный цикл load -> mutate -> save,
// параллельный доступ сериализуется мьютексом внутри процесса.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/kirillsaykov/lookup-gate/internal/lib/sl"
	"github.com/kirillsaykov/lookup-gate/internal/metrics"
	"github.com/kirillsaykov/lookup-gate/internal/models"
)

// document схема файла хранилища. Ключ users — записи пользователей по ID,
// ключ subscriptions зарезервирован и сейчас не используется.
type document struct {
	Users         map[string]*models.UserRecord `json:"users"`
	Subscriptions map[string]json.RawMessage    `json:"subscriptions"`
}

// Storage файловое хранилище записей пользователей.
type Storage struct {
	mu   sync.Mutex
	path string
	log  *slog.Logger
	now  func() time.Time
}

// New создает хранилище над файлом path. Отсутствующий файл допустим:
// он будет создан при первой записи.
func New(path string, log *slog.Logger) (*Storage, error) {
	const op = "storage.New"
	if path == "" {
		return nil, fmt.Errorf("%s: empty store path", op)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Storage{
		path: path,
		log:  log,
		now:  time.Now,
	}, nil
}

// load читает файл целиком. Повреждённый или отсутствующий файл деградирует
// до пустого хранилища: сервис продолжает отвечать, но все счётчики
// entitlement при этом обнуляются. Ошибка чтения логируется на уровне Error.
func (s *Storage) load() *document {
	const op = "storage.load"
	doc := &document{
		Users:         make(map[string]*models.UserRecord),
		Subscriptions: make(map[string]json.RawMessage),
	}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return doc
	}
	if err != nil {
		metrics.StoreLoadFailures.Inc()
		s.log.Error("store file unreadable, serving empty store",
			slog.String("op", op), slog.String("path", s.path), sl.Err(err))
		return doc
	}
	if err := json.Unmarshal(data, doc); err != nil {
		metrics.StoreLoadFailures.Inc()
		s.log.Error("store file corrupt, serving empty store",
			slog.String("op", op), slog.String("path", s.path), sl.Err(err))
		return &document{
			Users:         make(map[string]*models.UserRecord),
			Subscriptions: make(map[string]json.RawMessage),
		}
	}
	if doc.Users == nil {
		doc.Users = make(map[string]*models.UserRecord)
	}
	if doc.Subscriptions == nil {
		doc.Subscriptions = make(map[string]json.RawMessage)
	}
	return doc
}

// save атомарно переписывает файл через временный файл и rename.
func (s *Storage) save(doc *document) error {
	const op = "storage.save"
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Get возвращает запись пользователя, лениво создавая её при первом обращении.
// Создание фиксируется на диске до возврата.
func (s *Storage) Get(id string) (*models.UserRecord, error) {
	const op = "storage.Get"
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.load()
	if rec, ok := doc.Users[id]; ok {
		cp := *rec
		return &cp, nil
	}

	rec := &models.UserRecord{
		ID:       id,
		JoinedAt: s.now().UTC(),
	}
	doc.Users[id] = rec
	if err := s.save(doc); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	cp := *rec
	return &cp, nil
}

// Update применяет частичное обновление к существующей записи.
// Для отсутствующего ID операция ничего не делает и не создаёт запись.
func (s *Storage) Update(id string, patch Patch) error {
	const op = "storage.Update"
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.load()
	rec, ok := doc.Users[id]
	if !ok {
		return nil
	}

	if patch.DisplayName != nil {
		rec.DisplayName = *patch.DisplayName
	}
	if patch.Handle != nil {
		rec.Handle = *patch.Handle
	}
	if patch.FreeTrialsUsed != nil {
		rec.FreeTrialsUsed = *patch.FreeTrialsUsed
	}
	if patch.TotalLookups != nil {
		rec.TotalLookups = *patch.TotalLookups
	}
	if patch.Subscription != nil {
		rec.SubActive = patch.Subscription.Active
		rec.SubExpiresAt = patch.Subscription.ExpiresAt
	}

	if err := s.save(doc); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ListAll возвращает все записи пользователей. Порядок не определён.
func (s *Storage) ListAll() ([]*models.UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.load()
	result := make([]*models.UserRecord, 0, len(doc.Users))
	for _, rec := range doc.Users {
		cp := *rec
		result = append(result, &cp)
	}
	return result, nil
}
