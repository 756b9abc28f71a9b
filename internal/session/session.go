package session

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"plushbot/internal/catalog"
	"plushbot/internal/domain"
	"plushbot/internal/llm"
)

var (
	// ErrBusy предыдущий HandleInput ещё выполняется
	ErrBusy = errors.New("session busy")
	// ErrEmptyInput пустая реплика
	ErrEmptyInput = errors.New("empty input")
	// ErrSessionNotFound сессия не найдена или завершена
	ErrSessionNotFound = errors.New("session not found")
)

// задержка между карточками каталога — имитация последовательной
// доставки, не сетевое ожидание
const defaultCardDelay = 200 * time.Millisecond

// Session состояние одного разговора: append-only лента сообщений и
// корзина. Единственный владелец состояния — диспетчер (HandleInput);
// снаружи доступны только копии-снимки.
type Session struct {
	id        uuid.UUID
	catalog   *catalog.Catalog
	completer llm.Completer
	logger    *zap.Logger

	// cardDelay переопределяется в тестах
	cardDelay time.Duration

	// busy — одна обработка за раз: параллельный вызов отклоняется
	busy atomic.Bool

	mu        sync.RWMutex
	messages  []domain.Message
	cart      []domain.CartItem
	composing bool
	lastSeen  time.Time
}

// NewSession создаёт сессию и публикует приветствие
func NewSession(cat *catalog.Catalog, completer llm.Completer, logger *zap.Logger) *Session {
	s := &Session{
		id:        uuid.New(),
		catalog:   cat,
		completer: completer,
		logger:    logger,
		cardDelay: defaultCardDelay,
		lastSeen:  time.Now().UTC(),
	}
	s.append(domain.NewTextMessage(domain.SenderBot, greetingText, greetingButtons()...))
	return s
}

// ID идентификатор сессии
func (s *Session) ID() uuid.UUID { return s.id }

// Messages снимок ленты в порядке создания
func (s *Session) Messages() []domain.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// CartItems снимок корзины в порядке первого добавления
func (s *Session) CartItems() []domain.CartItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.CartItem, len(s.cart))
	copy(out, s.cart)
	return out
}

// CartCount суммарное количество товаров — бейдж у поля ввода
func (s *Session) CartCount() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, it := range s.cart {
		n += it.Quantity
	}
	return n
}

// CartTotal сумма корзины в рублях
func (s *Session) CartTotal() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var total int64
	for _, it := range s.cart {
		total += it.LineTotal()
	}
	return total
}

// Composing true, пока бот «печатает»
func (s *Session) Composing() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.composing
}

func (s *Session) setComposing(v bool) {
	s.mu.Lock()
	s.composing = v
	s.mu.Unlock()
}

func (s *Session) append(m domain.Message) {
	s.mu.Lock()
	s.messages = append(s.messages, m)
	s.mu.Unlock()
}

func (s *Session) appendBot(text string, buttons ...domain.Button) {
	s.append(domain.NewTextMessage(domain.SenderBot, text, buttons...))
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastSeen = time.Now().UTC()
	s.mu.Unlock()
}

func (s *Session) idleSince(deadline time.Time) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSeen.Before(deadline)
}
