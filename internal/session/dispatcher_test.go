package session

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"plushbot/internal/catalog"
	"plushbot/internal/domain"
	"plushbot/internal/llm"
)

type completeCall struct {
	message string
	history []llm.Turn
}

// stubCompleter записывает вызовы и отвечает заранее заданной строкой
type stubCompleter struct {
	reply string
	err   error
	calls []completeCall
}

func (c *stubCompleter) Complete(_ context.Context, message string, history []llm.Turn) (string, error) {
	c.calls = append(c.calls, completeCall{message: message, history: history})
	if c.err != nil {
		return "", c.err
	}
	return c.reply, nil
}

func newTestSession(t *testing.T, c llm.Completer) *Session {
	t.Helper()
	cat, err := catalog.New([]domain.Product{
		{ID: "a", Name: "Зайка", Price: 500},
		{ID: "b", Name: "Котик", Price: 300},
	})
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	if c == nil {
		c = &stubCompleter{reply: "ок"}
	}
	s := NewSession(cat, c, zap.NewNop())
	s.cardDelay = 0
	return s
}

func lastMessage(t *testing.T, s *Session) domain.Message {
	t.Helper()
	log := s.Messages()
	if len(log) == 0 {
		t.Fatalf("empty message log")
	}
	return log[len(log)-1]
}

func TestNewSession_Greeting(t *testing.T) {
	s := newTestSession(t, nil)
	log := s.Messages()
	if len(log) != 1 {
		t.Fatalf("expected only greeting, got %d messages", len(log))
	}
	g := log[0]
	if g.Sender != domain.SenderBot || g.Kind != domain.KindText {
		t.Fatalf("unexpected greeting message: %+v", g)
	}
	if len(g.Buttons) != 1 || g.Buttons[0].Action != "/catalog" {
		t.Fatalf("greeting must carry a catalog button, got %+v", g.Buttons)
	}
}

func TestAddToCart_Accumulates(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t, nil)
	for i := 0; i < 3; i++ {
		if err := s.HandleInput(ctx, "add_to_cart:a"); err != nil {
			t.Fatalf("add %d: %v", i, err)
		}
	}
	items := s.CartItems()
	if len(items) != 1 {
		t.Fatalf("expected 1 cart line, got %d", len(items))
	}
	if items[0].Product.ID != "a" || items[0].Quantity != 3 {
		t.Fatalf("expected a x3, got %+v", items[0])
	}
	// подтверждение с кнопкой перехода в корзину
	m := lastMessage(t, s)
	if !strings.Contains(m.Text, "Зайка") || len(m.Buttons) != 1 || m.Buttons[0].Action != "/cart" {
		t.Fatalf("unexpected confirmation: %+v", m)
	}
}

func TestAddToCart_UnknownID_Silent(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t, nil)
	before := len(s.Messages())
	if err := s.HandleInput(ctx, "add_to_cart:zzz"); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if got := len(s.CartItems()); got != 0 {
		t.Fatalf("cart must stay empty, got %d lines", got)
	}
	// добавилась только реплика пользователя, ответа нет
	if got := len(s.Messages()); got != before+1 {
		t.Fatalf("expected silent no-op, messages %d -> %d", before, got)
	}
}

func TestClearCart_Idempotent(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t, nil)
	_ = s.HandleInput(ctx, "add_to_cart:a")
	for i := 0; i < 2; i++ {
		if err := s.HandleInput(ctx, "/clear_cart"); err != nil {
			t.Fatalf("clear %d: %v", i, err)
		}
		if len(s.CartItems()) != 0 {
			t.Fatalf("cart not empty after clear %d", i)
		}
		if m := lastMessage(t, s); m.Text != cartClearedText {
			t.Fatalf("expected confirmation, got %q", m.Text)
		}
	}
}

func TestCheckout_EmptyCart_NoOp(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t, nil)
	before := len(s.Messages())
	if err := s.HandleInput(ctx, "/checkout"); err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if got := len(s.Messages()); got != before+1 {
		t.Fatalf("checkout on empty cart must not answer, messages %d -> %d", before, got)
	}
	if len(s.CartItems()) != 0 {
		t.Fatalf("cart must remain empty")
	}
}

func TestCheckout_NonEmpty(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t, nil)
	_ = s.HandleInput(ctx, "add_to_cart:a")
	before := len(s.Messages())
	if err := s.HandleInput(ctx, "/checkout"); err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if len(s.CartItems()) != 0 {
		t.Fatalf("cart must be emptied by checkout")
	}
	// ровно одно подтверждение после реплики пользователя
	log := s.Messages()
	if len(log) != before+2 {
		t.Fatalf("expected user message + one confirmation, got %d new", len(log)-before)
	}
	if log[len(log)-1].Text != checkoutDoneText {
		t.Fatalf("unexpected confirmation: %q", log[len(log)-1].Text)
	}
}

func TestCartCommand_Total(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t, nil)
	_ = s.HandleInput(ctx, "add_to_cart:a") // 500
	_ = s.HandleInput(ctx, "add_to_cart:b") // 300
	_ = s.HandleInput(ctx, "add_to_cart:b") // 300
	if got := s.CartTotal(); got != 1100 {
		t.Fatalf("expected total 1100, got %d", got)
	}
	if err := s.HandleInput(ctx, "/cart"); err != nil {
		t.Fatalf("cart: %v", err)
	}
	m := lastMessage(t, s)
	if !strings.Contains(m.Text, "Итого: 1100 ₽") {
		t.Fatalf("displayed total must equal 1100, got %q", m.Text)
	}
	if !strings.Contains(m.Text, "Котик (x2) — 600 ₽") {
		t.Fatalf("line totals missing: %q", m.Text)
	}
	if len(m.Buttons) != 2 || m.Buttons[0].Action != "/checkout" || m.Buttons[1].Action != "/clear_cart" {
		t.Fatalf("unexpected cart buttons: %+v", m.Buttons)
	}
	if m.Buttons[1].Variant != domain.VariantSecondary {
		t.Fatalf("clear button must be secondary")
	}
}

func TestCartCommand_Empty(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t, nil)
	if err := s.HandleInput(ctx, "/cart"); err != nil {
		t.Fatalf("cart: %v", err)
	}
	m := lastMessage(t, s)
	if m.Text != cartEmptyText || len(m.Buttons) != 0 {
		t.Fatalf("empty cart message must have no buttons: %+v", m)
	}
}

func TestCatalogCommand_OrderAndCards(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t, nil)
	before := len(s.Messages())
	if err := s.HandleInput(ctx, "/catalog"); err != nil {
		t.Fatalf("catalog: %v", err)
	}
	log := s.Messages()[before:]
	// реплика пользователя, анонс, по карточке на товар
	if len(log) != 2+2 {
		t.Fatalf("expected 4 new messages, got %d", len(log))
	}
	if log[1].Text != catalogIntroText {
		t.Fatalf("expected announcement, got %q", log[1].Text)
	}
	ids := []string{"a", "b"}
	for i, m := range log[2:] {
		if m.Kind != domain.KindProductCard || m.Product == nil {
			t.Fatalf("expected product card, got %+v", m)
		}
		if m.Product.ID != ids[i] {
			t.Fatalf("cards out of catalog order: %q at %d", m.Product.ID, i)
		}
		if len(m.Buttons) != 1 || m.Buttons[0].Action != "add_to_cart:"+m.Product.ID {
			t.Fatalf("card must carry a buy button: %+v", m.Buttons)
		}
	}
}

func TestCatalogShortcut_ExactOnly(t *testing.T) {
	ctx := context.Background()
	stub := &stubCompleter{reply: "ответ"}
	s := newTestSession(t, stub)

	if err := s.HandleInput(ctx, "  Каталог "); err != nil {
		t.Fatalf("shortcut: %v", err)
	}
	if len(stub.calls) != 0 {
		t.Fatalf("exact synonym must not reach the model")
	}
	foundCard := false
	for _, m := range s.Messages() {
		if m.Kind == domain.KindProductCard {
			foundCard = true
		}
	}
	if !foundCard {
		t.Fatalf("synonym must open the catalog")
	}

	// фраза с упоминанием товара — свободный текст для модели
	if err := s.HandleInput(ctx, "а какие товары у вас самые мягкие?"); err != nil {
		t.Fatalf("free text: %v", err)
	}
	if len(stub.calls) != 1 {
		t.Fatalf("sentence mentioning goods must go to the model")
	}
}

func TestUnknownSlashCommand_Silent(t *testing.T) {
	ctx := context.Background()
	stub := &stubCompleter{reply: "ответ"}
	s := newTestSession(t, stub)
	before := len(s.Messages())
	if err := s.HandleInput(ctx, "/frobnicate"); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(stub.calls) != 0 {
		t.Fatalf("slash command must never reach the model")
	}
	if got := len(s.Messages()); got != before+1 {
		t.Fatalf("unknown command must be silent, messages %d -> %d", before, got)
	}
	if s.Composing() {
		t.Fatalf("composing flag must be cleared")
	}
}

func TestFreeText_ModelReply(t *testing.T) {
	ctx := context.Background()
	stub := &stubCompleter{reply: "Конечно! 🧸"}
	s := newTestSession(t, stub)
	if err := s.HandleInput(ctx, "есть что-то с ушками?"); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if m := lastMessage(t, s); m.Sender != domain.SenderBot || m.Text != "Конечно! 🧸" {
		t.Fatalf("expected model reply, got %+v", m)
	}
	if stub.calls[0].message != "есть что-то с ушками?" {
		t.Fatalf("unexpected prompt: %q", stub.calls[0].message)
	}
}

func TestFreeText_CompleterError_Fallback(t *testing.T) {
	ctx := context.Background()
	stub := &stubCompleter{err: errors.New("boom")}
	s := newTestSession(t, stub)
	if err := s.HandleInput(ctx, "привет"); err != nil {
		t.Fatalf("error must be swallowed, got %v", err)
	}
	if m := lastMessage(t, s); m.Text != fallbackTiredText {
		t.Fatalf("expected fallback, got %q", m.Text)
	}
	if s.Composing() {
		t.Fatalf("composing flag must be cleared after failure")
	}
}

func TestHistory_LimitAndContent(t *testing.T) {
	ctx := context.Background()
	stub := &stubCompleter{reply: "ок"}
	s := newTestSession(t, stub)

	// карточки в ленте не должны попадать в историю
	_ = s.HandleInput(ctx, "/catalog")
	for i := 0; i < 8; i++ {
		_ = s.HandleInput(ctx, "реплика")
	}
	_ = s.HandleInput(ctx, "финальный вопрос")

	last := stub.calls[len(stub.calls)-1]
	if len(last.history) > historyLimit {
		t.Fatalf("history exceeds limit: %d", len(last.history))
	}
	for _, turn := range last.history {
		if turn.Text == "" {
			t.Fatalf("empty turn leaked into history")
		}
		if turn.Role != llm.RoleUser && turn.Role != llm.RoleModel {
			t.Fatalf("unexpected role %q", turn.Role)
		}
	}
	// текущая реплика не входит в историю
	for _, turn := range last.history {
		if turn.Text == "финальный вопрос" {
			t.Fatalf("current utterance must not be part of history")
		}
	}
}

func TestClear_ResetsLogToGreeting(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t, nil)
	_ = s.HandleInput(ctx, "add_to_cart:a")
	_ = s.HandleInput(ctx, "/cart")
	if err := s.HandleInput(ctx, "/clear"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	log := s.Messages()
	if len(log) != 1 {
		t.Fatalf("expected only greeting after /clear, got %d", len(log))
	}
	g := log[0]
	if g.Sender != domain.SenderBot || len(g.Buttons) != 1 {
		t.Fatalf("expected greeting with one button, got %+v", g)
	}
	// корзина командой /clear не трогается
	if len(s.CartItems()) != 1 {
		t.Fatalf("clear must not touch the cart")
	}
}

func TestBareCommandEqualsSlash(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t, nil)
	if err := s.HandleInput(ctx, "help"); err != nil {
		t.Fatalf("bare help: %v", err)
	}
	if m := lastMessage(t, s); m.Text != helpText {
		t.Fatalf("bare command must behave like slash command, got %q", m.Text)
	}
}

func TestHandleInput_Busy(t *testing.T) {
	s := newTestSession(t, nil)
	if !s.busy.CompareAndSwap(false, true) {
		t.Fatalf("busy flag taken")
	}
	defer s.busy.Store(false)
	if err := s.HandleInput(context.Background(), "привет"); err != ErrBusy {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
}

func TestHandleInput_Empty(t *testing.T) {
	s := newTestSession(t, nil)
	if err := s.HandleInput(context.Background(), "   "); err != ErrEmptyInput {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
}
