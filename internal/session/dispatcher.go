package session

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"plushbot/internal/domain"
	"plushbot/internal/llm"
)

// в историю для модели уходит не больше десяти текстовых реплик
const historyLimit = 10

// HandleInput — единственная точка входа диспетчера. Принимает и
// набранный текст, и токен кнопки. Сначала в ленту попадает реплика
// пользователя, затем ввод классифицируется: структурная команда,
// точный синоним каталога или свободный текст для модели. Индикатор
// «печатает» снимается на любом исходе.
func (s *Session) HandleInput(ctx context.Context, raw string) error {
	text := strings.TrimSpace(raw)
	if text == "" {
		return ErrEmptyInput
	}
	if !s.busy.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer s.busy.Store(false)

	s.touch()
	s.append(domain.NewTextMessage(domain.SenderUser, text))
	s.setComposing(true)
	defer s.setComposing(false)

	if cmd, ok := parseCommand(text); ok {
		s.runCommand(ctx, cmd)
		return nil
	}
	if strings.HasPrefix(text, commandSigil) {
		// неизвестная слэш-команда: молча игнорируем
		return nil
	}
	if isCatalogShortcut(text) {
		s.runCommand(ctx, command{name: cmdCatalog})
		return nil
	}

	s.respondWithModel(ctx, text)
	return nil
}

func (s *Session) runCommand(ctx context.Context, cmd command) {
	switch cmd.name {
	case cmdCatalog:
		s.sendCatalog(ctx)
	case cmdCart:
		s.sendCart()
	case cmdClearCart:
		s.clearCart()
	case cmdClear:
		s.restart()
	case cmdCheckout:
		s.checkout()
	case cmdHelp:
		s.appendBot(helpText)
	case addToCartPrefix:
		s.addToCart(cmd.arg)
	}
}

// sendCatalog публикует анонс и по карточке на каждый товар каталога
// в его порядке, с паузой между карточками
func (s *Session) sendCatalog(ctx context.Context) {
	s.appendBot(catalogIntroText)
	for _, p := range s.catalog.Products() {
		if !s.wait(ctx, s.cardDelay) {
			return
		}
		s.append(domain.NewProductCard(p, buyButton(p)))
	}
}

func (s *Session) sendCart() {
	items := s.CartItems()
	if len(items) == 0 {
		s.appendBot(cartEmptyText)
		return
	}
	s.appendBot(cartSummaryText(items, s.CartTotal()), cartButtons()...)
}

func (s *Session) clearCart() {
	s.mu.Lock()
	s.cart = nil
	s.mu.Unlock()
	s.appendBot(cartClearedText)
}

// restart очищает ленту и публикует приветствие заново
func (s *Session) restart() {
	s.mu.Lock()
	s.messages = nil
	s.mu.Unlock()
	s.appendBot(greetingText, greetingButtons()...)
}

// checkout на пустой корзине — no-op без сообщения
func (s *Session) checkout() {
	s.mu.Lock()
	empty := len(s.cart) == 0
	s.cart = nil
	s.mu.Unlock()
	if empty {
		return
	}
	s.appendBot(checkoutDoneText)
}

// addToCart: неизвестный id — молчаливый no-op без изменения корзины
func (s *Session) addToCart(id string) {
	p, err := s.catalog.ByID(id)
	if err != nil {
		return
	}
	s.mu.Lock()
	found := false
	for i := range s.cart {
		if s.cart[i].Product.ID == p.ID {
			s.cart[i].Quantity++
			found = true
			break
		}
	}
	if !found {
		s.cart = append(s.cart, domain.CartItem{Product: p, Quantity: 1})
	}
	s.mu.Unlock()
	s.appendBot(addedToCartText(p), goToCartButton())
}

// respondWithModel отправляет свободный текст модели вместе с хвостом
// истории. Ошибка не доходит до пользователя: вместо неё заглушка.
func (s *Session) respondWithModel(ctx context.Context, text string) {
	reply, err := s.completer.Complete(ctx, text, s.history())
	if err != nil {
		s.logger.Warn("completion failed", zap.Error(err))
		s.appendBot(fallbackTiredText)
		return
	}
	s.appendBot(reply)
}

// history собирает до historyLimit предыдущих текстовых реплик,
// не считая только что добавленной реплики пользователя. Карточки
// товаров и системные сообщения в историю не попадают.
func (s *Session) history() []llm.Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.messages) == 0 {
		return nil
	}
	prior := s.messages[:len(s.messages)-1]
	turns := make([]llm.Turn, 0, historyLimit)
	for _, m := range prior {
		if m.Kind != domain.KindText || m.Text == "" {
			continue
		}
		role := llm.RoleModel
		if m.Sender == domain.SenderUser {
			role = llm.RoleUser
		}
		turns = append(turns, llm.Turn{Role: role, Text: m.Text})
	}
	if len(turns) > historyLimit {
		turns = turns[len(turns)-historyLimit:]
	}
	return turns
}

// wait — прерываемая пауза; false при отмене контекста
func (s *Session) wait(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
