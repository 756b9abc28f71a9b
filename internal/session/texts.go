package session

import (
	"fmt"
	"strings"

	"plushbot/internal/domain"
)

// Токены команд. Кнопки и набранные слэш-команды проходят через одну
// и ту же грамматику, поведение не зависит от способа ввода.
const (
	commandSigil = "/"

	cmdCatalog   = "catalog"
	cmdCart      = "cart"
	cmdClearCart = "clear_cart"
	cmdClear     = "clear"
	cmdCheckout  = "checkout"
	cmdHelp      = "help"

	addToCartPrefix = "add_to_cart:"
)

type command struct {
	name string
	arg  string
}

// parseCommand распознаёт токен команды: со слэшем или без.
// Неизвестные токены не являются командами.
func parseCommand(raw string) (command, bool) {
	tok := strings.TrimPrefix(raw, commandSigil)
	switch tok {
	case cmdCatalog, cmdCart, cmdClearCart, cmdClear, cmdCheckout, cmdHelp:
		return command{name: tok}, true
	}
	if id, ok := strings.CutPrefix(tok, addToCartPrefix); ok {
		return command{name: addToCartPrefix, arg: id}, true
	}
	return command{}, false
}

// isCatalogShortcut — узкий набор точных синонимов каталога. Нарочно
// не ищем подстроки, чтобы обычная фраза с упоминанием товара не
// открывала каталог.
func isCatalogShortcut(text string) bool {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "каталог", "товары":
		return true
	}
	return false
}

// Фиксированные реплики бота
const (
	greetingText = "Привет! Я ПлюшБот из магазина «Плюшевый Рай» 🧸\n\nПомогу выбрать самую мягкую игрушку: расскажу про ассортимент, посчитаю корзину и просто поболтаю. Начни с каталога!"

	catalogIntroText = "Вот наши самые популярные игрушки! 👇"

	cartEmptyText = "Ваша корзина пуста 🕸️. Давайте добавим туда что-нибудь мягкое!"

	cartClearedText = "Корзина очищена! ✨"

	checkoutDoneText = "🎉 Спасибо за заказ! В реальности здесь открылась бы форма оплаты. А пока — держите виртуальный чек! 🧾\n\nМенеджер свяжется с вами (нет)."

	helpText = "Я умею:\n\n🔹 Показывать каталог (/catalog)\n🔹 Считать сумму в корзине (/cart)\n🔹 Болтать о плюшевых мишках (просто напиши мне!)\n\nПопробуй спросить: «Есть что-то с ушками?»"

	// заглушка диспетчера на случай ошибки подменной реализации Completer
	fallbackTiredText = "Ой, я немного устал. Попробуй позже!"
)

func greetingButtons() []domain.Button {
	return []domain.Button{{Label: "Посмотреть каталог", Action: "/catalog"}}
}

func buyButton(p domain.Product) domain.Button {
	return domain.Button{
		Label:  fmt.Sprintf("Купить за %d ₽", p.Price),
		Action: addToCartPrefix + p.ID,
	}
}

func cartButtons() []domain.Button {
	return []domain.Button{
		{Label: "✅ Оформить заказ", Action: "/checkout"},
		{Label: "🗑️ Очистить корзину", Action: "/clear_cart", Variant: domain.VariantSecondary},
	}
}

func goToCartButton() domain.Button {
	return domain.Button{Label: "Перейти в корзину", Action: "/cart", Variant: domain.VariantSecondary}
}

func cartSummaryText(items []domain.CartItem, total int64) string {
	lines := make([]string, 0, len(items))
	for _, it := range items {
		lines = append(lines, fmt.Sprintf("▫️ %s (x%d) — %d ₽", it.Product.Name, it.Quantity, it.LineTotal()))
	}
	return fmt.Sprintf("🛒 *Ваша корзина:*\n\n%s\n\n*Итого: %d ₽*", strings.Join(lines, "\n"), total)
}

func addedToCartText(p domain.Product) string {
	return fmt.Sprintf("✅ Добавлено: %s", p.Name)
}
