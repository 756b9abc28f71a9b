package domain

import (
	"time"

	"github.com/google/uuid"
)

// Product представляет товар каталога. Каталог задаётся один раз при
// старте процесса и не изменяется.
type Product struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Price       int64  `json:"price" yaml:"price"` // целые рубли
	Description string `json:"description" yaml:"description"`
	ImageURL    string `json:"image_url" yaml:"image_url"`
}

// CartItem позиция корзины: не более одной позиции на товар,
// повторное добавление увеличивает количество.
type CartItem struct {
	Product  Product `json:"product"`
	Quantity int64   `json:"quantity"`
}

// LineTotal стоимость позиции
func (it CartItem) LineTotal() int64 { return it.Product.Price * it.Quantity }

// Sender отправитель сообщения
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// MessageKind закрытый набор видов сообщений; рендерер обязан
// обрабатывать каждый вид.
type MessageKind string

const (
	KindText        MessageKind = "text"
	KindProductCard MessageKind = "product_card"
	KindSystem      MessageKind = "system"
)

// ButtonVariant стиль кнопки
type ButtonVariant string

const (
	VariantPrimary   ButtonVariant = "primary"
	VariantSecondary ButtonVariant = "secondary"
)

// Button кнопка под сообщением. Action — токен команды из той же
// грамматики, что и слэш-команды ("/cart", "add_to_cart:<id>").
type Button struct {
	Label   string        `json:"label"`
	Action  string        `json:"action"`
	Variant ButtonVariant `json:"variant,omitempty"`
}

// Message сообщение в ленте. Лента append-only: сообщения не
// изменяются и не переупорядочиваются после создания.
type Message struct {
	ID        uuid.UUID   `json:"id"`
	Kind      MessageKind `json:"kind"`
	Sender    Sender      `json:"sender"`
	Text      string      `json:"text,omitempty"`
	Product   *Product    `json:"product,omitempty"`
	Buttons   []Button    `json:"buttons,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

// NewTextMessage собирает текстовое сообщение
func NewTextMessage(sender Sender, text string, buttons ...Button) Message {
	return Message{
		ID:        uuid.New(),
		Kind:      KindText,
		Sender:    sender,
		Text:      text,
		Buttons:   buttons,
		CreatedAt: time.Now().UTC(),
	}
}

// NewProductCard собирает карточку товара с кнопкой покупки
func NewProductCard(p Product, buttons ...Button) Message {
	cp := p
	return Message{
		ID:        uuid.New(),
		Kind:      KindProductCard,
		Sender:    SenderBot,
		Product:   &cp,
		Buttons:   buttons,
		CreatedAt: time.Now().UTC(),
	}
}
