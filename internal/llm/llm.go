package llm

import "context"

// Role роль реплики в истории диалога
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Turn одна реплика истории, передаваемой модели
type Turn struct {
	Role Role
	Text string
}

// Completer граница внешнего текстового сервиса. Реализация обязана
// деградировать до строки-заглушки и не выпускать ошибки транспорта
// наружу; error оставлен в контракте для подменных реализаций в тестах.
type Completer interface {
	Complete(ctx context.Context, message string, history []Turn) (string, error)
}

// Фиксированные ответы-заглушки. Пользователь видит их вместо
// технических ошибок.
const (
	// FallbackUnavailable — не настроен ключ API
	FallbackUnavailable = "Извините, сейчас я немного занят. Попробуйте позже! 🤕"
	// FallbackError — сбой обращения к сервису
	FallbackError = "Ой, что-то пошло не так с моей плюшевой головой... 😵 Попробуйте еще раз!"
)
