package config

import "os"

// Config настройки процесса, читаются из окружения один раз при
// старте. Отсутствие ключа Gemini — не ошибка: помощник отвечает
// заглушкой, остальное работает как обычно.
type Config struct {
	Addr         string // адрес HTTP-сервера
	GeminiAPIKey string
	GeminiModel  string // пусто — модель по умолчанию
	CatalogPath  string // пусто — встроенный каталог
	Debug        bool
}

// Load собирает конфигурацию из переменных окружения
func Load() Config {
	return Config{
		Addr:         getenv("PLUSHBOT_ADDR", ":9091"),
		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		GeminiModel:  os.Getenv("GEMINI_MODEL"),
		CatalogPath:  os.Getenv("PLUSHBOT_CATALOG"),
		Debug:        os.Getenv("PLUSHBOT_DEBUG") != "",
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
