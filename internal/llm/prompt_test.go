package llm

import (
	"strings"
	"testing"

	"plushbot/internal/domain"
)

func TestSystemInstruction_ListsCatalog(t *testing.T) {
	got := SystemInstruction([]domain.Product{
		{ID: "1", Name: "Мишка", Price: 1200, Description: "бурый"},
		{ID: "2", Name: "Котик", Price: 300, Description: "карманный"},
	})
	if !strings.Contains(got, "- Мишка: 1200 руб. (бурый)") {
		t.Fatalf("product line missing:\n%s", got)
	}
	if !strings.Contains(got, "- Котик: 300 руб. (карманный)") {
		t.Fatalf("product line missing:\n%s", got)
	}
	// правила персоны на месте
	if !strings.Contains(got, "/catalog") || !strings.Contains(got, "рублях") {
		t.Fatalf("persona rules missing:\n%s", got)
	}
}
