package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"plushbot/internal/domain"
)

//go:embed products.yaml
var embeddedProducts []byte

// ErrNotFound возвращается, когда товар не найден
var ErrNotFound = errors.New("product not found")

// Catalog неизменяемый упорядоченный список товаров. Собирается один
// раз при старте процесса; порядок — порядок объявления в файле.
type Catalog struct {
	products []domain.Product
	byID     map[string]domain.Product
}

type productsFile struct {
	Products []domain.Product `yaml:"products"`
}

// New валидирует список и строит каталог
func New(products []domain.Product) (*Catalog, error) {
	if len(products) == 0 {
		return nil, errors.New("catalog: empty product list")
	}
	byID := make(map[string]domain.Product, len(products))
	for _, p := range products {
		if p.ID == "" || p.Name == "" {
			return nil, fmt.Errorf("catalog: product without id or name")
		}
		if p.Price < 0 {
			return nil, fmt.Errorf("catalog: product %q has negative price", p.ID)
		}
		if _, dup := byID[p.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate product id %q", p.ID)
		}
		byID[p.ID] = p
	}
	cp := make([]domain.Product, len(products))
	copy(cp, products)
	return &Catalog{products: cp, byID: byID}, nil
}

// Load читает каталог из YAML-файла; пустой путь — встроенный каталог
func Load(path string) (*Catalog, error) {
	data := embeddedProducts
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("catalog: read %s: %w", path, err)
		}
		data = b
	}
	var f productsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("catalog: parse yaml: %w", err)
	}
	return New(f.Products)
}

// Products возвращает копию списка товаров в порядке каталога
func (c *Catalog) Products() []domain.Product {
	out := make([]domain.Product, len(c.products))
	copy(out, c.products)
	return out
}

// ByID ищет товар по идентификатору
func (c *Catalog) ByID(id string) (domain.Product, error) {
	p, ok := c.byID[id]
	if !ok {
		return domain.Product{}, ErrNotFound
	}
	return p, nil
}

// Len количество товаров
func (c *Catalog) Len() int { return len(c.products) }
