package catalog

import (
	"fmt"
	"strings"

	"pagebuilder/internal/domain"
)

// FieldMapping names the record field that feeds each product attribute.
// Empty entries fall back to the attribute's own name.
type FieldMapping struct {
	ID        string `json:"id,omitempty" yaml:"id"`
	Name      string `json:"name,omitempty" yaml:"name"`
	Category  string `json:"category,omitempty" yaml:"category"`
	Price     string `json:"price,omitempty" yaml:"price"`
	Discount  string `json:"discount,omitempty" yaml:"discount"`
	FlashSale string `json:"flashSale,omitempty" yaml:"flash_sale"`
	Sold      string `json:"sold,omitempty" yaml:"sold"`
	Image     string `json:"image,omitempty" yaml:"image"`
}

func or(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// withDefaults fills unset entries with the product attribute names.
func (m FieldMapping) withDefaults() FieldMapping {
	return FieldMapping{
		ID:        or(m.ID, "id"),
		Name:      or(m.Name, "name"),
		Category:  or(m.Category, "category"),
		Price:     or(m.Price, "price"),
		Discount:  or(m.Discount, "discount"),
		FlashSale: or(m.FlashSale, "flashSale"),
		Sold:      or(m.Sold, "sold"),
		Image:     or(m.Image, "image"),
	}
}

// ToProduct maps a record onto a product. A missing id yields ID 0 so the
// caller can assign one. Name and category are required.
func (m FieldMapping) ToProduct(r Record) (domain.Product, error) {
	m = m.withDefaults()
	p := domain.Product{
		Name:      str(r.Data[m.Name]),
		Category:  str(r.Data[m.Category]),
		Price:     toPrice(r.Data[m.Price]),
		Discount:  toPrice(r.Data[m.Discount]),
		FlashSale: toBool(r.Data[m.FlashSale]),
		Sold:      int(toFloat(r.Data[m.Sold])),
		Image:     str(r.Data[m.Image]),
	}
	if raw, ok := r.Data[m.ID]; ok && raw != nil {
		id, ok := toFloatSafe(raw)
		if !ok || id <= 0 || id != float64(int(id)) {
			return p, fmt.Errorf("invalid id %v", raw)
		}
		p.ID = int(id)
	}
	switch {
	case p.Name == "":
		return p, fmt.Errorf("missing %s", m.Name)
	case p.Category == "":
		return p, fmt.Errorf("missing %s", m.Category)
	case p.Price < 0:
		return p, fmt.Errorf("negative %s", m.Price)
	}
	return p, nil
}

func str(v any) string {
	if v == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(v))
}
