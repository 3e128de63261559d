package domain

import "time"

// Product is a catalog entry. IDs increase with insertion, so the largest id
// of a category marks its newest product.
type Product struct {
	ID        int     `json:"id"`
	Name      string  `json:"name"`
	Category  string  `json:"category"`
	Price     float64 `json:"price"`
	Discount  float64 `json:"discount"`
	FlashSale bool    `json:"flashSale"`
	Sold      int     `json:"sold"`
	Image     string  `json:"image"`
}

// OnSale reports whether the product is in a flash sale or discounted.
func (p Product) OnSale() bool {
	return p.FlashSale || p.Discount > 0
}

// ProductQuery is the read-only product collaborator used by rendering and
// curation.
type ProductQuery interface {
	// Products returns every product in store order.
	Products() ([]Product, error)
	// ProductsByCategory returns up to limit products of category in store
	// order. A limit <= 0 means no limit.
	ProductsByCategory(category string, limit int) ([]Product, error)
}

// ProductStore extends ProductQuery with the writes used by catalog import.
type ProductStore interface {
	ProductQuery
	ReplaceProducts(products []Product) error
	UpsertProducts(products []Product) error
}

// StaticProducts is an in-memory ProductQuery over a fixed slice.
type StaticProducts []Product

func (s StaticProducts) Products() ([]Product, error) {
	out := make([]Product, len(s))
	copy(out, s)
	return out, nil
}

func (s StaticProducts) ProductsByCategory(category string, limit int) ([]Product, error) {
	var out []Product
	for _, p := range s {
		if p.Category != category {
			continue
		}
		out = append(out, p)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// ImportRun records one execution of a catalog import job.
type ImportRun struct {
	ID          string    `json:"id"`
	JobName     string    `json:"jobName"`
	StartedAt   time.Time `json:"startedAt"`
	FinishedAt  time.Time `json:"finishedAt"`
	Status      string    `json:"status"`
	RowsRead    int       `json:"rowsRead"`
	RowsWritten int       `json:"rowsWritten"`
	Error       string    `json:"error,omitempty"`
}

type ImportRunStore interface {
	CreateImportRun(r *ImportRun) error
	ListImportRuns(jobName string, limit int) ([]ImportRun, error)
}
