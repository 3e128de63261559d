package domain

type Highlight struct {
	Title string `json:"title"`
	Image string `json:"image"`
}

type SubCategory struct {
	Title string   `json:"title"`
	Items []string `json:"items"`
}

// CategoryDetail is one entry of the category navigation menu together with
// the content of its detail panel.
type CategoryDetail struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	IconKey       string        `json:"iconKey"`
	Highlights    []Highlight   `json:"highlights"`
	SubCategories []SubCategory `json:"subCategories"`
	PromoText     string        `json:"promoText"`
	PromoImage    string        `json:"promoImage"`
	Position      int           `json:"position"`
}

// CategoryStore persists category details. ListCategories returns them in
// stored order (ascending Position).
type CategoryStore interface {
	CreateCategory(c *CategoryDetail) error
	GetCategory(id string) (*CategoryDetail, error)
	ListCategories() ([]CategoryDetail, error)
	UpdateCategory(c *CategoryDetail) error
	DeleteCategory(id string) error
	ReorderCategories(ids []string) error
}
