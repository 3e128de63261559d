package block

// DefaultPayload returns the starting payload for a freshly added block.
// Unknown kinds get an empty payload instead of an error: kind values often
// come from stored or generated data written by a newer build.
func DefaultPayload(kind Kind) Payload {
	switch kind {
	case KindHero:
		return HeroData{
			Title:    "Welcome to our store",
			Subtitle: "Discover products picked for you",
			CTAText:  "Shop now",
			CTALink:  "/products",
		}
	case KindText:
		return TextData{Content: "Write something here.", Align: AlignLeft}
	case KindGrid:
		return GridData{
			Title:   "Why shop with us",
			Columns: 3,
			Items: []GridItem{
				{Title: "Free shipping", Description: "On every order over $50"},
				{Title: "Easy returns", Description: "30 days, no questions asked"},
				{Title: "Secure checkout", Description: "Your data stays yours"},
			},
		}
	case KindTestimonial:
		return TestimonialData{
			Title: "What our customers say",
			Items: []TestimonialItem{
				{Quote: "Fast delivery and great quality.", Author: "A happy customer"},
			},
		}
	case KindProductRow:
		return ProductRowData{Title: "Featured products", Category: AllCategories, Count: DefaultCount}
	case KindImage:
		return ImageData{Src: "https://placehold.co/1200x600", Alt: "Placeholder image"}
	case KindSpacer:
		return SpacerData{Height: 48}
	default:
		return UnknownData{}
	}
}

// FieldType is the input widget an editor form uses for a field.
type FieldType string

const (
	FieldText     FieldType = "text"
	FieldTextarea FieldType = "textarea"
	FieldNumber   FieldType = "number"
	FieldSelect   FieldType = "select"
	FieldURL      FieldType = "url"
	FieldImage    FieldType = "image"
	FieldList     FieldType = "list"
)

// FieldSpec describes one input of a kind's edit form. Editors render the
// form from this description.
type FieldSpec struct {
	Key      string      `json:"key"`
	Label    string      `json:"label"`
	Type     FieldType   `json:"type"`
	Required bool        `json:"required,omitempty"`
	Options  []string    `json:"options,omitempty"`
	Min      int         `json:"min,omitempty"`
	Max      int         `json:"max,omitempty"`
	Item     []FieldSpec `json:"item,omitempty"` // for list fields
}

// Fields returns the edit form of kind, or nil for unknown kinds.
func Fields(kind Kind) []FieldSpec {
	switch kind {
	case KindHero:
		return []FieldSpec{
			{Key: "title", Label: "Title", Type: FieldText, Required: true},
			{Key: "subtitle", Label: "Subtitle", Type: FieldTextarea},
			{Key: "ctaText", Label: "Button text", Type: FieldText},
			{Key: "ctaLink", Label: "Button link", Type: FieldURL},
			{Key: "backgroundImage", Label: "Background image", Type: FieldImage},
		}
	case KindText:
		return []FieldSpec{
			{Key: "content", Label: "Content", Type: FieldTextarea, Required: true},
			{Key: "align", Label: "Alignment", Type: FieldSelect, Options: []string{string(AlignLeft), string(AlignCenter), string(AlignRight)}},
		}
	case KindGrid:
		return []FieldSpec{
			{Key: "title", Label: "Title", Type: FieldText},
			{Key: "columns", Label: "Columns", Type: FieldNumber, Min: MinGridColumns, Max: MaxGridColumns},
			{Key: "items", Label: "Items", Type: FieldList, Item: []FieldSpec{
				{Key: "title", Label: "Title", Type: FieldText},
				{Key: "description", Label: "Description", Type: FieldTextarea},
				{Key: "image", Label: "Image", Type: FieldImage},
			}},
		}
	case KindTestimonial:
		return []FieldSpec{
			{Key: "title", Label: "Title", Type: FieldText},
			{Key: "items", Label: "Testimonials", Type: FieldList, Item: []FieldSpec{
				{Key: "quote", Label: "Quote", Type: FieldTextarea, Required: true},
				{Key: "author", Label: "Author", Type: FieldText},
				{Key: "role", Label: "Role", Type: FieldText},
				{Key: "avatar", Label: "Avatar", Type: FieldImage},
			}},
		}
	case KindProductRow:
		return []FieldSpec{
			{Key: "title", Label: "Title", Type: FieldText},
			{Key: "category", Label: "Category", Type: FieldText},
			{Key: "count", Label: "Products shown", Type: FieldNumber, Min: MinProductCount, Max: MaxProductCount},
		}
	case KindImage:
		return []FieldSpec{
			{Key: "src", Label: "Image URL", Type: FieldImage, Required: true},
			{Key: "alt", Label: "Alt text", Type: FieldText},
			{Key: "caption", Label: "Caption", Type: FieldText},
		}
	case KindSpacer:
		return []FieldSpec{
			{Key: "height", Label: "Height (px)", Type: FieldNumber, Min: 0, Max: MaxSpacerHeight},
		}
	default:
		return nil
	}
}
