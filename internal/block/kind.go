// Package block defines the closed set of content block kinds, their payload
// shapes, and the schema registry that produces and validates payloads.
package block

// Kind is the tag of a block variant.
type Kind string

const (
	KindHero        Kind = "hero"
	KindText        Kind = "text"
	KindGrid        Kind = "grid"
	KindTestimonial Kind = "testimonial"
	KindProductRow  Kind = "product-row"
	KindImage       Kind = "image"
	KindSpacer      Kind = "spacer"
)

var kinds = []Kind{
	KindHero,
	KindText,
	KindGrid,
	KindTestimonial,
	KindProductRow,
	KindImage,
	KindSpacer,
}

// Kinds returns every registered kind in palette order.
func Kinds() []Kind {
	out := make([]Kind, len(kinds))
	copy(out, kinds)
	return out
}

// IsKnown reports whether k belongs to the registered set.
func IsKnown(k Kind) bool {
	for _, known := range kinds {
		if k == known {
			return true
		}
	}
	return false
}

// Label returns a human-readable name for the kind.
func (k Kind) Label() string {
	switch k {
	case KindHero:
		return "Hero"
	case KindText:
		return "Text"
	case KindGrid:
		return "Grid"
	case KindTestimonial:
		return "Testimonials"
	case KindProductRow:
		return "Product row"
	case KindImage:
		return "Image"
	case KindSpacer:
		return "Spacer"
	default:
		return string(k)
	}
}
