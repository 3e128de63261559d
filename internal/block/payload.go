package block

import (
	"encoding/json"
	"maps"
)

// Payload is the kind-specific data of a block. The set of implementations is
// closed: only the types in this file satisfy it.
type Payload interface {
	payloadKind() Kind
	clone() Payload
}

// AllCategories disables the category filter of a product row.
const AllCategories = "All"

type Align string

const (
	AlignLeft   Align = "left"
	AlignCenter Align = "center"
	AlignRight  Align = "right"
)

type HeroData struct {
	Title           string `json:"title"`
	Subtitle        string `json:"subtitle,omitempty"`
	CTAText         string `json:"ctaText,omitempty"`
	CTALink         string `json:"ctaLink,omitempty"`
	BackgroundImage string `json:"backgroundImage,omitempty"`
}

type TextData struct {
	Content string `json:"content"`
	Align   Align  `json:"align"`
}

type GridItem struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
}

type GridData struct {
	Title   string     `json:"title,omitempty"`
	Columns int        `json:"columns"`
	Items   []GridItem `json:"items"`
}

type TestimonialItem struct {
	Quote  string `json:"quote"`
	Author string `json:"author,omitempty"`
	Role   string `json:"role,omitempty"`
	Avatar string `json:"avatar,omitempty"`
}

type TestimonialData struct {
	Title string            `json:"title,omitempty"`
	Items []TestimonialItem `json:"items"`
}

// ProductRowData selects products from the catalog by category name.
type ProductRowData struct {
	Title    string `json:"title,omitempty"`
	Category string `json:"category"`
	Count    int    `json:"count"`
}

type ImageData struct {
	Src     string `json:"src"`
	Alt     string `json:"alt,omitempty"`
	Caption string `json:"caption,omitempty"`
}

type SpacerData struct {
	Height int `json:"height"`
}

// UnknownData carries the payload of a kind this build does not recognize,
// so it survives a load/save round trip untouched.
type UnknownData struct {
	Fields map[string]any
}

func (HeroData) payloadKind() Kind        { return KindHero }
func (TextData) payloadKind() Kind        { return KindText }
func (GridData) payloadKind() Kind        { return KindGrid }
func (TestimonialData) payloadKind() Kind { return KindTestimonial }
func (ProductRowData) payloadKind() Kind  { return KindProductRow }
func (ImageData) payloadKind() Kind       { return KindImage }
func (SpacerData) payloadKind() Kind      { return KindSpacer }
func (UnknownData) payloadKind() Kind     { return "" }

func (d HeroData) clone() Payload       { return d }
func (d TextData) clone() Payload       { return d }
func (d ProductRowData) clone() Payload { return d }
func (d ImageData) clone() Payload      { return d }
func (d SpacerData) clone() Payload     { return d }

func (d GridData) clone() Payload {
	if d.Items != nil {
		d.Items = append([]GridItem(nil), d.Items...)
	}
	return d
}

func (d TestimonialData) clone() Payload {
	if d.Items != nil {
		d.Items = append([]TestimonialItem(nil), d.Items...)
	}
	return d
}

func (d UnknownData) clone() Payload {
	if d.Fields == nil {
		return d
	}
	// Round-tripping through JSON gives a deep copy of nested maps and slices.
	raw, err := json.Marshal(d.Fields)
	if err != nil {
		return UnknownData{Fields: maps.Clone(d.Fields)}
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return UnknownData{Fields: maps.Clone(d.Fields)}
	}
	return UnknownData{Fields: fields}
}

func (d UnknownData) MarshalJSON() ([]byte, error) {
	if d.Fields == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(d.Fields)
}

// ToMap converts a payload into its loosely-typed JSON form.
func ToMap(p Payload) map[string]any {
	out := map[string]any{}
	if p == nil {
		return out
	}
	if u, ok := p.(UnknownData); ok {
		if u.Fields == nil {
			return out
		}
		return maps.Clone(u.Fields)
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return out
	}
	_ = json.Unmarshal(raw, &out)
	return out
}
