package models

import (
	"strings"
)

// ShippingAddress is stored on the order as a JSON document.
type ShippingAddress struct {
	FullName string   `json:"full_name" validate:"required,min=2,max=100"`
	Phone    string   `json:"phone" validate:"required,min=7,max=20"`
	Email    string   `json:"email,omitempty" validate:"omitempty,email"`
	Address  string   `json:"address" validate:"required,min=3"`
	City     string   `json:"city" validate:"required"`
	State    string   `json:"state" validate:"required"`
	Landmark string   `json:"landmark,omitempty"`
	Lat      *float64 `json:"lat,omitempty"`
	Lng      *float64 `json:"lng,omitempty"`
}

func (a ShippingAddress) OneLine() string {
	parts := []string{a.Address}
	if a.Landmark != "" {
		parts = append(parts, "near "+a.Landmark)
	}
	parts = append(parts, a.City, a.State)

	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return strings.Join(out, ", ")
}
