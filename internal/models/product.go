package models

import (
	"bytes"
	"encoding/json"
	"time"
)

// Product represents a product in the catalog.
type Product struct {
	ID           string  `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name         string  `json:"name"`
	Price        float64 `json:"price"`
	Details      string  `json:"details"`
	Featured     bool    `json:"featured"`
	ProductImage string  `json:"productImage"`
}

// FormValue is a raw request value. JSON numbers and booleans decode to their
// literal text so form and JSON bodies validate the same way.
type FormValue string

// UnmarshalJSON implements json.Unmarshaler.
func (v *FormValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*v = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = FormValue(s)
		return nil
	}
	*v = FormValue(data)
	return nil
}

// ProductForm holds the unvalidated fields of a create or update request.
type ProductForm struct {
	Name         FormValue `json:"name" form:"name" validate:"required,text,min=3"`
	Details      FormValue `json:"details" form:"details" validate:"required,text,min=3,max=200"`
	Price        FormValue `json:"price" form:"price" validate:"required,jsonnumber"`
	Featured     FormValue `json:"featured" form:"featured" validate:"required,truefalse"`
	ProductImage FormValue `json:"productImage" form:"productImage" validate:"required"`

	// nonString holds the JSON keys whose token was a number, boolean, object or array.
	nonString map[string]bool
}

// UnmarshalJSON implements json.Unmarshaler and remembers which keys were not
// sent as JSON strings.
func (f *ProductForm) UnmarshalJSON(data []byte) error {
	type plain ProductForm

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if err := json.Unmarshal(data, (*plain)(f)); err != nil {
		return err
	}

	f.nonString = nil
	for key, value := range raw {
		value = bytes.TrimSpace(value)
		if len(value) == 0 || value[0] == '"' || bytes.Equal(value, []byte("null")) {
			continue
		}
		if f.nonString == nil {
			f.nonString = make(map[string]bool)
		}
		f.nonString[key] = true
	}
	return nil
}

// IsText reports whether the value under the given JSON key arrived as text.
// Form bodies always carry text.
func (f ProductForm) IsText(key string) bool {
	return !f.nonString[key]
}

// ProductFields is a ProductForm that passed validation.
type ProductFields struct {
	Name         string
	Details      string
	Price        float64
	Featured     bool
	ProductImage string
}

// Product event types.
const (
	ProductCreated = "product.created"
	ProductUpdated = "product.updated"
	ProductDeleted = "product.deleted"
)

// ProductEvent is published after a successful catalog mutation.
type ProductEvent struct {
	Type       string    `json:"type"`
	ProductID  string    `json:"product_id"`
	Product    *Product  `json:"product,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
