package models

import (
	"encoding/json"
	"maps"
	"time"

	"toko/pkg/apperrors"

	"github.com/spf13/cast"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Document keys of the fixed product fields.
const (
	FieldID          = "id"
	FieldName        = "name"
	FieldDescription = "description"
	FieldPrice       = "price"
	FieldCategory    = "category"
	FieldStock       = "stock"
	FieldAvgRating   = "avg_rating"
	FieldReviewCount = "review_count"
	FieldCreatedAt   = "created_at"
	FieldUpdatedAt   = "updated_at"
	FieldVersion     = "version"
)

// ProtectedProductFields are never removed from a product document, whether
// or not an update body carries them.
var ProtectedProductFields = []string{
	FieldID, FieldName, FieldDescription, FieldPrice, FieldCategory, FieldStock,
	FieldAvgRating, FieldReviewCount, FieldCreatedAt, FieldUpdatedAt, FieldVersion,
}

// ClientReadOnlyProductFields are owned by the store or by the rating
// aggregate and are ignored when a client sends them.
var ClientReadOnlyProductFields = []string{
	FieldID, FieldAvgRating, FieldReviewCount, FieldCreatedAt, FieldUpdatedAt, FieldVersion,
}

// Product represents a product in the store. Besides the fixed fields it
// carries an open set of caller-defined attributes stored as JSON.
type Product struct {
	ID          string            `gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Name        string            `gorm:"type:varchar(100);not null" validate:"required,min=3,max=100"`
	Description string            `validate:"omitempty,max=500"`
	Price       float64           `validate:"gte=0"`
	Category    string            `gorm:"type:varchar(100);index" validate:"required,max=100"`
	Stock       int               `validate:"gte=0"`
	AvgRating   float64           `validate:"gte=0,lte=5"`
	ReviewCount int               `validate:"gte=0"`
	Attributes  datatypes.JSONMap `gorm:"type:json"`
	Version     int
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

// Document returns the flat view of the product: fixed fields and dynamic
// attributes side by side.
func (p *Product) Document() map[string]any {
	doc := make(map[string]any, len(p.Attributes)+len(ProtectedProductFields))
	maps.Copy(doc, p.Attributes)
	doc[FieldID] = p.ID
	doc[FieldName] = p.Name
	doc[FieldDescription] = p.Description
	doc[FieldPrice] = p.Price
	doc[FieldCategory] = p.Category
	doc[FieldStock] = p.Stock
	doc[FieldAvgRating] = p.AvgRating
	doc[FieldReviewCount] = p.ReviewCount
	doc[FieldCreatedAt] = p.CreatedAt
	doc[FieldUpdatedAt] = p.UpdatedAt
	doc[FieldVersion] = p.Version
	return doc
}

// MarshalJSON renders the document view so dynamic attributes appear as
// top-level keys.
func (p Product) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Document())
}

// UnmarshalJSON reads a flat document back into a product.
func (p *Product) UnmarshalJSON(data []byte) error {
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	*p = Product{}
	if err := p.ApplyDelta(doc, nil); err != nil {
		return err
	}
	if id, ok := doc[FieldID].(string); ok {
		p.ID = id
	}
	if v, ok := doc[FieldVersion]; ok {
		p.Version = cast.ToInt(v)
	}
	for _, key := range []string{FieldCreatedAt, FieldUpdatedAt} {
		raw, ok := doc[key].(string)
		if !ok {
			continue
		}
		ts, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			continue
		}
		if key == FieldCreatedAt {
			p.CreatedAt = ts
		} else {
			p.UpdatedAt = ts
		}
	}
	return nil
}

// Clone returns a deep enough copy for the attribute map to be mutated
// independently.
func (p *Product) Clone() *Product {
	cp := *p
	cp.Attributes = maps.Clone(p.Attributes)
	return &cp
}

// ApplyDelta sets and unsets document fields on p. Fixed fields are coerced
// to their Go types; unknown keys become dynamic attributes. Unsetting a
// fixed field is ignored, and store-managed fields (id, timestamps, version)
// cannot be set this way.
func (p *Product) ApplyDelta(set map[string]any, unset []string) error {
	if p.Attributes == nil {
		p.Attributes = datatypes.JSONMap{}
	}
	for key, value := range set {
		if err := p.setField(key, value); err != nil {
			return err
		}
	}
	for _, key := range unset {
		delete(p.Attributes, key)
	}
	return nil
}

func (p *Product) setField(key string, value any) error {
	var err error
	switch key {
	case FieldID, FieldCreatedAt, FieldUpdatedAt, FieldVersion:
		return nil
	case FieldName:
		p.Name, err = toString(value)
	case FieldDescription:
		p.Description, err = toString(value)
	case FieldCategory:
		p.Category, err = toString(value)
	case FieldPrice:
		p.Price, err = toNumber(value)
		if err == nil && p.Price < 0 {
			return apperrors.InvalidInput("price must not be negative")
		}
	case FieldStock:
		p.Stock, err = toWholeNumber(value)
	case FieldAvgRating:
		p.AvgRating, err = toNumber(value)
	case FieldReviewCount:
		p.ReviewCount, err = toWholeNumber(value)
	default:
		p.Attributes[key] = value
		return nil
	}
	if err != nil {
		return apperrors.InvalidInput("field %q: %v", key, err)
	}
	return nil
}

func toString(v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", errNotA("string", v)
	}
	return s, nil
}

func toNumber(v any) (float64, error) {
	switch v.(type) {
	case float64, float32, int, int32, int64, json.Number:
		return cast.ToFloat64E(v)
	}
	return 0, errNotA("number", v)
}

func toWholeNumber(v any) (int, error) {
	f, err := toNumber(v)
	if err != nil {
		return 0, err
	}
	if f != float64(int(f)) {
		return 0, errNotA("whole number", v)
	}
	return int(f), nil
}
