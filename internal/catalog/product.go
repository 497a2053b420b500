package catalog

// Field names a Product field as it appears in the lookup response.
type Field string

const (
	FieldSKU         Field = "sku"
	FieldName        Field = "name"
	FieldDescription Field = "description"
	FieldWeight      Field = "weight"
	FieldPrice       Field = "price"
	FieldAvailable   Field = "available"
	FieldImage       Field = "image"
	FieldUnit        Field = "unit"
)

// Fields lists every Product field in response order.
var Fields = []Field{
	FieldSKU, FieldName, FieldDescription, FieldWeight,
	FieldPrice, FieldAvailable, FieldImage, FieldUnit,
}

// Product is a parsed lookup record. Empty fields are unset.
type Product struct {
	SKU         string `json:"sku,omitempty" msgpack:"sku,omitempty"`
	Name        string `json:"name,omitempty" msgpack:"name,omitempty"`
	Description string `json:"description,omitempty" msgpack:"description,omitempty"`
	Weight      string `json:"weight,omitempty" msgpack:"weight,omitempty"`
	Price       string `json:"price,omitempty" msgpack:"price,omitempty"`
	Available   string `json:"available,omitempty" msgpack:"available,omitempty"`
	Image       string `json:"image,omitempty" msgpack:"image,omitempty"`
	Unit        string `json:"unit,omitempty" msgpack:"unit,omitempty"`
}

// Get returns the value of a field.
func (p *Product) Get(f Field) string {
	switch f {
	case FieldSKU:
		return p.SKU
	case FieldName:
		return p.Name
	case FieldDescription:
		return p.Description
	case FieldWeight:
		return p.Weight
	case FieldPrice:
		return p.Price
	case FieldAvailable:
		return p.Available
	case FieldImage:
		return p.Image
	case FieldUnit:
		return p.Unit
	default:
		return ""
	}
}

// set assigns a field. Empty values are ignored so that absent and empty
// stay equivalent.
func (p *Product) set(f Field, v string) {
	if v == "" {
		return
	}
	switch f {
	case FieldSKU:
		p.SKU = v
	case FieldName:
		p.Name = v
	case FieldDescription:
		p.Description = v
	case FieldWeight:
		p.Weight = v
	case FieldPrice:
		p.Price = v
	case FieldAvailable:
		p.Available = v
	case FieldImage:
		p.Image = v
	case FieldUnit:
		p.Unit = v
	}
}
