package app

import (
	"fmt"
	"reflect"
	"slices"

	"github.com/google/uuid"
	"github.com/invopop/jsonschema"
	"github.com/shopspring/decimal"

	"unit-recon/internal/core"
)

// requestTypes maps the public schema name of each request body to its Go type.
var requestTypes = map[string]any{
	"create-purchase-order": CreatePurchaseOrderRequest{},
	"create-delivery":       CreateDeliveryRequest{},
	"add-line-item":         AddLineItemRequest{},
	"update-order-unit":     UpdateOrderUnitRequest{},
	"update-delivery-unit":  UpdateDeliveryUnitRequest{},
	"validate-link":         ValidateLinkRequest{},
	"create-link":           CreateLinkRequest{},
	"bulk-create-links":     BulkCreateLinksRequest{},
	"update-link":           UpdateLinkRequest{},
	"confirm-link":          ConfirmLinkRequest{},
	"auto-link":             AutoLinkRequest{},
	"create-quantity-link":  CreateQuantityLinkRequest{},
}

var (
	uuidType    = reflect.TypeOf(uuid.UUID{})
	decimalType = reflect.TypeOf(decimal.Decimal{})
)

// SchemaNames lists the names accepted by RequestSchema, sorted.
func SchemaNames() []string {
	names := make([]string, 0, len(requestTypes))
	for name := range requestTypes {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// RequestSchema returns the JSON Schema of the named request body.
func RequestSchema(name string) (*jsonschema.Schema, error) {
	v, ok := requestTypes[name]
	if !ok {
		return nil, fmt.Errorf("schema %q: %w", name, core.ErrNotFound)
	}
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
		Mapper:                    mapType,
	}
	return reflector.Reflect(v), nil
}

func mapType(t reflect.Type) *jsonschema.Schema {
	switch t {
	case uuidType:
		return &jsonschema.Schema{Type: "string", Format: "uuid"}
	case decimalType:
		return &jsonschema.Schema{OneOf: []*jsonschema.Schema{
			{Type: "string", Pattern: `^-?[0-9]+(\.[0-9]+)?$`},
			{Type: "number"},
		}}
	}
	return nil
}
