package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ValidationResult is the verdict on a candidate (order unit, delivery unit) pair.
// Warnings never affect Valid.
type ValidationResult struct {
	Valid                 bool     `json:"valid"`
	Errors                []string `json:"errors"`
	Warnings              []string `json:"warnings"`
	POUnitAvailable       bool     `json:"po_unit_available"`
	DeliveryUnitAvailable bool     `json:"delivery_unit_available"`
	SerialMatch           bool     `json:"serial_match"`
	BatchMatch            bool     `json:"batch_match"`
	ProductMatch          bool     `json:"product_match"`
}

// ValidateOptions tightens identifier checks. With the zero value, a missing serial or
// batch number is a warning; with Require* set it is an error, as is a difference.
type ValidateOptions struct {
	RequireSerialMatch bool
	RequireBatchMatch  bool
}

// Validator is consulted before any link is created.
type Validator interface {
	Validate(ctx context.Context, orderUnitID, deliveryUnitID uuid.UUID, opts ValidateOptions) (*ValidationResult, error)
}

type validator struct {
	store Store
}

// NewValidator constructs a Validator reading committed state from store.
func NewValidator(store Store) Validator {
	return &validator{store: store}
}

// Validate checks availability and compatibility of the pair. Missing units produce
// valid=false rather than an error; only store failures are returned as errors.
func (v *validator) Validate(ctx context.Context, orderUnitID, deliveryUnitID uuid.UUID, opts ValidateOptions) (*ValidationResult, error) {
	return validatePair(ctx, v.store, orderUnitID, deliveryUnitID, opts)
}

func validatePair(ctx context.Context, s Store, orderUnitID, deliveryUnitID uuid.UUID, opts ValidateOptions) (*ValidationResult, error) {
	res := &ValidationResult{Errors: []string{}, Warnings: []string{}}

	ou, err := s.GetOrderUnit(ctx, orderUnitID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("load po unit %s: %w", orderUnitID, err)
	}
	du, err := s.GetDeliveryUnit(ctx, deliveryUnitID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("load delivery unit %s: %w", deliveryUnitID, err)
	}
	if ou == nil {
		res.Errors = append(res.Errors, fmt.Sprintf("po unit %s not found", orderUnitID))
	}
	if du == nil {
		res.Errors = append(res.Errors, fmt.Sprintf("delivery unit %s not found", deliveryUnitID))
	}
	if ou == nil || du == nil {
		return res, nil
	}

	oi, err := s.GetOrderItem(ctx, ou.OrderItemID)
	if err != nil {
		return nil, fmt.Errorf("load po item for unit %s: %w", ou.ID, err)
	}
	di, err := s.GetDeliveryItem(ctx, du.DeliveryItemID)
	if err != nil {
		return nil, fmt.Errorf("load delivery item for unit %s: %w", du.ID, err)
	}

	// Availability: an already-linked unit cannot take a second link.
	existing, err := s.ListLinks(ctx, LinkFilter{OrderUnitIDs: []uuid.UUID{ou.ID}})
	if err != nil {
		return nil, fmt.Errorf("check links for po unit %s: %w", ou.ID, err)
	}
	res.POUnitAvailable = len(existing) == 0 && ou.Status.Linkable()
	switch {
	case len(existing) > 0:
		res.Errors = append(res.Errors, fmt.Sprintf("po unit #%d is already linked", ou.UnitNumber))
	case !ou.Status.Linkable():
		res.Errors = append(res.Errors, fmt.Sprintf("po unit #%d is %s", ou.UnitNumber, ou.Status))
	}

	existing, err = s.ListLinks(ctx, LinkFilter{DeliveryUnitIDs: []uuid.UUID{du.ID}})
	if err != nil {
		return nil, fmt.Errorf("check links for delivery unit %s: %w", du.ID, err)
	}
	res.DeliveryUnitAvailable = len(existing) == 0 && du.Status.Linkable()
	switch {
	case len(existing) > 0:
		res.Errors = append(res.Errors, fmt.Sprintf("delivery unit #%d is already linked", du.UnitNumber))
	case !du.Status.Linkable():
		res.Errors = append(res.Errors, fmt.Sprintf("delivery unit #%d is %s", du.UnitNumber, du.Status))
	}

	res.ProductMatch = productsMatch(oi.Ref(), di.Ref())
	if !res.ProductMatch {
		res.Errors = append(res.Errors, fmt.Sprintf("product mismatch: po item has %s, delivery item has %s", oi.Ref(), di.Ref()))
	}

	var msg string
	var blocking bool
	res.SerialMatch, msg, blocking = compareIdentifiers("serial number", ou.SerialNumber, du.SerialNumber, opts.RequireSerialMatch)
	appendFinding(res, msg, blocking)
	res.BatchMatch, msg, blocking = compareIdentifiers("batch number", ou.BatchNumber, du.BatchNumber, opts.RequireBatchMatch)
	appendFinding(res, msg, blocking)

	// Quantity conservation on both parent lines.
	if res.POUnitAvailable {
		msg, err := checkItemCapacity(ctx, s, LinkFilter{OrderItemIDs: []uuid.UUID{oi.ID}}, oi.Quantity)
		if err != nil {
			return nil, err
		}
		if msg != "" {
			res.Errors = append(res.Errors, "po line item is fully linked: "+msg)
		}
	}
	if res.DeliveryUnitAvailable {
		msg, err := checkItemCapacity(ctx, s, LinkFilter{DeliveryItemIDs: []uuid.UUID{di.ID}}, di.Quantity)
		if err != nil {
			return nil, err
		}
		if msg != "" {
			res.Errors = append(res.Errors, "delivery line item is fully linked: "+msg)
		}
	}

	res.Valid = len(res.Errors) == 0
	return res, nil
}

// checkItemCapacity returns a non-empty message when one more link on the line item
// selected by f would exceed its quantity.
func checkItemCapacity(ctx context.Context, s Store, f LinkFilter, quantity decimal.Decimal) (string, error) {
	links, err := s.ListLinks(ctx, f)
	if err != nil {
		return "", fmt.Errorf("count line item links: %w", err)
	}
	if err := CheckAllocation(quantity, decimal.NewFromInt(int64(len(links))), decimal.NewFromInt(1)); err != nil {
		return err.Error(), nil
	}
	return "", nil
}

func appendFinding(res *ValidationResult, msg string, blocking bool) {
	if msg == "" {
		return
	}
	if blocking {
		res.Errors = append(res.Errors, msg)
		return
	}
	res.Warnings = append(res.Warnings, msg)
}

// compareIdentifiers reports whether two optional identifiers are compatible.
// Both present and equal is a match. With at least one absent it is a match only when not
// required, with a "not verified" warning; when required it is a blocking non-match.
func compareIdentifiers(label string, a, b *string, required bool) (match bool, finding string, blocking bool) {
	av, bv := normalizeIdentifier(a), normalizeIdentifier(b)
	switch {
	case av != "" && bv != "":
		if av == bv {
			return true, "", false
		}
		return false, fmt.Sprintf("%s mismatch: %s vs %s", label, av, bv), required
	case required:
		return false, fmt.Sprintf("%s required for matching but not recorded on both units", label), true
	default:
		return true, label + " not verified", false
	}
}

// identifiersEqual is the strict form used by the auto-matcher: both present and equal.
func identifiersEqual(a, b *string) bool {
	av, bv := normalizeIdentifier(a), normalizeIdentifier(b)
	return av != "" && av == bv
}

// identifiersDiffer reports two present, different identifiers.
func identifiersDiffer(a, b *string) bool {
	av, bv := normalizeIdentifier(a), normalizeIdentifier(b)
	return av != "" && bv != "" && av != bv
}

func normalizeIdentifier(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

// productsMatch compares catalogue product ids when both lines carry one, and falls back
// to a case-insensitive comparison of the free-text model otherwise.
func productsMatch(a, b ProductRef) bool {
	if a.ProductID != nil && b.ProductID != nil {
		return *a.ProductID == *b.ProductID
	}
	am, bm := strings.TrimSpace(a.Model), strings.TrimSpace(b.Model)
	return am != "" && strings.EqualFold(am, bm)
}
