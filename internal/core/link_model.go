package core

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// LinkStatus is the state of a pairing between one order unit and one delivery unit.
type LinkStatus string

const (
	LinkLinked    LinkStatus = "linked"
	LinkConfirmed LinkStatus = "confirmed"
	LinkDisputed  LinkStatus = "disputed"
	LinkRejected  LinkStatus = "rejected"
)

// Valid reports whether s is a known link status.
func (s LinkStatus) Valid() bool {
	switch s {
	case LinkLinked, LinkConfirmed, LinkDisputed, LinkRejected:
		return true
	}
	return false
}

// UnitLink asserts that a delivered piece fulfils an ordered piece.
// Each order unit and each delivery unit appears in at most one link.
type UnitLink struct {
	ID             uuid.UUID  `json:"id"`
	OrderUnitID    uuid.UUID  `json:"po_unit_id"`
	DeliveryUnitID uuid.UUID  `json:"delivery_unit_id"`
	Status         LinkStatus `json:"status"`
	LinkedAt       time.Time  `json:"linked_at"`
	ConfirmedAt    *time.Time `json:"confirmed_at,omitempty"`
	ConfirmedBy    *string    `json:"confirmed_by,omitempty"`
	Notes          string     `json:"notes"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// CreateLinkInput describes one requested pairing.
// Require* flags make the validator treat unverified or differing identifiers as errors.
type CreateLinkInput struct {
	OrderUnitID        uuid.UUID
	DeliveryUnitID     uuid.UUID
	Status             LinkStatus // defaults to LinkLinked
	Notes              string
	RequireSerialMatch bool
	RequireBatchMatch  bool
}

// LinkUpdate carries the mutable fields of a link. Nil fields are left unchanged.
type LinkUpdate struct {
	Status      *LinkStatus
	Notes       *string
	ConfirmedBy *string
	ConfirmedAt *time.Time
}

// LinkService is the sole owner of unit link records.
type LinkService interface {
	// CreateLink validates and persists one pairing, moving both units to "linked".
	// Returns *ValidationError when the validator rejects the pair and ErrConflict when
	// the storage uniqueness constraint is hit by a concurrent caller.
	CreateLink(ctx context.Context, in CreateLinkInput) (*UnitLink, error)

	// BulkCreateLinks persists all pairings or none. A failure is reported as *BulkLinkError
	// naming the responsible pair; the store is left in its pre-call state.
	BulkCreateLinks(ctx context.Context, in []CreateLinkInput) ([]UnitLink, error)

	// UpdateLink changes status, notes, or confirmation fields. Returns ErrNotFound if absent.
	// Moving to "confirmed" stamps ConfirmedAt when the caller does not supply one.
	UpdateLink(ctx context.Context, id uuid.UUID, upd LinkUpdate) (*UnitLink, error)

	// ConfirmLink marks a link confirmed by the given operator.
	ConfirmLink(ctx context.Context, id uuid.UUID, confirmedBy string) (*UnitLink, error)

	// DeleteLink removes a link and reverts both units to their pre-link status,
	// leaving terminal statuses (received, rejected, damaged, returned) untouched.
	DeleteLink(ctx context.Context, id uuid.UUID) error

	// ListLinks returns links whose order unit belongs to purchaseOrderID and/or whose
	// delivery unit belongs to deliveryID. At least one filter is required.
	ListLinks(ctx context.Context, purchaseOrderID, deliveryID *uuid.UUID) ([]UnitLink, error)
}
