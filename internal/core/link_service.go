package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type linkService struct {
	store Store
}

// NewLinkService constructs the LinkService. When store implements Transactor every
// mutation runs in a transaction; otherwise writes are journaled and undone on failure.
func NewLinkService(store Store) LinkService {
	return &linkService{store: store}
}

func (in CreateLinkInput) validateOptions() ValidateOptions {
	return ValidateOptions{RequireSerialMatch: in.RequireSerialMatch, RequireBatchMatch: in.RequireBatchMatch}
}

func checkLinkInput(in CreateLinkInput) error {
	if in.OrderUnitID == uuid.Nil || in.DeliveryUnitID == uuid.Nil {
		return invalidInput("po_unit_id and delivery_unit_id are required")
	}
	if in.Status != "" && !in.Status.Valid() {
		return invalidInput("unknown link status %q", in.Status)
	}
	return nil
}

// linkJournal records what a non-transactional write has done so it can be undone.
type linkJournal struct {
	entries []journalEntry
}

type journalEntry struct {
	linkID         uuid.UUID
	orderUnitID    uuid.UUID
	orderStatus    OrderUnitStatus
	deliveryUnitID uuid.UUID
	deliveryStatus DeliveryUnitStatus
}

// undo walks the journal backwards, deleting links and restoring the exact unit statuses
// recorded before the write. Every step is attempted; failures are joined.
func (j *linkJournal) undo(ctx context.Context, st Store) error {
	var errs []error
	for i := len(j.entries) - 1; i >= 0; i-- {
		e := j.entries[i]
		if err := st.DeleteLink(ctx, e.linkID); err != nil && !errors.Is(err, ErrNotFound) {
			errs = append(errs, fmt.Errorf("undo link %s: %w", e.linkID, err))
		}
		os := e.orderStatus
		if _, err := st.UpdateOrderUnit(ctx, e.orderUnitID, OrderUnitUpdate{Status: &os}); err != nil {
			errs = append(errs, fmt.Errorf("restore po unit %s: %w", e.orderUnitID, err))
		}
		ds := e.deliveryStatus
		if _, err := st.UpdateDeliveryUnit(ctx, e.deliveryUnitID, DeliveryUnitUpdate{Status: &ds}); err != nil {
			errs = append(errs, fmt.Errorf("restore delivery unit %s: %w", e.deliveryUnitID, err))
		}
	}
	j.entries = nil
	return errors.Join(errs...)
}

// run executes fn transactionally when the store allows it, and with a compensation
// journal otherwise. The returned bool reports which path was taken.
func (s *linkService) run(ctx context.Context, fn func(st Store, j *linkJournal) error) (bool, error) {
	if t, ok := s.store.(Transactor); ok {
		return true, t.InTx(ctx, func(st Store) error { return fn(st, nil) })
	}
	j := &linkJournal{}
	err := fn(s.store, j)
	if err == nil {
		return false, nil
	}
	written := len(j.entries)
	if undoErr := j.undo(ctx, s.store); undoErr != nil {
		log.Error().Err(undoErr).Int("written", written).Msg("link store: compensation incomplete")
		return false, errors.Join(err, undoErr)
	}
	return false, err
}

// CreateLink validates and persists one pairing.
func (s *linkService) CreateLink(ctx context.Context, in CreateLinkInput) (*UnitLink, error) {
	if err := checkLinkInput(in); err != nil {
		return nil, err
	}

	var link *UnitLink
	transactional, err := s.run(ctx, func(st Store, j *linkJournal) error {
		res, err := validatePair(ctx, st, in.OrderUnitID, in.DeliveryUnitID, in.validateOptions())
		if err != nil {
			return err
		}
		if !res.Valid {
			return &ValidationError{Result: res}
		}
		link, err = writeLink(ctx, st, in, j)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrConflict) {
			log.Warn().Err(err).
				Stringer("po_unit_id", in.OrderUnitID).
				Stringer("delivery_unit_id", in.DeliveryUnitID).
				Bool("transactional", transactional).
				Msg("link store: unit already claimed")
		}
		return nil, err
	}
	log.Debug().Stringer("link_id", link.ID).Msg("link store: link created")
	return link, nil
}

// BulkCreateLinks validates every pair before writing any of them, then writes them all.
func (s *linkService) BulkCreateLinks(ctx context.Context, in []CreateLinkInput) ([]UnitLink, error) {
	if len(in) == 0 {
		return []UnitLink{}, nil
	}

	var created []UnitLink
	transactional, err := s.run(ctx, func(st Store, j *linkJournal) error {
		var err error
		created, err = bulkCreate(ctx, st, in, j)
		return err
	})
	if err != nil {
		log.Warn().Err(err).
			Int("pairs", len(in)).
			Bool("transactional", transactional).
			Msg("link store: bulk link rolled back")
		return nil, err
	}
	log.Debug().Int("pairs", len(created)).Msg("link store: bulk links created")
	return created, nil
}

// bulkCreate validates all pairs, including against each other, and only then writes them.
func bulkCreate(ctx context.Context, st Store, in []CreateLinkInput, j *linkJournal) ([]UnitLink, error) {
	claimedOrder := make(map[uuid.UUID]int, len(in))
	claimedDelivery := make(map[uuid.UUID]int, len(in))
	for i, pair := range in {
		fail := func(err error) error {
			return &BulkLinkError{Index: i, OrderUnitID: pair.OrderUnitID, DeliveryUnitID: pair.DeliveryUnitID, Err: err}
		}
		if err := checkLinkInput(pair); err != nil {
			return nil, fail(err)
		}
		if prev, ok := claimedOrder[pair.OrderUnitID]; ok {
			return nil, fail(fmt.Errorf("po unit also requested by pair %d: %w", prev, ErrConflict))
		}
		if prev, ok := claimedDelivery[pair.DeliveryUnitID]; ok {
			return nil, fail(fmt.Errorf("delivery unit also requested by pair %d: %w", prev, ErrConflict))
		}
		claimedOrder[pair.OrderUnitID] = i
		claimedDelivery[pair.DeliveryUnitID] = i

		res, err := validatePair(ctx, st, pair.OrderUnitID, pair.DeliveryUnitID, pair.validateOptions())
		if err != nil {
			return nil, fail(err)
		}
		if !res.Valid {
			return nil, fail(&ValidationError{Result: res})
		}
	}

	created := make([]UnitLink, 0, len(in))
	for i, pair := range in {
		link, err := writeLink(ctx, st, pair, j)
		if err != nil {
			return nil, &BulkLinkError{Index: i, OrderUnitID: pair.OrderUnitID, DeliveryUnitID: pair.DeliveryUnitID, Err: err}
		}
		created = append(created, *link)
	}
	return created, nil
}

// writeLink inserts the link and moves both units to "linked" unless they are terminal.
// The insert enforces 1:1 cardinality: a concurrent claim surfaces here as ErrConflict.
func writeLink(ctx context.Context, st Store, in CreateLinkInput, j *linkJournal) (*UnitLink, error) {
	ou, err := st.GetOrderUnit(ctx, in.OrderUnitID)
	if err != nil {
		return nil, err
	}
	du, err := st.GetDeliveryUnit(ctx, in.DeliveryUnitID)
	if err != nil {
		return nil, err
	}

	now := nowUTC()
	status := in.Status
	if status == "" {
		status = LinkLinked
	}
	link := &UnitLink{
		ID:             uuid.New(),
		OrderUnitID:    in.OrderUnitID,
		DeliveryUnitID: in.DeliveryUnitID,
		Status:         status,
		LinkedAt:       now,
		Notes:          in.Notes,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if status == LinkConfirmed {
		link.ConfirmedAt = &now
	}
	if err := st.InsertLink(ctx, link); err != nil {
		return nil, fmt.Errorf("insert link: %w", err)
	}
	if j != nil {
		j.entries = append(j.entries, journalEntry{
			linkID:         link.ID,
			orderUnitID:    ou.ID,
			orderStatus:    ou.Status,
			deliveryUnitID: du.ID,
			deliveryStatus: du.Status,
		})
	}

	if !ou.Status.IsTerminal() && ou.Status != OrderUnitLinked {
		linked := OrderUnitLinked
		if _, err := st.UpdateOrderUnit(ctx, ou.ID, OrderUnitUpdate{Status: &linked}); err != nil {
			return nil, fmt.Errorf("mark po unit linked: %w", err)
		}
	}
	if !du.Status.IsTerminal() && du.Status != DeliveryUnitLinked {
		linked := DeliveryUnitLinked
		if _, err := st.UpdateDeliveryUnit(ctx, du.ID, DeliveryUnitUpdate{Status: &linked}); err != nil {
			return nil, fmt.Errorf("mark delivery unit linked: %w", err)
		}
	}
	return link, nil
}

func (s *linkService) UpdateLink(ctx context.Context, id uuid.UUID, upd LinkUpdate) (*UnitLink, error) {
	if upd.Status != nil && !upd.Status.Valid() {
		return nil, invalidInput("unknown link status %q", *upd.Status)
	}
	if upd.Status != nil && *upd.Status == LinkConfirmed && upd.ConfirmedAt == nil {
		now := nowUTC()
		upd.ConfirmedAt = &now
	}
	link, err := s.store.UpdateLink(ctx, id, upd)
	if err != nil {
		return nil, err
	}
	return link, nil
}

func (s *linkService) ConfirmLink(ctx context.Context, id uuid.UUID, confirmedBy string) (*UnitLink, error) {
	status := LinkConfirmed
	upd := LinkUpdate{Status: &status}
	if confirmedBy != "" {
		upd.ConfirmedBy = &confirmedBy
	}
	return s.UpdateLink(ctx, id, upd)
}

// DeleteLink removes the link and reverts non-terminal units to ordered/delivered. The unit
// statuses change before the link row goes. Without a transaction a failed step puts back
// whatever was already reverted, so a unit never ends up "linked" with no link.
func (s *linkService) DeleteLink(ctx context.Context, id uuid.UUID) error {
	_, transactional := s.store.(Transactor)
	_, err := inTx(ctx, s.store, func(st Store) error {
		link, err := st.GetLink(ctx, id)
		if err != nil {
			return err
		}

		var restore []func() error
		fail := func(cause error) error {
			if transactional {
				return cause
			}
			for i := len(restore) - 1; i >= 0; i-- {
				if err := restore[i](); err != nil {
					cause = errors.Join(cause, err)
				}
			}
			if len(restore) > 0 {
				log.Warn().Err(cause).Stringer("link_id", id).Msg("link store: delete undone")
			}
			return cause
		}

		ou, err := st.GetOrderUnit(ctx, link.OrderUnitID)
		switch {
		case errors.Is(err, ErrNotFound):
		case err != nil:
			return err
		case !ou.Status.IsTerminal():
			prev, ordered := ou.Status, OrderUnitOrdered
			if _, err := st.UpdateOrderUnit(ctx, ou.ID, OrderUnitUpdate{Status: &ordered}); err != nil {
				return fmt.Errorf("revert po unit: %w", err)
			}
			restore = append(restore, func() error {
				_, err := st.UpdateOrderUnit(ctx, ou.ID, OrderUnitUpdate{Status: &prev})
				return err
			})
		}

		du, err := st.GetDeliveryUnit(ctx, link.DeliveryUnitID)
		switch {
		case errors.Is(err, ErrNotFound):
		case err != nil:
			return fail(err)
		case !du.Status.IsTerminal():
			prev, delivered := du.Status, DeliveryUnitDelivered
			if _, err := st.UpdateDeliveryUnit(ctx, du.ID, DeliveryUnitUpdate{Status: &delivered}); err != nil {
				return fail(fmt.Errorf("revert delivery unit: %w", err))
			}
			restore = append(restore, func() error {
				_, err := st.UpdateDeliveryUnit(ctx, du.ID, DeliveryUnitUpdate{Status: &prev})
				return err
			})
		}

		if err := st.DeleteLink(ctx, id); err != nil {
			return fail(err)
		}
		return nil
	})
	return err
}

func (s *linkService) ListLinks(ctx context.Context, purchaseOrderID, deliveryID *uuid.UUID) ([]UnitLink, error) {
	if purchaseOrderID == nil && deliveryID == nil {
		return nil, invalidInput("purchase_order_id or delivery_id is required")
	}
	var f LinkFilter
	if purchaseOrderID != nil {
		f.PurchaseOrderIDs = []uuid.UUID{*purchaseOrderID}
	}
	if deliveryID != nil {
		f.DeliveryIDs = []uuid.UUID{*deliveryID}
	}
	links, err := s.store.ListLinks(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list links: %w", err)
	}
	return links, nil
}
