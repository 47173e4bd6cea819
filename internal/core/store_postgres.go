package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// querier is satisfied by *pgxpool.Pool and pgx.Tx.
type querier interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

type postgresStore struct {
	q querier
}

// NewPostgresStore constructs a transactional Store over the schema in internal/db/migrations.
func NewPostgresStore(pool *pgxpool.Pool) Store {
	return &postgresStore{q: pool}
}

// InTx runs fn in a transaction. Called on a store already bound to a transaction,
// it opens a savepoint.
func (s *postgresStore) InTx(ctx context.Context, fn func(Store) error) error {
	tx, err := s.q.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&postgresStore{q: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// pgError maps driver errors onto the engine's sentinels.
func pgError(err error, what string, id uuid.UUID) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return notFound(what, id)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			return fmt.Errorf("%s %s violates %s: %w", what, id, pgErr.ConstraintName, ErrConflict)
		case pgerrcode.ForeignKeyViolation:
			return fmt.Errorf("%s %s references a missing row (%s): %w", what, id, pgErr.ConstraintName, ErrNotFound)
		case pgerrcode.CheckViolation:
			return fmt.Errorf("%s %s violates %s: %w", what, id, pgErr.ConstraintName, ErrInvalidInput)
		}
	}
	return fmt.Errorf("%s %s: %w", what, id, err)
}

// where accumulates AND-ed conditions and their positional arguments.
type where struct {
	conds []string
	args  []any
}

func (w *where) arg(v any) string {
	w.args = append(w.args, v)
	return fmt.Sprintf("$%d", len(w.args))
}

// inUUIDs constrains col to set. nil leaves it unconstrained; empty matches nothing.
func (w *where) inUUIDs(col string, set []uuid.UUID) {
	if set == nil {
		return
	}
	if len(set) == 0 {
		w.conds = append(w.conds, "false")
		return
	}
	strs := make([]string, len(set))
	for i, id := range set {
		strs[i] = id.String()
	}
	w.conds = append(w.conds, fmt.Sprintf("%s = ANY(%s::uuid[])", col, w.arg(strs)))
}

func inStatuses[S ~string](w *where, col string, set []S) {
	if set == nil {
		return
	}
	if len(set) == 0 {
		w.conds = append(w.conds, "false")
		return
	}
	strs := make([]string, len(set))
	for i, st := range set {
		strs[i] = string(st)
	}
	w.conds = append(w.conds, fmt.Sprintf("%s = ANY(%s::text[])", col, w.arg(strs)))
}

func (w *where) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

// setter accumulates SET clauses for partial updates.
type setter struct {
	where
	sets []string
}

func (s *setter) set(col string, v any) {
	s.sets = append(s.sets, fmt.Sprintf("%s = %s", col, s.arg(v)))
}

// setIdentifier stores an empty identifier as NULL.
func (s *setter) setIdentifier(col string, v *string) {
	if v == nil {
		return
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		s.sets = append(s.sets, col+" = NULL")
		return
	}
	s.set(col, trimmed)
}

// ---- purchase orders and deliveries ----

func (s *postgresStore) InsertPurchaseOrder(ctx context.Context, po *PurchaseOrder) error {
	_, err := s.q.Exec(ctx, `
		INSERT INTO purchase_orders (id, po_number, supplier, created_at)
		VALUES ($1, $2, $3, $4)`,
		po.ID, po.PONumber, po.Supplier, po.CreatedAt,
	)
	if err != nil {
		return pgError(err, "purchase order", po.ID)
	}
	return nil
}

func (s *postgresStore) GetPurchaseOrder(ctx context.Context, id uuid.UUID) (*PurchaseOrder, error) {
	po := &PurchaseOrder{}
	err := s.q.QueryRow(ctx,
		"SELECT id, po_number, supplier, created_at FROM purchase_orders WHERE id = $1", id,
	).Scan(&po.ID, &po.PONumber, &po.Supplier, &po.CreatedAt)
	if err != nil {
		return nil, pgError(err, "purchase order", id)
	}
	return po, nil
}

func (s *postgresStore) InsertDelivery(ctx context.Context, d *Delivery) error {
	_, err := s.q.Exec(ctx, `
		INSERT INTO deliveries (id, delivery_number, supplier, delivered_at, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		d.ID, d.DeliveryNumber, d.Supplier, d.DeliveredAt, d.CreatedAt,
	)
	if err != nil {
		return pgError(err, "delivery", d.ID)
	}
	return nil
}

func (s *postgresStore) GetDelivery(ctx context.Context, id uuid.UUID) (*Delivery, error) {
	d := &Delivery{}
	err := s.q.QueryRow(ctx,
		"SELECT id, delivery_number, supplier, delivered_at, created_at FROM deliveries WHERE id = $1", id,
	).Scan(&d.ID, &d.DeliveryNumber, &d.Supplier, &d.DeliveredAt, &d.CreatedAt)
	if err != nil {
		return nil, pgError(err, "delivery", id)
	}
	return d, nil
}

// ---- line items ----

const orderItemColumns = "id, purchase_order_id, product_id, model, quantity, created_at"

func scanOrderItem(row pgx.Row) (*PurchaseOrderItem, error) {
	it := &PurchaseOrderItem{}
	if err := row.Scan(&it.ID, &it.PurchaseOrderID, &it.ProductID, &it.Model, &it.Quantity, &it.CreatedAt); err != nil {
		return nil, err
	}
	return it, nil
}

func (s *postgresStore) InsertOrderItem(ctx context.Context, item *PurchaseOrderItem) error {
	_, err := s.q.Exec(ctx, `
		INSERT INTO purchase_order_items (id, purchase_order_id, product_id, model, quantity, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		item.ID, item.PurchaseOrderID, item.ProductID, item.Model, item.Quantity, item.CreatedAt,
	)
	if err != nil {
		return pgError(err, "po item", item.ID)
	}
	return nil
}

func (s *postgresStore) GetOrderItem(ctx context.Context, id uuid.UUID) (*PurchaseOrderItem, error) {
	it, err := scanOrderItem(s.q.QueryRow(ctx,
		"SELECT "+orderItemColumns+" FROM purchase_order_items WHERE id = $1", id))
	if err != nil {
		return nil, pgError(err, "po item", id)
	}
	return it, nil
}

func (s *postgresStore) ListOrderItems(ctx context.Context, f ItemFilter) ([]PurchaseOrderItem, error) {
	w := &where{}
	w.inUUIDs("purchase_order_id", f.ParentIDs)
	w.inUUIDs("id", f.IDs)
	rows, err := s.q.Query(ctx,
		"SELECT "+orderItemColumns+" FROM purchase_order_items"+w.String()+" ORDER BY created_at, id",
		w.args...)
	if err != nil {
		return nil, fmt.Errorf("list po items: %w", err)
	}
	defer rows.Close()

	items := []PurchaseOrderItem{}
	for rows.Next() {
		it, err := scanOrderItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan po item: %w", err)
		}
		items = append(items, *it)
	}
	return items, rows.Err()
}

const deliveryItemColumns = "id, delivery_id, product_id, model, quantity, created_at"

func scanDeliveryItem(row pgx.Row) (*DeliveryItem, error) {
	it := &DeliveryItem{}
	if err := row.Scan(&it.ID, &it.DeliveryID, &it.ProductID, &it.Model, &it.Quantity, &it.CreatedAt); err != nil {
		return nil, err
	}
	return it, nil
}

func (s *postgresStore) InsertDeliveryItem(ctx context.Context, item *DeliveryItem) error {
	_, err := s.q.Exec(ctx, `
		INSERT INTO delivery_items (id, delivery_id, product_id, model, quantity, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		item.ID, item.DeliveryID, item.ProductID, item.Model, item.Quantity, item.CreatedAt,
	)
	if err != nil {
		return pgError(err, "delivery item", item.ID)
	}
	return nil
}

func (s *postgresStore) GetDeliveryItem(ctx context.Context, id uuid.UUID) (*DeliveryItem, error) {
	it, err := scanDeliveryItem(s.q.QueryRow(ctx,
		"SELECT "+deliveryItemColumns+" FROM delivery_items WHERE id = $1", id))
	if err != nil {
		return nil, pgError(err, "delivery item", id)
	}
	return it, nil
}

func (s *postgresStore) ListDeliveryItems(ctx context.Context, f ItemFilter) ([]DeliveryItem, error) {
	w := &where{}
	w.inUUIDs("delivery_id", f.ParentIDs)
	w.inUUIDs("id", f.IDs)
	rows, err := s.q.Query(ctx,
		"SELECT "+deliveryItemColumns+" FROM delivery_items"+w.String()+" ORDER BY created_at, id",
		w.args...)
	if err != nil {
		return nil, fmt.Errorf("list delivery items: %w", err)
	}
	defer rows.Close()

	items := []DeliveryItem{}
	for rows.Next() {
		it, err := scanDeliveryItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan delivery item: %w", err)
		}
		items = append(items, *it)
	}
	return items, rows.Err()
}

// ---- units ----

const orderUnitColumns = `u.id, u.purchase_order_item_id, u.unit_number, u.serial_number, u.batch_number,
	u.status, u.notes, u.created_at, u.updated_at`

func scanOrderUnit(row pgx.Row) (*OrderUnit, error) {
	u := &OrderUnit{}
	if err := row.Scan(&u.ID, &u.OrderItemID, &u.UnitNumber, &u.SerialNumber, &u.BatchNumber,
		&u.Status, &u.Notes, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return u, nil
}

// InsertOrderUnits writes all units in one batch.
func (s *postgresStore) InsertOrderUnits(ctx context.Context, units []OrderUnit) error {
	if len(units) == 0 {
		return nil
	}
	b := &pgx.Batch{}
	for _, u := range units {
		b.Queue(`
			INSERT INTO po_item_units (id, purchase_order_item_id, unit_number, serial_number, batch_number,
			                           status, notes, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			u.ID, u.OrderItemID, u.UnitNumber, u.SerialNumber, u.BatchNumber,
			string(u.Status), u.Notes, u.CreatedAt, u.UpdatedAt,
		)
	}
	br := s.q.SendBatch(ctx, b)
	defer br.Close()
	for _, u := range units {
		if _, err := br.Exec(); err != nil {
			return pgError(err, "po unit", u.ID)
		}
	}
	return nil
}

func (s *postgresStore) GetOrderUnit(ctx context.Context, id uuid.UUID) (*OrderUnit, error) {
	u, err := scanOrderUnit(s.q.QueryRow(ctx,
		"SELECT "+orderUnitColumns+" FROM po_item_units u WHERE u.id = $1", id))
	if err != nil {
		return nil, pgError(err, "po unit", id)
	}
	return u, nil
}

func (s *postgresStore) ListOrderUnits(ctx context.Context, f OrderUnitFilter) ([]OrderUnit, error) {
	w := &where{}
	w.inUUIDs("i.purchase_order_id", f.PurchaseOrderIDs)
	w.inUUIDs("u.purchase_order_item_id", f.ItemIDs)
	w.inUUIDs("u.id", f.IDs)
	inStatuses(w, "u.status", f.Statuses)
	rows, err := s.q.Query(ctx, `
		SELECT `+orderUnitColumns+`
		FROM po_item_units u
		JOIN purchase_order_items i ON i.id = u.purchase_order_item_id`+w.String()+`
		ORDER BY i.created_at, i.id, u.unit_number`,
		w.args...)
	if err != nil {
		return nil, fmt.Errorf("list po units: %w", err)
	}
	defer rows.Close()

	units := []OrderUnit{}
	for rows.Next() {
		u, err := scanOrderUnit(rows)
		if err != nil {
			return nil, fmt.Errorf("scan po unit: %w", err)
		}
		units = append(units, *u)
	}
	return units, rows.Err()
}

func (s *postgresStore) UpdateOrderUnit(ctx context.Context, id uuid.UUID, upd OrderUnitUpdate) (*OrderUnit, error) {
	st := &setter{}
	st.setIdentifier("serial_number", upd.SerialNumber)
	st.setIdentifier("batch_number", upd.BatchNumber)
	if upd.Status != nil {
		st.set("status", string(*upd.Status))
	}
	if upd.Notes != nil {
		st.set("notes", *upd.Notes)
	}
	st.set("updated_at", nowUTC())

	u, err := scanOrderUnit(s.q.QueryRow(ctx,
		"UPDATE po_item_units u SET "+strings.Join(st.sets, ", ")+
			" WHERE u.id = "+st.arg(id)+" RETURNING "+orderUnitColumns,
		st.args...))
	if err != nil {
		return nil, pgError(err, "po unit", id)
	}
	return u, nil
}

const deliveryUnitColumns = `u.id, u.delivery_item_id, u.unit_number, u.serial_number, u.batch_number,
	u.status, u.condition_notes, u.created_at, u.updated_at`

func scanDeliveryUnit(row pgx.Row) (*DeliveryUnit, error) {
	u := &DeliveryUnit{}
	if err := row.Scan(&u.ID, &u.DeliveryItemID, &u.UnitNumber, &u.SerialNumber, &u.BatchNumber,
		&u.Status, &u.ConditionNotes, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *postgresStore) InsertDeliveryUnits(ctx context.Context, units []DeliveryUnit) error {
	if len(units) == 0 {
		return nil
	}
	b := &pgx.Batch{}
	for _, u := range units {
		b.Queue(`
			INSERT INTO delivery_item_units (id, delivery_item_id, unit_number, serial_number, batch_number,
			                                 status, condition_notes, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			u.ID, u.DeliveryItemID, u.UnitNumber, u.SerialNumber, u.BatchNumber,
			string(u.Status), u.ConditionNotes, u.CreatedAt, u.UpdatedAt,
		)
	}
	br := s.q.SendBatch(ctx, b)
	defer br.Close()
	for _, u := range units {
		if _, err := br.Exec(); err != nil {
			return pgError(err, "delivery unit", u.ID)
		}
	}
	return nil
}

func (s *postgresStore) GetDeliveryUnit(ctx context.Context, id uuid.UUID) (*DeliveryUnit, error) {
	u, err := scanDeliveryUnit(s.q.QueryRow(ctx,
		"SELECT "+deliveryUnitColumns+" FROM delivery_item_units u WHERE u.id = $1", id))
	if err != nil {
		return nil, pgError(err, "delivery unit", id)
	}
	return u, nil
}

func (s *postgresStore) ListDeliveryUnits(ctx context.Context, f DeliveryUnitFilter) ([]DeliveryUnit, error) {
	w := &where{}
	w.inUUIDs("i.delivery_id", f.DeliveryIDs)
	w.inUUIDs("u.delivery_item_id", f.ItemIDs)
	w.inUUIDs("u.id", f.IDs)
	inStatuses(w, "u.status", f.Statuses)
	rows, err := s.q.Query(ctx, `
		SELECT `+deliveryUnitColumns+`
		FROM delivery_item_units u
		JOIN delivery_items i ON i.id = u.delivery_item_id`+w.String()+`
		ORDER BY i.created_at, i.id, u.unit_number`,
		w.args...)
	if err != nil {
		return nil, fmt.Errorf("list delivery units: %w", err)
	}
	defer rows.Close()

	units := []DeliveryUnit{}
	for rows.Next() {
		u, err := scanDeliveryUnit(rows)
		if err != nil {
			return nil, fmt.Errorf("scan delivery unit: %w", err)
		}
		units = append(units, *u)
	}
	return units, rows.Err()
}

func (s *postgresStore) UpdateDeliveryUnit(ctx context.Context, id uuid.UUID, upd DeliveryUnitUpdate) (*DeliveryUnit, error) {
	st := &setter{}
	st.setIdentifier("serial_number", upd.SerialNumber)
	st.setIdentifier("batch_number", upd.BatchNumber)
	if upd.Status != nil {
		st.set("status", string(*upd.Status))
	}
	if upd.ConditionNotes != nil {
		st.set("condition_notes", *upd.ConditionNotes)
	}
	st.set("updated_at", nowUTC())

	u, err := scanDeliveryUnit(s.q.QueryRow(ctx,
		"UPDATE delivery_item_units u SET "+strings.Join(st.sets, ", ")+
			" WHERE u.id = "+st.arg(id)+" RETURNING "+deliveryUnitColumns,
		st.args...))
	if err != nil {
		return nil, pgError(err, "delivery unit", id)
	}
	return u, nil
}

// ---- unit links ----

const linkColumns = `l.id, l.po_unit_id, l.delivery_unit_id, l.status, l.linked_at, l.confirmed_at,
	l.confirmed_by, l.notes, l.created_at, l.updated_at`

func scanLink(row pgx.Row) (*UnitLink, error) {
	l := &UnitLink{}
	if err := row.Scan(&l.ID, &l.OrderUnitID, &l.DeliveryUnitID, &l.Status, &l.LinkedAt, &l.ConfirmedAt,
		&l.ConfirmedBy, &l.Notes, &l.CreatedAt, &l.UpdatedAt); err != nil {
		return nil, err
	}
	return l, nil
}

// InsertLink relies on the UNIQUE constraints on po_unit_id and delivery_unit_id:
// of two concurrent claims on one unit, exactly one insert succeeds.
func (s *postgresStore) InsertLink(ctx context.Context, link *UnitLink) error {
	_, err := s.q.Exec(ctx, `
		INSERT INTO unit_links (id, po_unit_id, delivery_unit_id, status, linked_at, confirmed_at,
		                        confirmed_by, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		link.ID, link.OrderUnitID, link.DeliveryUnitID, string(link.Status), link.LinkedAt, link.ConfirmedAt,
		link.ConfirmedBy, link.Notes, link.CreatedAt, link.UpdatedAt,
	)
	if err != nil {
		return pgError(err, "link", link.ID)
	}
	return nil
}

func (s *postgresStore) GetLink(ctx context.Context, id uuid.UUID) (*UnitLink, error) {
	l, err := scanLink(s.q.QueryRow(ctx, "SELECT "+linkColumns+" FROM unit_links l WHERE l.id = $1", id))
	if err != nil {
		return nil, pgError(err, "link", id)
	}
	return l, nil
}

func (s *postgresStore) UpdateLink(ctx context.Context, id uuid.UUID, upd LinkUpdate) (*UnitLink, error) {
	st := &setter{}
	if upd.Status != nil {
		st.set("status", string(*upd.Status))
	}
	if upd.Notes != nil {
		st.set("notes", *upd.Notes)
	}
	if upd.ConfirmedBy != nil {
		st.set("confirmed_by", *upd.ConfirmedBy)
	}
	if upd.ConfirmedAt != nil {
		st.set("confirmed_at", *upd.ConfirmedAt)
	}
	st.set("updated_at", nowUTC())

	l, err := scanLink(s.q.QueryRow(ctx,
		"UPDATE unit_links l SET "+strings.Join(st.sets, ", ")+
			" WHERE l.id = "+st.arg(id)+" RETURNING "+linkColumns,
		st.args...))
	if err != nil {
		return nil, pgError(err, "link", id)
	}
	return l, nil
}

func (s *postgresStore) DeleteLink(ctx context.Context, id uuid.UUID) error {
	tag, err := s.q.Exec(ctx, "DELETE FROM unit_links WHERE id = $1", id)
	if err != nil {
		return pgError(err, "link", id)
	}
	if tag.RowsAffected() == 0 {
		return notFound("link", id)
	}
	return nil
}

func (s *postgresStore) ListLinks(ctx context.Context, f LinkFilter) ([]UnitLink, error) {
	w := &where{}
	w.inUUIDs("oi.purchase_order_id", f.PurchaseOrderIDs)
	w.inUUIDs("di.delivery_id", f.DeliveryIDs)
	w.inUUIDs("ou.purchase_order_item_id", f.OrderItemIDs)
	w.inUUIDs("du.delivery_item_id", f.DeliveryItemIDs)
	w.inUUIDs("l.po_unit_id", f.OrderUnitIDs)
	w.inUUIDs("l.delivery_unit_id", f.DeliveryUnitIDs)
	rows, err := s.q.Query(ctx, `
		SELECT `+linkColumns+`
		FROM unit_links l
		JOIN po_item_units ou ON ou.id = l.po_unit_id
		JOIN purchase_order_items oi ON oi.id = ou.purchase_order_item_id
		JOIN delivery_item_units du ON du.id = l.delivery_unit_id
		JOIN delivery_items di ON di.id = du.delivery_item_id`+w.String()+`
		ORDER BY l.linked_at, l.id`,
		w.args...)
	if err != nil {
		return nil, fmt.Errorf("list links: %w", err)
	}
	defer rows.Close()

	links := []UnitLink{}
	for rows.Next() {
		l, err := scanLink(rows)
		if err != nil {
			return nil, fmt.Errorf("scan link: %w", err)
		}
		links = append(links, *l)
	}
	return links, rows.Err()
}

// ---- legacy quantity links ----

func (s *postgresStore) InsertQuantityLink(ctx context.Context, link *QuantityLink) error {
	_, err := s.q.Exec(ctx, `
		INSERT INTO delivery_item_links (id, delivery_item_id, purchase_order_item_id, quantity, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		link.ID, link.DeliveryItemID, link.OrderItemID, link.Quantity, link.CreatedAt,
	)
	if err != nil {
		return pgError(err, "quantity link", link.ID)
	}
	return nil
}

func (s *postgresStore) ListQuantityLinks(ctx context.Context, f QuantityLinkFilter) ([]QuantityLink, error) {
	w := &where{}
	w.inUUIDs("oi.purchase_order_id", f.PurchaseOrderIDs)
	w.inUUIDs("di.delivery_id", f.DeliveryIDs)
	w.inUUIDs("q.purchase_order_item_id", f.OrderItemIDs)
	w.inUUIDs("q.delivery_item_id", f.DeliveryItemIDs)
	rows, err := s.q.Query(ctx, `
		SELECT q.id, q.delivery_item_id, q.purchase_order_item_id, q.quantity, q.created_at
		FROM delivery_item_links q
		JOIN purchase_order_items oi ON oi.id = q.purchase_order_item_id
		JOIN delivery_items di ON di.id = q.delivery_item_id`+w.String()+`
		ORDER BY q.created_at, q.id`,
		w.args...)
	if err != nil {
		return nil, fmt.Errorf("list quantity links: %w", err)
	}
	defer rows.Close()

	links := []QuantityLink{}
	for rows.Next() {
		var l QuantityLink
		if err := rows.Scan(&l.ID, &l.DeliveryItemID, &l.OrderItemID, &l.Quantity, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan quantity link: %w", err)
		}
		links = append(links, l)
	}
	return links, rows.Err()
}

func (s *postgresStore) DeleteQuantityLink(ctx context.Context, id uuid.UUID) error {
	tag, err := s.q.Exec(ctx, "DELETE FROM delivery_item_links WHERE id = $1", id)
	if err != nil {
		return pgError(err, "quantity link", id)
	}
	if tag.RowsAffected() == 0 {
		return notFound("quantity link", id)
	}
	return nil
}
