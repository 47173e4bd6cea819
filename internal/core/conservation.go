package core

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CheckAllocation verifies that adding requested to allocated stays within capacity.
// It is the single quantity-conservation rule shared by unit linking and legacy
// quantity linking.
func CheckAllocation(capacity, allocated, requested decimal.Decimal) error {
	if requested.IsNegative() || requested.IsZero() {
		return fmt.Errorf("requested quantity %s must be positive", requested.String())
	}
	if after := allocated.Add(requested); after.GreaterThan(capacity) {
		return fmt.Errorf("would allocate %s of %s (already allocated %s)",
			after.String(), capacity.String(), allocated.String())
	}
	return nil
}

// CheckUnitConservation verifies the 1:1 link invariants over a set of links:
// no order unit or delivery unit appears twice, and the number of links does not
// exceed min(orderUnits, deliveryUnits).
func CheckUnitConservation(orderUnits, deliveryUnits int, links []UnitLink) error {
	seenOrder := make(map[uuid.UUID]uuid.UUID, len(links))
	seenDelivery := make(map[uuid.UUID]uuid.UUID, len(links))
	for _, l := range links {
		if prev, ok := seenOrder[l.OrderUnitID]; ok {
			return fmt.Errorf("po unit %s is linked twice (links %s, %s)", l.OrderUnitID, prev, l.ID)
		}
		if prev, ok := seenDelivery[l.DeliveryUnitID]; ok {
			return fmt.Errorf("delivery unit %s is linked twice (links %s, %s)", l.DeliveryUnitID, prev, l.ID)
		}
		seenOrder[l.OrderUnitID] = l.ID
		seenDelivery[l.DeliveryUnitID] = l.ID
	}
	if limit := min(orderUnits, deliveryUnits); len(links) > limit {
		return fmt.Errorf("%d links exceed the %d units available on the smaller side", len(links), limit)
	}
	return nil
}

// unitCount converts a whole-number line quantity into a unit count.
func unitCount(q decimal.Decimal) (int, error) {
	if !q.IsPositive() || !q.IsInteger() {
		return 0, invalidInput("quantity %s must be a positive whole number to track units", q.String())
	}
	if q.GreaterThan(decimal.NewFromInt(maxUnitsPerItem)) {
		return 0, invalidInput("quantity %s exceeds the %d units tracked per line item", q.String(), maxUnitsPerItem)
	}
	return int(q.IntPart()), nil
}

const maxUnitsPerItem = 10000
