package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"unit-recon/internal/core"
)

func rule(w io.Writer, ch string, n int) {
	fmt.Fprintln(w, strings.Repeat(ch, n))
}

func printStats(w io.Writer, s *core.LinkStats) {
	fmt.Fprintln(w)
	rule(w, "=", 62)
	fmt.Fprintf(w, "  %-58s\n", "LINK STATISTICS")
	rule(w, "=", 62)
	fmt.Fprintf(w, "  %-40s %19d\n", "PO units", s.TotalPOUnits)
	fmt.Fprintf(w, "  %-40s %19d\n", "Delivery units", s.TotalDeliveryUnits)
	fmt.Fprintf(w, "  %-40s %19d\n", "Linked", s.LinkedUnits)
	fmt.Fprintf(w, "  %-40s %19d\n", "Unlinked PO units", s.UnlinkedPOUnits)
	fmt.Fprintf(w, "  %-40s %19d\n", "Unlinked delivery units", s.UnlinkedDeliveryUnits)
	if s.LinkedElsewherePOUnits+s.LinkedElsewhereDeliveryUnits > 0 {
		fmt.Fprintf(w, "  %-40s %19d\n", "PO units linked to other deliveries", s.LinkedElsewherePOUnits)
		fmt.Fprintf(w, "  %-40s %19d\n", "Delivery units linked to other POs", s.LinkedElsewhereDeliveryUnits)
	}
	fmt.Fprintf(w, "  %-40s %19d\n", "Confirmed links", s.ConfirmedLinks)
	fmt.Fprintf(w, "  %-40s %19d\n", "Disputed links", s.DisputedLinks)
	rule(w, "-", 62)
	printStatusCounts(w, "PO", s.UnitsByStatus.POUnits)
	printStatusCounts(w, "Delivery", s.UnitsByStatus.DeliveryUnits)
	rule(w, "=", 62)
}

func printStatusCounts[S ~string](w io.Writer, side string, counts map[S]int) {
	keys := make([]S, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "  %-40s %19d\n", side+" "+string(k), counts[k])
	}
}

func printReport(w io.Writer, r *core.ReconciliationReport) {
	fmt.Fprintln(w)
	rule(w, "=", 72)
	fmt.Fprintf(w, "  %-68s\n", "RECONCILIATION REPORT")
	rule(w, "=", 72)
	fmt.Fprintf(w, "  Ordered    : %d\n", r.TotalOrdered)
	fmt.Fprintf(w, "  Delivered  : %d\n", r.TotalDelivered)
	fmt.Fprintf(w, "  Linked     : %d\n", r.TotalLinked)
	fmt.Fprintf(w, "  Completion : %s%%\n", r.CompletionPercentage.StringFixed(2))
	rule(w, "-", 72)

	if len(r.UnmatchedPOUnits) == 0 && len(r.UnmatchedDeliveryUnits) == 0 {
		fmt.Fprintln(w, "  All units matched.")
	} else {
		fmt.Fprintf(w, "  %-10s %-38s %6s  %s\n", "SIDE", "UNIT ID", "#", "STATUS")
		for _, u := range r.UnmatchedPOUnits {
			fmt.Fprintf(w, "  %-10s %-38s %6d  %s\n", "PO", u.ID, u.UnitNumber, u.Status)
		}
		for _, u := range r.UnmatchedDeliveryUnits {
			fmt.Fprintf(w, "  %-10s %-38s %6d  %s\n", "DELIVERY", u.ID, u.UnitNumber, u.Status)
		}
	}

	if len(r.MismatchedSerials) > 0 {
		rule(w, "-", 72)
		fmt.Fprintln(w, "  SERIAL MISMATCHES")
		for _, m := range r.MismatchedSerials {
			fmt.Fprintf(w, "  PO #%-4d %-20s  DELIVERY #%-4d %-20s  [%s]\n",
				m.OrderUnitNumber, m.POSerial, m.DeliveryUnitNumber, m.DeliverySerial, m.LinkStatus)
		}
	}
	rule(w, "=", 72)
}

func printAutoLink(w io.Writer, res *core.AutoLinkResult) {
	if res.Debounced {
		fmt.Fprintln(w, "Auto-link skipped: an identical request ran moments ago.")
		return
	}
	fmt.Fprintf(w, "Auto-link created %d link(s).\n", res.Created)
}

func printPairs(w io.Writer, pairs []core.LinkPair) {
	fmt.Fprintln(w)
	rule(w, "=", 72)
	fmt.Fprintf(w, "  %-20s %8s %8s  %s\n", "PRODUCT", "PO #", "DEL #", "PO UNIT -> DELIVERY UNIT")
	rule(w, "-", 72)
	if len(pairs) == 0 {
		fmt.Fprintln(w, "  No matching units found.")
	}
	for _, p := range pairs {
		fmt.Fprintf(w, "  %-20s %8d %8d  %s -> %s\n", p.Product, p.OrderUnitNumber, p.DeliveryUnitNumber, p.OrderUnitID, p.DeliveryUnitID)
	}
	rule(w, "=", 72)
}

func printValidation(w io.Writer, v *core.ValidationResult) {
	verdict := "VALID"
	if !v.Valid {
		verdict = "INVALID"
	}
	fmt.Fprintf(w, "\nRESULT:   %s\n", verdict)
	fmt.Fprintf(w, "PRODUCT:  %v   SERIAL: %v   BATCH: %v\n", v.ProductMatch, v.SerialMatch, v.BatchMatch)
	for _, e := range v.Errors {
		fmt.Fprintf(w, "  [ERROR] %s\n", e)
	}
	for _, m := range v.Warnings {
		fmt.Fprintf(w, "  [WARN]  %s\n", m)
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
