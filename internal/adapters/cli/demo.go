package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"unit-recon/internal/app"
)

func (r *runner) demoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Seed a sample purchase order and delivery, auto-link them, and print the report",
		Long: `Creates a purchase order for 3 toner cartridges and 2 drum units and a delivery of
3 toners and 1 drum, records serial numbers, runs the auto-matcher, and prints the
resulting statistics and reconciliation report. One linked pair is given differing
serial numbers afterwards so the report shows a mismatch.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := r.service(cmd.Context())
			if err != nil {
				return err
			}
			return runDemo(cmd.Context(), svc, cmd.OutOrStdout())
		},
	}
}

func runDemo(ctx context.Context, svc app.ApplicationService, out io.Writer) error {
	suffix := uuid.NewString()[:8]
	po, err := svc.CreatePurchaseOrder(ctx, app.CreatePurchaseOrderRequest{PONumber: "PO-DEMO-" + suffix, Supplier: "Acme Office Supplies"})
	if err != nil {
		return err
	}
	d, err := svc.CreateDelivery(ctx, app.CreateDeliveryRequest{DeliveryNumber: "DN-DEMO-" + suffix, Supplier: "Acme Office Supplies"})
	if err != nil {
		return err
	}

	toners, err := svc.AddOrderItem(ctx, po.PurchaseOrder.ID, app.AddLineItemRequest{Model: "TN-2420", Quantity: decimal.NewFromInt(3)})
	if err != nil {
		return err
	}
	if _, err := svc.AddOrderItem(ctx, po.PurchaseOrder.ID, app.AddLineItemRequest{Model: "DR-2400", Quantity: decimal.NewFromInt(2)}); err != nil {
		return err
	}
	delivered, err := svc.AddDeliveryItem(ctx, d.Delivery.ID, app.AddLineItemRequest{Model: "TN-2420", Quantity: decimal.NewFromInt(3)})
	if err != nil {
		return err
	}
	if _, err := svc.AddDeliveryItem(ctx, d.Delivery.ID, app.AddLineItemRequest{Model: "DR-2400", Quantity: decimal.NewFromInt(1)}); err != nil {
		return err
	}

	fmt.Fprintf(out, "Purchase order %s (%s)\n", po.PurchaseOrder.PONumber, po.PurchaseOrder.ID)
	fmt.Fprintf(out, "Delivery       %s (%s)\n", d.Delivery.DeliveryNumber, d.Delivery.ID)

	res, err := svc.AutoLink(ctx, app.AutoLinkRequest{PurchaseOrderID: po.PurchaseOrder.ID, DeliveryID: d.Delivery.ID})
	if err != nil {
		return err
	}
	printAutoLink(out, res)

	// serials recorded after linking disagree on the first toner pair
	for i, serial := range []string{"TN-0001", "TN-0002"} {
		s := serial
		if _, err := svc.UpdateOrderUnit(ctx, toners.Units[i].ID, app.UpdateOrderUnitRequest{SerialNumber: &s}); err != nil {
			return err
		}
	}
	for i, serial := range []string{"TN-0009", "TN-0002"} {
		s := serial
		if _, err := svc.UpdateDeliveryUnit(ctx, delivered.Units[i].ID, app.UpdateDeliveryUnitRequest{SerialNumber: &s}); err != nil {
			return err
		}
	}

	scope := app.Scope{PurchaseOrderID: &po.PurchaseOrder.ID, DeliveryID: &d.Delivery.ID}
	stats, err := svc.GetStats(ctx, scope)
	if err != nil {
		return err
	}
	printStats(out, stats)

	report, err := svc.Reconcile(ctx, scope)
	if err != nil {
		return err
	}
	printReport(out, report)
	return nil
}
