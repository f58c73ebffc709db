package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"storefront/internal/domain"
	"storefront/internal/storefront"
)

func printProducts(w io.Writer, b *storefront.CatalogBrowser, list []domain.Product) {
	if len(list) == 0 {
		fmt.Fprintln(w, "No products match.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tPRICE\tRATING")
	for _, p := range list {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s (%d)\n", p.ID, p.Name, b.CategoryName(p.CategoryID), domain.FormatRupiah(p.Price), storefront.RenderStars(p.Stars), p.RatingCount)
	}
	tw.Flush()
}

func printProduct(w io.Writer, b *storefront.CatalogBrowser, p domain.Product, imageURL string) {
	fmt.Fprintf(w, "#%d %s\n", p.ID, p.Name)
	fmt.Fprintf(w, "  Price:    %s\n", domain.FormatRupiah(p.Price))
	fmt.Fprintf(w, "  Category: %s\n", b.CategoryName(p.CategoryID))
	fmt.Fprintf(w, "  Rating:   %s (%d)\n", storefront.RenderStars(p.Stars), p.RatingCount)
	if imageURL != "" {
		fmt.Fprintf(w, "  Image:    %s\n", imageURL)
	}
}

func printCart(w io.Writer, items []domain.CartItem, t domain.Totals) {
	if len(items) == 0 {
		fmt.Fprintln(w, "Your cart is empty.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "LINE\tPRODUCT\tQTY\tPRICE\tTOTAL\t")
	for _, it := range items {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\t\n", it.ID, it.Product.Name, it.Quantity, domain.FormatRupiah(it.Product.Price), domain.FormatRupiah(it.LineTotal()))
	}
	tw.Flush()

	fmt.Fprintf(w, "Subtotal: %s\n", domain.FormatRupiah(t.Subtotal))
	if t.Shipping > 0 {
		fmt.Fprintf(w, "Shipping: %s\n", domain.FormatRupiah(t.Shipping))
	}
	if t.Tax > 0 {
		fmt.Fprintf(w, "Tax:      %s\n", domain.FormatRupiah(t.Tax))
	}
	if t.Discount > 0 {
		fmt.Fprintf(w, "Discount: -%s\n", domain.FormatRupiah(t.Discount))
	}
	fmt.Fprintf(w, "Total:    %s\n", domain.FormatRupiah(t.Total))
}

func printOrders(w io.Writer, orders []domain.Order) {
	if len(orders) == 0 {
		fmt.Fprintln(w, "No orders yet.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tCUSTOMER\tITEMS\tTOTAL\tSTATUS")
	for _, o := range orders {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\t%s [%s]\n", o.ID, o.CreatedAt.Format("2006-01-02 15:04"), o.CustomerName, len(o.Items), domain.FormatRupiah(o.Total), o.Status.Label(), o.Status.Badge())
	}
	tw.Flush()
}

func printStats(w io.Writer, s storefront.Stats, days []storefront.DaySummary) {
	fmt.Fprintf(w, "Orders:    %d\n", s.TotalOrders)
	fmt.Fprintf(w, "Revenue:   %s\n", domain.FormatRupiah(s.TotalRevenue))
	fmt.Fprintf(w, "Pending:   %d\n", s.PendingOrders)
	fmt.Fprintf(w, "Delivered: %d\n", s.DeliveredOrders)
	if len(days) == 0 {
		return
	}
	fmt.Fprintln(w)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DAY\tORDERS\tREVENUE")
	for _, d := range days {
		fmt.Fprintf(tw, "%s\t%d\t%s\n", d.Day, d.Orders, domain.FormatRupiah(d.Revenue))
	}
	tw.Flush()
}
