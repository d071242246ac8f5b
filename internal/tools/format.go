package tools

import (
	"fmt"
	"strings"

	"pifko/internal/brewery"
	"pifko/internal/stock"
	"pifko/internal/storage"
	"pifko/models"
)

const dateLayout = "2006-01-02"

func ingredientRef(kind models.IngredientKind, id uint) string {
	return fmt.Sprintf("%s #%d", kind, id)
}

func quantity(q int64, unit string) string {
	if strings.TrimSpace(unit) == "" {
		return fmt.Sprintf("%d", q)
	}
	return fmt.Sprintf("%d %s", q, unit)
}

func FormatVariety(v models.IngredientVariety) string {
	if v.Country == "" {
		return fmt.Sprintf("%s: %s", ingredientRef(v.Kind, v.ID), v.Name)
	}
	return fmt.Sprintf("%s: %s (%s)", ingredientRef(v.Kind, v.ID), v.Name, v.Country)
}

func FormatVarieties(list []models.IngredientVariety) string {
	if len(list) == 0 {
		return "No ingredients found."
	}
	lines := make([]string, 0, len(list)+1)
	lines = append(lines, fmt.Sprintf("%d ingredient(s):", len(list)))
	for _, v := range list {
		lines = append(lines, "- "+FormatVariety(v))
	}
	return strings.Join(lines, "\n")
}

func FormatStockLevel(l stock.Level) string {
	text := fmt.Sprintf("%s: %s on hand", ingredientRef(l.Kind, l.IngredientID), quantity(l.Quantity, l.Unit))
	if l.MinStockLevel > 0 {
		text += fmt.Sprintf(" (minimum %s)", quantity(l.MinStockLevel, l.Unit))
		if l.Low() {
			text += ", LOW"
		}
	}
	return text
}

func FormatStockLevels(title string, list []stock.Level) string {
	if len(list) == 0 {
		return fmt.Sprintf("%s: none.", title)
	}
	lines := make([]string, 0, len(list)+1)
	lines = append(lines, fmt.Sprintf("%s (%d):", title, len(list)))
	for _, l := range list {
		lines = append(lines, "- "+FormatStockLevel(l))
	}
	return strings.Join(lines, "\n")
}

func FormatAllocation(a stock.Allocation, requester string) string {
	ref := ingredientRef(a.Kind, a.IngredientID)
	if !a.Success {
		return fmt.Sprintf("Allocation refused: %s requested for %s but only %s available. Nothing was taken.",
			quantity(a.Requested, a.Unit), ref, quantity(a.Remaining, a.Unit))
	}
	who := ""
	if requester != "" {
		who = " to " + requester
	}
	return fmt.Sprintf("Allocated %s of %s%s; %s remaining (allocation %s).",
		quantity(a.Allocated, a.Unit), ref, who, quantity(a.Remaining, a.Unit), a.ID)
}

func FormatRestock(l stock.Level, added int64) string {
	return fmt.Sprintf("Restocked %s with %s; now %s on hand.",
		ingredientRef(l.Kind, l.IngredientID), quantity(added, l.Unit), quantity(l.Quantity, l.Unit))
}

func FormatStockCheck(c storage.StockCheck) string {
	verdict := "sufficient"
	if !c.IsSufficient {
		verdict = "insufficient"
	}
	name := ingredientRef(c.Kind, c.IngredientID)
	if c.Name != "" {
		name = fmt.Sprintf("%s (%s)", name, c.Name)
	}
	return fmt.Sprintf("Stock for %s is %s: need %s, have %s.", name, verdict, quantity(c.Needed, c.Unit), quantity(c.Available, c.Unit))
}

func FormatLocalStockCheck(c brewery.LocalStockCheck) string {
	verdict := "sufficient"
	if !c.IsSufficient {
		verdict = "insufficient"
	}
	return fmt.Sprintf("Local stock for %s is %s: need %d, have %d.", ingredientRef(c.Kind, c.IngredientID), verdict, c.Needed, c.Available)
}

func FormatInventory(report storage.InventoryReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Inventory (%d ingredients):", report.Count())
	for _, kind := range models.IngredientKinds {
		items := report[kind.Plural()]
		fmt.Fprintf(&b, "\n%s:", strings.ToUpper(kind.Plural()[:1])+kind.Plural()[1:])
		if len(items) == 0 {
			b.WriteString(" none")
			continue
		}
		for _, item := range items {
			fmt.Fprintf(&b, "\n- #%d %s (%s): %s", item.ID, item.Name, item.Country, quantity(item.AvailableQuantity, item.Unit))
		}
	}
	return b.String()
}

func FormatMovements(list []models.StockMovement) string {
	if len(list) == 0 {
		return "No stock movements recorded."
	}
	lines := make([]string, 0, len(list)+1)
	lines = append(lines, fmt.Sprintf("%d movement(s):", len(list)))
	for _, m := range list {
		line := fmt.Sprintf("- %s %s %+d (%d -> %d)", m.CreatedAt.Format("2006-01-02 15:04:05"), ingredientRef(m.Kind, m.IngredientID), m.Change, m.QuantityBefore, m.QuantityAfter)
		line += " " + string(m.MovementType)
		if m.Requester != "" {
			line += " by " + m.Requester
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func FormatRecipe(r models.Recipe) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Recipe #%d %s: fermentation %d days, aging %d days", r.ID, r.Name, r.FermentationTime, r.AgingTime)
	if len(r.Lines) == 0 {
		b.WriteString(", no ingredient lines.")
		return b.String()
	}
	b.WriteString(". Per hectoliter:")
	for _, line := range r.Lines {
		fmt.Fprintf(&b, "\n- %s: %d", ingredientRef(line.Kind, line.IngredientID), line.QuantityPerUnit)
	}
	return b.String()
}

func FormatRecipes(list []models.Recipe) string {
	if len(list) == 0 {
		return "No recipes found."
	}
	parts := make([]string, 0, len(list))
	for _, r := range list {
		parts = append(parts, FormatRecipe(r))
	}
	return strings.Join(parts, "\n\n")
}

func FormatRecipeLine(l models.RecipeIngredientLine) string {
	return fmt.Sprintf("Recipe #%d now needs %d of %s per hectoliter.", l.RecipeID, l.QuantityPerUnit, ingredientRef(l.Kind, l.IngredientID))
}

func FormatBeer(b models.Beer) string {
	text := fmt.Sprintf("Beer #%d %s (%s), recipe #%d", b.ID, b.Name, b.Style, b.RecipeID)
	if b.Recipe != nil {
		text += " " + b.Recipe.Name
	}
	return text
}

func FormatBeers(list []models.Beer) string {
	if len(list) == 0 {
		return "No beers found."
	}
	lines := make([]string, 0, len(list)+1)
	lines = append(lines, fmt.Sprintf("%d beer(s):", len(list)))
	for _, b := range list {
		lines = append(lines, "- "+FormatBeer(b))
	}
	return strings.Join(lines, "\n")
}

func FormatFeasibility(f brewery.Feasibility) string {
	head := fmt.Sprintf("%d hl of %s (beer #%d)", f.QuantityHectoliters, f.BeerName, f.BeerID)
	if f.Feasible {
		return fmt.Sprintf("Production of %s is feasible with current local stock.", head)
	}
	lines := []string{fmt.Sprintf("Production of %s is NOT feasible. Shortfalls:", head)}
	lines = append(lines, formatShortfalls(f.Shortfalls)...)
	return strings.Join(lines, "\n")
}

func formatShortfalls(list []stock.Shortfall) []string {
	lines := make([]string, 0, len(list))
	for _, s := range list {
		lines = append(lines, fmt.Sprintf("- %s: required %d, available %d (missing %d)", ingredientRef(s.Kind, s.IngredientID), s.Required, s.Available, s.Required-s.Available))
	}
	return lines
}

// FormatShortfallError describes a refused production start.
func FormatShortfallError(e *stock.ShortfallError) string {
	lines := []string{"Production refused, local stock is short:"}
	lines = append(lines, formatShortfalls(e.Shortfalls)...)
	return strings.Join(lines, "\n")
}

func FormatProductionRun(r models.ProductionRun) string {
	return fmt.Sprintf("Production run #%d %s: %d hl of beer #%d.", r.ID, r.Status, r.QuantityHectoliters, r.BeerID)
}

func FormatProductionRuns(list []models.ProductionRun) string {
	if len(list) == 0 {
		return "No production runs yet."
	}
	lines := make([]string, 0, len(list))
	for _, r := range list {
		lines = append(lines, "- "+FormatProductionRun(r))
	}
	return strings.Join(lines, "\n")
}

func FormatCustomer(c models.Customer) string {
	return fmt.Sprintf("Customer #%d %s", c.ID, c.Name)
}

func FormatCustomers(list []models.Customer) string {
	if len(list) == 0 {
		return "No customers found."
	}
	lines := make([]string, 0, len(list)+1)
	lines = append(lines, fmt.Sprintf("%d customer(s):", len(list)))
	for _, c := range list {
		lines = append(lines, "- "+FormatCustomer(c))
	}
	return strings.Join(lines, "\n")
}

func FormatInvoice(i models.Invoice) string {
	text := fmt.Sprintf("Invoice #%d for order #%d, %s, ordered %s", i.ID, i.OrderID, i.Status, i.OrderDate.Format(dateLayout))
	if i.ShipDate != nil {
		text += ", shipped " + i.ShipDate.Format(dateLayout)
	}
	if i.Customer != nil {
		text += ", customer " + i.Customer.Name
	} else {
		text += fmt.Sprintf(", customer #%d", i.CustomerID)
	}
	return text
}

func FormatInvoices(list []models.Invoice) string {
	if len(list) == 0 {
		return "No invoices found."
	}
	lines := make([]string, 0, len(list)+1)
	lines = append(lines, fmt.Sprintf("%d invoice(s):", len(list)))
	for _, i := range list {
		lines = append(lines, "- "+FormatInvoice(i))
	}
	return strings.Join(lines, "\n")
}

func FormatOrder(o models.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Order #%d %s, %d hl total", o.ID, o.Status, o.QuantitySum)
	for _, line := range o.Lines {
		fmt.Fprintf(&b, "\n- beer #%d: %d hl", line.BeerID, line.QuantityHecto)
	}
	if o.Invoice != nil {
		b.WriteString("\n" + FormatInvoice(*o.Invoice))
	}
	return b.String()
}

func FormatOrders(list []models.Order) string {
	if len(list) == 0 {
		return "No orders found."
	}
	parts := make([]string, 0, len(list))
	for _, o := range list {
		parts = append(parts, FormatOrder(o))
	}
	return strings.Join(parts, "\n\n")
}

// FormatDeleted confirms a removal.
func FormatDeleted(what string) string {
	return fmt.Sprintf("Deleted %s.", what)
}
