package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/nexussign/supply/pkg/core/purchase"
	"github.com/nexussign/supply/pkg/core/requirement"
	"github.com/nexussign/supply/pkg/core/workbench"
	"github.com/nexussign/supply/pkg/repo/model"
)

var (
	colorSuccess = lipgloss.Color("#10B981")
	colorWarning = lipgloss.Color("#F59E0B")
	colorError   = lipgloss.Color("#EF4444")
	colorInfo    = lipgloss.Color("#3B82F6")
	colorMuted   = lipgloss.Color("#6B7280")
	colorPrimary = lipgloss.Color("#7C3AED")

	titleStyle  = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(colorMuted)
	headerStyle = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

func statusStyle(s requirement.ComputedStatus) lipgloss.Style {
	switch s {
	case requirement.ComputedFulfilled:
		return lipgloss.NewStyle().Foreground(colorSuccess)
	case requirement.ComputedBackordered, requirement.ComputedPartialReceived:
		return lipgloss.NewStyle().Foreground(colorWarning)
	case requirement.ComputedCancelled:
		return mutedStyle
	case requirement.ComputedOrderedPickup, requirement.ComputedOrderedShipping, requirement.ComputedToBePicked:
		return lipgloss.NewStyle().Foreground(colorInfo)
	default:
		return lipgloss.NewStyle()
	}
}

func product(r *model.MaterialRequirement) string {
	switch {
	case r.VinylProductID != nil:
		return fmt.Sprintf("vinyl #%d", *r.VinylProductID)
	case r.SupplierProductID != nil:
		return fmt.Sprintf("product #%d", *r.SupplierProductID)
	case r.CustomProductType != nil:
		return *r.CustomProductType
	}
	return "-"
}

func origin(r *model.MaterialRequirement) string {
	if r.OrderID != nil {
		return fmt.Sprintf("order %d", *r.OrderID)
	}
	return "stock"
}

func supplier(id *int64) string {
	if id == nil {
		return "-"
	}
	switch *id {
	case model.SupplierInStock:
		return "in stock"
	case model.SupplierInHouse:
		return "in house"
	case model.SupplierCustomerProvided:
		return "customer"
	}
	return fmt.Sprintf("#%d", *id)
}

func heldUnit(r *model.MaterialRequirement) string {
	switch {
	case r.HeldVinylID != nil:
		return fmt.Sprintf("vinyl %d", *r.HeldVinylID)
	case r.HeldSupplierProductID != nil:
		return fmt.Sprintf("product %d", *r.HeldSupplierProductID)
	}
	return ""
}

func orEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func requirementTable(views []*requirement.View) *table.Table {
	rows := make([][]string, 0, len(views))
	statuses := make([]requirement.ComputedStatus, 0, len(views))
	for _, v := range views {
		rows = append(rows, []string{
			fmt.Sprintf("%d", v.ID),
			origin(v.MaterialRequirement),
			product(v.MaterialRequirement),
			strings.TrimSpace(v.QuantityOrdered.String() + " " + v.Unit),
			supplier(v.SupplierID),
			string(v.ComputedStatus),
			heldUnit(v.MaterialRequirement),
			orEmpty(v.SupplierOrderNumber),
		})
		statuses = append(statuses, v.ComputedStatus)
	}
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(mutedStyle).
		Headers("ID", "ORIGIN", "PRODUCT", "QTY", "SUPPLIER", "STATUS", "HOLD", "PO").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == 5 && row >= 0 && row < len(statuses) {
				return statusStyle(statuses[row]).Padding(0, 1)
			}
			return cellStyle
		})
}

func renderRequirements(views []*requirement.View, total int64) string {
	if len(views) == 0 {
		return mutedStyle.Render("no requirements match")
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Material requirements"),
		requirementTable(views).Render(),
		mutedStyle.Render(fmt.Sprintf("%d of %d shown", len(views), total)),
	)
}

func renderDrafts(groups []*purchase.DraftGroup) string {
	if len(groups) == 0 {
		return mutedStyle.Render("no draft purchase orders")
	}
	parts := make([]string, 0, len(groups)*2)
	for _, g := range groups {
		head := titleStyle.Render(g.Supplier.Name)
		if email := g.PrimaryEmail(); email != "" {
			head += " " + mutedStyle.Render("<"+email+">")
		}
		parts = append(parts, head, requirementTable(g.Requirements).Render())
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func renderNotice(n workbench.Notice) string {
	style := lipgloss.NewStyle().Foreground(colorInfo)
	switch n.Level {
	case workbench.LevelWarn:
		style = lipgloss.NewStyle().Foreground(colorWarning).Bold(true)
	case workbench.LevelError:
		style = lipgloss.NewStyle().Foreground(colorError).Bold(true)
	}
	label := n.Op
	if n.RequirementID > 0 {
		label = fmt.Sprintf("%s #%d", n.Op, n.RequirementID)
	}
	return style.Render(strings.ToUpper(string(n.Level))) + " " + label + ": " + n.Message
}
