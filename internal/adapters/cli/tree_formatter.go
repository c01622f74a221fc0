package cli

import (
	"fmt"
	"strings"

	dependencyQueries "github.com/andrescamacho/warehouse-go/internal/application/dependency/queries"
)

// treeNode is one line of a rendered dependency tree
type treeNode struct {
	label    string
	blocking bool
	children []*treeNode
}

// TreeFormatter renders a material's dependents as a tree. Blocking branches
// are marked so the user sees why a delete would be refused.
type TreeFormatter struct {
	useColors bool
}

// NewTreeFormatter creates a new tree formatter
func NewTreeFormatter(useColors bool) *TreeFormatter {
	return &TreeFormatter{useColors: useColors}
}

// FormatDependencies renders the dependency listing of one material
func (f *TreeFormatter) FormatDependencies(deps *dependencyQueries.GetDependenciesResponse) string {
	if deps == nil {
		return "(no dependencies)"
	}

	root := &treeNode{label: "material " + deps.MaterialID}

	approved := &treeNode{label: fmt.Sprintf("approved estimates (%d)", len(deps.ApprovedEstimates)), blocking: len(deps.ApprovedEstimates) > 0}
	for _, ref := range deps.ApprovedEstimates {
		approved.children = append(approved.children, &treeNode{label: estimateLabel(ref), blocking: true})
	}

	other := &treeNode{label: fmt.Sprintf("other estimates (%d)", len(deps.OtherEstimates)), blocking: len(deps.OtherEstimates) > 0}
	for _, ref := range deps.OtherEstimates {
		other.children = append(other.children, &treeNode{label: estimateLabel(ref), blocking: true})
	}

	reservations := &treeNode{label: fmt.Sprintf("reservations (%d)", len(deps.Reservations)), blocking: len(deps.Reservations) > 0}
	for _, r := range deps.Reservations {
		reservations.children = append(reservations.children, &treeNode{
			label:    fmt.Sprintf("%s order=%s %s reserved=%s used=%s", r.ID, r.OrderID, r.Status, r.QuantityReserved, r.QuantityUsed),
			blocking: true,
		})
	}

	movements := &treeNode{label: fmt.Sprintf("recent movements (%d)", len(deps.RecentMovements))}
	for _, mv := range deps.RecentMovements {
		movements.children = append(movements.children, &treeNode{
			label: fmt.Sprintf("#%d %s %s %s @ %s", mv.Seq, mv.OccurredAt.Format("2006-01-02 15:04"), mv.Type, mv.Effect, mv.Location),
		})
	}

	root.children = []*treeNode{approved, other, reservations, movements}

	var builder strings.Builder
	f.formatNode(&builder, root, "", true, true)
	builder.WriteString(f.FormatSummary(deps))
	builder.WriteString("\n")
	return builder.String()
}

// FormatSummary is a one-line verdict on whether the material can be deleted
func (f *TreeFormatter) FormatSummary(deps *dependencyQueries.GetDependenciesResponse) string {
	if deps.CanDelete {
		return f.color("\033[32m") + "can be deleted" + f.colorReset()
	}
	return f.color("\033[31m") + fmt.Sprintf("blocked: %d estimate line items, %d reservations",
		len(deps.ApprovedEstimates)+len(deps.OtherEstimates), len(deps.Reservations)) + f.colorReset()
}

func estimateLabel(ref dependencyQueries.EstimateRefDTO) string {
	return fmt.Sprintf("%s (%s) line %s qty=%s", ref.EstimateNumber, ref.EstimateStatus, ref.LineItemID, ref.Quantity)
}

// formatNode recursively formats a node and its children
func (f *TreeFormatter) formatNode(builder *strings.Builder, node *treeNode, prefix string, isLast bool, isRoot bool) {
	var linePrefix string
	if isRoot {
		linePrefix = ""
	} else if isLast {
		linePrefix = prefix + "└── "
	} else {
		linePrefix = prefix + "├── "
	}

	marker := ""
	if node.blocking {
		marker = f.color("\033[33m") + " [blocks delete]" + f.colorReset()
	}
	builder.WriteString(fmt.Sprintf("%s%s%s\n", linePrefix, node.label, marker))

	var childPrefix string
	if isRoot {
		childPrefix = ""
	} else if isLast {
		childPrefix = prefix + "    "
	} else {
		childPrefix = prefix + "│   "
	}

	for i, child := range node.children {
		f.formatNode(builder, child, childPrefix, i == len(node.children)-1, false)
	}
}

func (f *TreeFormatter) color(code string) string {
	if !f.useColors {
		return ""
	}
	return code
}

// colorReset returns ANSI reset code
func (f *TreeFormatter) colorReset() string {
	return f.color("\033[0m")
}
