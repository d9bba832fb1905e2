package layout

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strings"

	"flowboard/internal/domain"
)

// Policy names an arrangement.
type Policy string

const (
	PolicyHorizontal Policy = "horizontal"
	PolicyVertical   Policy = "vertical"
	PolicyGrid       Policy = "grid"
)

// Policies lists every arrangement policy in toolbar order.
var Policies = []Policy{PolicyHorizontal, PolicyVertical, PolicyGrid}

// Shortcut returns the keyboard shortcut bound to the policy.
func (p Policy) Shortcut() string {
	switch p {
	case PolicyHorizontal:
		return "H"
	case PolicyVertical:
		return "V"
	case PolicyGrid:
		return "G"
	}
	return ""
}

// ParsePolicy accepts a policy name or its keyboard shortcut, case-insensitive.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "horizontal", "h":
		return PolicyHorizontal, nil
	case "vertical", "v":
		return PolicyVertical, nil
	case "grid", "g":
		return PolicyGrid, nil
	}
	return "", fmt.Errorf("unknown arrangement %q (want horizontal, vertical or grid)", s)
}

// Arrange computes the batch for the given policy.
func (o Options) Arrange(p Policy, selection []domain.Node) ([]domain.PositionUpdate, error) {
	switch p {
	case PolicyHorizontal:
		return o.StackHorizontally(selection), nil
	case PolicyVertical:
		return o.StackVertically(selection), nil
	case PolicyGrid:
		return o.ArrangeAsGrid(selection), nil
	}
	return nil, fmt.Errorf("unknown arrangement %q", p)
}

// StackHorizontally lays the selection out left to right, in current x order,
// starting at the leftmost node's x and aligned to the topmost node's y.
func (o Options) StackHorizontally(selection []domain.Node) []domain.PositionUpdate {
	if len(selection) < MinSelection {
		return nil
	}

	sorted := slices.Clone(selection)
	slices.SortStableFunc(sorted, func(a, b domain.Node) int {
		return cmp.Compare(a.Position.X, b.Position.X)
	})

	alignY := minY(sorted)
	x := sorted[0].Position.X

	updates := make([]domain.PositionUpdate, 0, len(sorted))
	for _, n := range sorted {
		updates = append(updates, domain.NewPositionUpdate(n.ID, x, alignY))
		x += o.ResolveWidth(n) + o.Gap
	}
	return updates
}

// StackVertically lays the selection out top to bottom, in current y order,
// starting at the topmost node's y and aligned to the leftmost node's x.
func (o Options) StackVertically(selection []domain.Node) []domain.PositionUpdate {
	if len(selection) < MinSelection {
		return nil
	}

	sorted := slices.Clone(selection)
	slices.SortStableFunc(sorted, func(a, b domain.Node) int {
		return cmp.Compare(a.Position.Y, b.Position.Y)
	})

	alignX := minX(sorted)
	y := sorted[0].Position.Y

	updates := make([]domain.PositionUpdate, 0, len(sorted))
	for _, n := range sorted {
		updates = append(updates, domain.NewPositionUpdate(n.ID, alignX, y))
		y += o.ResolveHeight(n) + o.Gap
	}
	return updates
}

// GridColumns returns the column count for a near-square grid of count cells.
func GridColumns(count int) int {
	if count <= 0 {
		return 0
	}
	return int(math.Ceil(math.Sqrt(float64(count))))
}

// ArrangeAsGrid places the selection in a near-square grid anchored at the
// selection's top-left corner. Every cell is as large as the widest and
// tallest selected node, so cells never overlap.
//
// Nodes fill the grid in reading order: bands of RowBucket flow units from
// top to bottom, then x within a band.
func (o Options) ArrangeAsGrid(selection []domain.Node) []domain.PositionUpdate {
	if len(selection) < MinSelection {
		return nil
	}

	cols := GridColumns(len(selection))

	sorted := slices.Clone(selection)
	slices.SortStableFunc(sorted, func(a, b domain.Node) int {
		if c := cmp.Compare(o.rowBucket(a), o.rowBucket(b)); c != 0 {
			return c
		}
		return cmp.Compare(a.Position.X, b.Position.X)
	})

	startX, startY := minX(sorted), minY(sorted)

	var cellW, cellH float64
	for _, n := range sorted {
		cellW = math.Max(cellW, o.ResolveWidth(n))
		cellH = math.Max(cellH, o.ResolveHeight(n))
	}

	updates := make([]domain.PositionUpdate, 0, len(sorted))
	for i, n := range sorted {
		col := i % cols
		row := i / cols
		updates = append(updates, domain.NewPositionUpdate(n.ID,
			startX+float64(col)*(cellW+o.Gap),
			startY+float64(row)*(cellH+o.Gap),
		))
	}
	return updates
}

func (o Options) rowBucket(n domain.Node) float64 {
	return math.Floor(n.Position.Y / o.RowBucket)
}

func minX(nodes []domain.Node) float64 {
	m := math.Inf(1)
	for _, n := range nodes {
		m = math.Min(m, n.Position.X)
	}
	return m
}

func minY(nodes []domain.Node) float64 {
	m := math.Inf(1)
	for _, n := range nodes {
		m = math.Min(m, n.Position.Y)
	}
	return m
}
