package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"flowboard/internal/domain"
)

// ============================================================================
// Null Type Conversion Helpers
// ============================================================================

// nullToString safely converts sql.NullString to string
func nullToString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// stringToNull safely converts string to sql.NullString
func stringToNull(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// floatToNull stores zero as NULL so absent dimensions stay absent
func floatToNull(f float64) sql.NullFloat64 {
	if f == 0 {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: f, Valid: true}
}

// dimensionsFromNull returns nil when neither component is set
func dimensionsFromNull(w, h sql.NullFloat64) *domain.Dimensions {
	if !w.Valid && !h.Valid {
		return nil
	}
	return &domain.Dimensions{Width: w.Float64, Height: h.Float64}
}

// dimensionsToNull splits optional dimensions into nullable columns
func dimensionsToNull(d *domain.Dimensions) (sql.NullFloat64, sql.NullFloat64) {
	if d == nil {
		return sql.NullFloat64{}, sql.NullFloat64{}
	}
	return floatToNull(d.Width), floatToNull(d.Height)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// ============================================================================
// JSON Marshaling Helpers
// ============================================================================

// unmarshalJSONField safely unmarshals JSON from nullable string into target
func unmarshalJSONField(ns sql.NullString, target interface{}) error {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	return json.Unmarshal([]byte(ns.String), target)
}

// marshalToNull marshals interface to nullable JSON string
// Returns empty NullString for nil or empty maps
func marshalToNull(v interface{}) (sql.NullString, error) {
	if v == nil {
		return sql.NullString{}, nil
	}

	// Handle empty maps - don't store "{}"
	if m, ok := v.(map[string]any); ok && len(m) == 0 {
		return sql.NullString{}, nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

// ============================================================================
// Node Row Scanner
// ============================================================================
//
// CRITICAL: Column order must match between nodeColumns, scanArgs() and
// nodeInsertArgs().

// nodeRow holds all columns from a node query for scanning
type nodeRow struct {
	ID             string
	Type           string
	Label          sql.NullString
	X              float64
	Y              float64
	StyleWidth     sql.NullFloat64
	StyleHeight    sql.NullFloat64
	MeasuredWidth  sql.NullFloat64
	MeasuredHeight sql.NullFloat64
	Selected       int64
	DataJSON       sql.NullString
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// scanArgs returns pointers to all fields for sql.Scan()
func (r *nodeRow) scanArgs() []interface{} {
	return []interface{}{
		&r.ID,             // 1
		&r.Type,           // 2
		&r.Label,          // 3
		&r.X,              // 4
		&r.Y,              // 5
		&r.StyleWidth,     // 6
		&r.StyleHeight,    // 7
		&r.MeasuredWidth,  // 8
		&r.MeasuredHeight, // 9
		&r.Selected,       // 10
		&r.DataJSON,       // 11
		&r.CreatedAt,      // 12
		&r.UpdatedAt,      // 13
	}
}

// toDomain converts the scanned row to a domain.Node
func (r *nodeRow) toDomain() (*domain.Node, error) {
	node := &domain.Node{
		ID:        r.ID,
		Type:      domain.NodeType(r.Type),
		Label:     nullToString(r.Label),
		Position:  domain.Position{X: r.X, Y: r.Y},
		Style:     dimensionsFromNull(r.StyleWidth, r.StyleHeight),
		Measured:  dimensionsFromNull(r.MeasuredWidth, r.MeasuredHeight),
		Selected:  r.Selected != 0,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}

	if err := unmarshalJSONField(r.DataJSON, &node.Data); err != nil {
		return nil, fmt.Errorf("unmarshal data: %w", err)
	}

	return node, nil
}

// nodeColumns is the SELECT column list for node queries
const nodeColumns = `id, type, label, pos_x, pos_y, style_width, style_height,
	measured_width, measured_height, selected, data, created_at, updated_at`

// nodeInsertArgs prepares arguments in nodeColumns order
func nodeInsertArgs(node *domain.Node) ([]interface{}, error) {
	dataJSON, err := marshalToNull(node.Data)
	if err != nil {
		return nil, fmt.Errorf("marshal data: %w", err)
	}

	styleW, styleH := dimensionsToNull(node.Style)
	measuredW, measuredH := dimensionsToNull(node.Measured)

	return []interface{}{
		node.ID,
		string(node.Type),
		stringToNull(node.Label),
		node.Position.X,
		node.Position.Y,
		styleW,
		styleH,
		measuredW,
		measuredH,
		boolToInt(node.Selected),
		dataJSON,
		node.CreatedAt,
		node.UpdatedAt,
	}, nil
}

// ============================================================================
// Edge Row Scanner
// ============================================================================

// edgeRow holds all columns from an edge query for scanning
type edgeRow struct {
	ID           string
	Source       string
	Target       string
	SourceHandle sql.NullString
	TargetHandle sql.NullString
}

// scanArgs returns pointers to all fields for sql.Scan()
func (r *edgeRow) scanArgs() []interface{} {
	return []interface{}{
		&r.ID,           // 1
		&r.Source,       // 2
		&r.Target,       // 3
		&r.SourceHandle, // 4
		&r.TargetHandle, // 5
	}
}

// toDomain converts the scanned row to a domain.Edge
func (r *edgeRow) toDomain() domain.Edge {
	return domain.Edge{
		ID:           r.ID,
		Source:       r.Source,
		Target:       r.Target,
		SourceHandle: nullToString(r.SourceHandle),
		TargetHandle: nullToString(r.TargetHandle),
	}
}

// edgeColumns is the SELECT column list for edge queries
const edgeColumns = `id, source, target, source_handle, target_handle`

// edgeInsertArgs prepares arguments in edgeColumns order
func edgeInsertArgs(edge *domain.Edge) []interface{} {
	return []interface{}{
		edge.ID,
		edge.Source,
		edge.Target,
		stringToNull(edge.SourceHandle),
		stringToNull(edge.TargetHandle),
	}
}
