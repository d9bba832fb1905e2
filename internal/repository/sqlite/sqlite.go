package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"flowboard/internal/domain"
	apperrors "flowboard/internal/errors"

	_ "modernc.org/sqlite"
)

// DefaultWorkflowName is used when no workflow has been imported yet
const DefaultWorkflowName = "untitled"

// Repository implements repository.Repository using SQLite
type Repository struct {
	db  *sql.DB
	now func() time.Time
}

// New creates a new SQLite repository
func New(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection keeps :memory: databases alive and serialises writers
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", p, err)
		}
	}

	repo := &Repository{db: db, now: func() time.Time { return time.Now().UTC() }}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return repo, nil
}

func (r *Repository) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS nodes (
		id TEXT PRIMARY KEY,
		type TEXT NOT NULL,
		label TEXT,
		pos_x REAL NOT NULL DEFAULT 0,
		pos_y REAL NOT NULL DEFAULT 0,
		style_width REAL,
		style_height REAL,
		measured_width REAL,
		measured_height REAL,
		selected INTEGER NOT NULL DEFAULT 0,
		data JSON,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS edges (
		id TEXT PRIMARY KEY,
		source TEXT NOT NULL,
		target TEXT NOT NULL,
		source_handle TEXT,
		target_handle TEXT,
		FOREIGN KEY (source) REFERENCES nodes(id) ON DELETE CASCADE,
		FOREIGN KEY (target) REFERENCES nodes(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS viewport (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		zoom REAL NOT NULL DEFAULT 1,
		x REAL NOT NULL DEFAULT 0,
		y REAL NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS metadata (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_edges_source ON edges(source);
	CREATE INDEX IF NOT EXISTS idx_edges_target ON edges(target);
	CREATE INDEX IF NOT EXISTS idx_nodes_selected ON nodes(selected);
	`

	_, err := r.db.Exec(schema)
	return err
}

// queryer is satisfied by both *sql.DB and *sql.Tx
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// ============================================================================
// Nodes
// ============================================================================

// ListNodes returns every node in insertion order
func (r *Repository) ListNodes(ctx context.Context) ([]domain.Node, error) {
	return listNodes(ctx, r.db)
}

func listNodes(ctx context.Context, q queryer) ([]domain.Node, error) {
	rows, err := q.QueryContext(ctx, `SELECT `+nodeColumns+` FROM nodes ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to query nodes: %w", err)
	}
	defer rows.Close()

	nodes := make([]domain.Node, 0)
	for rows.Next() {
		var row nodeRow
		if err := rows.Scan(row.scanArgs()...); err != nil {
			return nil, fmt.Errorf("failed to scan node: %w", err)
		}
		node, err := row.toDomain()
		if err != nil {
			return nil, fmt.Errorf("failed to decode node %s: %w", row.ID, err)
		}
		nodes = append(nodes, *node)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate nodes: %w", err)
	}

	return nodes, nil
}

// GetNode retrieves a single node by ID; returns nil when it does not exist
func (r *Repository) GetNode(ctx context.Context, id string) (*domain.Node, error) {
	var row nodeRow
	err := r.db.QueryRowContext(ctx, `SELECT `+nodeColumns+` FROM nodes WHERE id = ?`, id).Scan(row.scanArgs()...)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query node: %w", err)
	}
	return row.toDomain()
}

// UpsertNode inserts or updates a node. An existing node keeps its place in
// insertion order and its creation time.
func (r *Repository) UpsertNode(ctx context.Context, node *domain.Node) error {
	now := r.now()
	if node.CreatedAt.IsZero() {
		node.CreatedAt = now
	}
	node.UpdatedAt = now

	args, err := nodeInsertArgs(node)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO nodes (`+nodeColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			type = excluded.type,
			label = excluded.label,
			pos_x = excluded.pos_x,
			pos_y = excluded.pos_y,
			style_width = excluded.style_width,
			style_height = excluded.style_height,
			measured_width = excluded.measured_width,
			measured_height = excluded.measured_height,
			selected = excluded.selected,
			data = excluded.data,
			updated_at = excluded.updated_at
	`, args...)
	if err != nil {
		return fmt.Errorf("failed to upsert node: %w", err)
	}
	return nil
}

// DeleteNode removes a node and, by cascade, its edges
func (r *Repository) DeleteNode(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM nodes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete node: %w", err)
	}
	return requireAffected(res, "node", id)
}

// SetSelection makes exactly the given nodes selected
func (r *Repository) SetSelection(ctx context.Context, ids []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `UPDATE nodes SET selected = 0 WHERE selected != 0`); err != nil {
		return fmt.Errorf("failed to clear selection: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `UPDATE nodes SET selected = 1 WHERE id = ?`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, id := range ids {
		res, err := stmt.ExecContext(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to select %s: %w", id, err)
		}
		if err := requireAffected(res, "node", id); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// SetMeasured records the dimensions reported by the renderer
func (r *Repository) SetMeasured(ctx context.Context, id string, dims domain.Dimensions) error {
	w, h := dimensionsToNull(&dims)
	res, err := r.db.ExecContext(ctx, `
		UPDATE nodes SET measured_width = ?, measured_height = ?, updated_at = ?
		WHERE id = ?
	`, w, h, r.now(), id)
	if err != nil {
		return fmt.Errorf("failed to update measured size: %w", err)
	}
	return requireAffected(res, "node", id)
}

// ApplyPositionChanges moves nodes in batch order inside one transaction.
// An unknown node ID rolls back the whole batch. Selection is left untouched.
func (r *Repository) ApplyPositionChanges(ctx context.Context, batch []domain.PositionUpdate) error {
	if len(batch) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		UPDATE nodes SET pos_x = ?, pos_y = ?, updated_at = ?
		WHERE id = ?
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	now := r.now()
	for _, u := range batch {
		res, err := stmt.ExecContext(ctx, u.Position.X, u.Position.Y, now, u.NodeID)
		if err != nil {
			return fmt.Errorf("failed to update position for %s: %w", u.NodeID, err)
		}
		if err := requireAffected(res, "node", u.NodeID); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ============================================================================
// Edges
// ============================================================================

// ListEdges returns every edge in insertion order
func (r *Repository) ListEdges(ctx context.Context) ([]domain.Edge, error) {
	return listEdges(ctx, r.db)
}

func listEdges(ctx context.Context, q queryer) ([]domain.Edge, error) {
	rows, err := q.QueryContext(ctx, `SELECT `+edgeColumns+` FROM edges ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to query edges: %w", err)
	}
	defer rows.Close()

	edges := make([]domain.Edge, 0)
	for rows.Next() {
		var row edgeRow
		if err := rows.Scan(row.scanArgs()...); err != nil {
			return nil, fmt.Errorf("failed to scan edge: %w", err)
		}
		edges = append(edges, row.toDomain())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate edges: %w", err)
	}
	return edges, nil
}

// UpsertEdge inserts or updates an edge, deriving its ID when empty
func (r *Repository) UpsertEdge(ctx context.Context, edge *domain.Edge) error {
	if edge.ID == "" {
		edge.ID = edge.GenerateID()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO edges (`+edgeColumns+`)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			source = excluded.source,
			target = excluded.target,
			source_handle = excluded.source_handle,
			target_handle = excluded.target_handle
	`, edgeInsertArgs(edge)...)
	if err != nil {
		if isForeignKeyError(err) {
			return apperrors.Wrap(apperrors.ErrCodeNotFound, err, "edge %s references a missing node", edge.ID)
		}
		return fmt.Errorf("failed to upsert edge: %w", err)
	}
	return nil
}

// DeleteEdge removes an edge
func (r *Repository) DeleteEdge(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM edges WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete edge: %w", err)
	}
	return requireAffected(res, "edge", id)
}

// ============================================================================
// Viewport
// ============================================================================

// CurrentViewport returns the stored viewport, or the default when none is saved
func (r *Repository) CurrentViewport(ctx context.Context) (domain.Viewport, error) {
	return currentViewport(ctx, r.db)
}

func currentViewport(ctx context.Context, q queryer) (domain.Viewport, error) {
	var vp domain.Viewport
	err := q.QueryRowContext(ctx, `SELECT zoom, x, y FROM viewport WHERE id = 1`).Scan(&vp.Zoom, &vp.X, &vp.Y)
	if err == sql.ErrNoRows {
		return domain.DefaultViewport(), nil
	}
	if err != nil {
		return domain.Viewport{}, fmt.Errorf("failed to query viewport: %w", err)
	}
	return vp, nil
}

// SaveViewport stores the viewport
func (r *Repository) SaveViewport(ctx context.Context, vp domain.Viewport) error {
	return saveViewport(ctx, r.db, vp)
}

func saveViewport(ctx context.Context, q queryer, vp domain.Viewport) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO viewport (id, zoom, x, y) VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET zoom = excluded.zoom, x = excluded.x, y = excluded.y
	`, vp.Zoom, vp.X, vp.Y)
	if err != nil {
		return fmt.Errorf("failed to save viewport: %w", err)
	}
	return nil
}

// ============================================================================
// Bulk Operations
// ============================================================================

// ExportCanvas returns the whole canvas as a workflow
func (r *Repository) ExportCanvas(ctx context.Context) (*domain.Workflow, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var name string
	err = tx.QueryRowContext(ctx, `SELECT value FROM metadata WHERE key = 'workflow_name'`).Scan(&name)
	if err == sql.ErrNoRows {
		name = DefaultWorkflowName
	} else if err != nil {
		return nil, fmt.Errorf("failed to query workflow name: %w", err)
	}

	wf := domain.NewWorkflow(name)
	if wf.Nodes, err = listNodes(ctx, tx); err != nil {
		return nil, err
	}
	if wf.Edges, err = listEdges(ctx, tx); err != nil {
		return nil, err
	}
	if wf.Viewport, err = currentViewport(ctx, tx); err != nil {
		return nil, err
	}

	return wf, nil
}

// ReplaceCanvas replaces all canvas data with the provided workflow
func (r *Repository) ReplaceCanvas(ctx context.Context, wf *domain.Workflow) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := clearCanvas(ctx, tx); err != nil {
		return err
	}

	nodeStmt, err := tx.PrepareContext(ctx, `INSERT INTO nodes (`+nodeColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare node statement: %w", err)
	}
	defer nodeStmt.Close()

	now := r.now()
	for i := range wf.Nodes {
		node := wf.Nodes[i]
		if node.CreatedAt.IsZero() {
			node.CreatedAt = now
		}
		if node.UpdatedAt.IsZero() {
			node.UpdatedAt = now
		}
		args, err := nodeInsertArgs(&node)
		if err != nil {
			return fmt.Errorf("node %s: %w", node.ID, err)
		}
		if _, err := nodeStmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("failed to insert node %s: %w", node.ID, err)
		}
	}

	edgeStmt, err := tx.PrepareContext(ctx, `INSERT INTO edges (`+edgeColumns+`) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare edge statement: %w", err)
	}
	defer edgeStmt.Close()

	for i := range wf.Edges {
		edge := wf.Edges[i]
		if edge.ID == "" {
			edge.ID = edge.GenerateID()
		}
		if _, err := edgeStmt.ExecContext(ctx, edgeInsertArgs(&edge)...); err != nil {
			if isForeignKeyError(err) {
				return apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "edge %s references a missing node", edge.ID)
			}
			return fmt.Errorf("failed to insert edge %s: %w", edge.ID, err)
		}
	}

	if err := saveViewport(ctx, tx, wf.Viewport.Normalize()); err != nil {
		return err
	}

	name := wf.Name
	if name == "" {
		name = DefaultWorkflowName
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO metadata (key, value, updated_at) VALUES ('workflow_name', ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, name); err != nil {
		return fmt.Errorf("failed to store workflow name: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO metadata (key, value, updated_at) VALUES ('last_import', ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, now.Format(time.RFC3339)); err != nil {
		return fmt.Errorf("failed to store import timestamp: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ClearCanvas removes all nodes, edges and the saved viewport
func (r *Repository) ClearCanvas(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := clearCanvas(ctx, tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func clearCanvas(ctx context.Context, q queryer) error {
	// Order matters due to foreign keys
	for _, table := range []string{"edges", "nodes", "viewport"} {
		if _, err := q.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	return nil
}

// Close closes the database connection
func (r *Repository) Close() error {
	return r.db.Close()
}

// requireAffected turns a zero-row write into a not-found error
func requireAffected(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return apperrors.New(apperrors.ErrCodeNotFound, "%s not found: %s", kind, id)
	}
	return nil
}

func isForeignKeyError(err error) bool {
	return strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}
