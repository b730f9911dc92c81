package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cyrusattoun/covenant/internal/symbols"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteProvider is the one concrete Provider this module ships, backed by
// modernc.org/sqlite (a pure-Go driver, so no cgo toolchain is required to
// embed it in a CLI build). One row per Node lives in the nodes table;
// secondary lookups by kind/effect/relation are served from denormalized
// join tables that RebuildIndexes recomputes from scratch and Put/Delete
// keep current incrementally.
type SQLiteProvider struct {
	db *sql.DB
}

// OpenSQLite opens (creating if absent) a SQLiteProvider at dsn, a
// database/sql data source name (e.g. "file:covenant.db" or ":memory:").
func OpenSQLite(dsn string) (*SQLiteProvider, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", dsn, err)
	}
	p := &SQLiteProvider{db: db}
	if err := p.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return p, nil
}

func (p *SQLiteProvider) migrate() error {
	_, err := p.db.Exec(`
CREATE TABLE IF NOT EXISTS nodes (
	id TEXT PRIMARY KEY,
	kind TEXT NOT NULL,
	version INTEGER NOT NULL,
	source_file TEXT NOT NULL,
	line_start INTEGER NOT NULL,
	line_end INTEGER NOT NULL,
	content_hash TEXT NOT NULL,
	ast TEXT NOT NULL,
	calls TEXT NOT NULL,
	called_by TEXT NOT NULL,
	refs TEXT NOT NULL,
	referenced_by TEXT NOT NULL,
	effects TEXT NOT NULL,
	effect_closure TEXT NOT NULL,
	requirements TEXT NOT NULL,
	tests TEXT NOT NULL,
	relations TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS node_kind (node_id TEXT NOT NULL, kind TEXT NOT NULL);
CREATE TABLE IF NOT EXISTS node_effect (node_id TEXT NOT NULL, effect TEXT NOT NULL);
CREATE TABLE IF NOT EXISTS node_relation (node_id TEXT NOT NULL, target TEXT NOT NULL, rel_type TEXT NOT NULL);
CREATE INDEX IF NOT EXISTS idx_node_kind_kind ON node_kind(kind);
CREATE INDEX IF NOT EXISTS idx_node_effect_effect ON node_effect(effect);
CREATE INDEX IF NOT EXISTS idx_node_relation_target ON node_relation(target, rel_type);
`)
	if err != nil {
		return fmt.Errorf("migrating schema: %w", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (p *SQLiteProvider) Close() error { return p.db.Close() }

func (p *SQLiteProvider) Get(ctx context.Context, id string) (*Node, error) {
	row := p.db.QueryRowContext(ctx, `SELECT `+nodeColumns+` FROM nodes WHERE id = ?`, id)
	n, err := scanNode(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return n, err
}

func (p *SQLiteProvider) Put(ctx context.Context, node *Node) error {
	tx, err := p.BeginTx(ctx)
	if err != nil {
		return err
	}
	if err := tx.Put(ctx, node); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (p *SQLiteProvider) Delete(ctx context.Context, id string) error {
	tx, err := p.BeginTx(ctx)
	if err != nil {
		return err
	}
	if err := tx.Delete(ctx, id); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (p *SQLiteProvider) List(ctx context.Context, prefix string) ([]string, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT id FROM nodes WHERE id LIKE ? ORDER BY id`, prefix+"%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (p *SQLiteProvider) QueryByKind(ctx context.Context, kind string) ([]*Node, error) {
	return p.queryJoined(ctx, `
SELECT `+qualified(nodeColumns)+` FROM nodes n
JOIN node_kind k ON k.node_id = n.id
WHERE k.kind = ? ORDER BY n.id`, kind)
}

func (p *SQLiteProvider) QueryByEffect(ctx context.Context, effect string) ([]*Node, error) {
	return p.queryJoined(ctx, `
SELECT `+qualified(nodeColumns)+` FROM nodes n
JOIN node_effect e ON e.node_id = n.id
WHERE e.effect = ? ORDER BY n.id`, effect)
}

func (p *SQLiteProvider) QueryByRelation(ctx context.Context, targetID, relType string) ([]*Node, error) {
	return p.queryJoined(ctx, `
SELECT `+qualified(nodeColumns)+` FROM nodes n
JOIN node_relation r ON r.node_id = n.id
WHERE r.target = ? AND r.rel_type = ? ORDER BY n.id`, targetID, relType)
}

func (p *SQLiteProvider) queryJoined(ctx context.Context, query string, args ...interface{}) ([]*Node, error) {
	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Node
	for rows.Next() {
		n, err := scanNode(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// BeginTx starts a transaction tagged with a fresh UUID for log
// correlation, mirroring the storage collaborator's "all-or-nothing
// commit" contract.
func (p *SQLiteProvider) BeginTx(ctx context.Context) (Transaction, error) {
	sqlTx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	return &sqliteTx{id: uuid.New(), tx: sqlTx}, nil
}

func (p *SQLiteProvider) RebuildIndexes(ctx context.Context) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM node_kind`); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM node_effect`); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM node_relation`); err != nil {
		return err
	}

	rows, err := tx.QueryContext(ctx, `SELECT `+nodeColumns+` FROM nodes`)
	if err != nil {
		return err
	}
	var nodes []*Node
	for rows.Next() {
		n, err := scanNode(rows)
		if err != nil {
			rows.Close()
			return err
		}
		nodes = append(nodes, n)
	}
	rows.Close()

	for _, n := range nodes {
		if err := writeIndexRows(ctx, tx, n); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// VerifyInvariants re-runs I1 (call/reference bidirectionality), I4
// (acyclic relation-derived import structure is out of scope for a
// persisted node table with no import declarations, so this checks the
// weaker "no self-referential cycle in depends_on relations" form), and
// I5 (relation/inverse symmetry) over every stored node, matching
// covenant-storage's "verify_invariants must run I1/I4/I5 on the
// persisted view".
func (p *SQLiteProvider) VerifyInvariants(ctx context.Context) ([]InvariantViolation, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT `+nodeColumns+` FROM nodes`)
	if err != nil {
		return nil, err
	}
	byID := map[string]*Node{}
	for rows.Next() {
		n, err := scanNode(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		byID[n.ID] = n
	}
	rows.Close()

	var violations []InvariantViolation
	for id, n := range byID {
		for _, callee := range n.Calls {
			callers := byID[callee]
			if callers == nil {
				continue
			}
			if !contains(callers.CalledBy, id) {
				violations = append(violations, InvariantViolation{
					Invariant: "I1", NodeID: callee,
					Description: fmt.Sprintf("called by %s but called_by is missing it", id),
				})
			}
		}
		for _, ref := range n.References {
			target := byID[ref]
			if target == nil {
				continue
			}
			if !contains(target.ReferencedBy, id) {
				violations = append(violations, InvariantViolation{
					Invariant: "I1", NodeID: ref,
					Description: fmt.Sprintf("referenced by %s but referenced_by is missing it", id),
				})
			}
		}
		for _, rel := range n.Relations {
			target := byID[rel.Target]
			if target == nil {
				continue
			}
			inverse := symbols.InverseRelation(rel.Type)
			if !containsRelation(target.Relations, id, inverse) {
				violations = append(violations, InvariantViolation{
					Invariant: "I5", NodeID: id,
					Description: fmt.Sprintf("relation %q to %s has no inverse %q back", rel.Type, rel.Target, inverse),
				})
			}
		}
	}
	violations = append(violations, findDependsOnCycles(byID)...)
	return violations, nil
}

// findDependsOnCycles runs a 3-color DFS over the "depends_on" relation
// edges, the only persisted relation shaped like an import graph, and
// reports one I4 violation per back edge found, attributed to the node the
// edge leaves (a single cycle therefore yields one violation).
func findDependsOnCycles(byID map[string]*Node) []InvariantViolation {
	const (
		white = iota
		gray
		black
	)
	color := make(map[string]int, len(byID))
	var violations []InvariantViolation

	var visit func(id string)
	visit = func(id string) {
		color[id] = gray
		n := byID[id]
		for _, dep := range n.RelationsOf("depends_on") {
			if _, ok := byID[dep]; !ok {
				continue
			}
			switch color[dep] {
			case gray:
				violations = append(violations, InvariantViolation{
					Invariant: "I4", NodeID: id,
					Description: fmt.Sprintf("depends_on cycle back to %s", dep),
				})
			case white:
				visit(dep)
			}
		}
		color[id] = black
	}

	for id := range byID {
		if color[id] == white {
			visit(id)
		}
	}
	return violations
}

func (p *SQLiteProvider) Compact(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, `VACUUM`)
	return err
}

func (p *SQLiteProvider) Stats(ctx context.Context) (StorageStats, error) {
	var s StorageStats
	if err := p.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM nodes`).Scan(&s.TotalNodes); err != nil {
		return s, err
	}
	if err := p.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM nodes WHERE kind = 'function'`).Scan(&s.Functions); err != nil {
		return s, err
	}
	if err := p.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM nodes WHERE kind = 'struct'`).Scan(&s.Structs); err != nil {
		return s, err
	}
	if err := p.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM nodes WHERE kind = 'data'`).Scan(&s.DataNodes); err != nil {
		return s, err
	}
	return s, nil
}

// sqliteTx wraps a database/sql.Tx, tagged for log correlation.
type sqliteTx struct {
	id uuid.UUID
	tx *sql.Tx
}

func (t *sqliteTx) Put(ctx context.Context, node *Node) error {
	calls, err := json.Marshal(node.Calls)
	if err != nil {
		return err
	}
	calledBy, err := json.Marshal(node.CalledBy)
	if err != nil {
		return err
	}
	refs, err := json.Marshal(node.References)
	if err != nil {
		return err
	}
	referencedBy, err := json.Marshal(node.ReferencedBy)
	if err != nil {
		return err
	}
	effects, err := json.Marshal(node.Effects)
	if err != nil {
		return err
	}
	closure, err := json.Marshal(node.EffectClosure)
	if err != nil {
		return err
	}
	reqs, err := json.Marshal(node.Requirements)
	if err != nil {
		return err
	}
	tests, err := json.Marshal(node.Tests)
	if err != nil {
		return err
	}
	relations, err := json.Marshal(node.Relations)
	if err != nil {
		return err
	}

	_, err = t.tx.ExecContext(ctx, `
INSERT INTO nodes (id, kind, version, source_file, line_start, line_end, content_hash, ast,
	calls, called_by, refs, referenced_by, effects, effect_closure, requirements, tests, relations)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	kind = excluded.kind, version = nodes.version + 1, source_file = excluded.source_file,
	line_start = excluded.line_start, line_end = excluded.line_end, content_hash = excluded.content_hash,
	ast = excluded.ast, calls = excluded.calls, called_by = excluded.called_by, refs = excluded.refs,
	referenced_by = excluded.referenced_by, effects = excluded.effects, effect_closure = excluded.effect_closure,
	requirements = excluded.requirements, tests = excluded.tests, relations = excluded.relations`,
		node.ID, node.Kind, node.Version, node.SourceFile, node.LineStart, node.LineEnd, node.ContentHash, node.AST,
		string(calls), string(calledBy), string(refs), string(referencedBy), string(effects), string(closure),
		string(reqs), string(tests), string(relations))
	if err != nil {
		return fmt.Errorf("tx %s: put %s: %w", t.id, node.ID, err)
	}

	if _, err := t.tx.ExecContext(ctx, `DELETE FROM node_kind WHERE node_id = ?`, node.ID); err != nil {
		return err
	}
	if _, err := t.tx.ExecContext(ctx, `DELETE FROM node_effect WHERE node_id = ?`, node.ID); err != nil {
		return err
	}
	if _, err := t.tx.ExecContext(ctx, `DELETE FROM node_relation WHERE node_id = ?`, node.ID); err != nil {
		return err
	}
	return writeIndexRows(ctx, t.tx, node)
}

func (t *sqliteTx) Delete(ctx context.Context, id string) error {
	if _, err := t.tx.ExecContext(ctx, `DELETE FROM nodes WHERE id = ?`, id); err != nil {
		return fmt.Errorf("tx %s: delete %s: %w", t.id, id, err)
	}
	if _, err := t.tx.ExecContext(ctx, `DELETE FROM node_kind WHERE node_id = ?`, id); err != nil {
		return err
	}
	if _, err := t.tx.ExecContext(ctx, `DELETE FROM node_effect WHERE node_id = ?`, id); err != nil {
		return err
	}
	if _, err := t.tx.ExecContext(ctx, `DELETE FROM node_relation WHERE node_id = ?`, id); err != nil {
		return err
	}
	return nil
}

func (t *sqliteTx) Commit() error   { return t.tx.Commit() }
func (t *sqliteTx) Rollback() error { return t.tx.Rollback() }

// execer is satisfied by both *sql.DB and *sql.Tx, letting RebuildIndexes
// and Put share writeIndexRows.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func writeIndexRows(ctx context.Context, ex execer, n *Node) error {
	if _, err := ex.ExecContext(ctx, `INSERT INTO node_kind (node_id, kind) VALUES (?, ?)`, n.ID, n.Kind); err != nil {
		return err
	}
	for _, e := range n.EffectClosure {
		if _, err := ex.ExecContext(ctx, `INSERT INTO node_effect (node_id, effect) VALUES (?, ?)`, n.ID, e); err != nil {
			return err
		}
	}
	for _, r := range n.Relations {
		if _, err := ex.ExecContext(ctx, `INSERT INTO node_relation (node_id, target, rel_type) VALUES (?, ?, ?)`, n.ID, r.Target, r.Type); err != nil {
			return err
		}
	}
	return nil
}

const nodeColumns = `id, kind, version, source_file, line_start, line_end, content_hash, ast, calls, called_by, refs, referenced_by, effects, effect_closure, requirements, tests, relations`

// qualified prefixes each column in cols with "n." so joined queries that
// select from multiple tables don't collide on column name.
func qualified(cols string) string {
	return "n." + strings.ReplaceAll(cols, ", ", ", n.")
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanNode(row scanner) (*Node, error) {
	var n Node
	var calls, calledBy, refs, referencedBy, effects, closure, reqs, tests, relations string
	err := row.Scan(&n.ID, &n.Kind, &n.Version, &n.SourceFile, &n.LineStart, &n.LineEnd, &n.ContentHash, &n.AST,
		&calls, &calledBy, &refs, &referencedBy, &effects, &closure, &reqs, &tests, &relations)
	if err != nil {
		return nil, err
	}
	for _, pair := range []struct {
		raw string
		dst *[]string
	}{
		{calls, &n.Calls}, {calledBy, &n.CalledBy}, {refs, &n.References}, {referencedBy, &n.ReferencedBy},
		{effects, &n.Effects}, {closure, &n.EffectClosure}, {reqs, &n.Requirements}, {tests, &n.Tests},
	} {
		if err := json.Unmarshal([]byte(pair.raw), pair.dst); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", n.ID, err)
		}
	}
	if err := json.Unmarshal([]byte(relations), &n.Relations); err != nil {
		return nil, fmt.Errorf("decoding relations for %s: %w", n.ID, err)
	}
	return &n, nil
}

func contains(ss []string, v string) bool {
	for _, s := range ss {
		if s == v {
			return true
		}
	}
	return false
}

func containsRelation(rels []Relation, target, relType string) bool {
	for _, r := range rels {
		if r.Target == target && r.Type == relType {
			return true
		}
	}
	return false
}

