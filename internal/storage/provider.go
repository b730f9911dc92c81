package storage

import "context"

// Provider is the pluggable storage interface from covenant-storage's
// StorageProvider trait, split into the same three layers: core KV
// operations, indexed queries, and transactions.
type Provider interface {
	// Get returns the node with the given ID, or (nil, nil) if absent.
	Get(ctx context.Context, id string) (*Node, error)
	// Put inserts or updates a node.
	Put(ctx context.Context, node *Node) error
	// Delete removes a node by ID. Deleting an absent ID is not an error.
	Delete(ctx context.Context, id string) error
	// List returns every node ID with the given prefix ("" lists all).
	List(ctx context.Context, prefix string) ([]string, error)

	QueryByKind(ctx context.Context, kind string) ([]*Node, error)
	QueryByEffect(ctx context.Context, effect string) ([]*Node, error)
	QueryByRelation(ctx context.Context, targetID, relType string) ([]*Node, error)

	// BeginTx starts a transaction for atomic multi-operation updates.
	BeginTx(ctx context.Context) (Transaction, error)

	// RebuildIndexes recomputes every secondary index from the primary
	// node table, e.g. after a bulk load that bypassed Put.
	RebuildIndexes(ctx context.Context) error
	// VerifyInvariants re-runs I1/I4/I5 over the persisted view (I2/I3
	// need the live call graph and extraction pass, not a stored
	// projection, so they are out of scope here).
	VerifyInvariants(ctx context.Context) ([]InvariantViolation, error)
	// Compact removes tombstoned rows and optimizes on-disk layout.
	Compact(ctx context.Context) error

	Stats(ctx context.Context) (StorageStats, error)
}

// Transaction wraps a batch of Put/Delete calls that commit or roll back
// atomically.
type Transaction interface {
	Put(ctx context.Context, node *Node) error
	Delete(ctx context.Context, id string) error
	Commit() error
	Rollback() error
}

// InvariantViolation reports one failed check from VerifyInvariants,
// mirroring covenant-storage's InvariantViolation{invariant, node_id,
// description}.
type InvariantViolation struct {
	Invariant   string
	NodeID      string
	Description string
}

func (v InvariantViolation) Error() string {
	return "[" + v.Invariant + "] " + v.NodeID + ": " + v.Description
}

// StorageStats summarizes the node table, matching covenant-storage's
// StorageStats.
type StorageStats struct {
	TotalNodes int
	Functions  int
	Structs    int
	DataNodes  int
}
