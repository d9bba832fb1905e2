// Package repository defines the data access interfaces for Flowboard.
//
// This package provides the repository abstraction layer for persisting and
// retrieving canvas state. The actual implementation is in the sqlite
// subpackage.
//
// # Repository Interface
//
// The Repository interface covers nodes, edges, the selection, the viewport
// and whole-canvas import/export. It is also the node store the layout
// engine reads from and writes position batches to.
//
// # SQLite Implementation
//
// The sqlite implementation uses the pure-Go modernc.org/sqlite driver with
// WAL mode. It handles:
//
// - CRUD operations for nodes and edges
// - JSON serialization of node data
// - Foreign key constraints and cascade deletes
// - Transactional position batches and canvas imports
//
// # Testing
//
// The sqlite repository is tested with in-memory databases.
package repository
