// Copyright (c) 2022 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package kv defines the minimal key-value capability interface the
// store layer (spec §4.4) is built on, so LMDB-class and in-memory test
// engines can be swapped without touching anything above them (spec §9
// "dynamic dispatch ... store backend").
package kv

// Range bounds a prefix/range scan: keys in [Start, Limit).
type Range struct {
	Start []byte
	Limit []byte
}

// BytesPrefix returns the Range matching every key with the given
// prefix.
func BytesPrefix(prefix []byte) Range {
	limit := append([]byte(nil), prefix...)
	for i := len(limit) - 1; i >= 0; i-- {
		limit[i]++
		if limit[i] != 0 {
			return Range{Start: prefix, Limit: limit[:i+1]}
		}
	}
	return Range{Start: prefix, Limit: nil}
}

// Iterator walks a range in ascending key order.
type Iterator interface {
	Next() bool
	Key() []byte
	Value() []byte
	Error() error
	Release()
}

// Getter reads a single key.
type Getter interface {
	Get(key []byte) ([]byte, error)
	Has(key []byte) (bool, error)
}

// Putter writes a single key.
type Putter interface {
	Put(key, val []byte) error
	Delete(key []byte) error
}

// Bulk accumulates writes for one atomic commit (spec §4.4 write batch).
type Bulk interface {
	Putter
	// Write commits everything accumulated so far.
	Write() error
}

// Store is a named container: a logically independent, independently
// iterable keyspace within the engine (spec §4.4's "named containers").
type Store interface {
	Getter
	Putter
	Iterate(r Range) Iterator
	IsNotFound(err error) bool
}

// Engine is the underlying physical database: it knows how to produce
// namespaced Stores and atomic Bulk batches that span them.
type Engine interface {
	Store(name string) Store
	// Batch returns a fresh Bulk spanning every container produced by
	// Store — puts/deletes queued through any of them land in the same
	// atomic commit (spec §4.4: "single atomic scope accumulating
	// puts/deletes across any subset of containers").
	Batch() Bulk
	Close() error
}
