// Copyright (c) 2022 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package engine provides kv.Engine implementations. levelEngine is the
// production engine, standing in for the spec's LMDB-backed store
// (§4.4) — see DESIGN.md for why LevelDB, the teacher's own proven
// engine, was kept instead of reaching for a cgo LMDB binding.
package engine

import (
	"time"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/burst-chain/burst/kv"
	"github.com/burst-chain/burst/telemetry"
)

var (
	writeOpt = opt.WriteOptions{Sync: true}
	readOpt  = opt.ReadOptions{}
	scanOpt  = opt.ReadOptions{DontFillCache: true}
)

var (
	metricBatchWriteBytes    = telemetry.LazyLoad(func() telemetry.GaugeMeter { return telemetry.Gauge("store_batch_write_bytes") })
	metricBatchWriteDuration = telemetry.LazyLoad(func() telemetry.HistogramMeter { return telemetry.Histogram("store_batch_write_ms", nil) })
)

// levelEngine adapts a single *leveldb.DB into kv.Engine: every
// container is just a single-byte-prefixed keyspace sharing one
// underlying database, so batches naturally span containers (spec
// §4.4) without any extra coordination.
type levelEngine struct {
	db *leveldb.DB
}

// OpenFile opens (creating if absent) a LevelDB database at path.
func OpenFile(path string) (kv.Engine, error) {
	db, err := leveldb.OpenFile(path, &opt.Options{})
	if err != nil {
		return nil, err
	}
	return &levelEngine{db: db}, nil
}

// OpenMemory opens an in-process, non-persistent database — used by
// tests and by the in-memory test stub mentioned in spec §9.
func OpenMemory() (kv.Engine, error) {
	db, err := leveldb.Open(storage.NewMemStorage(), &opt.Options{})
	if err != nil {
		return nil, err
	}
	return &levelEngine{db: db}, nil
}

func (e *levelEngine) Close() error { return e.db.Close() }

func (e *levelEngine) Store(name string) kv.Store {
	return &containerStore{db: e.db, prefix: ContainerPrefix(name)}
}

func (e *levelEngine) Batch() kv.Bulk {
	return &levelBulk{db: e.db, batch: &leveldb.Batch{}}
}

// ContainerPrefix derives a stable namespace prefix for a container
// name, so unrelated containers never collide in the shared keyspace
// even though they share one physical database. Exported so the store
// layer can build the same prefixed keys when writing through a
// cross-container Bulk batch.
func ContainerPrefix(name string) []byte {
	return append([]byte(name), ':')
}

type containerStore struct {
	db     *leveldb.DB
	prefix []byte
}

func (s *containerStore) key(k []byte) []byte {
	buf := make([]byte, 0, len(s.prefix)+len(k))
	buf = append(buf, s.prefix...)
	buf = append(buf, k...)
	return buf
}

func (s *containerStore) Get(k []byte) ([]byte, error) {
	return s.db.Get(s.key(k), &readOpt)
}

func (s *containerStore) Has(k []byte) (bool, error) {
	return s.db.Has(s.key(k), &readOpt)
}

func (s *containerStore) Put(k, v []byte) error {
	return s.db.Put(s.key(k), v, &writeOpt)
}

func (s *containerStore) Delete(k []byte) error {
	return s.db.Delete(s.key(k), &writeOpt)
}

func (s *containerStore) IsNotFound(err error) bool {
	return err == leveldb.ErrNotFound
}

func (s *containerStore) Iterate(r kv.Range) kv.Iterator {
	start := s.key(r.Start)
	var limit []byte
	if r.Limit != nil {
		limit = s.key(r.Limit)
	} else {
		limit = util.BytesPrefix(s.prefix).Limit
	}
	it := s.db.NewIterator(&util.Range{Start: start, Limit: limit}, &scanOpt)
	return &levelIterator{it: it, prefix: s.prefix}
}

type levelIterator struct {
	it     interface {
		Next() bool
		Key() []byte
		Value() []byte
		Error() error
		Release()
	}
	prefix []byte
}

func (i *levelIterator) Next() bool  { return i.it.Next() }
func (i *levelIterator) Value() []byte { return i.it.Value() }
func (i *levelIterator) Error() error { return i.it.Error() }
func (i *levelIterator) Release()     { i.it.Release() }
func (i *levelIterator) Key() []byte {
	k := i.it.Key()
	if len(k) >= len(i.prefix) {
		return k[len(i.prefix):]
	}
	return k
}

// levelBulk accumulates puts/deletes across any number of containers
// into one leveldb.Batch; Write commits them atomically (spec §4.4).
type levelBulk struct {
	db    *leveldb.DB
	batch *leveldb.Batch
}

func (b *levelBulk) Put(k, v []byte) error {
	b.batch.Put(k, v)
	return nil
}

func (b *levelBulk) Delete(k []byte) error {
	b.batch.Delete(k)
	return nil
}

func (b *levelBulk) Write() error {
	start := time.Now()
	size := len(b.batch.Dump())
	if err := b.db.Write(b.batch, &writeOpt); err != nil {
		return err
	}
	metricBatchWriteBytes().Gauge(int64(size))
	metricBatchWriteDuration().Observe(time.Since(start).Milliseconds())
	return nil
}
