package service

import "sync"

// TableLocks serializes writers per table identifier. The reconciliation
// loop and the request handlers both read-modify-write table state; holding
// the table's lock across that sequence is the concurrency discipline for
// the whole engine. One instance is shared by every service.
type TableLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewTableLocks() *TableLocks {
	return &TableLocks{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for a table id and returns its unlock function.
func (t *TableLocks) Lock(tableID string) func() {
	t.mu.Lock()
	m, ok := t.locks[tableID]
	if !ok {
		m = &sync.Mutex{}
		t.locks[tableID] = m
	}
	t.mu.Unlock()

	m.Lock()
	return m.Unlock
}
