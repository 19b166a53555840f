// Package memory is an in-process RowAppender used by tests and local runs
// without Google credentials.
package memory

import (
	"context"
	"fmt"
	"sync"

	"parkrent/internal/sheets"
)

type Store struct {
	mu   sync.Mutex
	rows []sheets.LedgerRow
}

var _ sheets.RowAppender = (*Store)(nil)

func New() *Store {
	return &Store{}
}

// AppendLedgerRow stores the row and returns a synthetic reference.
func (s *Store) AppendLedgerRow(_ context.Context, row sheets.LedgerRow) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, row)
	return fmt.Sprintf("mem:%d", len(s.rows)), nil
}

// Rows returns a copy of everything appended so far.
func (s *Store) Rows() []sheets.LedgerRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]sheets.LedgerRow(nil), s.rows...)
}
