package copier

// ledgerKey is the (path, recursive-flag) tuple spec.md §3 defines for
// CopyLedger.
type ledgerKey struct {
	path      string
	recursive bool
}

// Ledger tracks which (source, recursive) copies have already been
// performed. Entries are never evicted (spec.md §3): a copy requested twice
// with the same recursion flag is a no-op the second time, which is what
// makes re-running the pipeline against the same OutputRoot idempotent
// (spec.md §8).
type Ledger struct {
	entries map[ledgerKey]struct{}
}

// NewLedger creates an empty copy ledger.
func NewLedger() *Ledger {
	return &Ledger{entries: make(map[ledgerKey]struct{})}
}

// Seen reports whether (path, recursive) has already been recorded.
func (l *Ledger) Seen(path string, recursive bool) bool {
	_, ok := l.entries[ledgerKey{path, recursive}]
	return ok
}

// Record marks (path, recursive) as performed.
func (l *Ledger) Record(path string, recursive bool) {
	l.entries[ledgerKey{path, recursive}] = struct{}{}
}

// Len returns the number of distinct ledger entries, exposed for the
// deduplication property test (spec.md §8 scenario 6).
func (l *Ledger) Len() int {
	return len(l.entries)
}
