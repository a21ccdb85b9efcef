//go:build sqlite

package ledger

func newSQLiteStore(path string) (Store, error) {
	return NewSQLiteStore(path), nil
}
