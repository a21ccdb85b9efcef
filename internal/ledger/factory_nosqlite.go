//go:build !sqlite

package ledger

import "fmt"

func newSQLiteStore(_ string) (Store, error) {
	return nil, fmt.Errorf("sqlite ledger unavailable in this build; rebuild with -tags sqlite")
}
