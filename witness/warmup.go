package witness

import (
	"context"
	"fmt"

	"github.com/spacemeshos/go-agewitness/common/types"
	"github.com/spacemeshos/go-agewitness/sql"
	"github.com/spacemeshos/go-agewitness/sql/witnesses"
)

// Warmup loads all persisted witnesses into the store.
func Warmup(ctx context.Context, db sql.Executor, store *Store) error {
	if err := witnesses.IterateAll(db, func(w *types.Witness, _ bool) bool {
		store.Add(w)
		return ctx.Err() == nil
	}); err != nil {
		return fmt.Errorf("warmup witnesses: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return nil
}
