// Package witnesses persists account age witnesses.
package witnesses

import (
	"fmt"
	"time"

	"github.com/spacemeshos/go-agewitness/codec"
	"github.com/spacemeshos/go-agewitness/common/types"
	"github.com/spacemeshos/go-agewitness/sql"
)

// Add inserts witness. Returns sql.ErrObjectExists if a witness with the same
// commitment is already stored.
func Add(db sql.Executor, w *types.Witness, received time.Time, local bool) error {
	buf, err := codec.Encode(w)
	if err != nil {
		return err
	}
	_, err = db.Exec(`
		INSERT INTO witnesses (id, pubkey, created_at, received, local, witness)
		VALUES (?1, ?2, ?3, ?4, ?5, ?6);`,
		func(stmt *sql.Statement) {
			stmt.BindBytes(1, w.Commitment.Bytes())
			stmt.BindBytes(2, w.PublicKey.Bytes())
			stmt.BindInt64(3, int64(w.CreatedAt))
			stmt.BindInt64(4, received.UnixNano())
			stmt.BindBool(5, local)
			stmt.BindBytes(6, buf)
		}, nil,
	)
	if err != nil {
		return fmt.Errorf("add witness %s: %w", w.Commitment.ShortString(), err)
	}
	return nil
}

func decode(stmt *sql.Statement, col int) (*types.Witness, error) {
	buf := make([]byte, stmt.ColumnLen(col))
	stmt.ColumnBytes(col, buf)
	var w types.Witness
	if err := codec.Decode(buf, &w); err != nil {
		return nil, err
	}
	return &w, nil
}

// Get returns the witness with the given commitment.
func Get(db sql.Executor, id types.Hash32) (*types.Witness, error) {
	var (
		w      *types.Witness
		decErr error
	)
	rows, err := db.Exec(`SELECT witness FROM witnesses WHERE id = ?1;`,
		func(stmt *sql.Statement) {
			stmt.BindBytes(1, id.Bytes())
		}, func(stmt *sql.Statement) bool {
			w, decErr = decode(stmt, 0)
			return false
		},
	)
	if err != nil {
		return nil, fmt.Errorf("get witness %s: %w", id.ShortString(), err)
	}
	if rows == 0 {
		return nil, fmt.Errorf("get witness %s: %w", id.ShortString(), sql.ErrNotFound)
	}
	if decErr != nil {
		return nil, fmt.Errorf("decode witness %s: %w", id.ShortString(), decErr)
	}
	return w, nil
}

// Has checks if witness with the given commitment is stored.
func Has(db sql.Executor, id types.Hash32) (bool, error) {
	rows, err := db.Exec(`SELECT 1 FROM witnesses WHERE id = ?1;`,
		func(stmt *sql.Statement) {
			stmt.BindBytes(1, id.Bytes())
		}, nil,
	)
	if err != nil {
		return false, fmt.Errorf("has witness %s: %w", id.ShortString(), err)
	}
	return rows > 0, nil
}

// IterateAll calls fn for every stored witness in insertion independent order.
// Iteration stops early if fn returns false.
func IterateAll(db sql.Executor, fn func(w *types.Witness, local bool) bool) error {
	var decErr error
	_, err := db.Exec(`SELECT witness, local FROM witnesses;`, nil,
		func(stmt *sql.Statement) bool {
			w, err := decode(stmt, 0)
			if err != nil {
				decErr = err
				return false
			}
			return fn(w, stmt.ColumnInt(1) != 0)
		},
	)
	if err != nil {
		return fmt.Errorf("iterate witnesses: %w", err)
	}
	if decErr != nil {
		return fmt.Errorf("iterate witnesses: %w", decErr)
	}
	return nil
}

// Count returns number of stored witnesses.
func Count(db sql.Executor) (int, error) {
	var total int
	_, err := db.Exec(`SELECT count(*) FROM witnesses;`, nil,
		func(stmt *sql.Statement) bool {
			total = stmt.ColumnInt(0)
			return false
		},
	)
	if err != nil {
		return 0, fmt.Errorf("count witnesses: %w", err)
	}
	return total, nil
}

// PruneReceivedBefore deletes witnesses received from peers before cutoff.
// Witnesses issued locally are never pruned.
func PruneReceivedBefore(db sql.Executor, cutoff time.Time) (int, error) {
	rows, err := db.Exec(`
		DELETE FROM witnesses WHERE local = 0 AND received < ?1
		RETURNING id;`,
		func(stmt *sql.Statement) {
			stmt.BindInt64(1, cutoff.UnixNano())
		}, nil,
	)
	if err != nil {
		return 0, fmt.Errorf("prune witnesses: %w", err)
	}
	return rows, nil
}

// Status returns whether the witness was issued locally and whether it was broadcast.
func Status(db sql.Executor, id types.Hash32) (local, published bool, err error) {
	rows, err := db.Exec(`SELECT local, published FROM witnesses WHERE id = ?1;`,
		func(stmt *sql.Statement) {
			stmt.BindBytes(1, id.Bytes())
		}, func(stmt *sql.Statement) bool {
			local = stmt.ColumnInt(0) != 0
			published = stmt.ColumnInt(1) != 0
			return false
		},
	)
	if err != nil {
		return false, false, fmt.Errorf("witness status %s: %w", id.ShortString(), err)
	}
	if rows == 0 {
		return false, false, fmt.Errorf("witness status %s: %w", id.ShortString(), sql.ErrNotFound)
	}
	return local, published, nil
}

// SetPublished marks the witness as broadcast.
func SetPublished(db sql.Executor, id types.Hash32) error {
	rows, err := db.Exec(`UPDATE witnesses SET published = 1 WHERE id = ?1 RETURNING id;`,
		func(stmt *sql.Statement) {
			stmt.BindBytes(1, id.Bytes())
		}, nil,
	)
	if err != nil {
		return fmt.Errorf("set published %s: %w", id.ShortString(), err)
	}
	if rows == 0 {
		return fmt.Errorf("set published %s: %w", id.ShortString(), sql.ErrNotFound)
	}
	return nil
}

// IterateUnpublished calls fn for every local witness that was not broadcast yet.
func IterateUnpublished(db sql.Executor, fn func(w *types.Witness) bool) error {
	var decErr error
	_, err := db.Exec(`SELECT witness FROM witnesses WHERE local = 1 AND published = 0;`, nil,
		func(stmt *sql.Statement) bool {
			w, err := decode(stmt, 0)
			if err != nil {
				decErr = err
				return false
			}
			return fn(w)
		},
	)
	if err != nil {
		return fmt.Errorf("iterate unpublished witnesses: %w", err)
	}
	if decErr != nil {
		return fmt.Errorf("iterate unpublished witnesses: %w", decErr)
	}
	return nil
}
