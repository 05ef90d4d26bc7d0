// Package store persists transactions in SQLite, deduplicating records by a
// hash of their content so that the same broker export can be imported twice.
package store

import (
	"context"
	cryptoRand "crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/etnz/basis"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
)

// Store is a SQLite transaction store.
type Store struct {
	db  *sql.DB
	log zerolog.Logger

	mu   sync.Mutex
	mono io.Reader
}

// Batch describes one call to Import.
type Batch struct {
	ID         string
	Source     string
	ImportedAt time.Time
	Inserted   int
	Duplicates int
}

// Open opens or creates the store at path.
func Open(ctx context.Context, path string, logger zerolog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open store %q: %w", path, err)
	}
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema in %q: %w", path, err)
	}

	// ULIDs from a monotonic source stay increasing within the same millisecond,
	// so transactions imported on the same date keep their file order.
	var seed int64
	_ = binary.Read(cryptoRand.Reader, binary.LittleEndian, &seed)
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	s := &Store{
		db:   db,
		log:  logger.With().Str("store", path).Logger(),
		mono: ulid.Monotonic(rand.New(rand.NewSource(seed)), 0),
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

// newID returns a ULID string (time-sortable identifier).
func (s *Store) newID() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, err := ulid.New(ulid.Timestamp(time.Now().UTC()), s.mono)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// dateLayout stores dates in UTC with a fixed nanosecond fraction, so that
// text order is time order and no precision is lost.
const dateLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Hash returns the content hash of tx. The id is not part of the content.
func Hash(tx basis.Transaction) string {
	h := sha256.New()
	fields := []string{
		tx.Symbol,
		string(tx.Type),
		tx.Date.UTC().Format(dateLayout),
		tx.Quantity.String(),
		tx.Price.String(),
		tx.Fees.String(),
		tx.Amount.String(),
		tx.Broker,
	}
	io.WriteString(h, strings.Join(fields, "\x1f"))
	return hex.EncodeToString(h.Sum(nil))
}

// Import stores txs in a single batch. Records whose content is already known
// are skipped and counted as duplicates. Records without id get a ULID.
func (s *Store) Import(ctx context.Context, source string, txs []basis.Transaction) (Batch, error) {
	batch := Batch{ID: uuid.NewString(), Source: source, ImportedAt: time.Now().UTC()}
	for _, tx := range txs {
		if err := tx.Validate(); err != nil {
			return Batch{}, fmt.Errorf("import %s: %w", source, err)
		}
	}

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Batch{}, err
	}
	defer sqlTx.Rollback()

	if _, err := sqlTx.ExecContext(ctx, `
		INSERT INTO import_batches (id, source, imported_at, inserted, duplicates)
		VALUES (?, ?, ?, 0, 0)`, batch.ID, source, batch.ImportedAt); err != nil {
		return Batch{}, fmt.Errorf("import %s: %w", source, err)
	}

	stmt, err := sqlTx.PrepareContext(ctx, `
		INSERT INTO transactions
		(id, hash, batch_id, symbol, type, date, quantity, price, fees, amount, broker)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(hash) DO NOTHING`)
	if err != nil {
		return Batch{}, err
	}
	defer stmt.Close()

	for _, tx := range txs {
		id := tx.ID
		if id == "" {
			if id, err = s.newID(); err != nil {
				return Batch{}, err
			}
		}
		res, err := stmt.ExecContext(ctx,
			id, Hash(tx), batch.ID, tx.Symbol, string(tx.Type), tx.Date.UTC().Format(dateLayout),
			tx.Quantity.String(), tx.Price.String(), tx.Fees.String(), tx.Amount.String(), tx.Broker,
		)
		if err != nil {
			return Batch{}, fmt.Errorf("import %s: transaction %q: %w", source, id, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return Batch{}, err
		}
		if n == 0 {
			batch.Duplicates++
			s.log.Debug().Str("id", id).Str("symbol", tx.Symbol).Msg("duplicate transaction skipped")
			continue
		}
		batch.Inserted++
	}

	if _, err := sqlTx.ExecContext(ctx, `UPDATE import_batches SET inserted = ?, duplicates = ? WHERE id = ?`,
		batch.Inserted, batch.Duplicates, batch.ID); err != nil {
		return Batch{}, err
	}
	if err := sqlTx.Commit(); err != nil {
		return Batch{}, fmt.Errorf("import %s: %w", source, err)
	}
	s.log.Info().Str("batch", batch.ID).Str("source", source).
		Int("inserted", batch.Inserted).Int("duplicates", batch.Duplicates).Msg("import done")
	return batch, nil
}

// Transactions returns the stored transactions ordered by date then id,
// restricted to symbols when any is given.
func (s *Store) Transactions(ctx context.Context, symbols ...string) ([]basis.Transaction, error) {
	query := `SELECT id, symbol, type, date, quantity, price, fees, amount, broker FROM transactions`
	args := make([]any, 0, len(symbols))
	if len(symbols) > 0 {
		query += ` WHERE symbol IN (?` + strings.Repeat(`, ?`, len(symbols)-1) + `)`
		for _, sym := range symbols {
			args = append(args, sym)
		}
	}
	query += ` ORDER BY date, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txs []basis.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	s.log.Debug().Int("count", len(txs)).Strs("symbols", symbols).Msg("transactions loaded")
	return txs, nil
}

func scanTransaction(rows *sql.Rows) (basis.Transaction, error) {
	var (
		tx                            basis.Transaction
		typ, on                       string
		quantity, price, fees, amount string
	)
	if err := rows.Scan(&tx.ID, &tx.Symbol, &typ, &on, &quantity, &price, &fees, &amount, &tx.Broker); err != nil {
		return tx, err
	}
	var err error
	if tx.Type, err = basis.ParseTxType(typ); err != nil {
		return tx, err
	}
	if tx.Date, err = time.Parse(dateLayout, on); err != nil {
		return tx, fmt.Errorf("transaction %q: %w", tx.ID, err)
	}
	if tx.Quantity, err = basis.ParseQuantity(quantity); err != nil {
		return tx, fmt.Errorf("transaction %q: %w", tx.ID, err)
	}
	if tx.Price, err = basis.ParseMoney(price); err != nil {
		return tx, fmt.Errorf("transaction %q: %w", tx.ID, err)
	}
	if tx.Fees, err = basis.ParseMoney(fees); err != nil {
		return tx, fmt.Errorf("transaction %q: %w", tx.ID, err)
	}
	if tx.Amount, err = basis.ParseMoney(amount); err != nil {
		return tx, fmt.Errorf("transaction %q: %w", tx.ID, err)
	}
	tx.Date = tx.Date.UTC()
	return tx, nil
}

// Batches lists the import batches, oldest first.
func (s *Store) Batches(ctx context.Context) ([]Batch, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, source, imported_at, inserted, duplicates FROM import_batches ORDER BY imported_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var batches []Batch
	for rows.Next() {
		var b Batch
		if err := rows.Scan(&b.ID, &b.Source, &b.ImportedAt, &b.Inserted, &b.Duplicates); err != nil {
			return nil, err
		}
		batches = append(batches, b)
	}
	return batches, rows.Err()
}
