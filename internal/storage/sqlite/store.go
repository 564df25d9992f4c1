// Package sqlite provides a SQLite-backed player store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	// Registers the "sqlite" driver.
	_ "modernc.org/sqlite"

	"github.com/mcoot/shootout/internal/model"
	"github.com/mcoot/shootout/internal/storage"
	"github.com/mcoot/shootout/internal/storage/sqlite/migrations"
)

// Store persists one row per player in SQLite. Every mutation is a single
// UPDATE or INSERT statement, which SQLite executes atomically.
type Store struct {
	sqlDB *sql.DB
}

// Ensure Store implements the interface
var (
	_ storage.Storage = (*Store)(nil)
	_ storage.Pinger  = (*Store)(nil)
)

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite player store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := "file:" + cleanPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// SQLite has a single writer; one pooled connection avoids SQLITE_BUSY churn.
	sqlDB.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(ctx, sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Ping checks the database handle is usable.
func (s *Store) Ping(ctx context.Context) error {
	return s.sqlDB.PingContext(ctx)
}

// EnsurePlayer inserts the player unless the primary key already exists.
func (s *Store) EnsurePlayer(ctx context.Context, player *model.Player) (bool, error) {
	var lastIncapacitated sql.NullInt64
	if player.LastIncapacitatedAt != nil {
		lastIncapacitated = sql.NullInt64{Int64: toMillis(*player.LastIncapacitatedAt), Valid: true}
	}
	res, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO players (
		   id,
		   balance,
		   guns,
		   vest,
		   medkit,
		   is_vested,
		   incapacitated,
		   last_incapacitated_at,
		   created_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO NOTHING`,
		string(player.ID),
		player.Balance,
		player.Guns,
		player.Vest,
		player.Medkit,
		boolInt(player.IsVested && player.Vest > 0),
		boolInt(player.Incapacitated),
		lastIncapacitated,
		toMillis(player.CreatedAt),
	)
	if err != nil {
		return false, fmt.Errorf("ensure player: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("ensure player: %w", err)
	}
	return n == 1, nil
}

// GetPlayer returns one player by ID.
func (s *Store) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, balance, guns, vest, medkit, is_vested, incapacitated, last_incapacitated_at, created_at
		 FROM players
		 WHERE id = ?`,
		string(id),
	)

	var (
		p                 model.Player
		playerID          string
		isVested          int64
		incapacitated     int64
		lastIncapacitated sql.NullInt64
		createdAt         int64
	)
	err := row.Scan(&playerID, &p.Balance, &p.Guns, &p.Vest, &p.Medkit, &isVested, &incapacitated, &lastIncapacitated, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrPlayerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get player: %w", err)
	}
	p.ID = model.PlayerID(playerID)
	p.IsVested = isVested == 1
	p.Incapacitated = incapacitated == 1
	if lastIncapacitated.Valid {
		at := fromMillis(lastIncapacitated.Int64)
		p.LastIncapacitatedAt = &at
	}
	p.CreatedAt = fromMillis(createdAt)
	return &p, nil
}

// Adjust applies delta to one counter column, clamped at floor.
func (s *Store) Adjust(ctx context.Context, id model.PlayerID, field model.Field, delta, floor int64) (int64, error) {
	if !field.Valid() {
		return 0, model.ErrUnknownField
	}
	col := string(field)
	query := fmt.Sprintf(`UPDATE players SET %[1]s = MAX(%[1]s + ?1, ?2) WHERE id = ?3 RETURNING %[1]s`, col)
	if field == model.FieldVest {
		query = `UPDATE players
		 SET vest = MAX(vest + ?1, ?2),
		     is_vested = CASE WHEN MAX(vest + ?1, ?2) > 0 THEN is_vested ELSE 0 END
		 WHERE id = ?3
		 RETURNING vest`
	}

	var value int64
	err := s.sqlDB.QueryRowContext(ctx, query, delta, floor, string(id)).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, model.ErrPlayerNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("adjust %s: %w", field, err)
	}
	return value, nil
}

// Consume decrements a counter only when it holds at least amount.
func (s *Store) Consume(ctx context.Context, id model.PlayerID, field model.Field, amount int64) (int64, bool, error) {
	if !field.Valid() {
		return 0, false, model.ErrUnknownField
	}
	col := string(field)
	query := fmt.Sprintf(`UPDATE players SET %[1]s = %[1]s - ?1 WHERE id = ?2 AND %[1]s >= ?1 RETURNING %[1]s`, col)
	if field == model.FieldVest {
		query = `UPDATE players
		 SET vest = vest - ?1,
		     is_vested = CASE WHEN vest - ?1 > 0 THEN is_vested ELSE 0 END
		 WHERE id = ?2 AND vest >= ?1
		 RETURNING vest`
	}

	var remaining int64
	err := s.sqlDB.QueryRowContext(ctx, query, amount, string(id)).Scan(&remaining)
	if err == nil {
		return remaining, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, false, fmt.Errorf("consume %s: %w", field, err)
	}

	// Either the player is missing or the guard failed; read back to tell which.
	current, err := s.counter(ctx, id, col)
	if err != nil {
		return 0, false, err
	}
	return current, false, nil
}

// SetFlag sets is_vested, which can only be armed while vest charges remain.
func (s *Store) SetFlag(ctx context.Context, id model.PlayerID, flag model.Flag, value bool) (bool, error) {
	if !flag.Valid() {
		return false, model.ErrUnknownField
	}
	var armed int64
	err := s.sqlDB.QueryRowContext(
		ctx,
		`UPDATE players
		 SET is_vested = CASE WHEN ?1 = 1 AND vest > 0 THEN 1 ELSE 0 END
		 WHERE id = ?2
		 RETURNING is_vested`,
		boolInt(value),
		string(id),
	).Scan(&armed)
	if errors.Is(err, sql.ErrNoRows) {
		return false, model.ErrPlayerNotFound
	}
	if err != nil {
		return false, fmt.Errorf("set %s: %w", flag, err)
	}
	return armed == 1, nil
}

// AbsorbShot spends one vest charge if armed; SET expressions read the pre-update row.
func (s *Store) AbsorbShot(ctx context.Context, id model.PlayerID) (bool, int64, error) {
	var vest int64
	err := s.sqlDB.QueryRowContext(
		ctx,
		`UPDATE players
		 SET vest = vest - 1,
		     is_vested = CASE WHEN vest - 1 > 0 THEN 1 ELSE 0 END
		 WHERE id = ? AND is_vested = 1 AND vest > 0
		 RETURNING vest`,
		string(id),
	).Scan(&vest)
	if err == nil {
		return true, vest, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return false, 0, fmt.Errorf("absorb shot: %w", err)
	}
	current, err := s.counter(ctx, id, string(model.FieldVest))
	if err != nil {
		return false, 0, err
	}
	return false, current, nil
}

// MarkIncapacitated sets the stored mirror if it is not already set.
func (s *Store) MarkIncapacitated(ctx context.Context, id model.PlayerID, at time.Time) (bool, error) {
	res, err := s.sqlDB.ExecContext(
		ctx,
		`UPDATE players SET incapacitated = 1, last_incapacitated_at = ? WHERE id = ? AND incapacitated = 0`,
		toMillis(at),
		string(id),
	)
	if err != nil {
		return false, fmt.Errorf("mark incapacitated: %w", err)
	}
	return s.changed(ctx, id, res)
}

// ClearIncapacitated clears the stored mirror if it is set.
func (s *Store) ClearIncapacitated(ctx context.Context, id model.PlayerID) (bool, error) {
	res, err := s.sqlDB.ExecContext(
		ctx,
		`UPDATE players SET incapacitated = 0 WHERE id = ? AND incapacitated = 1`,
		string(id),
	)
	if err != nil {
		return false, fmt.Errorf("clear incapacitated: %w", err)
	}
	return s.changed(ctx, id, res)
}

// RecordCharge inserts an outstanding charge after dropping expired ones.
func (s *Store) RecordCharge(ctx context.Context, charge *model.Charge, now time.Time) error {
	if _, err := s.sqlDB.ExecContext(ctx, `DELETE FROM charges WHERE expires_at <= ?`, toMillis(now)); err != nil {
		return fmt.Errorf("prune charges: %w", err)
	}
	var markedAt sql.NullInt64
	if charge.MarkedAt != nil {
		markedAt = sql.NullInt64{Int64: toMillis(*charge.MarkedAt), Valid: true}
	}
	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO charges (outcome_id, action, actor_id, target_id, marked_at, expires_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		string(charge.OutcomeID),
		string(charge.Action),
		string(charge.Actor),
		string(charge.Target),
		markedAt,
		toMillis(charge.ExpiresAt),
	)
	if err != nil {
		return fmt.Errorf("record charge: %w", err)
	}
	return nil
}

// ClaimCharge deletes the charge row and returns it if it had not expired.
// The delete is one statement, so only one caller receives the row.
func (s *Store) ClaimCharge(ctx context.Context, id model.OutcomeID, now time.Time) (*model.Charge, bool, error) {
	var (
		action, actor, target string
		markedAt              sql.NullInt64
		expiresAt             int64
	)
	err := s.sqlDB.QueryRowContext(
		ctx,
		`DELETE FROM charges WHERE outcome_id = ?
		 RETURNING action, actor_id, target_id, marked_at, expires_at`,
		string(id),
	).Scan(&action, &actor, &target, &markedAt, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("claim charge: %w", err)
	}

	charge := &model.Charge{
		OutcomeID: id,
		Action:    model.Action(action),
		Actor:     model.PlayerID(actor),
		Target:    model.PlayerID(target),
		ExpiresAt: fromMillis(expiresAt),
	}
	if markedAt.Valid {
		at := fromMillis(markedAt.Int64)
		charge.MarkedAt = &at
	}
	if !now.Before(charge.ExpiresAt) {
		return nil, false, nil
	}
	return charge, true, nil
}

func (s *Store) changed(ctx context.Context, id model.PlayerID, res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 1 {
		return true, nil
	}
	if _, err := s.counter(ctx, id, string(model.FieldBalance)); err != nil {
		return false, err
	}
	return false, nil
}

// counter reads one whitelisted column, returning ErrPlayerNotFound for unknown ids.
func (s *Store) counter(ctx context.Context, id model.PlayerID, col string) (int64, error) {
	var value int64
	err := s.sqlDB.QueryRowContext(ctx, fmt.Sprintf(`SELECT %s FROM players WHERE id = ?`, col), string(id)).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, model.ErrPlayerNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", col, err)
	}
	return value, nil
}

func boolInt(v bool) int64 {
	if v {
		return 1
	}
	return 0
}
