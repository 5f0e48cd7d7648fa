package store

import (
	"context"
	"embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"blackjack_ai/internal/agent"
	"blackjack_ai/internal/domain"
)

//go:embed schema.sql
var schema embed.FS

// DB stores named Q-tables in Postgres.
type DB struct{ *pgxpool.Pool }

func OpenDB(ctx context.Context, dsn string) (*DB, error) {
	p, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &DB{p}, nil
}

func (db *DB) Close()                         { db.Pool.Close() }
func (db *DB) Ping(ctx context.Context) error { return db.Pool.Ping(ctx) }

func (db *DB) Migrate(ctx context.Context) error {
	sqlBytes, err := schema.ReadFile("schema.sql")
	if err != nil {
		return err
	}
	_, err = db.Exec(ctx, string(sqlBytes))
	return err
}

// SaveTable replaces every row stored under name with the contents of t.
func (db *DB) SaveTable(ctx context.Context, name string, cfg agent.Config, t *agent.QTable) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
		INSERT INTO q_tables(name, states, epsilon, alpha, gamma)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (name) DO UPDATE
		   SET states = EXCLUDED.states,
		       epsilon = EXCLUDED.epsilon,
		       alpha = EXCLUDED.alpha,
		       gamma = EXCLUDED.gamma,
		       updated_at = now()
	`, name, t.Len(), cfg.Epsilon, cfg.Alpha, cfg.Gamma); err != nil {
		return fmt.Errorf("upsert q_tables: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM q_values WHERE table_name = $1`, name); err != nil {
		return fmt.Errorf("clear q_values: %w", err)
	}

	rows := make([][]any, 0, t.Len())
	t.Iterate(func(s agent.State, v agent.Values) {
		rows = append(rows, []any{name, s.HandValue, s.DealerUpcard, s.UsableAce, v[domain.Stand], v[domain.Hit]})
	})
	if _, err := tx.CopyFrom(ctx,
		pgx.Identifier{"q_values"},
		[]string{"table_name", "hand_value", "dealer_upcard", "usable_ace", "stand_value", "hit_value"},
		pgx.CopyFromRows(rows),
	); err != nil {
		return fmt.Errorf("copy q_values: %w", err)
	}
	return tx.Commit(ctx)
}

// LoadTable reads the table stored under name. It reports agent.ErrNoTable
// when nothing was saved under that name.
func (db *DB) LoadTable(ctx context.Context, name string) (*agent.QTable, error) {
	var states int
	err := db.QueryRow(ctx, `SELECT states FROM q_tables WHERE name = $1`, name).Scan(&states)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", agent.ErrNoTable, name)
	}
	if err != nil {
		return nil, err
	}

	rows, err := db.Query(ctx, `
		SELECT hand_value, dealer_upcard, usable_ace, stand_value, hit_value
		  FROM q_values
		 WHERE table_name = $1
	`, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	t := agent.NewQTable()
	for rows.Next() {
		var s agent.State
		var v agent.Values
		if err := rows.Scan(&s.HandValue, &s.DealerUpcard, &s.UsableAce, &v[domain.Stand], &v[domain.Hit]); err != nil {
			return nil, err
		}
		t.Set(s, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return t, nil
}

// DeleteTable removes a stored table and its rows.
func (db *DB) DeleteTable(ctx context.Context, name string) error {
	_, err := db.Exec(ctx, `DELETE FROM q_tables WHERE name = $1`, name)
	return err
}
