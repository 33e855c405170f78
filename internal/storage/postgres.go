package storage

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/cssbattle/championship/internal/config"
	"github.com/cssbattle/championship/internal/core"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schemaSQL string

// OpenPool connects to PostgreSQL with the pool settings from cfg and
// verifies the connection.
func OpenPool(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// Postgres is a core.PlayerStore backed by a pgx pool.
type Postgres struct {
	pool *pgxpool.Pool
	opts Options
}

var _ core.PlayerStore = (*Postgres)(nil)

// NewPostgres wraps pool. Call Migrate before first use on a new database.
func NewPostgres(pool *pgxpool.Pool, opts Options) *Postgres {
	return &Postgres{pool: pool, opts: opts}
}

// Migrate creates the roster tables if they do not exist.
func (p *Postgres) Migrate(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

const upsertPlayerSQL = `
INSERT INTO players (id, full_name, email, email_key, group_id, phone, profile_link, verified)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (email_key) DO UPDATE SET
    full_name    = EXCLUDED.full_name,
    email        = EXCLUDED.email,
    group_id     = EXCLUDED.group_id,
    phone        = EXCLUDED.phone,
    profile_link = EXCLUDED.profile_link,
    verified     = EXCLUDED.verified,
    updated_at   = now()
RETURNING (xmax = 0) AS inserted`

// SavePlayers upserts records in a single transaction.
func (p *Postgres) SavePlayers(ctx context.Context, records []core.PlayerRecord) (core.SaveResult, error) {
	records = dedupe(records)
	var result core.SaveResult

	err := pgx.BeginFunc(ctx, p.pool, func(tx pgx.Tx) error {
		groupIDs, created, err := p.resolveGroups(ctx, tx, groupNames(records))
		if err != nil {
			return err
		}
		result.GroupsCreated = created

		batch := &pgx.Batch{}
		for _, rec := range records {
			batch.Queue(upsertPlayerSQL,
				uuid.New().String(),
				rec.FullName,
				rec.Email,
				emailKey(rec.Email),
				groupIDs[rec.GroupName],
				rec.Phone,
				rec.ProfileLink,
				rec.Verified,
			)
		}

		br := tx.SendBatch(ctx, batch)
		for i := range records {
			var inserted bool
			if err := br.QueryRow().Scan(&inserted); err != nil {
				br.Close()
				return fmt.Errorf("upsert player %d: %w", i+1, err)
			}
			if inserted {
				result.Inserted++
			} else {
				result.Updated++
			}
		}
		return br.Close()
	})
	if err != nil {
		return core.SaveResult{}, err
	}

	return result, nil
}

// resolveGroups maps group names to IDs, creating missing groups when the
// store allows it.
func (p *Postgres) resolveGroups(ctx context.Context, tx pgx.Tx, names []string) (map[string]string, int, error) {
	ids, err := selectGroups(ctx, tx, names)
	if err != nil {
		return nil, 0, err
	}

	var missing []string
	for _, name := range names {
		if _, ok := ids[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return ids, 0, nil
	}
	if !p.opts.CreateMissingGroups {
		return nil, 0, unknownGroupError(missing)
	}

	created := 0
	for _, name := range missing {
		tag, err := tx.Exec(ctx,
			`INSERT INTO competition_groups (id, name) VALUES ($1, $2) ON CONFLICT (name) DO NOTHING`,
			uuid.New().String(), name)
		if err != nil {
			return nil, 0, fmt.Errorf("create group %q: %w", name, err)
		}
		created += int(tag.RowsAffected())
	}

	ids, err = selectGroups(ctx, tx, names)
	if err != nil {
		return nil, 0, err
	}
	return ids, created, nil
}

func selectGroups(ctx context.Context, tx pgx.Tx, names []string) (map[string]string, error) {
	rows, err := tx.Query(ctx, `SELECT id::text, name FROM competition_groups WHERE name = ANY($1)`, names)
	if err != nil {
		return nil, fmt.Errorf("select groups: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]string, len(names))
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("scan group: %w", err)
		}
		ids[name] = id
	}
	return ids, rows.Err()
}

const listPlayersSQL = `
SELECT p.id::text, p.full_name, p.email, g.name, p.phone, p.profile_link, p.verified, p.created_at, p.updated_at
FROM players p
JOIN competition_groups g ON g.id = p.group_id
WHERE $1 = '' OR g.name = $1
ORDER BY g.name, p.full_name, p.email`

// ListPlayers returns players ordered by group then name. An empty group
// returns every player.
func (p *Postgres) ListPlayers(ctx context.Context, group string) ([]core.Player, error) {
	rows, err := p.pool.Query(ctx, listPlayersSQL, group)
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}

	players, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (core.Player, error) {
		var pl core.Player
		err := row.Scan(
			&pl.ID,
			&pl.FullName,
			&pl.Email,
			&pl.GroupName,
			&pl.Phone,
			&pl.ProfileLink,
			&pl.Verified,
			&pl.CreatedAt,
			&pl.UpdatedAt,
		)
		return pl, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan players: %w", err)
	}
	return players, nil
}

// ListGroups returns every group name, sorted.
func (p *Postgres) ListGroups(ctx context.Context) ([]string, error) {
	rows, err := p.pool.Query(ctx, `SELECT name FROM competition_groups ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	groups, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan groups: %w", err)
	}
	return groups, nil
}

// Ping reports whether the database is reachable.
func (p *Postgres) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}
