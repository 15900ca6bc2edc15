package db

import (
	"context"
	"database/sql"
)

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

type CpStatsCache struct {
	AccountView string
	Payload     string
	UpdatedAt   int64
}

const getCacheEntry = `
select account_view, payload, updated_at from cp_stats_cache
where account_view = ?
`

func (q *Queries) GetCacheEntry(ctx context.Context, accountView string) (CpStatsCache, error) {
	row := q.db.QueryRowContext(ctx, getCacheEntry, accountView)
	var i CpStatsCache
	err := row.Scan(&i.AccountView, &i.Payload, &i.UpdatedAt)
	return i, err
}

const upsertCacheEntry = `
insert into cp_stats_cache (account_view, payload, updated_at)
values (?, ?, ?)
on conflict (account_view) do update set
    payload = excluded.payload,
    updated_at = excluded.updated_at
`

type UpsertCacheEntryParams struct {
	AccountView string
	Payload     string
	UpdatedAt   int64
}

func (q *Queries) UpsertCacheEntry(ctx context.Context, arg UpsertCacheEntryParams) error {
	_, err := q.db.ExecContext(ctx, upsertCacheEntry,
		arg.AccountView,
		arg.Payload,
		arg.UpdatedAt,
	)
	return err
}
