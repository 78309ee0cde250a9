// Package sqliteq implements the job store on SQLite. The claim
// protocol relies on immediate transactions: every transaction takes
// the database write lock at BEGIN, so concurrent claimers — including
// ones in separate worker processes — serialize on the store itself.
// First writer wins; the next claimer re-reads after commit and no
// longer sees the job as eligible.
package sqliteq

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
)

const schema = `
create table if not exists jobs (
	id            text primary key,
	command       text not null,
	state         text not null default 'pending',
	attempts      integer not null default 0,
	max_retries   integer not null default 5,
	priority      integer not null default 2,
	created_at    integer not null,
	updated_at    integer not null,
	next_retry_at integer,
	run_at        integer,
	output        text,
	error         text
);
create index if not exists idx_jobs_state on jobs(state);
create index if not exists idx_jobs_next_retry on jobs(next_retry_at);
`

type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the queue database. WAL allows
// concurrent readers, the busy timeout makes writers wait for the
// lock instead of failing, and _txlock=immediate is what makes Claim
// atomic across processes.
func Open(path string) (*Store, error) {
	dsn := path + "?_journal_mode=WAL&_busy_timeout=5000&_txlock=immediate"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqliteq: open %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("sqliteq: ping: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("sqliteq: migrate: %w", err)
	}
	log.Debug().Str("path", path).Msg("job store ready")
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
