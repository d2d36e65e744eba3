// Package provider is the telephony provider: an SQLite database holding the
// raw sms, pdu, addr and part tables that messages are synced from.
package provider

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

type Config interface {
	ProviderPath() string
}

type provider struct {
	path string
	db   *sqlx.DB
	now  func() time.Time
}

func Open(config Config) (*provider, error) {
	dbName := config.ProviderPath()

	isCreating := false
	_, err := os.Stat(dbName)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("checking if provider database exists: %w", err)
		}
		isCreating = true
	}

	db, err := sqlx.Connect("sqlite3", "file:"+dbName+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening provider database: %w", err)
	}

	p := &provider{path: dbName, db: db, now: time.Now}
	if isCreating {
		if err := p.createTables(); err != nil {
			db.Close()
			return nil, fmt.Errorf("creating tables: %w", err)
		}
	}

	return p, nil
}

func (p *provider) Path() string {
	return p.path
}

func (p *provider) Close() error {
	return p.db.Close()
}

var schema = []string{
	`create table threads(
		_id               integer primary key autoincrement,
		recipient_address text not null unique,
		date              integer not null default 0
	)`,
	`create table sms(
		_id        integer primary key autoincrement,
		thread_id  integer not null references threads(_id),
		address    text,
		date       integer not null default 0,
		date_sent  integer not null default 0,
		read       integer not null default 0,
		seen       integer not null default 0,
		locked     integer not null default 0,
		status     integer not null default -1,
		type       integer not null default 1,
		body       text,
		error_code integer not null default 0
	)`,
	`create table pdu(
		_id       integer primary key autoincrement,
		thread_id integer not null references threads(_id),
		date      integer not null default 0,
		date_sent integer not null default 0,
		msg_box   integer not null default 1,
		read      integer not null default 0,
		seen      integer not null default 0,
		locked    integer not null default 0,
		sub       text,
		sub_cs    integer,
		m_type    integer,
		m_size    integer,
		rr        integer,
		d_rpt     integer,
		st        integer,
		ct_t      text
	)`,
	`create table addr(
		_id     integer primary key autoincrement,
		msg_id  integer not null references pdu(_id),
		address text,
		type    integer not null,
		charset integer
	)`,
	`create table part(
		_id   integer primary key autoincrement,
		mid   integer not null references pdu(_id),
		seq   integer not null default 0,
		ct    text,
		name  text,
		text  text,
		_data text
	)`,
	`create table pending_msgs(
		_id        integer primary key autoincrement,
		msg_id     integer not null,
		proto_type integer not null default 0,
		err_type   integer not null default 0
	)`,
	`create index sms_thread_date on sms(thread_id, date)`,
	`create index pdu_thread_date on pdu(thread_id, date)`,
	`create index addr_msg on addr(msg_id, type)`,
	`create index part_mid on part(mid, seq)`,
}

func (p *provider) createTables() error {
	for _, stmt := range schema {
		if _, err := p.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing %q: %w", firstLine(stmt), err)
		}
	}
	return nil
}

func firstLine(stmt string) string {
	for i, r := range stmt {
		if r == '\n' || r == '(' {
			return stmt[:i]
		}
	}
	return stmt
}
