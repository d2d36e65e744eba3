package messagestore

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"uk.co.dudmesh.smsync/internal/model"
)

const DatabaseName = "messages.db"

type Config interface {
	DataDirectory() string
}

type messagestore struct {
	db *sqlx.DB
}

func New(config Config) (*messagestore, error) {
	dbName := filepath.Join(config.DataDirectory(), DatabaseName)

	isCreating := false
	_, err := os.Stat(dbName)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("checking if database exists: %w", err)
		}
		isCreating = true
	}

	db, err := sqlx.Connect("sqlite3", "file:"+dbName+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	store := &messagestore{db}
	if isCreating {
		if err := store.createTables(); err != nil {
			db.Close()
			return nil, fmt.Errorf("creating tables: %w", err)
		}
	}

	return store, nil
}

func (s *messagestore) Close() error {
	return s.db.Close()
}

func (s *messagestore) createTables() error {
	_, err := s.db.Exec(`create table message(
		ID                      text not null primary key,
		ThreadID                integer not null,
		ContentID               integer not null,
		Type                    text not null,
		Address                 text not null,
		BoxID                   integer not null default 0,
		Date                    integer not null,
		DateSent                integer not null,
		Read                    boolean not null default 0,
		Seen                    boolean not null default 0,
		Locked                  boolean not null default 0,
		Body                    text not null default '',
		ErrorCode               integer not null default 0,
		DeliveryStatus          integer not null default 0,
		Subject                 text not null default '',
		TextContentType         text not null default '',
		AttachmentType          text not null default '',
		MmsStatus               integer not null default 0,
		MessageType             integer not null default 0,
		MessageSize             integer not null default 0,
		ErrorType               integer not null default 0,
		MmsDeliveryStatusString text not null default '',
		ReadReportString        text not null default ''
	)`)
	if err != nil {
		return fmt.Errorf("creating message table: %w", err)
	}

	_, err = s.db.Exec(`create unique index message_content
		on message(Type, ContentID) where Type in ('sms', 'mms')`)
	if err != nil {
		return fmt.Errorf("creating message content index: %w", err)
	}

	_, err = s.db.Exec(`create index message_thread on message(ThreadID, Date)`)
	if err != nil {
		return fmt.Errorf("creating message thread index: %w", err)
	}

	_, err = s.db.Exec(`create table mms_part(
		ID        integer not null,
		MessageID text not null references message(ID) on delete cascade,
		Seq       integer not null default 0,
		Type      text not null,
		Text      text null,
		Image     text null,
		primary key (MessageID, ID)
	)`)
	if err != nil {
		return fmt.Errorf("creating mms_part table: %w", err)
	}

	return nil
}

const insertMessage = `insert into message
	(ID, ThreadID, ContentID, Type, Address, BoxID, Date, DateSent, Read, Seen, Locked,
	Body, ErrorCode, DeliveryStatus,
	Subject, TextContentType, AttachmentType, MmsStatus, MessageType, MessageSize, ErrorType,
	MmsDeliveryStatusString, ReadReportString)
	values(:ID, :ThreadID, :ContentID, :Type, :Address, :BoxID, :Date, :DateSent, :Read, :Seen, :Locked,
	:Body, :ErrorCode, :DeliveryStatus,
	:Subject, :TextContentType, :AttachmentType, :MmsStatus, :MessageType, :MessageSize, :ErrorType,
	:MmsDeliveryStatusString, :ReadReportString)`

const insertPart = `insert into mms_part
	(ID, MessageID, Seq, Type, Text, Image)
	values(:ID, :MessageID, :Seq, :Type, :Text, :Image)`

// ReplaceAll swaps the stored messages for the given set in one transaction.
func (s *messagestore) ReplaceAll(messages []*model.Message) error {
	return s.inTx(func(tx *sqlx.Tx) error {
		if _, err := tx.Exec(`delete from mms_part`); err != nil {
			return fmt.Errorf("clearing parts: %w", err)
		}
		if _, err := tx.Exec(`delete from message`); err != nil {
			return fmt.Errorf("clearing messages: %w", err)
		}
		for _, message := range messages {
			if err := putMessage(tx, message); err != nil {
				return err
			}
		}
		return nil
	})
}

// Put stores one message, replacing an earlier copy of the same sms or pdu row.
func (s *messagestore) Put(message *model.Message) error {
	return s.inTx(func(tx *sqlx.Tx) error {
		if message.IsSms() || message.IsMms() {
			_, err := tx.Exec(`delete from mms_part where MessageID in
				(select ID from message where Type = ? and ContentID = ?)`, message.Type, message.ContentID)
			if err != nil {
				return fmt.Errorf("removing previous parts: %w", err)
			}
			_, err = tx.Exec(`delete from message where Type = ? and ContentID = ?`, message.Type, message.ContentID)
			if err != nil {
				return fmt.Errorf("removing previous message: %w", err)
			}
		}
		return putMessage(tx, message)
	})
}

func putMessage(tx *sqlx.Tx, message *model.Message) error {
	res, err := tx.NamedExec(insertMessage, message)
	if err != nil {
		return fmt.Errorf("inserting message %s: %w", message.ID, err)
	}
	if rows, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	} else if rows != 1 {
		return fmt.Errorf("expected 1 row to be affected, got %d", rows)
	}

	for i := range message.Parts {
		part := message.Parts[i]
		part.MessageID = message.ID
		if _, err := tx.NamedExec(insertPart, &part); err != nil {
			return fmt.Errorf("inserting part %d of message %s: %w", part.ID, message.ID, err)
		}
	}
	return nil
}

func (s *messagestore) Fetch(id string) (*model.Message, error) {
	message := &model.Message{}
	err := s.db.Get(message, `select * from message where ID = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrorMessageNotFound
		}
		return nil, fmt.Errorf("fetching message: %w", err)
	}

	if err := s.attachParts([]*model.Message{message}); err != nil {
		return nil, err
	}
	return message, nil
}

// ForThread returns the messages of a thread, newest first.
func (s *messagestore) ForThread(threadID int64) ([]*model.Message, error) {
	messages := []*model.Message{}
	err := s.db.Select(&messages, `select * from message
		where ThreadID = ?
		order by Date desc, ID`, threadID)
	if err != nil {
		return nil, fmt.Errorf("fetching thread messages: %w", err)
	}

	if err := s.attachParts(messages); err != nil {
		return nil, err
	}
	return messages, nil
}

func (s *messagestore) UnreadCount() (int64, error) {
	var count int64
	if err := s.db.Get(&count, `select count(*) from message where Read = 0`); err != nil {
		return 0, fmt.Errorf("counting unread messages: %w", err)
	}
	return count, nil
}

func (s *messagestore) Count() (int64, error) {
	var count int64
	if err := s.db.Get(&count, `select count(*) from message`); err != nil {
		return 0, fmt.Errorf("counting messages: %w", err)
	}
	return count, nil
}

func (s *messagestore) attachParts(messages []*model.Message) error {
	if len(messages) == 0 {
		return nil
	}

	ids := make([]string, 0, len(messages))
	byID := make(map[string]*model.Message, len(messages))
	for _, message := range messages {
		message.Parts = []model.MmsPart{}
		ids = append(ids, message.ID)
		byID[message.ID] = message
	}

	query, args, err := sqlx.In(`select * from mms_part
		where MessageID in (?)
		order by MessageID, Seq, ID`, ids)
	if err != nil {
		return fmt.Errorf("building parts query: %w", err)
	}

	parts := []model.MmsPart{}
	if err := s.db.Select(&parts, s.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("fetching parts: %w", err)
	}
	for _, part := range parts {
		if message, ok := byID[part.MessageID]; ok {
			message.Parts = append(message.Parts, part)
		}
	}
	return nil
}

func (s *messagestore) inTx(fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}
