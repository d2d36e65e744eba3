package provider

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"uk.co.dudmesh.smsync/internal/model"
	"uk.co.dudmesh.smsync/internal/telephony"
)

type MmsPartParams struct {
	ContentType string
	Name        string
	Text        *string
	Data        *string
}

type MmsParams struct {
	From       string
	To         []string
	Subject    *string
	Date       int64 // seconds
	DateSent   int64 // seconds
	Box        int
	Read       bool
	Seen       bool
	Status     *int
	ReadReport *int
	Delivery   *int
	ErrorType  *int // written to pending_msgs when set
	Parts      []MmsPartParams
}

// InsertReceivedSms stores an incoming sms in the inbox of the sender's thread.
func (p *provider) InsertReceivedSms(ctx context.Context, address, body string, sentTime int64) (int64, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return 0, model.ErrorInvalidAddress
	}

	var id int64
	err := p.inTx(ctx, func(tx *sqlx.Tx) error {
		threadID, err := threadFor(ctx, tx, address)
		if err != nil {
			return err
		}
		now := p.now().UnixMilli()
		res, err := tx.ExecContext(ctx, `insert into sms
			(thread_id, address, date, date_sent, read, seen, type, body)
			values(?, ?, ?, ?, 0, 0, ?, ?)`,
			threadID, address, now, sentTime, telephony.SmsBoxInbox, body)
		if err != nil {
			return fmt.Errorf("inserting sms: %w", err)
		}
		id, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("getting sms id: %w", err)
		}
		return touchThread(ctx, tx, threadID, now)
	})
	return id, err
}

// InsertSentSms stores an outgoing sms. A zero threadID resolves the thread from
// the address.
func (p *provider) InsertSentSms(ctx context.Context, threadID int64, address, body string) (int64, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return 0, model.ErrorInvalidAddress
	}

	var id int64
	err := p.inTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		if threadID == 0 {
			threadID, err = threadFor(ctx, tx, address)
			if err != nil {
				return err
			}
		}
		now := p.now().UnixMilli()
		res, err := tx.ExecContext(ctx, `insert into sms
			(thread_id, address, date, date_sent, read, seen, type, body)
			values(?, ?, ?, ?, 1, 1, ?, ?)`,
			threadID, address, now, now, telephony.SmsBoxSent, body)
		if err != nil {
			return fmt.Errorf("inserting sms: %w", err)
		}
		id, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("getting sms id: %w", err)
		}
		return touchThread(ctx, tx, threadID, now)
	})
	return id, err
}

// InsertMms stores a pdu with its addr and part rows.
func (p *provider) InsertMms(ctx context.Context, params *MmsParams) (int64, error) {
	from := strings.TrimSpace(params.From)
	if from == "" {
		return 0, model.ErrorInvalidAddress
	}

	box := params.Box
	if box == 0 {
		box = telephony.MmsBoxInbox
	}
	messageType := telephony.PduMessageTypeRetrieveConf
	if box != telephony.MmsBoxInbox {
		messageType = telephony.PduMessageTypeSendReq
	}

	var id int64
	err := p.inTx(ctx, func(tx *sqlx.Tx) error {
		threadAddress := from
		if box != telephony.MmsBoxInbox && len(params.To) > 0 {
			threadAddress = strings.Join(params.To, " ")
		}
		threadID, err := threadFor(ctx, tx, threadAddress)
		if err != nil {
			return err
		}

		var subjectCharset interface{}
		if params.Subject != nil {
			subjectCharset = telephony.CharsetUTF8
		}

		size := 0
		for _, part := range params.Parts {
			if part.Text != nil {
				size += len(*part.Text)
			}
		}

		res, err := tx.ExecContext(ctx, `insert into pdu
			(thread_id, date, date_sent, msg_box, read, seen, sub, sub_cs, m_type, m_size, rr, d_rpt, st, ct_t)
			values(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			threadID, params.Date, params.DateSent, box, boolInt(params.Read), boolInt(params.Seen),
			nullString(params.Subject), subjectCharset, messageType, size,
			nullInt(params.ReadReport), nullInt(params.Delivery), nullInt(params.Status),
			"application/vnd.wap.multipart.related")
		if err != nil {
			return fmt.Errorf("inserting pdu: %w", err)
		}
		id, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("getting pdu id: %w", err)
		}

		if err := insertAddr(ctx, tx, id, from, telephony.PduFrom); err != nil {
			return err
		}
		for _, to := range params.To {
			if err := insertAddr(ctx, tx, id, to, telephony.PduTo); err != nil {
				return err
			}
		}

		for seq, part := range params.Parts {
			_, err := tx.ExecContext(ctx, `insert into part
				(mid, seq, ct, name, text, _data)
				values(?, ?, ?, ?, ?, ?)`,
				id, seq, part.ContentType, part.Name, nullString(part.Text), nullString(part.Data))
			if err != nil {
				return fmt.Errorf("inserting part %d: %w", seq, err)
			}
		}

		if params.ErrorType != nil {
			_, err := tx.ExecContext(ctx, `insert into pending_msgs
				(msg_id, proto_type, err_type)
				values(?, 1, ?)`, id, *params.ErrorType)
			if err != nil {
				return fmt.Errorf("inserting pending message: %w", err)
			}
		}

		return touchThread(ctx, tx, threadID, params.Date*1000)
	})
	return id, err
}

func (p *provider) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := p.db.BeginTxx(ctx, nil)
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

func threadFor(ctx context.Context, tx *sqlx.Tx, address string) (int64, error) {
	_, err := tx.ExecContext(ctx, `insert into threads (recipient_address)
		values(?) on conflict(recipient_address) do nothing`, address)
	if err != nil {
		return 0, fmt.Errorf("creating thread: %w", err)
	}

	var threadID int64
	if err := tx.GetContext(ctx, &threadID, `select _id from threads where recipient_address = ?`, address); err != nil {
		return 0, fmt.Errorf("fetching thread: %w", err)
	}
	return threadID, nil
}

func touchThread(ctx context.Context, tx *sqlx.Tx, threadID, date int64) error {
	_, err := tx.ExecContext(ctx, `update threads set date = max(date, ?) where _id = ?`, date, threadID)
	if err != nil {
		return fmt.Errorf("updating thread date: %w", err)
	}
	return nil
}

func insertAddr(ctx context.Context, tx *sqlx.Tx, messageID int64, address string, addrType int) error {
	_, err := tx.ExecContext(ctx, `insert into addr
		(msg_id, address, type, charset)
		values(?, ?, ?, ?)`, messageID, address, addrType, telephony.CharsetUTF8)
	if err != nil {
		return fmt.Errorf("inserting addr: %w", err)
	}
	return nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullInt(i *int) sql.NullInt64 {
	if i == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*i), Valid: true}
}
