package provider

import (
	"context"
	"fmt"

	"uk.co.dudmesh.smsync/internal/cursor"
)

// The unioned conversation query. sms rows leave the pdu columns null and the
// other way round; normalized_date puts both date units in milliseconds for
// ordering only, date itself is returned raw. A pdu can have several
// pending_msgs rows, err_type takes the highest so each pdu stays one row.
const messagesQuery = `
select 'sms' as transport_type,
	s._id as _id, s.thread_id as thread_id, s.date as date, s.date_sent as date_sent,
	s.read as read, s.locked as locked, s.date as normalized_date,
	s.address as address, s.body as body, s.seen as seen, s.type as type,
	s.status as status, s.error_code as error_code,
	null as sub, null as sub_cs, null as m_type, null as msg_box,
	null as d_rpt, null as rr, null as err_type, null as st
from sms s
union all
select 'mms',
	p._id, p.thread_id, p.date, p.date_sent,
	p.read, p.locked, p.date * 1000,
	null, null, p.seen, null,
	null, null,
	p.sub, p.sub_cs, p.m_type, p.msg_box,
	p.d_rpt, p.rr, (select max(pm.err_type) from pending_msgs pm where pm.msg_id = p._id), p.st
from pdu p
order by normalized_date desc, _id desc`

// MessagesCursor is the row source for a full sync.
func (p *provider) MessagesCursor(ctx context.Context) (cursor.Cursor, error) {
	rows, err := p.db.QueryxContext(ctx, messagesQuery)
	if err != nil {
		return nil, fmt.Errorf("querying messages: %w", err)
	}
	return rows, nil
}

// SmsCursor reads a single sms row in the sms table's own shape, which carries
// neither the discriminator nor any pdu column.
func (p *provider) SmsCursor(ctx context.Context, id int64) (cursor.Cursor, error) {
	rows, err := p.db.QueryxContext(ctx, `select
		_id, thread_id, address, date, date_sent, read, seen, locked,
		status, type, body, error_code
		from sms where _id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("querying sms %d: %w", id, err)
	}
	return rows, nil
}

// MmsCursor reads a single pdu row without err_type from pending_msgs.
func (p *provider) MmsCursor(ctx context.Context, id int64) (cursor.Cursor, error) {
	rows, err := p.db.QueryxContext(ctx, `select
		_id, thread_id, date, date_sent, read, seen, locked,
		sub, sub_cs, m_type, msg_box, d_rpt, rr, st
		from pdu where _id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("querying mms %d: %w", id, err)
	}
	return rows, nil
}

func (p *provider) AddressCursor(ctx context.Context, contentID int64, addrType int) (cursor.Cursor, error) {
	rows, err := p.db.QueryxContext(ctx, `select address, charset
		from addr where msg_id = ? and type = ?
		order by _id`, contentID, addrType)
	if err != nil {
		return nil, fmt.Errorf("querying addresses of mms %d: %w", contentID, err)
	}
	return rows, nil
}

func (p *provider) PartsCursor(ctx context.Context, contentID int64) (cursor.Cursor, error) {
	rows, err := p.db.QueryxContext(ctx, `select _id, mid, seq, ct, name, text, _data
		from part where mid = ?
		order by seq, _id`, contentID)
	if err != nil {
		return nil, fmt.Errorf("querying parts of mms %d: %w", contentID, err)
	}
	return rows, nil
}
