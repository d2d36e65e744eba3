package mapper

import (
	"context"
	"fmt"

	"github.com/labstack/gommon/log"
	"uk.co.dudmesh.smsync/internal/cursor"
	"uk.co.dudmesh.smsync/internal/keys"
	"uk.co.dudmesh.smsync/internal/model"
	"uk.co.dudmesh.smsync/internal/telephony"
)

// AddressSource opens the addr rows of a pdu filtered by role.
type AddressSource interface {
	AddressCursor(ctx context.Context, contentID int64, addrType int) (cursor.Cursor, error)
}

// PartSource opens the part rows of a pdu.
type PartSource interface {
	PartsCursor(ctx context.Context, contentID int64) (cursor.Cursor, error)
}

type PartRowMapper interface {
	MapCursor(c cursor.Cursor) ([]model.MmsPart, error)
}

type messageMapper struct {
	keys       keys.Manager
	addresses  AddressSource
	parts      PartSource
	partMapper PartRowMapper
}

func New(keys keys.Manager, addresses AddressSource, parts PartSource, partMapper PartRowMapper) *messageMapper {
	return &messageMapper{
		keys:       keys,
		addresses:  addresses,
		parts:      parts,
		partMapper: partMapper,
	}
}

// Map converts the row into a new Message. It never fails: absent columns,
// NULL values and failed secondary lookups all fall back to zero values.
// Mapping the same row twice yields equal messages apart from ID.
func (m *messageMapper) Map(ctx context.Context, row *cursor.Row, columns MessageColumns) *model.Message {
	message := &model.Message{
		ID:    m.keys.NewID(),
		Type:  messageType(row, columns),
		Parts: []model.MmsPart{},
	}

	message.ThreadID = int64Or(row, columns, FieldThreadID, 0)
	message.ContentID = int64Or(row, columns, FieldMsgID, 0)
	message.Date = int64Or(row, columns, FieldDate, 0)
	message.DateSent = int64Or(row, columns, FieldDateSent, 0)
	message.Read = flag(row, columns, FieldRead)
	message.Locked = flag(row, columns, FieldLocked)

	switch message.Type {
	case model.MessageTypeSms:
		mapSms(row, columns, message)
	case model.MessageTypeMms:
		m.mapMms(ctx, row, columns, message)
	}

	return message
}

// Each maps every remaining row of c, building the column table once from the
// cursor's shape. The cursor is closed on return.
func (m *messageMapper) Each(ctx context.Context, c cursor.Cursor, fn func(message *model.Message) error) error {
	names, err := c.Columns()
	if err != nil {
		c.Close()
		return fmt.Errorf("reading columns: %w", err)
	}
	columns := NewMessageColumns(names)

	return cursor.EachNamed(c, names, func(row *cursor.Row) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		return fn(m.Map(ctx, row, columns))
	})
}

func messageType(row *cursor.Row, columns MessageColumns) model.MessageType {
	switch {
	case columns.Has(FieldMsgType):
		return model.MessageType(stringOrEmpty(row, columns, FieldMsgType))
	case columns.Has(FieldMmsSubject):
		return model.MessageTypeMms
	case columns.Has(FieldSmsAddress):
		return model.MessageTypeSms
	default:
		return model.MessageTypeUnknown
	}
}

func mapSms(row *cursor.Row, columns MessageColumns, message *model.Message) {
	message.Address = stringOrEmpty(row, columns, FieldSmsAddress)
	message.BoxID = intOr(row, columns, FieldSmsType, 0)
	message.Seen = flag(row, columns, FieldSmsSeen)
	message.Body = stringOrEmpty(row, columns, FieldSmsBody)
	message.ErrorCode = intOr(row, columns, FieldSmsErrorCode, 0)
	message.DeliveryStatus = intOr(row, columns, FieldSmsStatus, 0)
}

func (m *messageMapper) mapMms(ctx context.Context, row *cursor.Row, columns MessageColumns, message *model.Message) {
	message.Address = m.mmsAddress(ctx, message.ContentID)
	message.BoxID = intOr(row, columns, FieldMmsMessageBox, 0)
	message.Date *= 1000
	message.DateSent *= 1000
	message.Seen = flag(row, columns, FieldMmsSeen)
	message.MmsDeliveryStatusString = stringOrEmpty(row, columns, FieldMmsDeliveryReport)
	message.ErrorType = intOr(row, columns, FieldMmsErrorType, 0)
	message.MessageSize = 0
	message.ReadReportString = stringOrEmpty(row, columns, FieldMmsReadReport)
	message.MessageType = intOr(row, columns, FieldMmsMessageType, 0)
	message.MmsStatus = intOr(row, columns, FieldMmsStatus, 0)
	message.Subject = stringOrEmpty(row, columns, FieldMmsSubject)
	message.TextContentType = ""
	message.AttachmentType = model.AttachmentTypeNotLoaded

	message.Parts = append(message.Parts, m.mmsParts(ctx, message.ContentID)...)
}

// mmsAddress returns the first "From" address of the pdu. The addr cursor is
// closed before returning.
func (m *messageMapper) mmsAddress(ctx context.Context, contentID int64) string {
	if m.addresses == nil {
		return ""
	}

	c, err := m.addresses.AddressCursor(ctx, contentID, telephony.PduFrom)
	if err != nil {
		log.Warnf("looking up sender of mms %d: %+v", contentID, err)
		return ""
	}
	if c == nil {
		return ""
	}
	defer c.Close()

	if !c.Next() {
		if err := c.Err(); err != nil {
			log.Warnf("reading sender of mms %d: %+v", contentID, err)
		}
		return ""
	}

	row, err := cursor.Scan(c)
	if err != nil {
		log.Warnf("scanning sender of mms %d: %+v", contentID, err)
		return ""
	}
	if row.Len() == 0 {
		return ""
	}
	address, _ := row.String(0)
	return address
}

func (m *messageMapper) mmsParts(ctx context.Context, contentID int64) []model.MmsPart {
	if m.parts == nil || m.partMapper == nil {
		return nil
	}

	c, err := m.parts.PartsCursor(ctx, contentID)
	if err != nil {
		log.Warnf("looking up parts of mms %d: %+v", contentID, err)
		return nil
	}
	if c == nil {
		return nil
	}

	parts, err := m.partMapper.MapCursor(c)
	if err != nil {
		log.Warnf("mapping parts of mms %d: %+v", contentID, err)
	}
	return parts
}
