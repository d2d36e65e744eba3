package mapper

import (
	"uk.co.dudmesh.smsync/internal/cursor"
	"uk.co.dudmesh.smsync/internal/telephony"
)

// Field is a logical message field read from a row.
type Field int

const (
	FieldMsgType Field = iota
	FieldMsgID
	FieldDate
	FieldDateSent
	FieldRead
	FieldThreadID
	FieldLocked

	FieldSmsAddress
	FieldSmsBody
	FieldSmsSeen
	FieldSmsType
	FieldSmsStatus
	FieldSmsErrorCode

	FieldMmsSubject
	FieldMmsSubjectCharset
	FieldMmsSeen
	FieldMmsMessageType
	FieldMmsMessageBox
	FieldMmsDeliveryReport
	FieldMmsReadReport
	FieldMmsErrorType
	FieldMmsStatus

	fieldCount
)

var fieldColumns = [fieldCount]string{
	FieldMsgType:  telephony.TypeDiscriminatorColumn,
	FieldMsgID:    telephony.ID,
	FieldDate:     telephony.Date,
	FieldDateSent: telephony.DateSent,
	FieldRead:     telephony.Read,
	FieldThreadID: telephony.ThreadID,
	FieldLocked:   telephony.Locked,

	FieldSmsAddress:   telephony.SmsAddress,
	FieldSmsBody:      telephony.SmsBody,
	FieldSmsSeen:      telephony.Seen,
	FieldSmsType:      telephony.SmsType,
	FieldSmsStatus:    telephony.SmsStatus,
	FieldSmsErrorCode: telephony.SmsErrorCode,

	FieldMmsSubject:        telephony.MmsSubject,
	FieldMmsSubjectCharset: telephony.MmsSubjectCharset,
	FieldMmsSeen:           telephony.Seen,
	FieldMmsMessageType:    telephony.MmsMessageType,
	FieldMmsMessageBox:     telephony.MmsMessageBox,
	FieldMmsDeliveryReport: telephony.MmsDeliveryReport,
	FieldMmsReadReport:     telephony.MmsReadReport,
	FieldMmsErrorType:      telephony.ErrorType,
	FieldMmsStatus:         telephony.MmsStatus,
}

func (f Field) Column() string {
	if f < 0 || f >= fieldCount {
		return ""
	}
	return fieldColumns[f]
}

type position struct {
	index   int
	present bool
}

// MessageColumns resolves every Field to its position in one query shape. It
// must be built from the same query the mapped rows come from.
type MessageColumns struct {
	positions [fieldCount]position
}

func NewMessageColumns(names []string) MessageColumns {
	columns := cursor.NewColumns(names)

	var mc MessageColumns
	for f := Field(0); f < fieldCount; f++ {
		if i, ok := columns.Lookup(fieldColumns[f]); ok {
			mc.positions[f] = position{index: i, present: true}
		}
	}
	return mc
}

func (c MessageColumns) Lookup(f Field) (int, bool) {
	if f < 0 || f >= fieldCount {
		return 0, false
	}
	p := c.positions[f]
	return p.index, p.present
}

func (c MessageColumns) Has(f Field) bool {
	_, ok := c.Lookup(f)
	return ok
}
