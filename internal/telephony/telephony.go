// Package telephony names the tables and columns of the telephony provider
// database, following the Android Telephony contract.
package telephony

const (
	ID       = "_id"
	ThreadID = "thread_id"
	Date     = "date"
	DateSent = "date_sent"
	Read     = "read"
	Seen     = "seen"
	Locked   = "locked"
)

// MmsSms columns of the unioned conversation query.
const (
	TypeDiscriminatorColumn = "transport_type"
	NormalizedDate          = "normalized_date"
	ErrorType               = "err_type"
)

const (
	TransportSms = "sms"
	TransportMms = "mms"
)

// Sms columns.
const (
	SmsAddress   = "address"
	SmsBody      = "body"
	SmsType      = "type"
	SmsStatus    = "status"
	SmsErrorCode = "error_code"
)

// Sms message box values stored in the type column.
const (
	SmsBoxAll    = 0
	SmsBoxInbox  = 1
	SmsBoxSent   = 2
	SmsBoxDraft  = 3
	SmsBoxOutbox = 4
	SmsBoxFailed = 5
	SmsBoxQueued = 6
)

const SmsStatusNone = -1

// Mms (pdu table) columns.
const (
	MmsSubject        = "sub"
	MmsSubjectCharset = "sub_cs"
	MmsMessageType    = "m_type"
	MmsMessageBox     = "msg_box"
	MmsMessageSize    = "m_size"
	MmsDeliveryReport = "d_rpt"
	MmsReadReport     = "rr"
	MmsStatus         = "st"
	MmsContentType    = "ct_t"
)

const (
	MmsBoxInbox  = 1
	MmsBoxSent   = 2
	MmsBoxDrafts = 3
	MmsBoxOutbox = 4
)

// Addr columns, one row per participant of a pdu.
const (
	AddrMessageID = "msg_id"
	AddrAddress   = "address"
	AddrType      = "type"
	AddrCharset   = "charset"
)

// Part columns.
const (
	PartMessageID   = "mid"
	PartSeq         = "seq"
	PartContentType = "ct"
	PartName        = "name"
	PartText        = "text"
	PartData        = "_data"
)

// PduHeaders values used for addr.type and pdu.m_type.
const (
	PduBcc  = 0x81
	PduCc   = 0x82
	PduFrom = 0x89
	PduTo   = 0x97

	PduMessageTypeSendReq         = 0x80
	PduMessageTypeNotificationInd = 0x82
	PduMessageTypeRetrieveConf    = 0x84
)

const CharsetUTF8 = 106
