package model

type MessageType string

const (
	MessageTypeSms     MessageType = "sms"
	MessageTypeMms     MessageType = "mms"
	MessageTypeUnknown MessageType = "unknown"
)

type AttachmentType string

const (
	AttachmentTypeText      AttachmentType = "TEXT"
	AttachmentTypeImage     AttachmentType = "IMAGE"
	AttachmentTypeNotLoaded AttachmentType = "NOT_LOADED"
)

// Message is the normalized form of one sms or pdu row. Only the field group
// matching Type is populated, the other keeps its zero values.
type Message struct {
	ID        string      `db:"ID" json:"id"`
	ThreadID  int64       `db:"ThreadID" json:"threadId"`
	ContentID int64       `db:"ContentID" json:"contentId"`
	Type      MessageType `db:"Type" json:"type"`
	Address   string      `db:"Address" json:"address"`
	BoxID     int         `db:"BoxID" json:"boxId"`
	Date      int64       `db:"Date" json:"date"`
	DateSent  int64       `db:"DateSent" json:"dateSent"`
	Read      bool        `db:"Read" json:"read"`
	Seen      bool        `db:"Seen" json:"seen"`
	Locked    bool        `db:"Locked" json:"locked"`

	// sms
	Body           string `db:"Body" json:"body"`
	ErrorCode      int    `db:"ErrorCode" json:"errorCode"`
	DeliveryStatus int    `db:"DeliveryStatus" json:"deliveryStatus"`

	// mms
	Subject                 string         `db:"Subject" json:"subject"`
	TextContentType         string         `db:"TextContentType" json:"textContentType"`
	AttachmentType          AttachmentType `db:"AttachmentType" json:"attachmentType"`
	MmsStatus               int            `db:"MmsStatus" json:"mmsStatus"`
	MessageType             int            `db:"MessageType" json:"messageType"`
	MessageSize             int            `db:"MessageSize" json:"messageSize"`
	ErrorType               int            `db:"ErrorType" json:"errorType"`
	MmsDeliveryStatusString string         `db:"MmsDeliveryStatusString" json:"mmsDeliveryStatus"`
	ReadReportString        string         `db:"ReadReportString" json:"readReport"`

	Parts []MmsPart `db:"-" json:"parts"`
}

func (m *Message) IsSms() bool {
	return m.Type == MessageTypeSms
}

func (m *Message) IsMms() bool {
	return m.Type == MessageTypeMms
}

type MmsPart struct {
	ID        int64   `db:"ID" json:"id"`
	MessageID string  `db:"MessageID" json:"-"`
	Seq       int     `db:"Seq" json:"seq"`
	Type      string  `db:"Type" json:"type"`
	Text      *string `db:"Text" json:"text,omitempty"`
	Image     *string `db:"Image" json:"image,omitempty"`
}
