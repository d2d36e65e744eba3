package model

import "time"

type SyncResult struct {
	RunID     string        `json:"runId"`
	StartedAt time.Time     `json:"startedAt"`
	Duration  time.Duration `json:"duration"`
	Messages  int           `json:"messages"`
	Sms       int           `json:"sms"`
	Mms       int           `json:"mms"`
	Unknown   int           `json:"unknown"`
}

func (r *SyncResult) Count(message *Message) {
	r.Messages++
	switch message.Type {
	case MessageTypeSms:
		r.Sms++
	case MessageTypeMms:
		r.Mms++
	default:
		r.Unknown++
	}
}

type ReceivedSmsParams struct {
	Address  string `json:"address"`
	Body     string `json:"body"`
	SentTime int64  `json:"sentTime"`
}
