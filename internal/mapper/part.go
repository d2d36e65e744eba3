package mapper

import (
	"strings"

	"uk.co.dudmesh.smsync/internal/cursor"
	"uk.co.dudmesh.smsync/internal/model"
	"uk.co.dudmesh.smsync/internal/telephony"
)

type partMapper struct{}

func NewPartMapper() *partMapper {
	return &partMapper{}
}

func (p *partMapper) Map(row *cursor.Row) model.MmsPart {
	columns := row.Columns()

	part := model.MmsPart{}
	if i, ok := columns.Lookup(telephony.ID); ok {
		part.ID = row.Int64(i)
	}
	if i, ok := columns.Lookup(telephony.PartSeq); ok {
		part.Seq = row.Int(i)
	}
	if i, ok := columns.Lookup(telephony.PartContentType); ok {
		part.Type, _ = row.String(i)
	}
	if i, ok := columns.Lookup(telephony.PartText); ok {
		if text, ok := row.String(i); ok {
			part.Text = &text
		}
	}
	if i, ok := columns.Lookup(telephony.PartData); ok && isImage(part.Type) {
		if data, ok := row.String(i); ok {
			part.Image = &data
		}
	}
	return part
}

// MapCursor maps every part row and closes c. Rows mapped before a failure are
// still returned.
func (p *partMapper) MapCursor(c cursor.Cursor) ([]model.MmsPart, error) {
	parts := []model.MmsPart{}
	err := cursor.Each(c, func(row *cursor.Row) error {
		parts = append(parts, p.Map(row))
		return nil
	})
	return parts, err
}

func isImage(contentType string) bool {
	return strings.HasPrefix(strings.ToLower(contentType), "image/")
}
