package provider

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"uk.co.dudmesh.smsync/internal/cursor"
	"uk.co.dudmesh.smsync/internal/model"
	"uk.co.dudmesh.smsync/internal/telephony"
)

type testConfig string

func (c testConfig) ProviderPath() string {
	return string(c)
}

func newTestProvider(t *testing.T) *provider {
	t.Helper()
	p, err := Open(testConfig(filepath.Join(t.TempDir(), "telephony.db")))
	require.NoError(t, err)
	t.Cleanup(func() { p.Close() })
	return p
}

func strPtr(s string) *string {
	return &s
}

func intPtr(i int) *int {
	return &i
}

func readAll(t *testing.T, c cursor.Cursor, err error) []*cursor.Row {
	t.Helper()
	require.NoError(t, err)
	rows := []*cursor.Row{}
	require.NoError(t, cursor.Each(c, func(row *cursor.Row) error {
		rows = append(rows, row)
		return nil
	}))
	return rows
}

func column(t *testing.T, row *cursor.Row, name string) int {
	t.Helper()
	i, ok := row.Columns().Lookup(name)
	require.True(t, ok, "column %s missing", name)
	return i
}

func TestProvider(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	p := newTestProvider(t)

	clock := time.UnixMilli(1_500_000_000_000)
	p.now = func() time.Time { return clock }

	received, err := p.InsertReceivedSms(ctx, "+15551234567", "hi", 1_499_999_999_000)
	require.NoError(t, err)

	clock = clock.Add(time.Minute)
	sent, err := p.InsertSentSms(ctx, 0, "+15551234567", "hello back")
	require.NoError(t, err)

	mms, err := p.InsertMms(ctx, &MmsParams{
		From:       "+15557654321",
		To:         []string{"+15550000000"},
		Subject:    strPtr("photo"),
		Date:       1_500_000_030,
		DateSent:   1_500_000_029,
		ReadReport: intPtr(128),
		ErrorType:  intPtr(10),
		Parts: []MmsPartParams{
			{ContentType: "image/jpeg", Name: "photo.jpg", Data: strPtr("/parts/PART_1.jpg")},
			{ContentType: "text/plain", Name: "text.txt", Text: strPtr("look")},
		},
	})
	require.NoError(t, err)

	t.Run("Messages are ordered by normalized date", func(t *testing.T) {
		c, err := p.MessagesCursor(ctx)
		rows := readAll(t, c, err)
		require.Len(t, rows, 3)

		kind := column(t, rows[0], telephony.TypeDiscriminatorColumn)
		id := column(t, rows[0], telephony.ID)
		date := column(t, rows[0], telephony.Date)

		first, _ := rows[0].String(kind)
		assert.Equal("sms", first)
		assert.Equal(sent, rows[0].Int64(id))

		second, _ := rows[1].String(kind)
		assert.Equal("mms", second)
		assert.Equal(mms, rows[1].Int64(id))
		assert.Equal(int64(1_500_000_030), rows[1].Int64(date), "raw seconds are returned")
		assert.Equal(int64(10), rows[1].Int64(column(t, rows[1], telephony.ErrorType)))
		subject, _ := rows[1].String(column(t, rows[1], telephony.MmsSubject))
		assert.Equal("photo", subject)

		third, _ := rows[2].String(kind)
		assert.Equal("sms", third)
		assert.Equal(received, rows[2].Int64(id))
		body, _ := rows[2].String(column(t, rows[2], telephony.SmsBody))
		assert.Equal("hi", body)
		assert.True(rows[2].IsNull(column(t, rows[2], telephony.MmsSubject)))
	})

	t.Run("Sms shape", func(t *testing.T) {
		c, err := p.SmsCursor(ctx, received)
		rows := readAll(t, c, err)
		require.Len(t, rows, 1)
		assert.False(rows[0].HasColumn(telephony.TypeDiscriminatorColumn))
		assert.False(rows[0].HasColumn(telephony.MmsSubject))
		assert.True(rows[0].HasColumn(telephony.SmsAddress))
		assert.Equal(int64(telephony.SmsBoxInbox), rows[0].Int64(column(t, rows[0], telephony.SmsType)))
		assert.Equal(int64(1_499_999_999_000), rows[0].Int64(column(t, rows[0], telephony.DateSent)))
	})

	t.Run("Mms shape", func(t *testing.T) {
		c, err := p.MmsCursor(ctx, mms)
		rows := readAll(t, c, err)
		require.Len(t, rows, 1)
		assert.True(rows[0].HasColumn(telephony.MmsSubject))
		assert.False(rows[0].HasColumn(telephony.ErrorType))
		assert.Equal(int64(telephony.PduMessageTypeRetrieveConf), rows[0].Int64(column(t, rows[0], telephony.MmsMessageType)))
	})

	t.Run("Addresses", func(t *testing.T) {
		c, err := p.AddressCursor(ctx, mms, telephony.PduFrom)
		rows := readAll(t, c, err)
		require.Len(t, rows, 1)
		address, _ := rows[0].String(0)
		assert.Equal("+15557654321", address)

		c, err = p.AddressCursor(ctx, mms, telephony.PduTo)
		rows = readAll(t, c, err)
		require.Len(t, rows, 1)

		c, err = p.AddressCursor(ctx, 999, telephony.PduFrom)
		rows = readAll(t, c, err)
		assert.Empty(rows)
	})

	t.Run("Parts", func(t *testing.T) {
		c, err := p.PartsCursor(ctx, mms)
		rows := readAll(t, c, err)
		require.Len(t, rows, 2)
		ct, _ := rows[0].String(column(t, rows[0], telephony.PartContentType))
		assert.Equal("image/jpeg", ct)
		assert.True(rows[0].IsNull(column(t, rows[0], telephony.PartText)))
		text, _ := rows[1].String(column(t, rows[1], telephony.PartText))
		assert.Equal("look", text)

		c, err = p.PartsCursor(ctx, received)
		rows = readAll(t, c, err)
		assert.Empty(rows)
	})

	t.Run("Threads are shared by address", func(t *testing.T) {
		c, err := p.MessagesCursor(ctx)
		rows := readAll(t, c, err)
		threadOf := func(row *cursor.Row) int64 {
			return row.Int64(column(t, row, telephony.ThreadID))
		}
		assert.Equal(threadOf(rows[0]), threadOf(rows[2]))
		assert.NotEqual(threadOf(rows[0]), threadOf(rows[1]))
	})

	t.Run("Rejects empty address", func(t *testing.T) {
		_, err := p.InsertReceivedSms(ctx, "  ", "x", 0)
		assert.ErrorIs(err, model.ErrorInvalidAddress)
		_, err = p.InsertSentSms(ctx, 0, "", "x")
		assert.ErrorIs(err, model.ErrorInvalidAddress)
		_, err = p.InsertMms(ctx, &MmsParams{})
		assert.ErrorIs(err, model.ErrorInvalidAddress)
	})
}

func TestOpenExisting(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	dbPath := testConfig(filepath.Join(t.TempDir(), "telephony.db"))

	p, err := Open(dbPath)
	require.NoError(t, err)
	_, err = p.InsertReceivedSms(ctx, "+1555", "hi", 1)
	require.NoError(t, err)
	assert.Nil(p.Close())

	p, err = Open(dbPath)
	require.NoError(t, err)
	defer p.Close()
	assert.Equal(string(dbPath), p.Path())

	c, err := p.MessagesCursor(ctx)
	rows := readAll(t, c, err)
	assert.Len(rows, 1)
}

func TestPendingMessages(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	p := newTestProvider(t)

	mms, err := p.InsertMms(ctx, &MmsParams{
		From:      "+15557654321",
		Date:      1_500_000_030,
		ErrorType: intPtr(10),
	})
	require.NoError(t, err)
	_, err = p.db.Exec(`insert into pending_msgs (msg_id, proto_type, err_type) values(?, 1, ?)`, mms, 64)
	require.NoError(t, err)

	plain, err := p.InsertMms(ctx, &MmsParams{From: "+15557654321", Date: 1_500_000_000})
	require.NoError(t, err)

	c, err := p.MessagesCursor(ctx)
	rows := readAll(t, c, err)
	require.Len(t, rows, 2, "one row per pdu")

	id := column(t, rows[0], telephony.ID)
	errType := column(t, rows[0], telephony.ErrorType)

	assert.Equal(mms, rows[0].Int64(id))
	assert.Equal(int64(64), rows[0].Int64(errType))

	assert.Equal(plain, rows[1].Int64(id))
	assert.True(rows[1].IsNull(errType))
}
