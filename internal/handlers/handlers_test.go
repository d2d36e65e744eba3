package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"uk.co.dudmesh.smsync/internal/model"
)

type fakeService struct {
	syncErr  error
	messages map[string]*model.Message
	received []*model.ReceivedSmsParams
}

func (s *fakeService) Sync(ctx context.Context) (*model.SyncResult, error) {
	if s.syncErr != nil {
		return nil, s.syncErr
	}
	return &model.SyncResult{RunID: "run", Messages: len(s.messages)}, nil
}

func (s *fakeService) InsertReceivedSms(ctx context.Context, params *model.ReceivedSmsParams) (*model.Message, error) {
	if params.Address == "" {
		return nil, model.ErrorInvalidAddress
	}
	s.received = append(s.received, params)
	return &model.Message{ID: "new", Type: model.MessageTypeSms, Address: params.Address, Body: params.Body}, nil
}

func (s *fakeService) Thread(threadID int64) ([]*model.Message, error) {
	messages := []*model.Message{}
	for _, message := range s.messages {
		if message.ThreadID == threadID {
			messages = append(messages, message)
		}
	}
	return messages, nil
}

func (s *fakeService) Fetch(id string) (*model.Message, error) {
	message, ok := s.messages[id]
	if !ok {
		return nil, model.ErrorMessageNotFound
	}
	return message, nil
}

func (s *fakeService) UnreadCount() (int64, error) {
	var count int64
	for _, message := range s.messages {
		if !message.Read {
			count++
		}
	}
	return count, nil
}

func newFakeService() *fakeService {
	return &fakeService{messages: map[string]*model.Message{
		"a": {ID: "a", ThreadID: 1, Type: model.MessageTypeSms, Body: "hi", Parts: []model.MmsPart{}},
		"b": {ID: "b", ThreadID: 2, Type: model.MessageTypeMms, Read: true, Parts: []model.MmsPart{}},
	}}
}

func do(server *echo.Echo, method, target, body, token string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)
	return rec
}

func TestMessageRoutes(t *testing.T) {
	assert := assert.New(t)

	service := newFakeService()
	server := echo.New()
	Register(server, service, "")

	t.Run("Sync", func(t *testing.T) {
		rec := do(server, http.MethodPost, "/sync", "", "")
		assert.Equal(http.StatusOK, rec.Code)
		result := &model.SyncResult{}
		assert.Nil(json.Unmarshal(rec.Body.Bytes(), result))
		assert.Equal("run", result.RunID)
		assert.Equal(2, result.Messages)
	})

	t.Run("Sync conflict", func(t *testing.T) {
		service.syncErr = model.ErrorSyncInProgress
		defer func() { service.syncErr = nil }()
		rec := do(server, http.MethodPost, "/sync", "", "")
		assert.Equal(http.StatusConflict, rec.Code)
	})

	t.Run("Thread", func(t *testing.T) {
		rec := do(server, http.MethodGet, "/threads/1/messages", "", "")
		assert.Equal(http.StatusOK, rec.Code)
		messages := []model.Message{}
		assert.Nil(json.Unmarshal(rec.Body.Bytes(), &messages))
		if assert.Len(messages, 1) {
			assert.Equal("a", messages[0].ID)
		}
	})

	t.Run("Thread with bad id", func(t *testing.T) {
		rec := do(server, http.MethodGet, "/threads/abc/messages", "", "")
		assert.Equal(http.StatusBadRequest, rec.Code)
	})

	t.Run("Message", func(t *testing.T) {
		rec := do(server, http.MethodGet, "/messages/b", "", "")
		assert.Equal(http.StatusOK, rec.Code)
		assert.Contains(rec.Body.String(), `"type":"mms"`)
		assert.Contains(rec.Body.String(), `"parts":[]`)

		rec = do(server, http.MethodGet, "/messages/zzz", "", "")
		assert.Equal(http.StatusNotFound, rec.Code)
	})

	t.Run("Unread", func(t *testing.T) {
		rec := do(server, http.MethodGet, "/unread", "", "")
		assert.Equal(http.StatusOK, rec.Code)
		assert.JSONEq(`{"unread":1}`, rec.Body.String())
	})

	t.Run("Receive sms", func(t *testing.T) {
		rec := do(server, http.MethodPost, "/sms/received", `{"address":"+15551234567","body":"hi","sentTime":1000}`, "")
		assert.Equal(http.StatusCreated, rec.Code)
		if assert.Len(service.received, 1) {
			assert.Equal(int64(1000), service.received[0].SentTime)
		}

		rec = do(server, http.MethodPost, "/sms/received", `{"body":"hi"}`, "")
		assert.Equal(http.StatusBadRequest, rec.Code)
	})
}

func signed(t *testing.T, secret string, expiresAt time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.StandardClaims{
		Subject:   "tester",
		ExpiresAt: expiresAt.Unix(),
	})
	raw, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return raw
}

func TestRequireToken(t *testing.T) {
	assert := assert.New(t)

	server := echo.New()
	Register(server, newFakeService(), "secret")

	t.Run("Missing token", func(t *testing.T) {
		rec := do(server, http.MethodGet, "/unread", "", "")
		assert.Equal(http.StatusUnauthorized, rec.Code)
	})

	t.Run("Valid token", func(t *testing.T) {
		rec := do(server, http.MethodGet, "/unread", "", signed(t, "secret", time.Now().Add(time.Hour)))
		assert.Equal(http.StatusOK, rec.Code)
	})

	t.Run("Wrong secret", func(t *testing.T) {
		rec := do(server, http.MethodGet, "/unread", "", signed(t, "other", time.Now().Add(time.Hour)))
		assert.Equal(http.StatusUnauthorized, rec.Code)
	})

	t.Run("Expired token", func(t *testing.T) {
		rec := do(server, http.MethodGet, "/unread", "", signed(t, "secret", time.Now().Add(-time.Hour)))
		assert.Equal(http.StatusUnauthorized, rec.Code)
	})

	t.Run("Claims are exposed", func(t *testing.T) {
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+signed(t, "secret", time.Now().Add(time.Hour)))
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		var subject string
		handler := RequireToken("secret")(func(c echo.Context) error {
			claims, ok := Claims(c)
			if ok {
				subject = claims.Subject
			}
			return c.NoContent(http.StatusNoContent)
		})
		assert.Nil(handler(c))
		assert.Equal("tester", subject)
	})
}
