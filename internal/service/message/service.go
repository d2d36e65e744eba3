package message

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/labstack/gommon/log"
	"uk.co.dudmesh.smsync/internal/cursor"
	"uk.co.dudmesh.smsync/internal/keys"
	"uk.co.dudmesh.smsync/internal/mapper"
	"uk.co.dudmesh.smsync/internal/messagestore"
	"uk.co.dudmesh.smsync/internal/model"
	"uk.co.dudmesh.smsync/internal/provider"
)

type Config interface {
	messagestore.Config
	provider.Config
}

type Provider interface {
	mapper.AddressSource
	mapper.PartSource
	MessagesCursor(ctx context.Context) (cursor.Cursor, error)
	SmsCursor(ctx context.Context, id int64) (cursor.Cursor, error)
	InsertReceivedSms(ctx context.Context, address, body string, sentTime int64) (int64, error)
	Close() error
}

type Store interface {
	ReplaceAll(messages []*model.Message) error
	Put(message *model.Message) error
	Fetch(id string) (*model.Message, error)
	ForThread(threadID int64) ([]*model.Message, error)
	UnreadCount() (int64, error)
	Close() error
}

type Mapper interface {
	Each(ctx context.Context, c cursor.Cursor, fn func(message *model.Message) error) error
}

type service struct {
	provider Provider
	store    Store
	mapper   Mapper
	syncing  sync.Mutex
	now      func() time.Time
}

func New(config Config) (*service, error) {
	p, err := provider.Open(config)
	if err != nil {
		return nil, fmt.Errorf("opening provider: %w", err)
	}

	store, err := messagestore.New(config)
	if err != nil {
		p.Close()
		return nil, fmt.Errorf("opening message store: %w", err)
	}

	m := mapper.New(keys.New(), p, p, mapper.NewPartMapper())
	return NewWith(p, store, m), nil
}

func NewWith(provider Provider, store Store, mapper Mapper) *service {
	return &service{
		provider: provider,
		store:    store,
		mapper:   mapper,
		now:      time.Now,
	}
}

func (s *service) Close() error {
	storeErr := s.store.Close()
	if err := s.provider.Close(); err != nil {
		return fmt.Errorf("closing provider: %w", err)
	}
	if storeErr != nil {
		return fmt.Errorf("closing message store: %w", storeErr)
	}
	return nil
}

// Sync maps every provider row and replaces the store contents with the result.
// Only one sync runs at a time, a concurrent call gets ErrorSyncInProgress.
func (s *service) Sync(ctx context.Context) (*model.SyncResult, error) {
	if !s.syncing.TryLock() {
		return nil, model.ErrorSyncInProgress
	}
	defer s.syncing.Unlock()

	result := &model.SyncResult{
		RunID:     model.CreateID(),
		StartedAt: s.now().UTC(),
	}

	c, err := s.provider.MessagesCursor(ctx)
	if err != nil {
		return nil, fmt.Errorf("opening messages cursor: %w", err)
	}

	messages := []*model.Message{}
	err = s.mapper.Each(ctx, c, func(message *model.Message) error {
		result.Count(message)
		messages = append(messages, message)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("mapping messages: %w", err)
	}

	if err := s.store.ReplaceAll(messages); err != nil {
		return nil, fmt.Errorf("storing messages: %w", err)
	}

	result.Duration = s.now().UTC().Sub(result.StartedAt)
	log.Infof("sync %s: %d messages (%d sms, %d mms, %d unknown) in %s",
		result.RunID, result.Messages, result.Sms, result.Mms, result.Unknown, result.Duration)

	return result, nil
}

// InsertReceivedSms writes the sms to the provider, then maps and stores it.
func (s *service) InsertReceivedSms(ctx context.Context, params *model.ReceivedSmsParams) (*model.Message, error) {
	if strings.TrimSpace(params.Address) == "" {
		return nil, model.ErrorInvalidAddress
	}

	sentTime := params.SentTime
	if sentTime == 0 {
		sentTime = s.now().UnixMilli()
	}

	id, err := s.provider.InsertReceivedSms(ctx, params.Address, params.Body, sentTime)
	if err != nil {
		return nil, fmt.Errorf("inserting sms: %w", err)
	}

	c, err := s.provider.SmsCursor(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("opening sms cursor: %w", err)
	}

	var message *model.Message
	err = s.mapper.Each(ctx, c, func(m *model.Message) error {
		message = m
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("mapping sms %d: %w", id, err)
	}
	if message == nil {
		return nil, model.ErrorMessageNotFound
	}

	if err := s.store.Put(message); err != nil {
		return nil, fmt.Errorf("storing sms %d: %w", id, err)
	}
	return message, nil
}

func (s *service) Thread(threadID int64) ([]*model.Message, error) {
	messages, err := s.store.ForThread(threadID)
	if err != nil {
		return nil, fmt.Errorf("fetching thread %d: %w", threadID, err)
	}
	return messages, nil
}

func (s *service) Fetch(id string) (*model.Message, error) {
	message, err := s.store.Fetch(id)
	if err != nil {
		return nil, fmt.Errorf("fetching message: %w", err)
	}
	return message, nil
}

func (s *service) UnreadCount() (int64, error) {
	count, err := s.store.UnreadCount()
	if err != nil {
		return 0, fmt.Errorf("counting unread: %w", err)
	}
	return count, nil
}
