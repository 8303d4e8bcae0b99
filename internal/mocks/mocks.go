package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"storefront-chat-service/internal/models"
	"storefront-chat-service/internal/repositories"
	"storefront-chat-service/internal/storage"
)

type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) CreateMessage(ctx context.Context, msg models.Message) (models.Message, error) {
	args := m.Called(ctx, msg)
	var stored models.Message
	if val := args.Get(0); val != nil {
		stored = val.(models.Message)
	}
	return stored, args.Error(1)
}

func (m *MessageRepositoryMock) RecentMessages(ctx context.Context, roomID string, limit int) ([]models.Message, error) {
	args := m.Called(ctx, roomID, limit)
	var msgs []models.Message
	if val := args.Get(0); val != nil {
		msgs = val.([]models.Message)
	}
	return msgs, args.Error(1)
}

func (m *MessageRepositoryMock) GetMessage(ctx context.Context, messageID int) (models.Message, error) {
	args := m.Called(ctx, messageID)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) AppendReadReceipt(ctx context.Context, messageID int, rcpt models.ReadReceipt) (bool, error) {
	args := m.Called(ctx, messageID, rcpt)
	return args.Bool(0), args.Error(1)
}

func (m *MessageRepositoryMock) CountByRoom(ctx context.Context, roomID string) (int, error) {
	args := m.Called(ctx, roomID)
	return args.Int(0), args.Error(1)
}

func (m *MessageRepositoryMock) OldestMessageIDs(ctx context.Context, roomID string, n int) ([]int, error) {
	args := m.Called(ctx, roomID, n)
	var ids []int
	if val := args.Get(0); val != nil {
		ids = val.([]int)
	}
	return ids, args.Error(1)
}

func (m *MessageRepositoryMock) DeleteMessages(ctx context.Context, messageIDs []int) error {
	args := m.Called(ctx, messageIDs)
	return args.Error(0)
}

type ObjectStoreMock struct {
	mock.Mock
}

func (m *ObjectStoreMock) Put(ctx context.Context, name, contentType string, r io.Reader, size int64) (string, error) {
	args := m.Called(ctx, name, contentType, r, size)
	return args.String(0), args.Error(1)
}

var _ repositories.MessageRepository = (*MessageRepositoryMock)(nil)
var _ storage.ObjectStore = (*ObjectStoreMock)(nil)
