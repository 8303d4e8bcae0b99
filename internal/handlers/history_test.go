package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"storefront-chat-service/internal/chat"
	"storefront-chat-service/internal/mocks"
	"storefront-chat-service/internal/models"
)

func setupHistoryRouter(handler *HistoryHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/rooms/:room_id/messages", handler.GetRoomMessages)
	return r
}

func TestGetRoomMessagesSuccess(t *testing.T) {
	repo := new(mocks.MessageRepositoryMock)
	router := setupHistoryRouter(NewHistoryHandler(repo))

	repo.On("RecentMessages", mock.Anything, "lobby", chat.DefaultHistoryLimit).
		Return([]models.Message{
			{ID: 1, RoomID: "lobby", Sender: models.Participant{ID: "u1", Name: "Ann"}, Body: "hi"},
			{ID: 2, RoomID: "lobby", Sender: models.Participant{ID: "u2", Name: "Bob"}, Body: "hey"},
		}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/rooms/lobby/messages", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Messages []models.Message `json:"messages"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Messages, 2)
	assert.Equal(t, "hi", resp.Messages[0].Body)
	assert.Equal(t, "u2", resp.Messages[1].Sender.ID)
	repo.AssertExpectations(t)
}

func TestGetRoomMessagesRepoError(t *testing.T) {
	repo := new(mocks.MessageRepositoryMock)
	router := setupHistoryRouter(NewHistoryHandler(repo))

	repo.On("RecentMessages", mock.Anything, "lobby", chat.DefaultHistoryLimit).
		Return(([]models.Message)(nil), assert.AnError).Once()

	req := httptest.NewRequest(http.MethodGet, "/rooms/lobby/messages", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	repo.AssertExpectations(t)
}
