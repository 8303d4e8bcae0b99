package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"storefront-chat-service/internal/mocks"
	"storefront-chat-service/internal/moderation"
)

func setupUploadRouter(handler *UploadHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/uploads", handler.Upload)
	return r
}

func multipartFile(t *testing.T, filename, contentType string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestUploadSuccess(t *testing.T) {
	store := new(mocks.ObjectStoreMock)
	handler := NewUploadHandler(store, moderation.New(moderation.DefaultConfig()))
	router := setupUploadRouter(handler)

	store.On("Put", mock.Anything, "photo.png", "image/png", mock.Anything, int64(4)).
		Return("http://localhost:8083/files/abc.png", nil).Once()

	body, contentType := multipartFile(t, "photo.png", "image/png", []byte("data"))
	req := httptest.NewRequest(http.MethodPost, "/uploads", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "http://localhost:8083/files/abc.png", resp["url"])
	assert.Equal(t, "photo.png", resp["originalName"])
	assert.Equal(t, "image/png", resp["mimeType"])
	store.AssertExpectations(t)
}

func TestUploadRejectedMimeType(t *testing.T) {
	store := new(mocks.ObjectStoreMock)
	handler := NewUploadHandler(store, moderation.New(moderation.DefaultConfig()))
	router := setupUploadRouter(handler)

	body, contentType := multipartFile(t, "tool.exe", "application/x-msdownload", []byte("MZ"))
	req := httptest.NewRequest(http.MethodPost, "/uploads", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, moderation.ReasonUnsupportedFile, resp["error"])
	store.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUploadMissingFile(t *testing.T) {
	store := new(mocks.ObjectStoreMock)
	handler := NewUploadHandler(store, moderation.New(moderation.DefaultConfig()))
	router := setupUploadRouter(handler)

	req := httptest.NewRequest(http.MethodPost, "/uploads", bytes.NewBufferString("not multipart"))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadOversizedBodyReportsFileTooLarge(t *testing.T) {
	store := new(mocks.ObjectStoreMock)
	handler := NewUploadHandler(store, moderation.New(moderation.DefaultConfig()))
	router := setupUploadRouter(handler)

	big := bytes.Repeat([]byte("a"), moderation.MaxFileBytes+8192)
	body, contentType := multipartFile(t, "huge.png", "image/png", big)
	req := httptest.NewRequest(http.MethodPost, "/uploads", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, moderation.ReasonFileTooLarge, resp["error"])
	store.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUploadStoreError(t *testing.T) {
	store := new(mocks.ObjectStoreMock)
	handler := NewUploadHandler(store, moderation.New(moderation.DefaultConfig()))
	router := setupUploadRouter(handler)

	store.On("Put", mock.Anything, "photo.png", "image/png", mock.Anything, int64(4)).
		Return("", assert.AnError).Once()

	body, contentType := multipartFile(t, "photo.png", "image/png", []byte("data"))
	req := httptest.NewRequest(http.MethodPost, "/uploads", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	store.AssertExpectations(t)
}
