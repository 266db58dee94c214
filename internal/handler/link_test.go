package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quicklinkhq/scan-tracker/internal/domain"
	"github.com/quicklinkhq/scan-tracker/internal/handler"
	"github.com/quicklinkhq/scan-tracker/pkg/logger"
)

type fakeWriter struct {
	created *domain.LinkRecord
	err     error
}

func (f *fakeWriter) Create(_ context.Context, link *domain.LinkRecord) error {
	if f.err != nil {
		return f.err
	}
	f.created = link
	return nil
}

type fakeUploader struct {
	key  string
	data []byte
	err  error
}

func (f *fakeUploader) Upload(_ context.Context, key string, data []byte, _ string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.key = key
	f.data = data
	return "https://cdn.example.com/" + key, nil
}

func linkRouter(writer handler.LinkWriter, uploader *fakeUploader) *gin.Engine {
	h := handler.NewLinkHandler(writer, uploader, "https://sho.rt", logger.NewNop())
	router := gin.New()
	router.POST("/api/links", h.HandleCreate)
	return router
}

func postLink(t *testing.T, router *gin.Engine, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/links", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHandleCreate(t *testing.T) {
	writer := &fakeWriter{}
	uploader := &fakeUploader{}

	w := postLink(t, linkRouter(writer, uploader), `{"url": "https://example.org/page"}`)

	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		ID             string `json:"id"`
		DestinationURL string `json:"destination_url"`
		RedirectURL    string `json:"redirect_url"`
		QRImageURL     string `json:"qr_image_url"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.Len(t, resp.ID, 8)
	assert.Equal(t, "https://example.org/page", resp.DestinationURL)
	assert.Equal(t, "https://sho.rt/r/"+resp.ID, resp.RedirectURL)
	assert.Equal(t, "https://cdn.example.com/qrcodes/"+resp.ID+".png", resp.QRImageURL)

	require.NotNil(t, writer.created)
	assert.Equal(t, resp.ID, writer.created.ID)
	assert.Equal(t, "https://example.org/page", writer.created.DestinationURL)
	assert.False(t, writer.created.CreatedAt.IsZero())

	assert.Equal(t, "qrcodes/"+resp.ID+".png", uploader.key)
	assert.NotEmpty(t, uploader.data, "expected a rendered QR image")
}

func TestHandleCreate_InvalidBody(t *testing.T) {
	for name, body := range map[string]string{
		"empty object": `{}`,
		"not json":     `url=https://example.org`,
		"relative url": `{"url": "/just/a/path"}`,
		"wrong scheme": `{"url": "ftp://example.org/file"}`,
		"missing host": `{"url": "https://"}`,
		"not a url":    `{"url": "::::"}`,
		"empty url":    `{"url": ""}`,
	} {
		t.Run(name, func(t *testing.T) {
			w := postLink(t, linkRouter(&fakeWriter{}, &fakeUploader{}), body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestHandleCreate_UploadFailure(t *testing.T) {
	uploader := &fakeUploader{err: errors.New("bucket unavailable")}
	writer := &fakeWriter{}

	w := postLink(t, linkRouter(writer, uploader), `{"url": "https://example.org/page"}`)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Nil(t, writer.created, "no link row when the image upload fails")
}

func TestHandleCreate_StoreFailure(t *testing.T) {
	writer := &fakeWriter{err: errors.New("connection refused")}

	w := postLink(t, linkRouter(writer, &fakeUploader{}), `{"url": "https://example.org/page"}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
