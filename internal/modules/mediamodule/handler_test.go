package mediamodule

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/ervall/mediavault/internal/database"
	"github.com/ervall/mediavault/internal/events"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&database.MediaItem{}))
	return db
}

func setupHandler(t *testing.T) (*Handler, *gorm.DB, events.EventBus) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := setupTestDB(t)
	storage, err := NewStorage(t.TempDir(), "/static/uploads")
	require.NoError(t, err)
	bus := events.NewBus()
	return NewHandler(db, storage, bus), db, bus
}

func setupRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.GET("/api/v1/media/videos", h.ListVideos)
	r.GET("/api/v1/media/audio", h.ListAudio)
	r.POST("/api/v1/media/upload", h.Upload)
	r.PUT("/api/v1/media/:id", h.Update)
	r.DELETE("/api/v1/media/:id", h.Delete)
	return r
}

// multipartBody builds an upload request body with one file part and the
// given form fields.
func multipartBody(t *testing.T, filename string, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	if filename != "" {
		part, err := writer.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write([]byte("test media payload"))
		require.NoError(t, err)
	}
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	require.NoError(t, writer.Close())
	return &body, writer.FormDataContentType()
}

func doUpload(t *testing.T, r *gin.Engine, filename string, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartBody(t, filename, fields)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/media/upload", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func doJSON(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestUploadCreatesItem(t *testing.T) {
	h, db, bus := setupHandler(t)
	r := setupRouter(h)

	var published []events.Event
	bus.Subscribe(events.EventMediaUploaded, func(e events.Event) {
		published = append(published, e)
	})

	w := doUpload(t, r, "clip.mp4", map[string]string{
		"media_type": "video",
		"title":      "Clip",
		"genre":      "Synth",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var item database.MediaItem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &item))
	assert.Equal(t, "clip.mp4", item.Filename)
	assert.Equal(t, database.MediaTypeVideo, item.MediaType)
	require.NotNil(t, item.Title)
	assert.Equal(t, "Clip", *item.Title)
	assert.NotEmpty(t, item.URL)

	var count int64
	db.Model(&database.MediaItem{}).Count(&count)
	assert.Equal(t, int64(1), count)

	require.Len(t, published, 1)
	assert.Equal(t, events.EventMediaUploaded, published[0].Type)
}

func TestUploadWithoutFile(t *testing.T) {
	h, _, _ := setupHandler(t)
	r := setupRouter(h)

	w := doUpload(t, r, "", map[string]string{"media_type": "video"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "No file attached")
}

func TestUploadRejectsBadMediaType(t *testing.T) {
	h, _, _ := setupHandler(t)
	r := setupRouter(h)

	w := doUpload(t, r, "pic.png", map[string]string{"media_type": "image"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUploadLinkValidation(t *testing.T) {
	h, db, _ := setupHandler(t)
	r := setupRouter(h)

	parent := database.MediaItem{Filename: "parent.mp4", MediaType: database.MediaTypeVideo}
	require.NoError(t, db.Create(&parent).Error)
	track := database.MediaItem{Filename: "track.mp3", MediaType: database.MediaTypeAudio}
	require.NoError(t, db.Create(&track).Error)

	// Link to a missing item.
	w := doUpload(t, r, "a.mp4", map[string]string{"media_type": "video", "related_to_id": "999"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "does not exist")

	// Link to an audio item.
	w = doUpload(t, r, "b.mp4", map[string]string{
		"media_type":    "video",
		"related_to_id": fmt.Sprint(track.ID),
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "must be a video")

	// Valid video child.
	w = doUpload(t, r, "c.mp4", map[string]string{
		"media_type":    "video",
		"related_to_id": fmt.Sprint(parent.ID),
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var child database.MediaItem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &child))

	// A child cannot become a parent: linking under it is rejected.
	w = doUpload(t, r, "d.mp4", map[string]string{
		"media_type":    "video",
		"related_to_id": fmt.Sprint(child.ID),
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "already a child")
}

func TestUpdateTitleAndGenre(t *testing.T) {
	h, db, _ := setupHandler(t)
	r := setupRouter(h)

	item := database.MediaItem{Filename: "v.mp4", MediaType: database.MediaTypeVideo}
	require.NoError(t, db.Create(&item).Error)

	w := doJSON(r, http.MethodPut, fmt.Sprintf("/api/v1/media/%d", item.ID),
		`{"title": "Renamed", "genre": "Synth"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var got database.MediaItem
	require.NoError(t, db.First(&got, item.ID).Error)
	require.NotNil(t, got.Title)
	assert.Equal(t, "Renamed", *got.Title)
	require.NotNil(t, got.Genre)
	assert.Equal(t, "Synth", *got.Genre)
}

func TestUpdateAbsentFieldsUntouched(t *testing.T) {
	h, db, _ := setupHandler(t)
	r := setupRouter(h)

	title, genre := "Keep Me", "Synth"
	item := database.MediaItem{Filename: "v.mp4", MediaType: database.MediaTypeVideo, Title: &title, Genre: &genre}
	require.NoError(t, db.Create(&item).Error)

	w := doJSON(r, http.MethodPut, fmt.Sprintf("/api/v1/media/%d", item.ID), `{"genre": "Ambient"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var got database.MediaItem
	require.NoError(t, db.First(&got, item.ID).Error)
	require.NotNil(t, got.Title)
	assert.Equal(t, "Keep Me", *got.Title)
	require.NotNil(t, got.Genre)
	assert.Equal(t, "Ambient", *got.Genre)
}

func TestUpdateClearsLinkOnNullAndZero(t *testing.T) {
	h, db, _ := setupHandler(t)
	r := setupRouter(h)

	parent := database.MediaItem{Filename: "p.mp4", MediaType: database.MediaTypeVideo}
	require.NoError(t, db.Create(&parent).Error)

	for _, body := range []string{`{"related_to_id": null}`, `{"related_to_id": 0}`} {
		child := database.MediaItem{Filename: "c.mp4", MediaType: database.MediaTypeVideo, RelatedToID: &parent.ID}
		require.NoError(t, db.Create(&child).Error)

		w := doJSON(r, http.MethodPut, fmt.Sprintf("/api/v1/media/%d", child.ID), body)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var got database.MediaItem
		require.NoError(t, db.First(&got, child.ID).Error)
		assert.Nil(t, got.RelatedToID, "body %s left the link set", body)
	}
}

func TestUpdateRejectsSelfLink(t *testing.T) {
	h, db, _ := setupHandler(t)
	r := setupRouter(h)

	item := database.MediaItem{Filename: "v.mp4", MediaType: database.MediaTypeVideo}
	require.NoError(t, db.Create(&item).Error)

	w := doJSON(r, http.MethodPut, fmt.Sprintf("/api/v1/media/%d", item.ID),
		fmt.Sprintf(`{"related_to_id": %d}`, item.ID))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "cannot relate to itself")
}

func TestUpdateRejectsParentBecomingChild(t *testing.T) {
	h, db, _ := setupHandler(t)
	r := setupRouter(h)

	parent := database.MediaItem{Filename: "p.mp4", MediaType: database.MediaTypeVideo}
	require.NoError(t, db.Create(&parent).Error)
	child := database.MediaItem{Filename: "c.mp4", MediaType: database.MediaTypeVideo, RelatedToID: &parent.ID}
	require.NoError(t, db.Create(&child).Error)
	other := database.MediaItem{Filename: "o.mp4", MediaType: database.MediaTypeVideo}
	require.NoError(t, db.Create(&other).Error)

	// The parent already has children; re-linking it under another video
	// would create a two-level chain.
	w := doJSON(r, http.MethodPut, fmt.Sprintf("/api/v1/media/%d", parent.ID),
		fmt.Sprintf(`{"related_to_id": %d}`, other.ID))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "versions cannot become a child")
}

func TestUpdateNotFound(t *testing.T) {
	h, _, _ := setupHandler(t)
	r := setupRouter(h)

	w := doJSON(r, http.MethodPut, "/api/v1/media/999", `{"title": "x"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteLeavesChildLinksDangling(t *testing.T) {
	h, db, bus := setupHandler(t)
	r := setupRouter(h)

	var deleted []events.Event
	bus.Subscribe(events.EventMediaDeleted, func(e events.Event) {
		deleted = append(deleted, e)
	})

	parent := database.MediaItem{Filename: "p.mp4", MediaType: database.MediaTypeVideo}
	require.NoError(t, db.Create(&parent).Error)
	child := database.MediaItem{Filename: "c.mp4", MediaType: database.MediaTypeVideo, RelatedToID: &parent.ID}
	require.NoError(t, db.Create(&child).Error)

	req := httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/api/v1/media/%d", parent.ID), nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusNoContent, w.Code)

	var count int64
	db.Model(&database.MediaItem{}).Where("id = ?", parent.ID).Count(&count)
	assert.Zero(t, count)

	// No cascade: the child row keeps its now-dangling link.
	var got database.MediaItem
	require.NoError(t, db.First(&got, child.ID).Error)
	require.NotNil(t, got.RelatedToID)
	assert.Equal(t, parent.ID, *got.RelatedToID)

	require.Len(t, deleted, 1)
}

func TestDeleteNotFound(t *testing.T) {
	h, _, _ := setupHandler(t)
	r := setupRouter(h)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/media/999", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListsSplitByTypeNewestFirst(t *testing.T) {
	h, db, _ := setupHandler(t)
	r := setupRouter(h)

	for _, item := range []database.MediaItem{
		{Filename: "v1.mp4", MediaType: database.MediaTypeVideo},
		{Filename: "a1.mp3", MediaType: database.MediaTypeAudio},
		{Filename: "v2.mp4", MediaType: database.MediaTypeVideo},
	} {
		it := item
		require.NoError(t, db.Create(&it).Error)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/media/videos", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var videos []database.MediaItem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &videos))
	require.Len(t, videos, 2)
	assert.Equal(t, "v2.mp4", videos[0].Filename)
	assert.Equal(t, "v1.mp4", videos[1].Filename)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/media/audio", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var audio []database.MediaItem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &audio))
	require.Len(t, audio, 1)
	assert.Equal(t, "a1.mp3", audio[0].Filename)
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "my_clip.mp4", SanitizeFilename("my clip.mp4"))
	assert.Equal(t, "evil.mp4", SanitizeFilename("../../evil.mp4"))
}
