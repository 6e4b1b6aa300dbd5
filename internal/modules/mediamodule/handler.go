package mediamodule

import (
	"encoding/json"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ervall/mediavault/internal/database"
	apperrors "github.com/ervall/mediavault/internal/errors"
	"github.com/ervall/mediavault/internal/events"
	"github.com/ervall/mediavault/internal/logger"
)

// Handler serves the media REST endpoints.
type Handler struct {
	db       *gorm.DB
	storage  *Storage
	eventBus events.EventBus
}

// NewHandler creates a media handler.
func NewHandler(db *gorm.DB, storage *Storage, bus events.EventBus) *Handler {
	return &Handler{db: db, storage: storage, eventBus: bus}
}

// ListVideos returns all videos, newest first.
func (h *Handler) ListVideos(c *gin.Context) {
	h.list(c, database.MediaTypeVideo)
}

// ListAudio returns all audio tracks, newest first.
func (h *Handler) ListAudio(c *gin.Context) {
	h.list(c, database.MediaTypeAudio)
}

func (h *Handler) list(c *gin.Context, mediaType string) {
	var items []database.MediaItem
	err := h.db.Where("media_type = ?", mediaType).
		Order("created_at DESC, id DESC").
		Find(&items).Error
	if err != nil {
		apperrors.NewDatabaseError("list media", err).ToGinResponse(c)
		return
	}
	c.JSON(200, items)
}

// Upload receives a multipart upload and creates the media row. Title and
// genre fall back to the file's embedded tags when left blank.
func (h *Handler) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		apperrors.NewValidationError("No file attached", "file").ToGinResponse(c)
		return
	}

	mediaType := c.PostForm("media_type")
	if mediaType != database.MediaTypeVideo && mediaType != database.MediaTypeAudio {
		apperrors.NewValidationError("media_type must be 'video' or 'audio'", "media_type").ToGinResponse(c)
		return
	}

	var relatedTo *uint
	if raw := c.PostForm("related_to_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			apperrors.NewValidationError("related_to_id must be an integer", "related_to_id").ToGinResponse(c)
			return
		}
		v := uint(id)
		relatedTo = &v
	}

	if relatedTo != nil {
		if verr := h.validateLink(mediaType, 0, *relatedTo); verr != nil {
			verr.ToGinResponse(c)
			return
		}
	}

	stored, err := h.storage.Save(file)
	if err != nil {
		apperrors.NewInternalError("failed to store upload", err).ToGinResponse(c)
		return
	}

	title := c.PostForm("title")
	genre := c.PostForm("genre")
	if title == "" || genre == "" {
		tags := SniffTags(stored.Path)
		if title == "" {
			title = tags.Title
		}
		if genre == "" {
			genre = tags.Genre
		}
	}

	item := database.MediaItem{
		Filename:    stored.OriginalName,
		URL:         stored.URL,
		MediaType:   mediaType,
		RelatedToID: relatedTo,
		Title:       optional(title),
		Genre:       optional(genre),
		StoredPath:  stored.Path,
	}

	if err := h.db.Create(&item).Error; err != nil {
		h.storage.Remove(stored.Path)
		apperrors.NewDatabaseError("create media", err).ToGinResponse(c)
		return
	}

	h.publish(events.EventMediaUploaded, &item)
	logger.Info("Media uploaded", []logger.Field{
		logger.Uint("id", item.ID),
		logger.String("type", item.MediaType),
		logger.String("filename", item.Filename),
	})
	c.JSON(200, item)
}

// updateRequest captures field presence: a key absent from the body is left
// untouched, while related_to_id set to null or 0 clears the link.
type updateRequest struct {
	fields map[string]json.RawMessage
}

func (r *updateRequest) has(key string) bool {
	_, ok := r.fields[key]
	return ok
}

// Update patches title, genre and the relationship link.
func (h *Handler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var item database.MediaItem
	if err := h.db.First(&item, id).Error; err != nil {
		apperrors.NewNotFoundError("media", c.Param("id")).ToGinResponse(c)
		return
	}

	req := updateRequest{fields: map[string]json.RawMessage{}}
	if err := c.ShouldBindJSON(&req.fields); err != nil {
		apperrors.NewValidationError("invalid JSON body", "body").ToGinResponse(c)
		return
	}

	if req.has("title") {
		item.Title = decodeOptionalString(req.fields["title"])
	}
	if req.has("genre") {
		item.Genre = decodeOptionalString(req.fields["genre"])
	}
	if req.has("related_to_id") {
		related, err := decodeOptionalID(req.fields["related_to_id"])
		if err != nil {
			apperrors.NewValidationError("related_to_id must be an integer or null", "related_to_id").ToGinResponse(c)
			return
		}
		if related != nil {
			if verr := h.validateLink(item.MediaType, item.ID, *related); verr != nil {
				verr.ToGinResponse(c)
				return
			}
		}
		item.RelatedToID = related
	}

	// Save with Select so cleared pointers are written as NULL.
	err := h.db.Model(&item).Select("Title", "Genre", "RelatedToID").
		Updates(map[string]interface{}{
			"title":         item.Title,
			"genre":         item.Genre,
			"related_to_id": item.RelatedToID,
		}).Error
	if err != nil {
		apperrors.NewDatabaseError("update media", err).ToGinResponse(c)
		return
	}

	h.publish(events.EventMediaUpdated, &item)
	c.JSON(200, item)
}

// Delete removes the row and the stored file. Children of a deleted video
// keep their dangling link until edited.
func (h *Handler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var item database.MediaItem
	if err := h.db.First(&item, id).Error; err != nil {
		apperrors.NewNotFoundError("media", c.Param("id")).ToGinResponse(c)
		return
	}

	if err := h.db.Delete(&item).Error; err != nil {
		apperrors.NewDatabaseError("delete media", err).ToGinResponse(c)
		return
	}
	if err := h.storage.Remove(item.StoredPath); err != nil {
		logger.Warn("Failed to remove stored file: %v", err)
	}

	h.publish(events.EventMediaDeleted, &item)
	c.Status(204)
}

// validateLink enforces the relationship invariants at the write boundary:
// no self links, links always target an existing video, and video families
// stay one level deep (a parent cannot itself become a child, a video with
// children cannot be re-linked under another parent).
func (h *Handler) validateLink(mediaType string, selfID, targetID uint) *apperrors.VaultError {
	if selfID != 0 && targetID == selfID {
		return apperrors.NewValidationError("an item cannot relate to itself", "related_to_id")
	}

	var target database.MediaItem
	if err := h.db.First(&target, targetID).Error; err != nil {
		return apperrors.NewValidationError("related item does not exist", "related_to_id")
	}
	if !target.IsVideo() {
		return apperrors.NewValidationError("related item must be a video", "related_to_id")
	}

	if mediaType == database.MediaTypeVideo {
		if target.RelatedToID != nil {
			return apperrors.NewValidationError("related video is already a child version", "related_to_id")
		}
		if selfID != 0 {
			var children int64
			h.db.Model(&database.MediaItem{}).
				Where("related_to_id = ? AND media_type = ?", selfID, database.MediaTypeVideo).
				Count(&children)
			if children > 0 {
				return apperrors.NewValidationError("a video with versions cannot become a child", "related_to_id")
			}
		}
	}
	return nil
}

func (h *Handler) publish(eventType events.EventType, item *database.MediaItem) {
	if h.eventBus == nil {
		return
	}
	h.eventBus.Publish(events.New(eventType, ModuleID, events.MediaEventData{
		MediaID:   item.ID,
		Filename:  item.Filename,
		MediaType: item.MediaType,
	}))
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.NewValidationError("id must be an integer", "id").ToGinResponse(c)
		return 0, false
	}
	return uint(id), true
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func decodeOptionalString(raw json.RawMessage) *string {
	var s *string
	if err := json.Unmarshal(raw, &s); err != nil || s == nil || *s == "" {
		return nil
	}
	return s
}

func decodeOptionalID(raw json.RawMessage) (*uint, error) {
	var id *uint
	if err := json.Unmarshal(raw, &id); err != nil {
		return nil, err
	}
	if id == nil || *id == 0 {
		return nil, nil
	}
	return id, nil
}
