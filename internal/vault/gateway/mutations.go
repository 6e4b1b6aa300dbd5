package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/ervall/mediavault/internal/database"
	"github.com/ervall/mediavault/internal/errors"
)

// UploadRequest describes one upload intent.
type UploadRequest struct {
	File      io.Reader
	Filename  string
	MediaType string
	Title     string
	Genre     string
	RelatedTo *uint

	// Progress, when set, receives the transferred fraction in [0,1].
	Progress func(fraction float64)
}

// Upload sends the multipart round trip and refreshes the store on success.
// A missing file fails with a validation error before any network call.
func (c *Client) Upload(ctx context.Context, req UploadRequest) (*database.MediaItem, error) {
	if req.File == nil || req.Filename == "" {
		return nil, errors.NewValidationError("No file attached", "file")
	}
	if req.MediaType != database.MediaTypeVideo && req.MediaType != database.MediaTypeAudio {
		return nil, errors.NewValidationError("media_type must be 'video' or 'audio'", "media_type")
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", req.Filename)
	if err != nil {
		return nil, errors.NewInternalError("build multipart body", err)
	}
	if _, err := io.Copy(part, req.File); err != nil {
		return nil, errors.NewInternalError("read upload file", err)
	}

	fields := map[string]string{"media_type": req.MediaType}
	if req.Title != "" {
		fields["title"] = req.Title
	}
	if req.Genre != "" {
		fields["genre"] = req.Genre
	}
	if req.RelatedTo != nil {
		fields["related_to_id"] = strconv.FormatUint(uint64(*req.RelatedTo), 10)
	}
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return nil, errors.NewInternalError("build multipart body", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, errors.NewInternalError("build multipart body", err)
	}

	var reader io.Reader = &body
	if req.Progress != nil {
		reader = &progressReader{r: &body, total: int64(body.Len()), report: req.Progress}
	}

	httpReq, err := c.authedRequest(ctx, http.MethodPost, "/api/v1/media/upload",
		reader, writer.FormDataContentType())
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, errors.NewNetworkError("upload failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.mapStatus(resp)
	}

	var item database.MediaItem
	if err := json.NewDecoder(resp.Body).Decode(&item); err != nil {
		return nil, errors.NewNetworkError("malformed upload response", err)
	}

	if err := c.Refresh(ctx); err != nil {
		return &item, err
	}
	return &item, nil
}

// MetadataPatch is a partial edit. Nil fields are left untouched;
// ClearRelated removes the relationship link.
type MetadataPatch struct {
	Title        *string
	Genre        *string
	RelatedTo    *uint
	ClearRelated bool
}

// EditMetadata sends the patch and refreshes the store on success.
func (c *Client) EditMetadata(ctx context.Context, id uint, patch MetadataPatch) (*database.MediaItem, error) {
	fields := map[string]interface{}{}
	if patch.Title != nil {
		fields["title"] = *patch.Title
	}
	if patch.Genre != nil {
		fields["genre"] = *patch.Genre
	}
	if patch.ClearRelated {
		fields["related_to_id"] = nil
	} else if patch.RelatedTo != nil {
		fields["related_to_id"] = *patch.RelatedTo
	}

	body, err := json.Marshal(fields)
	if err != nil {
		return nil, errors.NewInternalError("encode patch", err)
	}

	req, err := c.authedRequest(ctx, http.MethodPut,
		"/api/v1/media/"+strconv.FormatUint(uint64(id), 10),
		bytes.NewReader(body), "application/json")
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.NewNetworkError("edit failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.mapStatus(resp)
	}

	var item database.MediaItem
	if err := json.NewDecoder(resp.Body).Decode(&item); err != nil {
		return nil, errors.NewNetworkError("malformed edit response", err)
	}

	if err := c.Refresh(ctx); err != nil {
		return &item, err
	}
	return &item, nil
}

// Delete removes an item and refreshes the store on success.
func (c *Client) Delete(ctx context.Context, id uint) error {
	req, err := c.authedRequest(ctx, http.MethodDelete,
		"/api/v1/media/"+strconv.FormatUint(uint64(id), 10), nil, "")
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.NewNetworkError("delete failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return c.mapStatus(resp)
	}

	return c.Refresh(ctx)
}

// LinkAudioToVideo is the narrow edit used from the playback UI: it only
// touches the relationship link. A nil videoID unlinks the track.
func (c *Client) LinkAudioToVideo(ctx context.Context, audioID uint, videoID *uint) error {
	patch := MetadataPatch{}
	if videoID == nil {
		patch.ClearRelated = true
	} else {
		patch.RelatedTo = videoID
	}
	_, err := c.EditMetadata(ctx, audioID, patch)
	return err
}

// progressReader reports the transferred fraction as the request body drains.
type progressReader struct {
	r      io.Reader
	total  int64
	sent   int64
	report func(float64)
}

func (p *progressReader) Read(buf []byte) (int, error) {
	n, err := p.r.Read(buf)
	if n > 0 {
		p.sent += int64(n)
		if p.total > 0 {
			p.report(float64(p.sent) / float64(p.total))
		}
	}
	return n, err
}
