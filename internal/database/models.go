package database

import (
	"time"
)

// Media type discriminator values for MediaItem.MediaType.
const (
	MediaTypeVideo = "video"
	MediaTypeAudio = "audio"
)

// MediaItem is one entry in the vault: a video or an audio track.
//
// RelatedToID is the single relationship field. On an audio item it points at
// the video the track is a soundtrack for; on a video it points at the parent
// version in a one-level version family. Deleting a parent does not cascade,
// so a RelatedToID may dangle until the child is edited.
type MediaItem struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Filename    string    `gorm:"not null" json:"filename"`
	URL         string    `gorm:"not null" json:"url"`
	MediaType   string    `gorm:"index;not null" json:"media_type"`
	RelatedToID *uint     `gorm:"index" json:"related_to_id,omitempty"`
	Title       *string   `json:"title,omitempty"`
	Genre       *string   `gorm:"index" json:"genre,omitempty"`
	StoredPath  string    `gorm:"not null" json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}

// IsVideo reports whether the item is a video.
func (m *MediaItem) IsVideo() bool { return m.MediaType == MediaTypeVideo }

// IsAudio reports whether the item is an audio track.
func (m *MediaItem) IsAudio() bool { return m.MediaType == MediaTypeAudio }

// DisplayTitle is the title when set, otherwise the original filename.
func (m *MediaItem) DisplayTitle() string {
	if m.Title != nil && *m.Title != "" {
		return *m.Title
	}
	return m.Filename
}

// DisplayGenre is the genre when set, otherwise "Unknown".
func (m *MediaItem) DisplayGenre() string {
	if m.Genre != nil && *m.Genre != "" {
		return *m.Genre
	}
	return "Unknown"
}

// Guest is an invited viewer identified by an emailed PIN.
type Guest struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"index;not null" json:"email"`
	Name      *string   `json:"name,omitempty"`
	IsActive  bool      `json:"is_active"`
	PIN       string    `gorm:"index;not null" json:"pin"`
	CreatedAt time.Time `json:"created_at"`
}

// SystemSettings is a singleton row (id=1) holding mail delivery settings and
// the optional admin PIN override. The override is stored as a bcrypt hash and
// never returned by the API.
type SystemSettings struct {
	ID           uint    `gorm:"primaryKey" json:"id"`
	SMTPHost     *string `json:"smtp_host,omitempty"`
	SMTPPort     int     `json:"smtp_port"`
	SMTPUser     *string `json:"smtp_user,omitempty"`
	SMTPPassword *string `json:"smtp_password,omitempty"`
	SMTPTLS      bool    `json:"smtp_tls"`
	SenderEmail  *string `json:"sender_email,omitempty"`
	SenderName   string  `json:"sender_name"`
	Domain       *string `json:"domain,omitempty"`
	AdminPINHash *string `json:"-"`
}
