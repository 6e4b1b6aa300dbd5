// Package debug provides development helpers. Nothing here runs unless
// explicitly enabled through the environment.
package debug

import (
	"os"

	"gorm.io/gorm"

	"github.com/ervall/mediavault/internal/database"
	"github.com/ervall/mediavault/internal/logger"
)

// SeedEnvVar enables demo data seeding when set to a non-empty value.
const SeedEnvVar = "MEDIAVAULT_DEV_SEED"

// SeedIfRequested inserts a small demo catalog on an empty database: a video
// family with a child version, a linked soundtrack and a standalone track.
// It is a no-op unless MEDIAVAULT_DEV_SEED is set, and never touches a
// database that already has media.
func SeedIfRequested(db *gorm.DB) error {
	if os.Getenv(SeedEnvVar) == "" {
		return nil
	}

	var count int64
	if err := db.Model(&database.MediaItem{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		logger.Info("Dev seed skipped, media already present")
		return nil
	}

	title := func(s string) *string { return &s }

	parent := database.MediaItem{
		Filename:  "neon_nights.mp4",
		URL:       "/static/uploads/demo_neon_nights.mp4",
		MediaType: database.MediaTypeVideo,
		Title:     title("Neon Nights"),
		Genre:     title("Synth"),
	}
	if err := db.Create(&parent).Error; err != nil {
		return err
	}

	items := []database.MediaItem{
		{
			Filename:    "neon_nights_directors_cut.mp4",
			URL:         "/static/uploads/demo_neon_nights_cut.mp4",
			MediaType:   database.MediaTypeVideo,
			Title:       title("Neon Nights (Director's Cut)"),
			Genre:       title("Synth"),
			RelatedToID: &parent.ID,
		},
		{
			Filename:    "neon_nights_score.mp3",
			URL:         "/static/uploads/demo_neon_nights_score.mp3",
			MediaType:   database.MediaTypeAudio,
			Title:       title("Neon Nights Score"),
			RelatedToID: &parent.ID,
		},
		{
			Filename:  "midnight_drive.mp3",
			URL:       "/static/uploads/demo_midnight_drive.mp3",
			MediaType: database.MediaTypeAudio,
			Title:     title("Midnight Drive"),
		},
	}
	for i := range items {
		if err := db.Create(&items[i]).Error; err != nil {
			return err
		}
	}

	logger.Info("Dev seed complete", []logger.Field{
		logger.Int("items", len(items)+1),
	})
	return nil
}
