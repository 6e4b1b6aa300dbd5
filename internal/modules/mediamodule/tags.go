package mediamodule

import (
	"os"

	"github.com/dhowden/tag"
)

// SniffedTags holds metadata read from an uploaded file's embedded tags.
type SniffedTags struct {
	Title string
	Genre string
}

// SniffTags reads embedded metadata from a stored media file. Used to fill
// title and genre when the uploader left them blank. Any failure returns an
// empty result: tags are a convenience, not a requirement.
func SniffTags(path string) SniffedTags {
	f, err := os.Open(path)
	if err != nil {
		return SniffedTags{}
	}
	defer f.Close()

	meta, err := tag.ReadFrom(f)
	if err != nil {
		return SniffedTags{}
	}
	return SniffedTags{
		Title: meta.Title(),
		Genre: meta.Genre(),
	}
}
