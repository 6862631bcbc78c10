package jellyfin

import (
	"fmt"
	"time"

	"github.com/vrsandeep/truphotos-go/internal/models"
)

// Dimensions reported when the server omits them; matches what the original
// clients assume for landscape photos.
const (
	defaultWidth  = 1920
	defaultHeight = 1080
)

// favoriteRating is the rating assigned to favorited photos.
const favoriteRating = 10

// convertPhotos normalizes Jellyfin photo items into Photo records,
// building the thumbnail and full-resolution image URLs from the server
// address and access token.
func convertPhotos(items []photoItem, server models.Server, token string) []models.Photo {
	photos := make([]models.Photo, 0, len(items))
	for _, item := range items {
		width, height := item.Width, item.Height
		if width == 0 {
			width = defaultWidth
		}
		if height == 0 {
			height = defaultHeight
		}

		var thumbURI, fullURI string
		if tag := item.ImageTags.Primary; tag != "" {
			thumbURI = fmt.Sprintf("%s/Items/%s/Images/Primary?maxWidth=800&tag=%s&api_key=%s",
				server.Address, item.ID, tag, token)
			fullURI = fmt.Sprintf("%s/Items/%s/Images/Primary?tag=%s&api_key=%s",
				server.Address, item.ID, tag, token)
		}

		photo := models.Photo{
			ID:        item.ID,
			URI:       thumbURI,
			FullURI:   fullURI,
			Filename:  item.Name,
			FilePath:  item.Path,
			Width:     width,
			Height:    height,
			CreatedAt: parseItemDate(item),
		}

		if item.UserData.IsFavorite {
			rating := favoriteRating
			photo.Rating = &rating
		} else if item.UserData.Rating != nil {
			photo.Rating = item.UserData.Rating
		}

		if len(item.MediaSources) > 0 {
			photo.FileSizeBytes = item.MediaSources[0].Size
		}

		photos = append(photos, photo)
	}
	return photos
}

// parseItemDate prefers PremiereDate over DateCreated, falling back to the
// current time when neither parses.
func parseItemDate(item photoItem) time.Time {
	for _, s := range []string{item.PremiereDate, item.DateCreated} {
		if s == "" {
			continue
		}
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return t
		}
	}
	return time.Now()
}
