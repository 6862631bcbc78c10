// This file defines the core data structures (models) for the client.
// These structs represent photos, servers, and libraries as the rest of
// the application sees them, independent of the Jellyfin wire format.
package models

import "time"

// Photo is a normalized photo record. ID is the sole identity: two records
// with the same ID are the same photo regardless of other field drift
// across fetches.
type Photo struct {
	ID            string     `json:"id"`
	URI           string     `json:"uri"`                 // thumbnail-sized image URL
	FullURI       string     `json:"full_uri,omitempty"`  // full resolution URL
	Filename      string     `json:"filename"`
	FilePath      string     `json:"file_path,omitempty"` // path on the server
	Width         int        `json:"width"`
	Height        int        `json:"height"`
	CreatedAt     time.Time  `json:"created_at"`
	ModifiedAt    *time.Time `json:"modified_at,omitempty"`
	Rating        *int       `json:"rating,omitempty"` // 0-10, 10 = favorite
	FileSizeBytes int64      `json:"file_size_bytes,omitempty"`
}

// SerializablePhoto is Photo with timestamps flattened to ISO strings so it
// can cross process boundaries (navigation params, persisted snapshots)
// without losing sub-second precision.
type SerializablePhoto struct {
	ID            string `json:"id"`
	URI           string `json:"uri"`
	FullURI       string `json:"full_uri,omitempty"`
	Filename      string `json:"filename"`
	FilePath      string `json:"file_path,omitempty"`
	Width         int    `json:"width"`
	Height        int    `json:"height"`
	CreatedAt     string `json:"created_at"`
	ModifiedAt    string `json:"modified_at,omitempty"`
	Rating        *int   `json:"rating,omitempty"`
	FileSizeBytes int64  `json:"file_size_bytes,omitempty"`
}

// isoMillis matches JavaScript's Date.toISOString precision.
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

// PhotoToSerializable converts a Photo to its serializable form. An invalid
// (zero) CreatedAt falls back to the current time rather than propagating
// an invalid value.
func PhotoToSerializable(p Photo) SerializablePhoto {
	createdAt := p.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	s := SerializablePhoto{
		ID:            p.ID,
		URI:           p.URI,
		FullURI:       p.FullURI,
		Filename:      p.Filename,
		FilePath:      p.FilePath,
		Width:         p.Width,
		Height:        p.Height,
		CreatedAt:     createdAt.UTC().Format(isoMillis),
		Rating:        p.Rating,
		FileSizeBytes: p.FileSizeBytes,
	}
	if p.ModifiedAt != nil && !p.ModifiedAt.IsZero() {
		s.ModifiedAt = p.ModifiedAt.UTC().Format(isoMillis)
	}
	return s
}

// SerializableToPhoto is the inverse of PhotoToSerializable. Timestamps
// round-trip millisecond-exact.
func SerializableToPhoto(s SerializablePhoto) Photo {
	p := Photo{
		ID:            s.ID,
		URI:           s.URI,
		FullURI:       s.FullURI,
		Filename:      s.Filename,
		FilePath:      s.FilePath,
		Width:         s.Width,
		Height:        s.Height,
		Rating:        s.Rating,
		FileSizeBytes: s.FileSizeBytes,
	}
	if t, err := time.Parse(isoMillis, s.CreatedAt); err == nil {
		p.CreatedAt = t
	} else {
		p.CreatedAt = time.Now()
	}
	if s.ModifiedAt != "" {
		if t, err := time.Parse(isoMillis, s.ModifiedAt); err == nil {
			p.ModifiedAt = &t
		}
	}
	return p
}
