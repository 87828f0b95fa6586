// Package models defines the film query, record and payload types.
package models

import "fmt"

// FilmQuery is a normalized inbound request. Title and ID are nil when the
// parameter was not supplied and point to "" when supplied empty.
type FilmQuery struct {
	Title  *string `json:"title,omitempty"`
	ID     *string `json:"id,omitempty"`
	Year   string  `json:"year,omitempty"`
	Plot   string  `json:"plot,omitempty"`
	Format string  `json:"format,omitempty"`
}

// Fingerprint returns a stable key identifying the request for caching.
// Values are kept verbatim since enum matching is case sensitive.
func (q FilmQuery) Fingerprint() string {
	return fmt.Sprintf("title=%s|id=%s|year=%q|plot=%q|format=%q",
		optional(q.Title), optional(q.ID), q.Year, q.Plot, q.Format)
}

func optional(s *string) string {
	if s == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%q", *s)
}

// StringPtr is a small helper for building queries.
func StringPtr(s string) *string {
	return &s
}

// RatingEntry is one external rating row.
type RatingEntry struct {
	Source string `json:"source"`
	Value  string `json:"value"`
}

// FilmRecord is the normalized provider answer. When ResponseOK is false every
// other field except ProviderError is unset and must not be used.
type FilmRecord struct {
	ResponseOK    bool   `json:"response_ok"`
	ProviderError string `json:"provider_error,omitempty"`

	Type              string `json:"type,omitempty"`
	Title             string `json:"title,omitempty"`
	Year              string `json:"year,omitempty"`
	ExternalID        string `json:"external_id,omitempty"`
	Rated             string `json:"rated,omitempty"`
	Runtime           string `json:"runtime,omitempty"`
	Genre             string `json:"genre,omitempty"`
	ReleaseDate       string `json:"release_date,omitempty"`
	Plot              string `json:"plot,omitempty"`
	Director          string `json:"director,omitempty"`
	Writer            string `json:"writer,omitempty"`
	Actors            string `json:"actors,omitempty"`
	Language          string `json:"language,omitempty"`
	Country           string `json:"country,omitempty"`
	Awards            string `json:"awards,omitempty"`
	Studio            string `json:"studio,omitempty"`
	BoxOffice         string `json:"box_office,omitempty"`
	CriticScore       string `json:"critic_score,omitempty"`
	AudienceScore     string `json:"audience_score,omitempty"`
	AudienceVoteCount string `json:"audience_vote_count,omitempty"`
	PosterURL         string `json:"poster_url,omitempty"`

	Ratings []RatingEntry `json:"ratings,omitempty"`
}

// Fields returns the template placeholder names mapped to record values.
func (r FilmRecord) Fields() map[string]string {
	return map[string]string{
		"type":              r.Type,
		"title":             r.Title,
		"year":              r.Year,
		"externalId":        r.ExternalID,
		"rated":             r.Rated,
		"runtime":           r.Runtime,
		"genre":             r.Genre,
		"releaseDate":       r.ReleaseDate,
		"plot":              r.Plot,
		"director":          r.Director,
		"writer":            r.Writer,
		"actors":            r.Actors,
		"language":          r.Language,
		"country":           r.Country,
		"awards":            r.Awards,
		"studio":            r.Studio,
		"boxOffice":         r.BoxOffice,
		"criticScore":       r.CriticScore,
		"audienceScore":     r.AudienceScore,
		"audienceVoteCount": r.AudienceVoteCount,
		"posterUrl":         r.PosterURL,
	}
}

// ImageFormat tags the encoding of an ImagePayload.
type ImageFormat string

const (
	ImagePNG  ImageFormat = "png"
	ImageJPEG ImageFormat = "jpeg"
	ImageGIF  ImageFormat = "gif"
	ImageBMP  ImageFormat = "bmp"
	ImageTIFF ImageFormat = "tiff"
	ImageWEBP ImageFormat = "webp"
)

// ImagePayload holds image bytes for the duration of one document build.
type ImagePayload struct {
	Data        []byte
	WidthPx     int
	HeightPx    int
	Format      ImageFormat
	LogicalName string
}

// FilmBody is a passthrough provider body.
type FilmBody struct {
	Data        []byte
	ContentType string
}
