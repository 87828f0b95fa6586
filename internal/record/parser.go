// Package record normalizes data source answers into FilmRecord values.
package record

import (
	"encoding/json"
	"strings"

	"github.com/amaumene/filmdocs/internal/models"
	"github.com/amaumene/filmdocs/pkg/logger"
)

// Data source JSON keys
const (
	keyResponse   = "Response"
	keyError      = "Error"
	keyType       = "Type"
	keyTitle      = "Title"
	keyYear       = "Year"
	keyImdbID     = "imdbID"
	keyRated      = "Rated"
	keyRuntime    = "Runtime"
	keyGenre      = "Genre"
	keyReleased   = "Released"
	keyPlot       = "Plot"
	keyDirector   = "Director"
	keyWriter     = "Writer"
	keyActors     = "Actors"
	keyLanguage   = "Language"
	keyCountry    = "Country"
	keyAwards     = "Awards"
	keyProduction = "Production"
	keyBoxOffice  = "BoxOffice"
	keyMetascore  = "Metascore"
	keyImdbRating = "imdbRating"
	keyImdbVotes  = "imdbVotes"
	keyPoster     = "Poster"
	keyRatings    = "Ratings"
	keySource     = "Source"
	keyValue      = "Value"
)

// Parser turns raw JSON into a FilmRecord.
type Parser struct {
	missing string
	logger  logger.Logger
}

// NewParser creates a parser substituting missing for absent fields.
func NewParser(missing string, log logger.Logger) *Parser {
	return &Parser{missing: missing, logger: log}
}

// Parse never fails. Malformed input or a provider failure flag yield a
// record with ResponseOK false; callers must check it before reading fields.
func (p *Parser) Parse(raw string) models.FilmRecord {
	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &obj); err != nil || obj == nil {
		p.logger.Warnf("[Record] unparseable data source answer: %v", err)
		return models.FilmRecord{ResponseOK: false, ProviderError: "malformed data source answer"}
	}

	if resp, ok := obj[keyResponse].(string); ok && strings.EqualFold(resp, "false") {
		reason, _ := obj[keyError].(string)
		p.logger.Warnf("[Record] data source reported failure: %s", reason)
		return models.FilmRecord{ResponseOK: false, ProviderError: reason}
	}

	return models.FilmRecord{
		ResponseOK:        true,
		Type:              p.get(obj, keyType),
		Title:             p.get(obj, keyTitle),
		Year:              p.get(obj, keyYear),
		ExternalID:        p.get(obj, keyImdbID),
		Rated:             p.get(obj, keyRated),
		Runtime:           p.get(obj, keyRuntime),
		Genre:             p.get(obj, keyGenre),
		ReleaseDate:       p.get(obj, keyReleased),
		Plot:              p.get(obj, keyPlot),
		Director:          p.get(obj, keyDirector),
		Writer:            p.get(obj, keyWriter),
		Actors:            p.get(obj, keyActors),
		Language:          p.get(obj, keyLanguage),
		Country:           p.get(obj, keyCountry),
		Awards:            p.get(obj, keyAwards),
		Studio:            p.get(obj, keyProduction),
		BoxOffice:         p.get(obj, keyBoxOffice),
		CriticScore:       p.get(obj, keyMetascore),
		AudienceScore:     p.get(obj, keyImdbRating),
		AudienceVoteCount: p.get(obj, keyImdbVotes),
		PosterURL:         p.get(obj, keyPoster),
		Ratings:           p.ratings(obj),
	}
}

// get returns obj[key] when it is a string and the missing marker otherwise.
func (p *Parser) get(obj map[string]interface{}, key string) string {
	if s, ok := obj[key].(string); ok {
		return s
	}
	return p.missing
}

func (p *Parser) ratings(obj map[string]interface{}) []models.RatingEntry {
	items, ok := obj[keyRatings].([]interface{})
	if !ok {
		return nil
	}

	entries := make([]models.RatingEntry, 0, len(items))
	for _, item := range items {
		rating, ok := item.(map[string]interface{})
		if !ok {
			rating = map[string]interface{}{}
		}
		entries = append(entries, models.RatingEntry{
			Source: p.get(rating, keySource),
			Value:  p.get(rating, keyValue),
		})
	}
	return entries
}
