package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuilderKeepsOrderAndEncodes(t *testing.T) {
	b := NewBuilder("http", "www.omdbapi.com").
		Add("t", "Die Hard & Co").
		AddInt("y", 1988).
		Add("apikey", "k")

	assert.Equal(t, "http://www.omdbapi.com?t=Die+Hard+%26+Co&y=1988&apikey=k", b.String())
}

func TestBuilderPathAndFragment(t *testing.T) {
	b := NewBuilder("https", "example.org").
		Path("/film/").
		Path("document").
		Add("id", "tt0017136").
		Fragment("top")

	assert.Equal(t, "https://example.org/film/document?id=tt0017136#top", b.String())
	assert.Equal(t, "/film/document?id=tt0017136#top", b.Relative())
}

func TestBuilderWithoutParams(t *testing.T) {
	assert.Equal(t, "http://localhost:5000", NewBuilder("http", "localhost:5000").String())
}
