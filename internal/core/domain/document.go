package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

type SectionName string

const (
	SectionTitle            SectionName = "title"
	SectionBrandValues      SectionName = "brand_values"
	SectionIntroduction     SectionName = "introduction"
	SectionDescription      SectionName = "description"
	SectionClosing          SectionName = "closing"
	SectionOlfactoryPyramid SectionName = "olfactory_pyramid"
	SectionTags             SectionName = "tags"
)

// SectionNames lists every section in document order.
var SectionNames = []SectionName{
	SectionTitle,
	SectionBrandValues,
	SectionIntroduction,
	SectionDescription,
	SectionClosing,
	SectionOlfactoryPyramid,
	SectionTags,
}

// Sections maps each known section to its extracted text. Missing sections are "".
type Sections map[SectionName]string

func NewSections() Sections {
	out := make(Sections, len(SectionNames))
	for _, name := range SectionNames {
		out[name] = ""
	}
	return out
}

const (
	maxMetadataTitle       = 200
	maxMetadataBrandValues = 300
)

type PostMetadata struct {
	PostID              string    `json:"post_id"`
	Title               string    `json:"title"`
	BrandValues         string    `json:"brand_values"`
	DateAdded           time.Time `json:"date_added"`
	WordCount           int       `json:"word_count"`
	HasOlfactoryPyramid bool      `json:"has_olfactory_pyramid"`
	PostName            string    `json:"post_name"`
}

// Post is an ingested social post. It is never mutated once stored.
type Post struct {
	ID       string       `json:"id"`
	Content  string       `json:"content"`
	Sections Sections     `json:"sections"`
	Metadata PostMetadata `json:"metadata"`
}

// NewPost structures content and derives the metadata stored alongside it.
func NewPost(id, content, label string, addedAt time.Time) *Post {
	sections := ExtractSections(content)

	title := sections[SectionTitle]
	if title == "" {
		title = "Untitled"
	}
	if strings.TrimSpace(label) == "" {
		label = "Unknown"
	}

	return &Post{
		ID:       id,
		Content:  content,
		Sections: sections,
		Metadata: PostMetadata{
			PostID:              id,
			Title:               TruncateRunes(title, maxMetadataTitle),
			BrandValues:         TruncateRunes(sections[SectionBrandValues], maxMetadataBrandValues),
			DateAdded:           addedAt,
			WordCount:           len(strings.Fields(content)),
			HasOlfactoryPyramid: sections[SectionOlfactoryPyramid] != "",
			PostName:            label,
		},
	}
}

// EmbeddingBinding identifies the embedding function a collection is bound to.
type EmbeddingBinding struct {
	Model    string `json:"model"`
	Endpoint string `json:"endpoint"`
}

type Collection struct {
	Name       string           `json:"name"`
	Location   string           `json:"location"`
	Binding    EmbeddingBinding `json:"binding"`
	VectorSize int              `json:"vector_size,omitempty"`
}

type CollectionStats struct {
	Count        int      `json:"count"`
	SampleTitles []string `json:"sample_titles"`
	DatabasePath string   `json:"database_path"`
}

// Text renders the statistics block shown next to the upload form.
func (s CollectionStats) Text() string {
	if s.Count == 0 {
		return "📊 Empty database - No indexed post"
	}
	return fmt.Sprintf(
		"📊 **Database statistics:**\n- **Indexed posts:** %d\n- **Post examples:** %s\n- **Database path:** %s\n",
		s.Count,
		strings.Join(s.SampleTitles, ", "),
		s.DatabasePath,
	)
}

// TruncateRunes cuts s to at most limit runes without splitting a character.
func TruncateRunes(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit])
}
