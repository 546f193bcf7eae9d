package domain

import (
	"reflect"
	"strings"
	"testing"
	"time"
)

const samplePost = `# King Narmar

## Brand Values
craftsmanship, scientific precision

## Introduction
An opening line.
A second opening line.

## Description
Woody and spicy.

## Closing
Discover it now.

## OLFACTORY PYRAMID
Top: Bergamot
Base: Oud

## TAGS
#moellhausen #luxury`

func TestExtractSectionsSunsetBloom(t *testing.T) {
	sections := ExtractSections("# Sunset Bloom\n## Description\nA warm floral.\n## TAGS\n#luxury")

	if sections[SectionTitle] != "Sunset Bloom" {
		t.Fatalf("expected title Sunset Bloom, got %q", sections[SectionTitle])
	}
	if sections[SectionDescription] != "A warm floral." {
		t.Fatalf("expected description, got %q", sections[SectionDescription])
	}
	if sections[SectionTags] != "#luxury" {
		t.Fatalf("expected tags #luxury, got %q", sections[SectionTags])
	}
	if sections[SectionClosing] != "" {
		t.Fatalf("expected empty closing, got %q", sections[SectionClosing])
	}
}

func TestExtractSectionsJoinsLinesWithSpaces(t *testing.T) {
	sections := ExtractSections(samplePost)

	if got := sections[SectionIntroduction]; got != "An opening line. A second opening line." {
		t.Fatalf("unexpected introduction: %q", got)
	}
	if got := sections[SectionOlfactoryPyramid]; got != "Top: Bergamot Base: Oud" {
		t.Fatalf("unexpected pyramid: %q", got)
	}
	if got := sections[SectionBrandValues]; got != "craftsmanship, scientific precision" {
		t.Fatalf("unexpected brand values: %q", got)
	}
}

func TestExtractSectionsIsIdempotent(t *testing.T) {
	first := ExtractSections(samplePost)
	second := ExtractSections(samplePost)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical sections, got %+v and %+v", first, second)
	}
	if len(first) != len(SectionNames) {
		t.Fatalf("expected %d keys, got %d", len(SectionNames), len(first))
	}
}

func TestExtractSectionsAppendsRepeatedHeadings(t *testing.T) {
	text := "## Description\nfirst\n## Closing\nbye\n## Description\nsecond"
	sections := ExtractSections(text)
	if got := sections[SectionDescription]; got != "first second" {
		t.Fatalf("expected accumulated description, got %q", got)
	}
}

func TestExtractSectionsDropsContentWithoutCursor(t *testing.T) {
	sections := ExtractSections("orphan line\n## Unknown heading\nstill orphan\n## TAGS\n#a")
	for _, name := range SectionNames {
		if name == SectionTags {
			continue
		}
		if sections[name] != "" {
			t.Fatalf("expected %s empty, got %q", name, sections[name])
		}
	}
	if sections[SectionTags] != "#a" {
		t.Fatalf("expected tags #a, got %q", sections[SectionTags])
	}
}

func TestExtractSectionsUnknownHeadingKeepsCursor(t *testing.T) {
	sections := ExtractSections("## Description\none\n## Notes\ntwo")
	if got := sections[SectionDescription]; got != "one two" {
		t.Fatalf("expected cursor unchanged by unknown heading, got %q", got)
	}
}

func TestNewPostDerivesMetadata(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	longTitle := strings.Repeat("t", 250)
	post := NewPost("id-1", "# "+longTitle+"\n## OLFACTORY PYRAMID\nTop: Rose", "", now)

	if post.Metadata.PostName != "Unknown" {
		t.Fatalf("expected default post name, got %q", post.Metadata.PostName)
	}
	if len(post.Metadata.Title) != 200 {
		t.Fatalf("expected title truncated to 200, got %d", len(post.Metadata.Title))
	}
	if !post.Metadata.HasOlfactoryPyramid {
		t.Fatalf("expected pyramid flag")
	}
	if post.Metadata.WordCount != 7 {
		t.Fatalf("expected 7 words, got %d", post.Metadata.WordCount)
	}
	if !post.Metadata.DateAdded.Equal(now) {
		t.Fatalf("unexpected date added: %v", post.Metadata.DateAdded)
	}
}

func TestNewPostUntitled(t *testing.T) {
	post := NewPost("id-2", "## Description\nplain", "label", time.Now())
	if post.Metadata.Title != "Untitled" {
		t.Fatalf("expected Untitled, got %q", post.Metadata.Title)
	}
	if post.Metadata.PostName != "label" {
		t.Fatalf("expected label, got %q", post.Metadata.PostName)
	}
}
