package domain

import "strings"

// sectionKeywords is matched in order against "##" headings; the first hit wins.
var sectionKeywords = []struct {
	keyword string
	section SectionName
}{
	{"Brand Values", SectionBrandValues},
	{"Introduction", SectionIntroduction},
	{"Description", SectionDescription},
	{"Closing", SectionClosing},
	{"OLFACTORY PYRAMID", SectionOlfactoryPyramid},
	{"TAGS", SectionTags},
}

// ExtractSections splits a markdown-like post into its named sections.
//
// "# " sets the title, "##" headings carrying a known keyword move the cursor,
// and every other non-blank, non-heading line is appended (space-joined) to the
// section under the cursor. Repeated headings keep appending to the same section.
func ExtractSections(text string) Sections {
	sections := NewSections()
	var current SectionName

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		switch {
		case strings.HasPrefix(line, "# "):
			sections[SectionTitle] = strings.TrimSpace(line[2:])
			current = SectionTitle
		case strings.HasPrefix(line, "##"):
			if name, ok := matchSectionHeading(line); ok {
				current = name
			}
		case line == "#":
		case current != "":
			if sections[current] == "" {
				sections[current] = line
			} else {
				sections[current] += " " + line
			}
		}
	}
	return sections
}

func matchSectionHeading(line string) (SectionName, bool) {
	for _, kw := range sectionKeywords {
		if strings.Contains(line, kw.keyword) {
			return kw.section, true
		}
	}
	return "", false
}
