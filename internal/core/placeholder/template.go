// Package placeholder renders externally authored prompt templates that use
// "{name}" placeholders, with "{{" and "}}" as literal braces.
package placeholder

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kirillkom/brandvoice-promptgen/internal/core/domain"
)

// Context supplies placeholder values by name.
type Context interface {
	Fields() map[string]string
}

type segment struct {
	literal string
	key     string
}

type Template struct {
	segments []segment
	keys     []string
}

// MissingPlaceholderError lists template keys the context does not provide.
type MissingPlaceholderError struct {
	Keys []string
}

func (e *MissingPlaceholderError) Error() string {
	return fmt.Sprintf("template references unknown placeholders: %s", strings.Join(e.Keys, ", "))
}

func (e *MissingPlaceholderError) Unwrap() error { return domain.ErrMissingPlaceholder }

func Parse(text string) (*Template, error) {
	var (
		segments []segment
		literal  strings.Builder
		seen     = map[string]struct{}{}
		keys     []string
	)

	flush := func() {
		if literal.Len() > 0 {
			segments = append(segments, segment{literal: literal.String()})
			literal.Reset()
		}
	}

	for i := 0; i < len(text); i++ {
		ch := text[i]
		switch ch {
		case '{':
			if i+1 < len(text) && text[i+1] == '{' {
				literal.WriteByte('{')
				i++
				continue
			}
			end := strings.IndexByte(text[i+1:], '}')
			if end < 0 {
				return nil, domain.WrapError(domain.ErrInvalidTemplate, "parse template", fmt.Errorf("unclosed '{' at offset %d", i))
			}
			key := placeholderKey(text[i+1 : i+1+end])
			if key == "" || strings.ContainsAny(key, "{ \t\n") {
				return nil, domain.WrapError(domain.ErrInvalidTemplate, "parse template", fmt.Errorf("invalid placeholder at offset %d", i))
			}
			flush()
			segments = append(segments, segment{key: key})
			if _, ok := seen[key]; !ok {
				seen[key] = struct{}{}
				keys = append(keys, key)
			}
			i += end + 1
		case '}':
			if i+1 < len(text) && text[i+1] == '}' {
				literal.WriteByte('}')
				i++
				continue
			}
			return nil, domain.WrapError(domain.ErrInvalidTemplate, "parse template", fmt.Errorf("single '}' at offset %d", i))
		default:
			literal.WriteByte(ch)
		}
	}
	flush()

	return &Template{segments: segments, keys: keys}, nil
}

// placeholderKey drops a trailing format spec or conversion ("{name:>10}", "{name!r}").
func placeholderKey(raw string) string {
	if idx := strings.IndexAny(raw, ":!"); idx >= 0 {
		raw = raw[:idx]
	}
	return raw
}

// Placeholders returns the distinct keys in order of first appearance.
func (t *Template) Placeholders() []string {
	out := make([]string, len(t.keys))
	copy(out, t.keys)
	return out
}

// Validate fails with a MissingPlaceholderError when the template needs a key
// the context does not define.
func (t *Template) Validate(ctx Context) error {
	fields := ctx.Fields()
	var missing []string
	for _, key := range t.keys {
		if _, ok := fields[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return &MissingPlaceholderError{Keys: missing}
}

func (t *Template) Render(ctx Context) (string, error) {
	if err := t.Validate(ctx); err != nil {
		return "", err
	}
	fields := ctx.Fields()

	var b strings.Builder
	for _, seg := range t.segments {
		if seg.key == "" {
			b.WriteString(seg.literal)
			continue
		}
		b.WriteString(fields[seg.key])
	}
	return b.String(), nil
}

// Render parses text and renders it with ctx in one step.
func Render(text string, ctx Context) (string, error) {
	tpl, err := Parse(text)
	if err != nil {
		return "", err
	}
	return tpl.Render(ctx)
}
