package content

import "regexp"

// footnoteDefRe matches a footnote definition line: [^marker]: text
var footnoteDefRe = regexp.MustCompile(`(?m)^\[\^([^\]\s]+)\]:[ \t]*(.*)$`)

// Footnotes extracts the ordered footnote definitions from the document
// body. Markers are unique within a document; a duplicate definition
// keeps the first occurrence. Inline references without a definition are
// left to the renderer, which passes them through verbatim.
func (d *Document) Footnotes() []Footnote {
	matches := footnoteDefRe.FindAllStringSubmatch(d.Body, -1)
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(matches))
	var out []Footnote
	for _, m := range matches {
		marker := m[1]
		if _, dup := seen[marker]; dup {
			continue
		}
		seen[marker] = struct{}{}
		out = append(out, Footnote{Marker: marker, Text: m[2]})
	}
	return out
}
