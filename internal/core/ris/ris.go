// Package ris parses RIS bibliographic files into reference records.
// Only the tags the causal model consumes are mapped; everything else
// in an entry is ignored.
package ris

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/agenthands/causet/internal/core/model"
)

// entry is one raw RIS record: tag -> values in file order. Repeatable
// tags (AU) accumulate.
type entry map[string][]string

func (e entry) first(tags ...string) string {
	for _, tag := range tags {
		if vals := e[tag]; len(vals) > 0 {
			return vals[0]
		}
	}
	return ""
}

func (e entry) all(tags ...string) []string {
	for _, tag := range tags {
		if vals := e[tag]; len(vals) > 0 {
			return vals
		}
	}
	return nil
}

// Parse reads a RIS stream and returns one reference per entry, using
// the caller-supplied ids in order. Title falls back TI -> T1, authors
// AU -> A1, year PY -> Y1, publisher PB -> JO -> J2, matching the
// laxness real exports need. The id list length must match the entry
// count.
func Parse(r io.Reader, ids []string) ([]model.Reference, error) {
	entries, err := scan(r)
	if err != nil {
		return nil, err
	}
	if len(entries) != len(ids) {
		return nil, fmt.Errorf("RIS file has %d entries but %d ids were provided", len(entries), len(ids))
	}

	refs := make([]model.Reference, 0, len(entries))
	for i, e := range entries {
		title := e.first("TI", "T1")
		if title == "" {
			return nil, fmt.Errorf("RIS entry %d has no title (TI or T1)", i+1)
		}
		refs = append(refs, model.Reference{
			ID:        ids[i],
			Title:     title,
			Year:      yearOf(e.first("PY", "Y1")),
			Authors:   strings.Join(e.all("AU", "A1"), "; "),
			Type:      e.first("TY"),
			Publisher: e.first("PB", "JO", "J2"),
		})
	}
	return refs, nil
}

// scan splits the stream into entries. An entry opens at its first tag
// line and closes at ER. Continuation lines (no tag prefix) extend the
// previous value.
func scan(r io.Reader) ([]entry, error) {
	var (
		entries  []entry
		current  entry
		lastTag  string
		lineNo   int
	)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), " \r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		tag, value, ok := splitTag(line)
		if !ok {
			// Continuation of the previous tag's value.
			if current != nil && lastTag != "" {
				vals := current[lastTag]
				vals[len(vals)-1] += " " + strings.TrimSpace(line)
			}
			continue
		}

		if tag == "ER" {
			if current == nil {
				return nil, fmt.Errorf("line %d: ER with no open entry", lineNo)
			}
			entries = append(entries, current)
			current = nil
			lastTag = ""
			continue
		}

		if current == nil {
			current = make(entry)
		}
		current[tag] = append(current[tag], value)
		lastTag = tag
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if current != nil {
		return nil, fmt.Errorf("RIS stream ended inside an entry (missing ER)")
	}
	return entries, nil
}

// splitTag recognizes the "XX  - value" RIS line shape. The value may
// be empty (ER lines), so only the "XX  -" prefix is required.
func splitTag(line string) (tag, value string, ok bool) {
	if len(line) < 5 || line[2:5] != "  -" {
		return "", "", false
	}
	if len(line) > 5 && line[5] != ' ' {
		return "", "", false
	}
	tag = line[:2]
	for _, c := range tag {
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			return "", "", false
		}
	}
	return tag, strings.TrimSpace(line[5:]), true
}

// yearOf strips RIS date qualifiers: "2019/05/01" -> "2019".
func yearOf(s string) string {
	if i := strings.IndexByte(s, '/'); i >= 0 {
		return s[:i]
	}
	return s
}
