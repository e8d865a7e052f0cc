// Package graphparse parses the fixed-format entity and relationship blocks
// produced by the analysis model. The grammar is deliberately narrow: exact
// category headers, "- " bullet items, and "FROM: x | RELATION: y | TO: z"
// lines. Anything else is ignored.
package graphparse

import (
	"regexp"
	"strings"
)

// Categories are the fixed entity categories recognized as headers.
var Categories = []string{
	"cities_places",
	"transport_planning",
	"urban_concepts",
	"geographic_spatial",
	"problems_challenges",
	"solutions_methods",
}

// Relationship is a directed edge between two named entities.
type Relationship struct {
	From     string `json:"from"`
	Relation string `json:"relation"`
	To       string `json:"to"`
}

var relationshipPattern = regexp.MustCompile(`(?i)FROM:\s*(.+?)\s*\|\s*RELATION:\s*(.+?)\s*\|\s*TO:\s*(.+?)(?:\s*$|\s*\|)`)

// Entities parses a model response into entities keyed by category. Every
// category is present in the result, possibly empty. A header line is the
// category name followed by a colon; items are "- " bullets beneath it.
// Duplicates within a category are suppressed.
func Entities(response string) map[string][]string {
	entities := make(map[string][]string, len(Categories))
	known := make(map[string]bool, len(Categories))
	for _, c := range Categories {
		entities[c] = []string{}
		known[c] = true
	}

	var current string
	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(line)

		if strings.HasSuffix(line, ":") && known[strings.TrimSuffix(line, ":")] {
			current = strings.TrimSuffix(line, ":")
			continue
		}

		if current != "" && strings.HasPrefix(line, "- ") {
			entity := strings.TrimSpace(line[2:])
			if entity != "" && !contains(entities[current], entity) {
				entities[current] = append(entities[current], entity)
			}
		}
	}
	return entities
}

// Relationships parses "FROM: x | RELATION: y | TO: z" lines, case-insensitive
// on the markers. Duplicate triples are suppressed.
func Relationships(response string) []Relationship {
	relationships := []Relationship{}
	for _, line := range strings.Split(response, "\n") {
		match := relationshipPattern.FindStringSubmatch(strings.TrimSpace(line))
		if match == nil {
			continue
		}
		rel := Relationship{
			From:     strings.TrimSpace(match[1]),
			Relation: strings.TrimSpace(match[2]),
			To:       strings.TrimSpace(match[3]),
		}
		if !containsRelationship(relationships, rel) {
			relationships = append(relationships, rel)
		}
	}
	return relationships
}

func contains(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}

func containsRelationship(list []Relationship, rel Relationship) bool {
	for _, v := range list {
		if v == rel {
			return true
		}
	}
	return false
}
