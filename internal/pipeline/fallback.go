package pipeline

import (
	"fmt"
	"sort"
	"strings"
)

// keywordGroups drives the degraded analysis path used when the language
// model is unreachable. Matching is substring based on lowercased content.
var keywordGroups = map[string][]string{
	"urban_planning": {
		"city development", "zoning", "infrastructure", "urban design",
		"land use", "planning policy", "sustainable development",
	},
	"transportation": {
		"public transit", "traffic management", "sustainable mobility",
		"transport infrastructure", "pedestrian", "cycling",
	},
	"geography": {
		"spatial analysis", "land use", "environmental factors",
		"geographic information", "mapping", "spatial planning",
	},
	"technical": {
		"methodology", "analysis", "data", "research",
		"survey", "statistics", "assessment",
	},
	"policy": {
		"regulation", "policy", "guidelines", "standards",
		"requirements", "legislation", "compliance",
	},
}

type categoryMatch struct {
	category  string
	matches   []string
	relevance float64
}

// keywordFallback produces a minimal keyword-frequency analysis without
// calling the model. Categories are ranked by the share of their terms found.
func keywordFallback(content string) string {
	lowered := strings.ToLower(content)

	found := make([]categoryMatch, 0, len(keywordGroups))
	for category, terms := range keywordGroups {
		var matches []string
		for _, t := range terms {
			if strings.Contains(lowered, t) {
				matches = append(matches, t)
			}
		}
		// A category whose name appears verbatim still gets a nominal score
		// even when none of its terms match.
		if len(matches) == 0 && !strings.Contains(lowered, category) {
			continue
		}
		relevance := 0.1
		if len(matches) > 0 {
			relevance = float64(len(matches)) / float64(len(terms))
		}
		found = append(found, categoryMatch{
			category:  category,
			matches:   matches,
			relevance: relevance,
		})
	}
	if len(found) == 0 {
		return "Unable to determine specific categories for this document."
	}
	sort.Slice(found, func(i, j int) bool {
		if found[i].relevance != found[j].relevance {
			return found[i].relevance > found[j].relevance
		}
		return found[i].category < found[j].category
	})

	var b strings.Builder
	b.WriteString("Document Analysis (Fallback):")
	for _, cm := range found {
		name := titleCase(strings.ReplaceAll(cm.category, "_", " "))
		fmt.Fprintf(&b, "\n\n%s (Relevance: %.1f%%)", name, cm.relevance*100)
		if len(cm.matches) > 0 {
			fmt.Fprintf(&b, "\nFound concepts: %s", strings.Join(cm.matches, ", "))
		}
	}
	b.WriteString("\n\nNote: This is a basic keyword-based analysis due to API unavailability.")
	return b.String()
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
