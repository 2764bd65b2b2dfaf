package session

import (
	"strings"

	"travel-panel/internal/domain"
)

// namedSectionFields are the list-valued payload fields that map to fixed
// section titles, in render order.
var namedSectionFields = []struct {
	key   string
	title string
}{
	{"highRatedItems", "Personalized"},
	{"similarItems", "Similars"},
	{"ratedHigh", "Rated High"},
	{"ratedLow", "Rated Low"},
}

// NormalizeSections turns a decoded payload of any recognized shape into an
// ordered list of sections. The rules are additive: a payload matching several
// shapes produces all matching sections, concatenated in rule order.
func NormalizeSections(payload any, action domain.Action) []domain.Section {
	var sections []domain.Section

	if list, ok := payload.([]any); ok {
		return []domain.Section{{Title: domain.SectionTitle(action), Items: list}}
	}
	obj, ok := payload.(map[string]any)
	if !ok {
		return nil
	}

	if data, ok := obj["data"].(map[string]any); ok {
		if items, ok := data["items"].([]any); ok {
			sections = append(sections, domain.Section{Title: domain.SectionTitle(action), Items: items})
		}
	}
	if rawSections, ok := obj["sections"].([]any); ok {
		for _, raw := range rawSections {
			entry, _ := raw.(map[string]any)
			section := domain.Section{Title: "Items"}
			if entry != nil {
				if title, _ := entry["title"].(string); title != "" {
					section.Title = title
				}
				section.Subtitle, _ = entry["subtitle"].(string)
				if items, ok := entry["items"].([]any); ok {
					section.Items = items
				}
			}
			if section.Items == nil {
				section.Items = []any{}
			}
			sections = append(sections, section)
		}
	}
	for _, field := range namedSectionFields {
		if items, ok := obj[field.key].([]any); ok {
			sections = append(sections, domain.Section{Title: field.title, Items: items})
		}
	}
	if len(sections) == 0 {
		if items, ok := obj["items"].([]any); ok {
			sections = append(sections, domain.Section{Title: domain.SectionTitle(action), Items: items})
		}
	}
	return sections
}

// HasRenderableItems distinguishes an all-empty result from a malformed one:
// it is true when at least one recognized section carries items.
func HasRenderableItems(sections []domain.Section) bool {
	for _, section := range sections {
		if len(section.Items) > 0 {
			return true
		}
	}
	return false
}

// ExtractShownMediaIDs walks the same shape-recognition surface as the
// normalizer and collects every present, non-blank media identifier, trimmed
// and deduplicated while preserving first-occurrence order.
func ExtractShownMediaIDs(payload any) []string {
	obj, ok := payload.(map[string]any)
	if !ok {
		return []string{}
	}
	ids := []string{}
	seen := map[string]bool{}
	push := func(item any) {
		m, ok := item.(map[string]any)
		if !ok {
			return
		}
		id, _ := m["mediaId"].(string)
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			return
		}
		seen[id] = true
		ids = append(ids, id)
	}
	for _, key := range []string{"items", "highRatedItems", "similarItems", "ratedHigh", "ratedLow"} {
		if list, ok := obj[key].([]any); ok {
			for _, item := range list {
				push(item)
			}
		}
	}
	if rawSections, ok := obj["sections"].([]any); ok {
		for _, raw := range rawSections {
			entry, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			if items, ok := entry["items"].([]any); ok {
				for _, item := range items {
					push(item)
				}
			}
		}
	}
	return ids
}
