package session

import (
	"travel-panel/internal/domain"
)

// annotateSections resolves the render metadata of every item: the media
// identifier (hoisted from the embedded media sub-object when the item itself
// carries none) and the display label for its match reason. Item maps are
// shallow-copied, the stored payload is never mutated.
func annotateSections(sections []domain.Section) []domain.Section {
	if sections == nil {
		return nil
	}
	out := make([]domain.Section, len(sections))
	for i, section := range sections {
		items := make([]any, len(section.Items))
		for j, item := range section.Items {
			items[j] = annotateItem(item)
		}
		section.Items = items
		out[i] = section
	}
	return out
}

func annotateItem(item any) any {
	m, ok := item.(map[string]any)
	if !ok {
		return item
	}
	annotated := make(map[string]any, len(m)+2)
	for k, v := range m {
		annotated[k] = v
	}
	if id := domain.MediaIDFromItem(m); id != "" {
		annotated["mediaId"] = id
	}
	if code, _ := m["matchReason"].(string); code != "" {
		label, ok := domain.ReasonLabels[code]
		if !ok {
			// unknown codes stay renderable as-is
			label = code
		}
		annotated["reasonLabel"] = label
	}
	return annotated
}
