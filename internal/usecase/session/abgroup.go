package session

// ResolveABGroup derives the active experiment group. A group tag on the last
// utility-action response wins; otherwise the user-selected default applies,
// with the AUTO sentinel resolving to "A".
func ResolveABGroup(auxPayload any, abVersion string) string {
	if obj, ok := auxPayload.(map[string]any); ok {
		if meta, ok := obj["metadata"].(map[string]any); ok {
			if group, ok := meta["ab_test_group"].(string); ok {
				if group == "A" || group == "B" {
					return group
				}
			}
		}
	}
	if abVersion == "AUTO" || abVersion == "" {
		return "A"
	}
	return abVersion
}
