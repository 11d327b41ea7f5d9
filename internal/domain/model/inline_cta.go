package model

import "strings"

// InlineCTAAttr tags the publisher element that hosts an inline confirmation.
const InlineCTAAttr = "rrm-inline-cta"

// InlineSlotMatches reports whether an inline slot attribute value names
// configID. Publishers may quote the value.
func InlineSlotMatches(attrValue, configID string) bool {
	if configID == "" {
		return false
	}
	v := strings.TrimSpace(attrValue)
	if len(v) >= 2 && (v[0] == '"' || v[0] == '\'') && v[len(v)-1] == v[0] {
		v = v[1 : len(v)-1]
	}
	return v == configID
}
