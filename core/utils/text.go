package utils

import (
	"sort"
	"strconv"
	"strings"
)

// SplitKeyValue splits line at the first sep and trims both halves.
// It returns ok=false when sep is absent or the key is empty.
func SplitKeyValue(line, sep string) (key, value string, ok bool) {
	k, v, found := strings.Cut(line, sep)
	if !found {
		return "", "", false
	}
	k = strings.TrimSpace(k)
	if k == "" {
		return "", "", false
	}
	return k, strings.TrimSpace(v), true
}

// Unquote strips one pair of matching single or double quotes.
func Unquote(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

// FirstNonEmpty returns the first argument that is not blank.
func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// SortedUnique drops blanks and duplicates and sorts the rest.
func SortedUnique(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// ToInt parses the leading integer of s, ignoring surrounding text such as
// units ("16384 kB"). It returns 0 when there is none.
func ToInt(s string) int {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return 0
	}
	i, _ := strconv.Atoi(fields[0])
	return i
}
