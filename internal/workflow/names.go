package workflow

import "strings"

// NameParser splits a full name into first and last name.
type NameParser func(full string) (first, last string)

// SplitFullName is the default NameParser. The first whitespace-separated
// token becomes the first name and the remaining tokens, joined by single
// spaces, the last name.
func SplitFullName(full string) (first, last string) {
	parts := strings.Fields(full)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}

// NameFromEmail returns the local part of an address (text before "@").
func NameFromEmail(email string) string {
	local, _, found := strings.Cut(email, "@")
	if !found {
		return strings.TrimSpace(email)
	}
	return strings.TrimSpace(local)
}
