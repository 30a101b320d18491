package logger

import "strings"

// RedactEmail masks an address for logging, keeping the domain:
// "jane.doe@example.com" becomes "ja***@example.com". Local parts of two
// characters or fewer are masked entirely.
func RedactEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndexByte(email, '@')
	if at <= 0 || at == len(email)-1 {
		return "***@***"
	}
	local, domain := email[:at], email[at+1:]
	if len(local) > 2 {
		return local[:2] + "***@" + domain
	}
	return "***@" + domain
}

// RedactName keeps the first letter of each word: "Jane Q Public" becomes
// "J*** Q*** P***".
func RedactName(name string) string {
	words := strings.Fields(name)
	for i, w := range words {
		r := []rune(w)
		words[i] = string(r[0]) + "***"
	}
	return strings.Join(words, " ")
}

func isNameKey(key string) bool {
	switch key {
	case "name", "first_name", "last_name", "author_name", "display_name":
		return true
	}
	return false
}
