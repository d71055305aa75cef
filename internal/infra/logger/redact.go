package logger

import "strings"

// RedactEmail keeps the first two characters of the local part and the
// domain, e.g. jane.doe@school.org becomes ja***@school.org. Local parts of
// two characters or fewer are masked entirely.
func RedactEmail(email string) string {
	local, domain, ok := strings.Cut(email, "@")
	if !ok || strings.Contains(domain, "@") {
		return "***@***"
	}
	if r := []rune(local); len(r) > 2 {
		return string(r[:2]) + "***@" + domain
	}
	return "***@" + domain
}
