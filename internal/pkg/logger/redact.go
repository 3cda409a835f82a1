package logger

import "strings"

// RedactEmail masks an address for safe logging, keeping at most the
// first two characters of the local part:
// "pat.doe@example.com" becomes "pa***@example.com".
func RedactEmail(email string) string {
	local, domain, ok := strings.Cut(email, "@")
	if !ok || strings.Contains(domain, "@") {
		return "***@***"
	}
	if len(local) <= 2 {
		return "***@" + domain
	}
	return local[:2] + "***@" + domain
}
