package respond

import (
	"regexp"
)

var (
	// "ApiKey user:key" authorization values for the contest listing API.
	clistKeyPattern = regexp.MustCompile(`ApiKey\s+\S+:\S+`)

	// Bearer tokens (cron secret, JWT) that may surface in wrapped errors.
	bearerPattern = regexp.MustCompile(`Bearer\s+\S+`)

	// Credentials inside connection strings.
	dsnPasswordPattern = regexp.MustCompile(`://([^:/]+):([^@]+)@`)
)

// SanitizeError masks credentials that may be embedded in error messages
// before they are logged.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	msg = clistKeyPattern.ReplaceAllString(msg, "ApiKey ****")
	msg = bearerPattern.ReplaceAllString(msg, "Bearer ****")
	msg = dsnPasswordPattern.ReplaceAllString(msg, "://$1:****@")
	return msg
}
