package narrative

// Allowed soft-error keys. The soft_errors map in response metadata is
// part of the contract: unknown keys are dropped, not forwarded.
const (
	SoftErrAI       = "ai"
	SoftErrTrends   = "trends"
	SoftErrOdds     = "odds"
	SoftErrGames    = "games_today"
	SoftErrProps    = "player_props"
	SoftErrMarkdown = "markdown"
	SoftErrTemplate = "template"
)

// AllowedSoftErrorKey reports whether key belongs to the soft-error
// contract.
func AllowedSoftErrorKey(key string) bool {
	switch key {
	case SoftErrAI, SoftErrTrends, SoftErrOdds, SoftErrGames,
		SoftErrProps, SoftErrMarkdown, SoftErrTemplate:
		return true
	}
	return false
}

// SanitizeSoftErrors filters soft to the allowed key set. Dropped keys
// are reported through onDrop so callers can log them; a typo'd key is
// a bug worth noticing. The result is never nil.
func SanitizeSoftErrors(soft map[string]string, onDrop func(key, value string)) map[string]string {
	sanitized := make(map[string]string, len(soft))
	for key, value := range soft {
		if AllowedSoftErrorKey(key) {
			sanitized[key] = value
			continue
		}
		if onDrop != nil {
			onDrop(key, value)
		}
	}
	return sanitized
}
