package logger

import (
	"slices"
	"strings"
	"sync"
)

const (
	redactedMark = "***"
	// minSecretLen keeps short values such as "postgres" ports or usernames from being masked everywhere.
	minSecretLen = 6
)

// redactor masks registered secrets in every string written to the log.
type redactor struct {
	mu       sync.RWMutex
	secrets  []string
	replacer *strings.Replacer
}

var secrets = &redactor{}

// AddSecrets registers values that must never appear in log output,
// such as the bot token or database password.
func AddSecrets(values ...string) {
	secrets.add(values...)
}

func (r *redactor) add(values ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	changed := false
	for _, v := range values {
		v = strings.TrimSpace(v)
		if len(v) < minSecretLen || slices.Contains(r.secrets, v) {
			continue
		}
		r.secrets = append(r.secrets, v)
		changed = true
	}
	if !changed {
		return
	}
	// Longest first so a secret containing another is masked whole.
	slices.SortFunc(r.secrets, func(a, b string) int { return len(b) - len(a) })
	pairs := make([]string, 0, len(r.secrets)*2)
	for _, s := range r.secrets {
		pairs = append(pairs, s, redactedMark)
	}
	r.replacer = strings.NewReplacer(pairs...)
}

func (r *redactor) redact(s string) string {
	r.mu.RLock()
	rep := r.replacer
	r.mu.RUnlock()
	if rep == nil || s == "" {
		return s
	}
	return rep.Replace(s)
}
