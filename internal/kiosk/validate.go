package kiosk

import (
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"
)

// Guardrail limits for custom prompts. Checked in order; the first failing
// rule produces the one message shown to the user.
const (
	MinPromptLen    = 3
	MaxPromptLen    = 2000
	MaxPromptLines  = 8
	MaxTokenLen     = 40
	DefaultCooldown = 3 * time.Second

	// Most-frequent-token share above which a prompt counts as degenerate
	// repetition. Only applied to prompts with more than two tokens.
	repetitionCap = 0.5
)

// blockedPhrases are prompt-injection markers rejected case-insensitively.
var blockedPhrases = []string{
	"ignore previous",
	"ignore all previous",
	"disregard the above",
	"disregard previous",
	"system:",
	"you are now",
	"forget your instructions",
	"pretend you are",
	"jailbreak",
}

// ValidationError is a user-facing rejection of a custom prompt.
type ValidationError struct {
	Rule    string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// IsValidationError reports whether err is a prompt rejection.
func IsValidationError(err error) bool {
	_, ok := err.(*ValidationError)
	return ok
}

func reject(rule, msg string) error { return &ValidationError{Rule: rule, Message: msg} }

// Validator gates free-text prompts. The rate-limit window is a simple fixed
// window keyed on the last accepted submission, not a token bucket.
type Validator struct {
	mu           sync.Mutex
	now          func() time.Time
	cooldown     time.Duration
	lastAccepted time.Time
}

// NewValidator builds a validator; cooldown <= 0 selects DefaultCooldown.
func NewValidator(cooldown time.Duration) *Validator {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	return &Validator{now: time.Now, cooldown: cooldown}
}

// SetClock overrides the time source, for tests.
func (v *Validator) SetClock(now func() time.Time) { v.now = now }

// Validate applies the guardrails in their fixed order and, on acceptance,
// advances the rate-limit timestamp. Failures have no side effects.
func (v *Validator) Validate(input string) error {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return reject("empty", "Please enter a prompt.")
	}
	if utf8.RuneCountInString(trimmed) < MinPromptLen {
		return reject("too_short", fmt.Sprintf("Prompt is too short. Use at least %d characters.", MinPromptLen))
	}
	if utf8.RuneCountInString(trimmed) > MaxPromptLen {
		return reject("too_long", fmt.Sprintf("Prompt is too long. Keep it under %d characters.", MaxPromptLen))
	}
	if n := countNonBlankLines(trimmed); n > MaxPromptLines {
		return reject("too_many_lines", fmt.Sprintf("Prompt has too many lines. Keep it under %d.", MaxPromptLines))
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	now := v.now()
	if !v.lastAccepted.IsZero() {
		if elapsed := now.Sub(v.lastAccepted); elapsed < v.cooldown {
			wait := v.cooldown - elapsed
			secs := int((wait + time.Second - 1) / time.Second)
			return reject("rate_limited", fmt.Sprintf("Please wait %d seconds before sending another prompt.", secs))
		}
	}

	lower := strings.ToLower(trimmed)
	for _, phrase := range blockedPhrases {
		if strings.Contains(lower, phrase) {
			return reject("blocked_phrase", "That prompt isn't allowed here. Try one of the suggested examples.")
		}
	}

	tokens := strings.Fields(trimmed)
	for _, tok := range tokens {
		if utf8.RuneCountInString(tok) > MaxTokenLen {
			return reject("token_too_long", fmt.Sprintf("Prompt contains a word longer than %d characters.", MaxTokenLen))
		}
	}
	if len(tokens) > 2 {
		counts := make(map[string]int, len(tokens))
		max := 0
		for _, tok := range tokens {
			k := strings.ToLower(tok)
			counts[k]++
			if counts[k] > max {
				max = counts[k]
			}
		}
		if float64(max)/float64(len(tokens)) > repetitionCap {
			return reject("repetition", "Prompt repeats the same word too often. Try rephrasing.")
		}
	}

	v.lastAccepted = now
	return nil
}

func countNonBlankLines(s string) int {
	n := 0
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) != "" {
			n++
		}
	}
	return n
}
