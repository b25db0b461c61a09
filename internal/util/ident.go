package util

import (
	"math/rand"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	nonDigitPattern = regexp.MustCompile(`\D`)
	canonicalUUIDRE = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)
)

const base36Alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// CleanPhone strips everything but digits. Returns nil instead of an
// empty string when nothing digit-like survives.
func CleanPhone(input string) *string {
	if strings.TrimSpace(input) == "" {
		return nil
	}
	cleaned := nonDigitPattern.ReplaceAllString(input, "")
	if cleaned == "" {
		return nil
	}
	return &cleaned
}

// IsUUID reports whether input is a canonical 8-4-4-4-12 hex UUID.
// The shape check keeps uuid.Parse from accepting its looser forms
// (braces, urn prefix, bare hex).
func IsUUID(input string) bool {
	if !canonicalUUIDRE.MatchString(input) {
		return false
	}
	_, err := uuid.Parse(input)
	return err == nil
}

// NewUniqueNumber mints a fresh collection identifier: prefix, base-36
// millisecond timestamp, five random base-36 characters, upper-cased.
// Always generated per parse, never carried over from caller state.
func NewUniqueNumber(prefix string) string {
	ts := strconv.FormatInt(time.Now().UnixMilli(), 36)
	suffix := make([]byte, 5)
	for i := range suffix {
		suffix[i] = base36Alphabet[rand.Intn(len(base36Alphabet))]
	}
	return strings.ToUpper(prefix + "-" + ts + "-" + string(suffix))
}
