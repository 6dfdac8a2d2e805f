package logger

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

const defaultHashSalt = "finflow-default-salt"

var hashSalt = defaultHashSalt

// SetHashSalt sets the salt mixed into hashed identifiers.
// An empty salt keeps the built-in default.
func SetHashSalt(salt string) {
	if salt == "" {
		hashSalt = defaultHashSalt
		return
	}
	hashSalt = salt
}

// HashUserID creates a privacy-preserving hash of a user ID.
// This allows tracking user actions without exposing actual user IDs.
func HashUserID(userID int64) string {
	data := fmt.Sprintf("%d:%s", userID, hashSalt)
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])[:8]
}

// HashChatID creates a privacy-preserving hash of a chat ID.
func HashChatID(chatID int64) string {
	data := fmt.Sprintf("chat:%d:%s", chatID, hashSalt)
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])[:8]
}

// SanitizeNote redacts a transaction note but keeps its shape for debugging.
func SanitizeNote(note string) string {
	if note == "" {
		return "<empty>"
	}

	words := strings.Fields(note)
	return fmt.Sprintf("<redacted: %d words, %d chars>", len(words), len(note))
}

// SanitizeText is a general-purpose sanitizer for any user-provided text.
func SanitizeText(text string) string {
	if text == "" {
		return "<empty>"
	}

	runes := []rune(text)
	if len(runes) <= 10 {
		return fmt.Sprintf("<%d chars>", len(runes))
	}

	return fmt.Sprintf("%s...<%d chars>", string(runes[:3]), len(runes))
}
