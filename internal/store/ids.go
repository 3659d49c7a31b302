package store

import (
	"strings"

	"github.com/google/uuid"
)

const idSuffixLen = 10

// NewID builds an identifier of the form "pre_3f9c01ab2d": a short
// human-readable prefix plus a fixed-length slice of a random UUID.
// Uniqueness is probabilistic, not checked against existing records;
// at tens of thousands of rows per collection the collision odds are
// negligible.
func NewID(prefix string) string {
	token := strings.ReplaceAll(uuid.NewString(), "-", "")
	return prefix + "_" + token[:idSuffixLen]
}

// idPrefix derives the conventional id prefix for a collection: its first
// three characters ("patients" -> "pat").
func idPrefix(collection string) string {
	if len(collection) > 3 {
		return collection[:3]
	}
	return collection
}
