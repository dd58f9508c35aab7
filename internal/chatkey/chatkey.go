// Package chatkey derives deterministic conversation identifiers from a
// listing and its two participants. Keys are order-independent: the same
// pair of users chatting about the same listing always lands on the same
// thread regardless of who initiates.
package chatkey

import (
	"sort"
	"strings"
)

// Separator joins the listing id and the participant ids inside a key.
const Separator = "::"

// DefaultListingSlot is used in place of a missing listing id so the key
// shape stays stable.
const DefaultListingSlot = "post"

// Participants trims, deduplicates and sorts the supplied user ids.
// Empty ids are dropped.
func Participants(ids ...string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Pair returns the canonical participant pair, lexicographically smaller
// id first. Missing ids come back empty rather than failing.
func Pair(userA, userB string) (one, two string) {
	ids := Participants(userA, userB)
	if len(ids) > 0 {
		one = ids[0]
	}
	if len(ids) > 1 {
		two = ids[1]
	}
	return one, two
}

// Derive computes the thread key for a listing and two participants.
// Derive(l, a, b) == Derive(l, b, a) for all inputs; empty ids degrade
// the key but never produce an error.
func Derive(listingID, userA, userB string) string {
	listingID = strings.TrimSpace(listingID)
	if listingID == "" {
		listingID = DefaultListingSlot
	}

	parts := append([]string{listingID}, Participants(userA, userB)...)
	return strings.Join(parts, Separator)
}
