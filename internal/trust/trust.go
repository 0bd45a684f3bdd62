// Package trust implements skyboard's Trust & Visibility Predicate (§4.2):
// whether a party is trusted by a board, and whether a given record is
// visible to a given viewer.
package trust

import "github.com/disnet/skyboard/internal/types"

// Set is the board owner's current trust grants, derived once per
// materialization run from the owner's Trust records.
type Set map[types.Party]struct{}

// NewSet builds a trust Set from Trust records, keeping only grants
// actually authored by the board owner (§3: "Trust records from parties
// other than the board owner are ignored by the core").
func NewSet(boardOwner types.Party, trusts []types.Trust) Set {
	s := make(Set)
	for _, tr := range trusts {
		if tr.Owner != boardOwner {
			continue
		}
		s[tr.TrustedParty] = struct{}{}
	}
	return s
}

// Has reports whether party is present in the trust set.
func (s Set) Has(party types.Party) bool {
	_, ok := s[party]
	return ok
}

// IsTrusted reports whether party is trusted on the board: either the board
// owner themselves, or a party the board owner has granted trust to.
func IsTrusted(party, boardOwner types.Party, trusts Set) bool {
	if party == boardOwner {
		return true
	}
	return trusts.Has(party)
}

// URISet is a set of record URIs, used for the board's approved-target
// allow-list.
type URISet map[types.URI]struct{}

// NewURISet builds a URISet from a slice of URIs.
func NewURISet(uris []types.URI) URISet {
	s := make(URISet, len(uris))
	for _, u := range uris {
		s[u] = struct{}{}
	}
	return s
}

// Has reports whether uri is present in the set.
func (s URISet) Has(uri types.URI) bool {
	_, ok := s[uri]
	return ok
}

// IsContentVisible reports whether a record authored by author, targeting
// targetURI, is visible to viewer. Visibility never fails: missing inputs
// simply resolve to false.
//
// A record is visible iff any of:
//   - the viewer is the author (self-authorship always surfaces in-flight
//     proposals to their own author)
//   - the author is the board owner
//   - the author is trusted by the board owner
//   - the board is open and the target has been explicitly approved
func IsContentVisible(author, viewer, boardOwner types.Party, trusts Set, boardOpen bool, targetURI types.URI, approved URISet) bool {
	if author == viewer {
		return true
	}
	if author == boardOwner {
		return true
	}
	if IsTrusted(author, boardOwner, trusts) {
		return true
	}
	if boardOpen && approved.Has(targetURI) {
		return true
	}
	return false
}
