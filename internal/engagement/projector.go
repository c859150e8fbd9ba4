package engagement

import "github.com/google/uuid"

// Viewer-relative flags compare canonicalized identifiers only. An absent
// viewer yields false, never an error.

// CanonicalID normalizes an identifier to its canonical UUID string so
// every ownership, membership, and uniqueness comparison operates on one
// representation.
func CanonicalID(raw string) (string, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", E(KindInvalidInput, "malformed identifier")
	}
	return id.String(), nil
}

// IsOwner reports whether the resolved viewer is the entity's immutable
// owner. Anonymous viewers never own anything.
func IsOwner(viewerID, ownerID string) bool {
	return viewerID != "" && viewerID == ownerID
}

// MemberOf reports whether the viewer appears in the joined edge set.
func MemberOf(viewerID string, memberIDs []string) bool {
	if viewerID == "" {
		return false
	}
	for _, id := range memberIDs {
		if id == viewerID {
			return true
		}
	}
	return false
}

// viewerArg converts an optional viewer id into a pipeline bind value: nil
// for anonymous viewers, so membership and owner flags collapse to false.
func viewerArg(viewerID string) any {
	if viewerID == "" {
		return nil
	}
	return viewerID
}
