package engagement

import "testing"

func TestCanonicalIDNormalizesCase(t *testing.T) {
	got, err := CanonicalID("00000000-0000-0000-0000-0000000000A1")
	if err != nil {
		t.Fatalf("CanonicalID returned error: %v", err)
	}
	if got != "00000000-0000-0000-0000-0000000000a1" {
		t.Fatalf("expected lowercase canonical form, got %q", got)
	}
}

func TestCanonicalIDRejectsGarbage(t *testing.T) {
	for _, raw := range []string{"", "abc", "00000000-0000-0000-0000"} {
		if _, err := CanonicalID(raw); KindOf(err) != KindInvalidInput {
			t.Fatalf("expected invalid input for %q, got %v", raw, err)
		}
	}
}

func TestIsOwnerAnonymousNeverOwns(t *testing.T) {
	if IsOwner("", "") {
		t.Fatal("anonymous viewer must not own an entity with empty owner")
	}
	if !IsOwner(viewerID, viewerID) {
		t.Fatal("viewer must own their own entity")
	}
	if IsOwner(viewerID, ownerID) {
		t.Fatal("foreign viewer must not own the entity")
	}
}

func TestMemberOfAnonymousNeverMember(t *testing.T) {
	members := []string{viewerID, ownerID}
	if MemberOf("", members) {
		t.Fatal("anonymous viewer is never a member")
	}
	if !MemberOf(ownerID, members) {
		t.Fatal("listed viewer must be a member")
	}
}
