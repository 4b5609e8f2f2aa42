package utils

import (
	"testing"

	"github.com/geocoder89/userdesk/internal/domain/user"
	"github.com/google/uuid"
)

func TestBuildUsersListCacheKey(t *testing.T) {
	q1, q2 := " Ann ", "ann"
	role := user.RoleAdmin

	a := BuildUsersListCacheKey(1, user.ListFilter{Search: &q1, Role: &role, Limit: 10})
	b := BuildUsersListCacheKey(1, user.ListFilter{Search: &q2, Role: &role, Limit: 10})
	if a != b {
		t.Fatalf("equivalent filters should share a key: %q vs %q", a, b)
	}

	c := BuildUsersListCacheKey(2, user.ListFilter{Search: &q2, Role: &role, Limit: 10})
	if a == c {
		t.Fatalf("different pages must not share a key")
	}

	d := BuildUsersListCacheKey(1, user.ListFilter{Search: &q2, Limit: 10})
	if a == d {
		t.Fatalf("role filter must change the key")
	}
}

func TestIsUUID(t *testing.T) {
	if !IsUUID(uuid.NewString()) {
		t.Fatalf("expected valid uuid")
	}
	if IsUUID("507f1f77bcf86cd799439011") {
		t.Fatalf("object ids are not uuids")
	}
}
