package util

import (
	"strings"
	"testing"

	"friendbook/model"
)

func TestBuildContactCard(t *testing.T) {
	card := BuildContactCard(model.User{Username: "alice", Email: "a@x.com", Bio: "hi"})
	if !strings.HasPrefix(card, "MECARD:") {
		t.Fatalf("unexpected prefix: %q", card)
	}
	for _, want := range []string{"N:alice;", "EMAIL:a@x.com;", "NOTE:hi;"} {
		if !strings.Contains(card, want) {
			t.Fatalf("card %q missing %q", card, want)
		}
	}
}

func TestBuildContactCard_EscapesReservedChars(t *testing.T) {
	card := BuildContactCard(model.User{Username: "a;b:c", Email: "a@x.com"})
	if !strings.Contains(card, `N:a\;b\:c;`) {
		t.Fatalf("reserved characters not escaped: %q", card)
	}
}

func TestBuildContactCard_EmptyBioOmitsNote(t *testing.T) {
	card := BuildContactCard(model.User{Username: "alice", Email: "a@x.com"})
	if strings.Contains(card, "NOTE:") {
		t.Fatalf("empty bio must not produce a NOTE field: %q", card)
	}
}
