package keyboard

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRowEncodesUniqueAndPayload(t *testing.T) {
	m := Row(
		InlineBtn{Text: "TV Shows", Unique: "kind", Data: "tv"},
		InlineBtn{Text: "Movies", Unique: "kind", Data: "movie"},
	)
	if len(m.InlineKeyboard) != 1 {
		t.Fatalf("rows = %d, want 1", len(m.InlineKeyboard))
	}
	var got []string
	for _, b := range m.InlineKeyboard[0] {
		got = append(got, b.Text+"="+b.Unique+"|"+b.Data)
	}
	want := []string{"TV Shows=kind|tv", "Movies=kind|movie"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("buttons mismatch (-want +got):\n%s", diff)
	}
}

func TestInlineButtonsOnePerRow(t *testing.T) {
	m := InlineButtons([]InlineBtn{{Text: "a", Unique: "x", Data: "1"}, {Text: "b", Unique: "x", Data: "2"}})
	if len(m.InlineKeyboard) != 2 || len(m.InlineKeyboard[1]) != 1 {
		t.Fatalf("unexpected layout: %+v", m.InlineKeyboard)
	}
}
