package keyboard

import "testing"

func TestInlineButtonsMixesURLAndData(t *testing.T) {
	m := InlineButtons(
		InlineBtn{Text: "Join", URL: "https://t.me/example"},
		InlineBtn{Text: "Check", Unique: "check_sub"},
	)
	if len(m.InlineKeyboard) != 2 {
		t.Fatalf("rows = %d, want 2", len(m.InlineKeyboard))
	}
	link := m.InlineKeyboard[0][0]
	if link.URL != "https://t.me/example" || link.Data != "" {
		t.Fatalf("link button = %+v", link)
	}
	check := m.InlineKeyboard[1][0]
	if check.Unique != "check_sub" || check.URL != "" {
		t.Fatalf("callback button = %+v", check)
	}
}

func TestInlineButtonsRows(t *testing.T) {
	m := InlineButtonsRows(
		[]InlineBtn{{Text: "a", Unique: "a"}, {Text: "b", Unique: "b"}},
		[]InlineBtn{{Text: "c", Unique: "c", Data: "1"}},
	)
	if len(m.InlineKeyboard) != 2 || len(m.InlineKeyboard[0]) != 2 || len(m.InlineKeyboard[1]) != 1 {
		t.Fatalf("unexpected layout: %+v", m.InlineKeyboard)
	}
	if m.InlineKeyboard[1][0].Data != "1" {
		t.Fatalf("data = %q", m.InlineKeyboard[1][0].Data)
	}
}
