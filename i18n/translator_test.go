package i18n

import "testing"

func TestTranslator_DefaultAndJapanese(t *testing.T) {
	// default is en
	if msg := T("invalid_type", nil); msg == "invalid_type" || msg == "" {
		t.Fatalf("expected a human message, got %q", msg)
	}

	en := T("required", nil)
	SetLanguage("ja")
	if msg := T("required", nil); msg == en {
		t.Fatalf("expected japanese message, got %q", msg)
	}

	// reset to en
	SetLanguage("en")
}

func TestTranslator_Placeholders(t *testing.T) {
	got := T("invalid_type", map[string]string{"expected": "int", "got": "string"})
	if want := "invalid type: expected int, got string"; got != want {
		t.Fatalf("message mismatch: got %q want %q", got, want)
	}
	if got := T("required", map[string]string{"member": "x"}); got != "mandatory member x missing" {
		t.Fatalf("unexpected required message %q", got)
	}
}

func TestTranslator_UnknownCodeFallsBack(t *testing.T) {
	if got := T("no_such_code", nil); got != "no_such_code" {
		t.Fatalf("expected code fallback, got %q", got)
	}
}

type upper struct{}

func (upper) Message(code string, _ map[string]string) string { return "X:" + code }

func TestTranslator_Custom(t *testing.T) {
	SetTranslator(upper{})
	defer SetTranslator(nil)
	if got := T("required", nil); got != "X:required" {
		t.Fatalf("custom translator not used: %q", got)
	}
}
