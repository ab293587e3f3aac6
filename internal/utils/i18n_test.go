package utils

import "testing"

func TestT_AllLanguagesHaveValidationKeys(t *testing.T) {
	keys := []string{
		"validate.email_invalid",
		"validate.presel_count",
		"validate.consulted_required",
		"submit.duplicate_email",
		"step.SEND",
	}
	for _, lang := range []string{"fr", "en", "pt", "ar"} {
		for _, k := range keys {
			if got := T(lang, k); got == k {
				t.Fatalf("missing translation %s for %s", k, lang)
			}
		}
	}
}

func TestT_FallbackToEnglishThenKey(t *testing.T) {
	if got := T("pt", "health.ok"); got != "ok" {
		t.Fatalf("want ok, got %s", got)
	}
	if got := T("fr", "no.such.key"); got != "no.such.key" {
		t.Fatalf("want key echo, got %s", got)
	}
}

func TestIsRTL(t *testing.T) {
	if !IsRTL("ar") {
		t.Fatal("ar should be RTL")
	}
	if IsRTL("fr") || IsRTL("en") || IsRTL("pt") {
		t.Fatal("only ar is RTL")
	}
}
