// Copyright (c) 2026 fxview Team
// fxview - terminal currency converter
// This source code is licensed under the MIT license found in the LICENSE file.

package i18n

import "testing"

func TestT_TranslatesAndFormats(t *testing.T) {
	Init("en")
	if got := T("general.submit"); got != "Add" {
		t.Fatalf("expected 'Add', got %q", got)
	}
	if got := T("converter.added", "EUR"); got != "Added EUR." {
		t.Fatalf("unexpected formatted message: %q", got)
	}
}

func TestT_UnknownIDFallsBack(t *testing.T) {
	Init("en")
	if got := T("no.such.message"); got != "no.such.message" {
		t.Fatalf("expected id fallback, got %q", got)
	}
}

func TestSetLang_German(t *testing.T) {
	SetLang("de")
	defer SetLang("en")
	if got := T("general.submit"); got != "Hinzufügen" {
		t.Fatalf("expected German translation, got %q", got)
	}
	if Lang() != "de" {
		t.Fatalf("expected current language de, got %q", Lang())
	}
}

func TestLanguages(t *testing.T) {
	langs := Languages()
	if len(langs) != 2 || langs[0] != "de" || langs[1] != "en" {
		t.Fatalf("expected [de en], got %v", langs)
	}
}
