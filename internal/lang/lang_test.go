package lang

import "testing"

func TestLookup(t *testing.T) {
	tests := []struct {
		in       string
		wantCode string
		wantOCR  string
	}{
		{"English", "en", "eng"},
		{"ingles", "en", "eng"},
		{"Español", "es", "spa"},
		{"es", "es", "spa"},
		{"Mandarin", "zh-cn", "chi_sim"},
		{"ZH-CN", "zh-cn", "chi_sim"},
		{"Japones", "ja", "jpn"},
		{"bn", "bn", "ben"},
		{"Koreano", "ko", "kor"},
		{"fr", "fr", "fra"},
		{"de", "de", "deu"},
		{"Auto", "auto", "eng"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Lookup(tt.in)
			if err != nil {
				t.Fatalf("Lookup(%q): %v", tt.in, err)
			}
			if got.Code != tt.wantCode {
				t.Errorf("Code = %q, want %q", got.Code, tt.wantCode)
			}
			if got.Tesseract != tt.wantOCR {
				t.Errorf("Tesseract = %q, want %q", got.Tesseract, tt.wantOCR)
			}
			if got.Name == "" {
				t.Error("Name should not be empty")
			}
		})
	}
}

func TestLookup_Invalid(t *testing.T) {
	for _, in := range []string{"", "   ", "not a language", "x1"} {
		if _, err := Lookup(in); err == nil {
			t.Errorf("Lookup(%q) expected error", in)
		}
	}
}

func TestDefaultsResolve(t *testing.T) {
	if MustLookup(DefaultInput).Name != "English" {
		t.Error("default input should be English")
	}
	if MustLookup(DefaultOutput).Name != "Spanish" {
		t.Error("default output should be Spanish")
	}
}

func TestTesseractCode(t *testing.T) {
	tests := map[string]string{
		"en":      "eng",
		"zh-TW":   "chi_tra",
		"zh-Hant": "chi_tra",
		"zh":      "chi_sim",
		"pt-BR":   "por",
		"???":     "eng",
	}
	for code, want := range tests {
		if got := TesseractCode(code); got != want {
			t.Errorf("TesseractCode(%q) = %q, want %q", code, got, want)
		}
	}
}

func TestLookupAccent(t *testing.T) {
	tests := map[string]string{
		"United Kingdom": "co.uk",
		"india":          "co.in",
		"com.au":         "com.au",
		"":               DefaultTLD,
		"Mars":           DefaultTLD,
	}
	for in, want := range tests {
		if got := LookupAccent(in).TLD; got != want {
			t.Errorf("LookupAccent(%q) = %q, want %q", in, got, want)
		}
	}
}
