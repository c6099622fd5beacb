// Package lang maps the language and accent choices a user can make to the
// codes the translator, speech engine and OCR engine expect.
package lang

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Language is a selectable input or output language.
type Language struct {
	Name      string   // Display name
	Code      string   // Translation and speech code, e.g. "zh-cn"
	Tesseract string   // OCR traineddata name, e.g. "chi_sim"
	Aliases   []string // Extra names accepted by Lookup
}

// Accent is a regional voice variant, served from a Google top-level domain.
type Accent struct {
	Name string
	TLD  string
}

const (
	// Auto asks the translator to detect the source language.
	Auto = "auto"

	DefaultInput  = "en"
	DefaultOutput = "es"
	DefaultTLD    = "com"
)

// Languages are the languages offered by default.
var Languages = []Language{
	{Name: "Spanish", Code: "es", Tesseract: "spa", Aliases: []string{"español", "espanol"}},
	{Name: "English", Code: "en", Tesseract: "eng", Aliases: []string{"ingles", "inglés"}},
	{Name: "Bengali", Code: "bn", Tesseract: "ben"},
	{Name: "Korean", Code: "ko", Tesseract: "kor", Aliases: []string{"koreano", "coreano"}},
	{Name: "Mandarin", Code: "zh-cn", Tesseract: "chi_sim", Aliases: []string{"chinese", "zh"}},
	{Name: "Japanese", Code: "ja", Tesseract: "jpn", Aliases: []string{"japones", "japonés"}},
}

// Accents only change the voice; the language stays the same.
var Accents = []Accent{
	{Name: "Default (US)", TLD: "com"},
	{Name: "India", TLD: "co.in"},
	{Name: "United Kingdom", TLD: "co.uk"},
	{Name: "Canada", TLD: "ca"},
	{Name: "Australia", TLD: "com.au"},
	{Name: "Ireland", TLD: "ie"},
	{Name: "South Africa", TLD: "co.za"},
}

// Lookup resolves a language by display name, code or alias, ignoring case.
// Anything else that parses as a BCP 47 tag is accepted as-is.
func Lookup(s string) (Language, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if key == "" {
		return Language{}, errors.New("empty language")
	}
	if key == Auto {
		return Language{Name: "Detect language", Code: Auto, Tesseract: "eng"}, nil
	}

	for _, l := range Languages {
		if key == strings.ToLower(l.Name) || key == l.Code {
			return l, nil
		}
		for _, a := range l.Aliases {
			if key == a {
				return l, nil
			}
		}
	}

	tag, err := language.Parse(key)
	if err != nil {
		return Language{}, fmt.Errorf("unknown language %q: %w", s, err)
	}

	return Language{
		Name:      display.English.Tags().Name(tag),
		Code:      key,
		Tesseract: TesseractCode(key),
	}, nil
}

// MustLookup is Lookup for known-good values.
func MustLookup(s string) Language {
	l, err := Lookup(s)
	if err != nil {
		panic(err)
	}
	return l
}

// TesseractCode returns the traineddata name for a language code. Tesseract
// uses ISO 639-3, except for Chinese which is split by script.
func TesseractCode(code string) string {
	tag, err := language.Parse(code)
	if err != nil {
		return "eng"
	}

	base, _ := tag.Base()
	if base.String() == "zh" {
		if script, _ := tag.Script(); script.String() == "Hant" {
			return "chi_tra"
		}
		if region, _ := tag.Region(); region.String() == "TW" || region.String() == "HK" {
			return "chi_tra"
		}
		return "chi_sim"
	}

	if iso3 := base.ISO3(); iso3 != "" {
		return iso3
	}
	return "eng"
}

// LookupAccent resolves an accent by display name or TLD. Unknown values fall
// back to the default TLD.
func LookupAccent(s string) Accent {
	key := strings.ToLower(strings.TrimSpace(s))
	for _, a := range Accents {
		if key == strings.ToLower(a.Name) || key == a.TLD {
			return a
		}
	}
	return Accents[0]
}
