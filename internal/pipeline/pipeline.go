// Package pipeline runs an image through recognition, translation and
// speech synthesis.
//
// Each stage hands its result to the next explicitly:
//
//	Extract: image bytes -> decoded image -> preprocessed image -> text
//	Speak:   text -> translated text -> MP3 artifact on disk
//
// The caller may edit the extracted text between the two calls.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/snapspeak/internal/artifact"
	"github.com/dgnsrekt/snapspeak/internal/imaging"
	"github.com/dgnsrekt/snapspeak/internal/ocr"
	"github.com/dgnsrekt/snapspeak/internal/speech"
	"github.com/dgnsrekt/snapspeak/internal/translate"
)

var (
	// ErrNoText is returned by Speak when there is nothing to say.
	ErrNoText = errors.New("no text to speak")

	// ErrTranslate wraps translation failures.
	ErrTranslate = errors.New("translation failed")

	// ErrSynthesize wraps synthesis and storage failures.
	ErrSynthesize = errors.New("speech synthesis failed")
)

// Session holds the collaborators for one run of the program.
type Session struct {
	Recognizer  ocr.Recognizer
	Translator  translate.Translator
	Synthesizer speech.Synthesizer
	Artifacts   *artifact.Manager
}

// Extraction is the outcome of Extract. A failed decode or recognition is
// not fatal: Text is empty and Warning says why.
type Extraction struct {
	Text    string
	Warning error
}

// Extract decodes the image in r, applies opts and recognizes its text.
func (s *Session) Extract(ctx context.Context, r io.Reader, opts imaging.Options) Extraction {
	decoded, err := imaging.Decode(r)
	if err != nil {
		log.Warn("could not decode image", "err", err)
		return Extraction{Warning: err}
	}

	img := imaging.Preprocess(decoded.Image, opts)

	text, err := s.Recognizer.Recognize(ctx, img)
	if err != nil {
		log.Warn("text recognition failed", "err", err)
		return Extraction{Warning: fmt.Errorf("text recognition failed: %w", err)}
	}

	log.Debug("text extracted", "mime", decoded.MIME, "chars", len(text))
	return Extraction{Text: text}
}

// Request describes what to say and how.
type Request struct {
	Text  string // Source text, as recognized or edited
	From  string // Source language code, "" to detect
	To    string // Target language code
	Voice speech.Voice
}

// Speak translates req.Text and stores it as speech. The artifact is named
// after the original text so the same picture maps to the same file, and
// carries the translated text.
func (s *Session) Speak(ctx context.Context, req Request) (*artifact.Artifact, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, ErrNoText
	}

	translated, err := s.Translator.Translate(ctx, req.Text, req.From, req.To)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTranslate, err)
	}

	voice := req.Voice
	if voice.Language == "" {
		voice.Language = req.To
	}

	name := artifact.DeriveName(req.Text)
	a, err := s.Artifacts.Write(ctx, name, translated, voice, s.Synthesizer)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSynthesize, err)
	}

	log.Info("artifact written", "name", a.Name, "path", a.Path, "lang", voice.Language)
	return a, nil
}
