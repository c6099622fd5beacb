package translate

import (
	"context"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/snapspeak/internal/cache"
)

// Cached remembers translations so that re-reading the same picture does
// not hit the network again.
type Cached struct {
	Translator Translator
	Cache      cache.Cache
}

func (c *Cached) Translate(ctx context.Context, text, from, to string) (string, error) {
	key := cache.Key(strings.ToLower(from), strings.ToLower(to), text)
	if v, ok := c.Cache.Get(key); ok {
		log.Debug("translation cache hit", "from", from, "to", to)
		return string(v), nil
	}

	out, err := c.Translator.Translate(ctx, text, from, to)
	if err != nil {
		return "", err
	}

	if err := c.Cache.Put(key, []byte(out)); err != nil {
		log.Warn("could not cache translation", "error", err)
	}
	return out, nil
}

var _ Translator = (*Cached)(nil)
