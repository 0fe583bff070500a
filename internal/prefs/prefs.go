// Package prefs persists the shopper's display currency and language.
package prefs

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"

	"github.com/leonardcser/storefront-mcp/internal/cache"
)

// Storage keys.
const (
	KeyCurrency = "selectedCurrency"
	KeyLanguage = "selectedLanguage"
)

var (
	DefaultCurrency = currency.USD
	DefaultLanguage = language.English
)

// Supported lists the languages content is published in.
var Supported = []language.Tag{language.English, language.Arabic}

var matcher = language.NewMatcher(Supported)

// Store reads and writes preferences straight to the KV. Values are raw
// strings, not cache envelopes: preferences never go stale.
type Store struct {
	kv       KV
	defaults Prefs

	mu        sync.Mutex
	listeners []func(Prefs)
}

// KV is the storage Store needs.
type KV interface {
	Get(key string) ([]byte, error)
	Put(key string, value []byte) error
}

type Prefs struct {
	Currency currency.Unit
	Language language.Tag
}

// Locale is the CMS locale for the language, e.g. "en".
func (p Prefs) Locale() string {
	base, _ := p.Language.Base()
	return base.String()
}

func New(kv KV) *Store {
	return &Store{kv: kv, defaults: Prefs{Currency: DefaultCurrency, Language: DefaultLanguage}}
}

// WithDefaults replaces the values Load falls back to.
func (s *Store) WithDefaults(p Prefs) *Store {
	s.defaults = p
	return s
}

// Load returns the stored preferences, falling back to the defaults for
// missing or unparseable values.
func (s *Store) Load() (Prefs, error) {
	p := s.defaults
	cur, err := s.get(KeyCurrency)
	if err != nil {
		return p, err
	}
	if u, err := currency.ParseISO(cur); cur != "" && err == nil {
		p.Currency = u
	}
	lang, err := s.get(KeyLanguage)
	if err != nil {
		return p, err
	}
	if tag, err := language.Parse(lang); lang != "" && err == nil {
		p.Language = tag
	}
	return p, nil
}

// SetCurrency stores an ISO 4217 code.
func (s *Store) SetCurrency(code string) (currency.Unit, error) {
	u, err := currency.ParseISO(strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return currency.Unit{}, fmt.Errorf("prefs: currency %q: %w", code, err)
	}
	if err := s.kv.Put(KeyCurrency, []byte(u.String())); err != nil {
		return currency.Unit{}, err
	}
	s.notify()
	return u, nil
}

// SetLanguage stores the supported language closest to the BCP 47 tag.
func (s *Store) SetLanguage(tag string) (language.Tag, error) {
	t, err := language.Parse(tag)
	if err != nil {
		return language.Und, fmt.Errorf("prefs: language %q: %w", tag, err)
	}
	_, idx, conf := matcher.Match(t)
	if conf == language.No {
		return language.Und, fmt.Errorf("prefs: language %q is not supported", tag)
	}
	best := Supported[idx]
	if err := s.kv.Put(KeyLanguage, []byte(best.String())); err != nil {
		return language.Und, err
	}
	s.notify()
	return best, nil
}

// OnChange registers fn to run after every successful update.
func (s *Store) OnChange(fn func(Prefs)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *Store) notify() {
	p, err := s.Load()
	if err != nil {
		return
	}
	s.mu.Lock()
	listeners := append([]func(Prefs){}, s.listeners...)
	s.mu.Unlock()
	for _, fn := range listeners {
		fn(p)
	}
}

func (s *Store) get(key string) (string, error) {
	b, err := s.kv.Get(key)
	if errors.Is(err, cache.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return string(b), nil
}
