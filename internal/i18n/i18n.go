// Package i18n renders user-facing notification messages.
//
// Catalogs live in locales/*.yaml and are embedded at build time. pt-BR is
// the base locale and the fallback for anything unsupported.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
	"gopkg.in/yaml.v3"
)

// BaseLocale is the fallback locale; every other catalog translates it.
const BaseLocale = "pt-BR"

// Message keys.
const (
	KeyNameRequired   = "deck.name_required"
	KeySizeOutOfRange = "deck.size_out_of_range"
	KeySaved          = "deck.saved"
	KeyDeckNotFound   = "deck.not_found"
	KeyEmptyResult    = "catalog.empty_result"
	KeyFetchFailed    = "catalog.fetch_failed"
	KeySessionMissing = "session.not_found"
	KeyInvalidRequest = "request.invalid"
)

type catalogFile struct {
	Locale   string            `yaml:"locale"`
	Messages map[string]string `yaml:"messages"`
}

//go:embed locales/*.yaml
var embeddedFS embed.FS

// Bundle holds the messages of every loaded locale.
type Bundle struct {
	builder *catalog.Builder
	tags    []language.Tag
	matcher language.Matcher
	keys    map[string]map[string]bool
}

func LoadEmbedded() (*Bundle, error) {
	return LoadFromFS(embeddedFS)
}

func LoadFromFS(fsys fs.FS) (*Bundle, error) {
	paths, err := fs.Glob(fsys, "locales/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("glob locale catalogs: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no catalog files found")
	}
	sort.Strings(paths)

	b := &Bundle{
		builder: catalog.NewBuilder(catalog.Fallback(language.MustParse(BaseLocale))),
		keys:    map[string]map[string]bool{},
	}
	var base language.Tag
	var others []language.Tag
	for _, path := range paths {
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return nil, fmt.Errorf("read catalog %s: %w", path, err)
		}
		var f catalogFile
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("parse catalog %s: %w", path, err)
		}
		tag, err := language.Parse(strings.TrimSpace(f.Locale))
		if err != nil {
			return nil, fmt.Errorf("parse locale tag in %s: %w", path, err)
		}
		b.keys[tag.String()] = map[string]bool{}
		for key, msg := range f.Messages {
			if err := b.builder.SetString(tag, key, msg); err != nil {
				return nil, fmt.Errorf("register %s/%s: %w", tag, key, err)
			}
			b.keys[tag.String()][key] = true
		}
		if tag.String() == BaseLocale {
			base = tag
		} else {
			others = append(others, tag)
		}
	}
	if base == language.Und {
		return nil, fmt.Errorf("base locale %s missing", BaseLocale)
	}
	b.tags = append([]language.Tag{base}, others...)
	b.matcher = language.NewMatcher(b.tags)
	return b, nil
}

// Locales lists the loaded locales, base first.
func (b *Bundle) Locales() []string {
	out := make([]string, len(b.tags))
	for i, t := range b.tags {
		out[i] = t.String()
	}
	return out
}

// Has reports whether locale defines key.
func (b *Bundle) Has(locale, key string) bool {
	return b.keys[locale][key]
}

// Printer returns a printer for the best supported match of locale, which
// may be an Accept-Language header value.
func (b *Bundle) Printer(locale string) *Printer {
	desired, _, _ := language.ParseAcceptLanguage(locale)
	_, idx, _ := b.matcher.Match(desired...)
	tag := b.tags[idx]
	return &Printer{
		locale: tag.String(),
		p:      message.NewPrinter(tag, message.Catalog(b.builder)),
	}
}

type Printer struct {
	locale string
	p      *message.Printer
}

func (p *Printer) Locale() string { return p.locale }

// Sprintf renders the message stored under key.
func (p *Printer) Sprintf(key string, args ...any) string {
	return p.p.Sprintf(key, args...)
}
