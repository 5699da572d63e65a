// Package provider binds file extensions to extractors and runs them over
// batches of files, either in this process or through worker processes
// that speak the record format.
package provider

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Placeholders substituted in Provider.Args.
const (
	InputPlaceholder  = "{input}"
	OutputPlaceholder = "{output}"
)

var (
	// ErrInvalidProvider is returned for a provider definition that cannot be used.
	ErrInvalidProvider = errors.New("invalid provider")
	// ErrDuplicateExtension is returned when two providers claim the same extension.
	ErrDuplicateExtension = errors.New("duplicate extension")
)

// Provider binds a set of file extensions to an extractor invocation.
//
// An empty Command selects the built-in extractor called Name. Otherwise
// Command is started once per batch with Args, after replacing {input} by
// the path of the file list and {output} by the path of the record file.
type Provider struct {
	Name       string   `mapstructure:"name" yaml:"name"`
	Extensions []string `mapstructure:"extensions" yaml:"extensions"`
	Command    string   `mapstructure:"command" yaml:"command,omitempty"`
	Args       []string `mapstructure:"args" yaml:"args,omitempty"`
}

// BuiltIn reports whether p runs a built-in extractor.
func (p Provider) BuiltIn() bool {
	return p.Command == ""
}

// Defaults returns the built-in providers.
func Defaults() []Provider {
	return []Provider{
		{Name: "csharp", Extensions: []string{".cs"}},
		{Name: "razor", Extensions: []string{".cshtml", ".razor"}},
		{Name: "typescript", Extensions: []string{".ts", ".tsx"}},
		{Name: "tsql", Extensions: []string{".sql", ".csql"}},
	}
}

// Registry is a read-only set of providers.
type Registry struct {
	providers []Provider
	// suffixes is ordered longest first.
	suffixes []suffix
}

type suffix struct {
	ext      string
	provider int
}

// NewRegistry validates providers and indexes their extensions. All
// problems are reported together.
func NewRegistry(providers []Provider) (*Registry, error) {
	r := &Registry{providers: make([]Provider, 0, len(providers))}
	owner := make(map[string]string)
	names := make(map[string]bool)

	var errs []error
	for _, p := range providers {
		if p.Name == "" {
			errs = append(errs, fmt.Errorf("%w: name is required", ErrInvalidProvider))
			continue
		}
		if names[p.Name] {
			errs = append(errs, fmt.Errorf("%w: %s is defined twice", ErrInvalidProvider, p.Name))
			continue
		}
		names[p.Name] = true
		if len(p.Extensions) == 0 {
			errs = append(errs, fmt.Errorf("%w: %s has no extensions", ErrInvalidProvider, p.Name))
			continue
		}

		idx := len(r.providers)
		exts := make([]string, 0, len(p.Extensions))
		for _, ext := range p.Extensions {
			ext = strings.ToLower(ext)
			if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
				errs = append(errs, fmt.Errorf("%w: %s extension %q must start with a dot", ErrInvalidProvider, p.Name, ext))
				continue
			}
			if prev, ok := owner[ext]; ok {
				errs = append(errs, fmt.Errorf("%w: %s is claimed by %s and %s", ErrDuplicateExtension, ext, prev, p.Name))
				continue
			}
			owner[ext] = p.Name
			exts = append(exts, ext)
			r.suffixes = append(r.suffixes, suffix{ext: ext, provider: idx})
		}
		p.Extensions = exts
		r.providers = append(r.providers, p)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	sort.SliceStable(r.suffixes, func(i, j int) bool {
		return len(r.suffixes[i].ext) > len(r.suffixes[j].ext)
	})
	return r, nil
}

// DefaultRegistry returns a registry of the built-in providers.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(Defaults())
	if err != nil {
		panic(err)
	}
	return r
}

// Lookup returns the provider whose extension is the longest
// case-insensitive suffix of path.
func (r *Registry) Lookup(path string) (Provider, bool) {
	lower := strings.ToLower(path)
	for _, s := range r.suffixes {
		if strings.HasSuffix(lower, s.ext) {
			return r.providers[s.provider], true
		}
	}
	return Provider{}, false
}

// Get returns the provider called name.
func (r *Registry) Get(name string) (Provider, bool) {
	for _, p := range r.providers {
		if p.Name == name {
			return p, true
		}
	}
	return Provider{}, false
}

// Providers returns the providers in definition order.
func (r *Registry) Providers() []Provider {
	out := make([]Provider, len(r.providers))
	copy(out, r.providers)
	return out
}
