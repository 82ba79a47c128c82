package connector

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnknownScheme is returned when no connector is registered for a pattern's scheme.
var ErrUnknownScheme = errors.New("unknown source scheme")

// Constructor is a function that creates a new Connector instance.
type Constructor func(cfg ConnectorConfig) (Connector, error)

var registry = map[string]Constructor{}

// Register adds a connector constructor under the given URI scheme.
func Register(scheme string, ctor Constructor) {
	registry[scheme] = ctor
}

// Get returns the connector constructor for the given scheme.
func Get(scheme string) (Constructor, error) {
	ctor, ok := registry[scheme]
	if !ok {
		return nil, fmt.Errorf("%w: %q (registered: %s)", ErrUnknownScheme, scheme, strings.Join(Schemes(), ", "))
	}
	return ctor, nil
}

// Resolve picks the constructor for pattern based on its scheme.
// Patterns without a scheme are treated as local paths ("file").
func Resolve(pattern string) (Constructor, error) {
	return Get(Scheme(pattern))
}

// Scheme returns the URI scheme of pattern, or "file" when there is none.
func Scheme(pattern string) string {
	if i := strings.Index(pattern, "://"); i > 0 {
		return strings.ToLower(pattern[:i])
	}
	return "file"
}

// Schemes returns the registered schemes in sorted order.
func Schemes() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
