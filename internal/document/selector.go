package document

import (
	"sync"

	"github.com/andybalholm/cascadia"
)

// selectorCache memoizes compiled selectors. Rules query the same handful of
// selectors for every page, so compiling once per process is enough.
var selectorCache sync.Map // map[string]compiled

type compiled struct {
	sel cascadia.Selector
	err error
}

// compile returns the compiled form of selector, caching both successes
// and failures.
func compile(selector string) (cascadia.Selector, error) {
	if v, ok := selectorCache.Load(selector); ok {
		c := v.(compiled) //nolint:forcetypeassert // only compiled values are stored
		return c.sel, c.err
	}
	sel, err := cascadia.Compile(selector)
	selectorCache.Store(selector, compiled{sel: sel, err: err})
	return sel, err
}
