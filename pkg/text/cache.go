package text

import (
	"regexp"

	lru "github.com/hashicorp/golang-lru/v2"
	"gitlab.com/tozd/go/errors"
)

const patternCacheSize = 512

// patternCache shares compiled expressions between tables. Passes and
// repeated sessions tend to reuse the same patterns.
var patternCache = mustNewCache()

func mustNewCache() *lru.Cache[string, *regexp.Regexp] {
	c, err := lru.New[string, *regexp.Regexp](patternCacheSize)
	if err != nil {
		panic(err)
	}
	return c
}

func compilePattern(expr string) (*regexp.Regexp, error) {
	if re, ok := patternCache.Get(expr); ok {
		return re, nil
	}

	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, errors.Errorf("%w: %q: %s", ErrInvalidPattern, expr, err.Error())
	}

	patternCache.Add(expr, re)
	return re, nil
}
