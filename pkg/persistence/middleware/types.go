// Package middleware wraps document caches with extra behavior.
package middleware

import "github.com/aretw0/strata/pkg/ports"

// Middleware allows wrapping a DocumentCache to add behavior.
type Middleware func(ports.DocumentCache) ports.DocumentCache

// Chain applies middlewares so that the first one is the outermost.
func Chain(cache ports.DocumentCache, mws ...Middleware) ports.DocumentCache {
	for i := len(mws) - 1; i >= 0; i-- {
		cache = mws[i](cache)
	}
	return cache
}
