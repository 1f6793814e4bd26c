package middleware

import "github.com/aretw0/formwork/pkg/ports"

// Middleware allows wrapping a DefinitionStore to add behavior.
type Middleware func(ports.DefinitionStore) ports.DefinitionStore

// Chain applies middlewares so that the first one is the outermost.
func Chain(store ports.DefinitionStore, mws ...Middleware) ports.DefinitionStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
