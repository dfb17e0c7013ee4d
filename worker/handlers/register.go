package handlers

import (
	"fmt"

	"github.com/keyrig/keyrig/worker/types"
)

type FactoryFunc func() (types.Backend, error)

var backendFactories map[string]FactoryFunc = make(map[string]FactoryFunc)

func RegisterBackendFactory(desktop string, factory FactoryFunc) {
	backendFactories[desktop] = factory
}

func GetBackendForDesktop(desktop string) (types.Backend, error) {
	factory, ok := backendFactories[desktop]
	if !ok {
		return nil, fmt.Errorf("unknown backend %s", desktop)
	}
	return factory()
}
