// Package backends collects the revival registry of every serving
// backend linked into the reconciler binary.
//
// A backend package registers its Reviver from init:
//
//	func init() {
//		backends.Register("my-backend", revive)
//	}
//
// and gets linked in with a blank import in the reconciler's main.
package backends

import "github.com/servefab/servefab/pkg/domain/service/registry"

var shared = registry.New()

func Register(source string, rev registry.Reviver) {
	shared.Register(source, rev)
}

func Registry() *registry.Registry {
	return shared
}
