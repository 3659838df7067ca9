package db

import (
	"context"

	"github.com/servefab/servefab/pkg/domain"
)

// Interface resolves model names to registered model versions.
type Interface interface {
	// GetModelVersion resolves a model name and version string.
	//
	// Args
	//
	// - context.Context
	//
	// - name: the model name. Required.
	//
	// - version: the version string. Empty means the latest registered
	// version of the model.
	//
	// Returns
	//
	// - domain.ModelVersion: the resolved version.
	//
	// - error: domain.ErrMissing when the model or the version is not
	// registered.
	GetModelVersion(ctx context.Context, name string, version string) (domain.ModelVersion, error)
}
