package domain

import "github.com/google/uuid"

// ModelVersion is one registered version of a model, resolved from the
// human-given (name, version) pair into a stable identifier.
type ModelVersion struct {
	ID        uuid.UUID
	ModelName string
	Version   string
}

func (m ModelVersion) Equal(o ModelVersion) bool {
	return m == o
}
