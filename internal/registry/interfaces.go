package registry

import "github.com/toyz/swiftmock/internal/models"

// ProtocolRegistry defines the interface for indexing the protocols of a
// batch so inherited requirements can be resolved across files
type ProtocolRegistry interface {
	Register(proto *models.Protocol) error
	Get(name string) (*models.Protocol, bool)
	Names() []string
	Flatten(proto *models.Protocol) *Resolution
}
