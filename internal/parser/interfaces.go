package parser

import "github.com/toyz/swiftmock/internal/models"

// ProtocolParser defines the interface for turning Swift source text into
// protocol declarations
type ProtocolParser interface {
	ParseSource(filename, src string) ([]*models.Protocol, error)
	ParseProtocol(filename, src string) (*models.Protocol, error)
}
