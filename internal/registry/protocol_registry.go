package registry

import (
	"strings"

	"github.com/toyz/swiftmock/internal/models"
	"github.com/toyz/swiftmock/internal/utils"
)

// NSObjectProtocol is dropped from mocks; its requirements come from NSObject
const NSObjectProtocol = "NSObjectProtocol"

// builtinConformances are standard library and Foundation protocols a mock
// cannot flatten. They are skipped without a warning.
var builtinConformances = map[string]bool{
	"AnyObject":                    true,
	"class":                        true,
	"Any":                          true,
	"Sendable":                     true,
	"Equatable":                    true,
	"Hashable":                     true,
	"Comparable":                   true,
	"Identifiable":                 true,
	"Codable":                      true,
	"Encodable":                    true,
	"Decodable":                    true,
	"Error":                        true,
	"Actor":                        true,
	"AnyActor":                     true,
	"CustomStringConvertible":      true,
	"CustomDebugStringConvertible": true,
	NSObjectProtocol:               true,
}

// IsBuiltinConformance reports whether name is a protocol the registry
// never expects to see declared in the batch
func IsBuiltinConformance(name string) bool {
	return builtinConformances[unqualified(name)]
}

// Resolution is a protocol with the requirements of every protocol it
// inherits from merged in
type Resolution struct {
	Protocol   *models.Protocol
	Inherited  []string // flattened protocols, nearest first
	Unresolved []string // inherited names not found in the registry
}

// protocolRegistry implements ProtocolRegistry on top of utils.BaseRegistry
type protocolRegistry struct {
	*utils.BaseRegistry[string, *models.Protocol]
}

// NewProtocolRegistry creates an empty protocol registry
func NewProtocolRegistry() ProtocolRegistry {
	base := utils.NewBaseRegistry[string, *models.Protocol]("protocol")
	base.SetValidator(utils.ChainValidators(
		utils.NotEmptyKeyValidator[*models.Protocol]("protocol name"),
		utils.NotNilValueValidator[string, models.Protocol]("protocol declaration"),
		utils.NoDuplicateValidator[string, *models.Protocol]("protocol"),
	))
	return &protocolRegistry{BaseRegistry: base}
}

// Register indexes a parsed protocol by name
func (r *protocolRegistry) Register(proto *models.Protocol) error {
	name := ""
	if proto != nil {
		name = proto.Name
	}
	return r.BaseRegistry.Register(name, proto)
}

// Names returns the registered protocol names in registration order
func (r *protocolRegistry) Names() []string {
	return r.List()
}

// Flatten merges the requirements of every inherited protocol into a copy
// of proto. Protocols are visited breadth first in declaration order;
// members whose declaration repeats an earlier one are dropped.
func (r *protocolRegistry) Flatten(proto *models.Protocol) *Resolution {
	res := &Resolution{}
	visited := map[string]bool{proto.Name: true}
	chain := []*models.Protocol{proto}

	for i := 0; i < len(chain); i++ {
		for _, inherited := range chain[i].Inherits {
			name := unqualified(inherited)
			if visited[name] {
				continue
			}
			visited[name] = true
			if builtinConformances[name] {
				continue
			}
			parent, ok := r.Get(name)
			if !ok {
				res.Unresolved = append(res.Unresolved, inherited)
				continue
			}
			res.Inherited = append(res.Inherited, parent.Name)
			chain = append(chain, parent)
		}
	}

	res.Protocol = merge(chain)
	return res
}

// merge combines the members of a protocol chain, first occurrence wins
func merge(chain []*models.Protocol) *models.Protocol {
	root := chain[0]
	merged := &models.Protocol{
		Name:     root.Name,
		Access:   root.Access,
		Inherits: root.Inherits,
		Location: root.Location,
	}

	seenTypes := make(map[string]bool)
	seenProperties := make(map[string]bool)
	seenMethods := make(map[string]bool)
	for _, proto := range chain {
		for _, assoc := range proto.AssociatedTypes {
			if !seenTypes[assoc.Name] {
				seenTypes[assoc.Name] = true
				merged.AssociatedTypes = append(merged.AssociatedTypes, assoc)
			}
		}
		for _, prop := range proto.Properties {
			if key := prop.Signature(); !seenProperties[key] {
				seenProperties[key] = true
				merged.Properties = append(merged.Properties, prop)
			}
		}
		for _, method := range proto.Methods {
			if key := method.Signature(); !seenMethods[key] {
				seenMethods[key] = true
				merged.Methods = append(merged.Methods, method)
			}
		}
		merged.Unsupported = append(merged.Unsupported, proto.Unsupported...)
	}
	return merged
}

// unqualified strips a module prefix: Foundation.NSObjectProtocol -> NSObjectProtocol
func unqualified(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[i+1:]
	}
	return name
}
