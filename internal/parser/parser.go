package parser

import (
	"fmt"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/toyz/swiftmock/internal/errors"
	"github.com/toyz/swiftmock/internal/models"
)

// Parser implements the ProtocolParser interface. A Parser holds no state
// between calls and is safe for concurrent use.
type Parser struct {
	members  *participle.Parser[memberNode]
	reporter *ErrorReporter
}

// NewParser creates a new protocol parser
func NewParser() *Parser {
	return &Parser{
		members:  memberParser,
		reporter: NewErrorReporter(),
	}
}

// ParseSource parses every protocol declared at the top level of src, in
// declaration order. A protocol that fails to parse is skipped and its
// ParseError or InvalidSignature is collected; the returned error is a
// *errors.MultipleErrors whenever at least one protocol failed.
func (p *Parser) ParseSource(filename, src string) ([]*models.Protocol, error) {
	tokens, err := tokenize(filename, src)
	if err != nil {
		return nil, p.reporter.ReportLexError(filename, err)
	}

	var failures *errors.MultipleErrors
	spans, err := findProtocols(tokens)
	if err != nil {
		errors.AddToMultiple(&failures, asMockError(err))
	}

	protocols := make([]*models.Protocol, 0, len(spans))
	for _, span := range spans {
		proto, err := p.parseProtocol(src, tokens, span)
		if err != nil {
			errors.AddToMultiple(&failures, asMockError(err))
			continue
		}
		protocols = append(protocols, proto)
	}

	return protocols, failures.ErrOrNil()
}

// ParseProtocol parses src, which must declare exactly one protocol
func (p *Parser) ParseProtocol(filename, src string) (*models.Protocol, error) {
	protocols, err := p.ParseSource(filename, src)
	if err != nil {
		var multiple *errors.MultipleErrors
		if errors.As(err, &multiple) && multiple.Count() == 1 {
			return nil, multiple.Errors[0]
		}
		return nil, err
	}

	switch len(protocols) {
	case 1:
		return protocols[0], nil
	case 0:
		return nil, errors.NewParseError("", "", errors.SourceLocation{File: filename},
			fmt.Errorf("no protocol declaration found"))
	default:
		return nil, errors.NewParseError(protocols[1].Name, "", protocols[1].Location,
			fmt.Errorf("expected exactly one protocol, found %d", len(protocols)))
	}
}

func (p *Parser) parseProtocol(src string, tokens []lexer.Token, span protocolSpan) (*models.Protocol, error) {
	proto, err := models.NewProtocol(span.Name, location(tokens[span.Keyword].Pos))
	if err != nil {
		return nil, err
	}
	proto.Access = span.Access
	proto.Inherits = span.Inherits

	members, err := splitMembers(tokens, span)
	if err != nil {
		return nil, err
	}

	for _, member := range members {
		conv := &converter{
			protocol: proto.Name,
			base:     tokens[member.Start].Pos,
			text:     memberText(src, tokens, member),
		}

		node, err := p.members.ParseString(conv.base.Filename, conv.text)
		if err != nil {
			return nil, p.reporter.ReportMemberError(proto.Name, member.Label, conv, err)
		}
		if err := conv.apply(proto, node); err != nil {
			return nil, err
		}
	}

	return proto, nil
}

func asMockError(err error) errors.MockError {
	if mockErr, ok := errors.AsMockError(err); ok {
		return mockErr
	}
	return errors.Wrap(errors.ParseErrorCode, "failed to parse source", err)
}
