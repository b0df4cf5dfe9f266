package synth

import (
	"strconv"
	"strings"

	"github.com/toyz/swiftmock/internal/models"
)

// Naming levels, from the bare method name up to a positional ordinal.
// A group of methods that collide at one level moves to the next together.
const (
	levelName = iota
	levelLabels
	levelTypes
	levelReturn
	levelOrdinal
)

// FieldNames builds the names of the tracking members generated for one
// protocol member from its unique fragment
type FieldNames struct {
	Unique string
}

// Invoked is the flag (methods) or last assigned value (properties)
func (f FieldNames) Invoked() string {
	return "invoked" + f.Unique
}

// Parameters is the invoked-parameters tuple of a method
func (f FieldNames) Parameters() string {
	return "invoked" + f.Unique + "Parameters"
}

// StubbedResult is the stubbed return value of a method
func (f FieldNames) StubbedResult() string {
	return "stubbed" + f.Unique + "Result"
}

// Stubbed is the stubbed value of a property
func (f FieldNames) Stubbed() string {
	return "stubbed" + f.Unique
}

// ClosureResult holds the arguments passed to a callback parameter
func (f FieldNames) ClosureResult(param string) string {
	return "stubbed" + f.Unique + models.Capitalize(param) + "Result"
}

// UniqueNames derives the capitalized name fragment of every property and
// method. No generated member may repeat a property name or a member
// generated for an earlier declaration, and no method fragment may repeat
// another fragment. Properties keep their name, numbered from 2 on conflict.
// Methods keep their plain name unless it collides; colliding groups are
// escalated level by level and a later method escalates when one of its
// members is already taken. The result depends only on the declarations,
// in order.
func UniqueNames(properties []models.Property, methods []*models.Method) ([]string, []string) {
	taken := make(map[string]bool)
	for _, prop := range properties {
		taken[prop.Name] = true
	}

	propNames := make([]string, len(properties))
	used := make(map[string]bool, len(properties))
	for i, prop := range properties {
		for n := 1; ; n++ {
			name := models.Capitalize(prop.Name)
			if n > 1 {
				name += strconv.Itoa(n)
			}
			// the property's own name is already claimed
			members := propertyMembers(propertyMock(prop, FieldNames{Unique: name}))[1:]
			if used[name] || anyTaken(taken, members) {
				continue
			}
			used[name] = true
			claimAll(taken, members)
			propNames[i] = name
			break
		}
	}

	return propNames, methodNames(methods, used, taken)
}

// methodNames resolves method fragments against the fragments and members
// already claimed by properties
func methodNames(methods []*models.Method, reserved, claimed map[string]bool) []string {
	levels := make([]int, len(methods))
	names := make([]string, len(methods))
	for {
		for i := range methods {
			names[i] = candidate(methods, i, levels[i])
		}

		groups := make(map[string][]int, len(names))
		for i, name := range names {
			groups[name] = append(groups[name], i)
		}

		changed := false
		for i, name := range names {
			group := groups[name]
			if len(group) < 2 && !reserved[name] {
				continue
			}
			// numbered names only move for a later member of the group
			if levels[i] >= levelOrdinal && group[0] == i && !reserved[name] {
				continue
			}
			levels[i]++
			changed = true
		}
		if changed {
			continue
		}

		taken := make(map[string]bool, len(claimed))
		for name := range claimed {
			taken[name] = true
		}
		for i, method := range methods {
			members := methodMembers(methodMock(method, FieldNames{Unique: names[i]}))
			if anyTaken(taken, members) {
				levels[i]++
				changed = true
				continue
			}
			claimAll(taken, members)
		}
		if !changed {
			return names
		}
	}
}

func anyTaken(taken map[string]bool, names []string) bool {
	for _, name := range names {
		if taken[name] {
			return true
		}
	}
	return false
}

func claimAll(taken map[string]bool, names []string) {
	for _, name := range names {
		taken[name] = true
	}
}

// candidate renders the name of methods[i] at the given level
func candidate(methods []*models.Method, i, level int) string {
	m := methods[i]
	var b strings.Builder
	b.WriteString(baseName(m.Name))

	if level >= levelLabels {
		for _, param := range m.Parameters {
			b.WriteString(models.Capitalize(param.ExternalName()))
		}
	}
	if level >= levelTypes {
		for _, param := range m.Parameters {
			b.WriteString(param.Type.Discriminator())
			if param.Variadic {
				b.WriteString("Variadic")
			}
		}
		if m.IsStatic() {
			b.WriteString("Static")
		}
	}
	if level >= levelReturn {
		if m.IsVoid() {
			b.WriteString("Void")
		} else {
			b.WriteString(m.Return.Discriminator())
		}
	}
	if level >= levelOrdinal {
		prefix := candidate(methods, i, levelReturn)
		ordinal := 1 + level - levelOrdinal
		for j := 0; j < i; j++ {
			if candidate(methods, j, levelReturn) == prefix {
				ordinal++
			}
		}
		b.WriteString(strconv.Itoa(ordinal))
	}
	return b.String()
}

var operatorWords = map[rune]string{
	'=': "Equal",
	'<': "Less",
	'>': "Greater",
	'+': "Plus",
	'-': "Minus",
	'*': "Star",
	'/': "Slash",
	'%': "Percent",
	'!': "Bang",
	'&': "Ampersand",
	'|': "Pipe",
	'^': "Caret",
	'~': "Tilde",
	'?': "Question",
	'.': "Dot",
}

// baseName capitalizes a method name; operator functions are spelled out
// (== -> EqualEqual) since their characters cannot appear in identifiers
func baseName(name string) string {
	name = strings.Trim(name, "`")
	if models.Identifier(name) != "" {
		return models.Capitalize(name)
	}
	var b strings.Builder
	for _, r := range name {
		if word, ok := operatorWords[r]; ok {
			b.WriteString(word)
		}
	}
	if b.Len() == 0 {
		return "Operator"
	}
	return b.String()
}
