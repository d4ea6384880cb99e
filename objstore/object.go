// Package objstore implements the durable Object Store: a bbolt-backed
// key/value database of Objects, name lookup, and the in-memory bimap
// reconciling legacy small-integer MOO numbers with opaque ObjectIds.
package objstore

import (
	"echo/ast"
	"echo/objid"
	"echo/value"
)

// MetaObject carries the small set of administrative flags every
// Object requires (player/programmer/wizard status, fertility for use
// as a parent) independent of its user-visible properties.
type MetaObject struct {
	Player     bool
	Programmer bool
	Wizard     bool
	Fertile    bool
}

// VerbSignature is the dobj/prep/iobj argument specification a verb
// declares, used by command parsing collaborators external to this
// module; the evaluator itself only needs the name pattern for dispatch.
type VerbSignature struct {
	Dobj string
	Prep string
	Iobj string
}

// VerbPermissions gates who may read, rewrite, or invoke a verb.
type VerbPermissions struct {
	Read    bool
	Write   bool
	Execute bool
}

// VerbDefinition is one callable verb attached to an Object. Name holds
// the raw space-separated pattern list (e.g. "get_conj*ugation"); AST
// is the parsed, executable body, kept separate from Code (the display
// source). Only Code is persisted: the store rebuilds AST by reparsing
// Code each time it loads the record.
type VerbDefinition struct {
	Name                 string
	Signature            VerbSignature
	Code                 string
	AST                  []ast.Stmt
	Params               []value.Parameter
	Permissions          VerbPermissions
	RequiredCapabilities []string
}

// Object is one node of the world graph: a single parent (or none),
// named properties, capability tags gating who may read/write each
// property, verbs, stored queries, and administrative metadata.
type Object struct {
	ID                   objid.ObjectId
	Parent               *objid.ObjectId
	Name                 string
	Properties           map[string]value.Value
	PropertyCapabilities map[string][]string
	Verbs                map[string]*VerbDefinition
	Queries              map[string]string
	Meta                 MetaObject
}

// NewObject returns an empty Object with its maps initialized.
func NewObject(id objid.ObjectId, name string) *Object {
	return &Object{
		ID:                   id,
		Name:                 name,
		Properties:           make(map[string]value.Value),
		PropertyCapabilities: make(map[string][]string),
		Verbs:                make(map[string]*VerbDefinition),
		Queries:              make(map[string]string),
	}
}
