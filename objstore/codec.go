package objstore

import (
	"encoding/json"
	"fmt"

	"echo/objid"
	"echo/parser"
	"echo/value"
)

// No ecosystem wire-format library in the pack covers a closed,
// interface-typed variant like value.Value (the conformance suite's
// gopkg.in/yaml.v3 is reserved for test fixtures, not store persistence),
// so the record codec is hand-written JSON over a small tagged struct.
// Verb bodies are never serialized as AST: only the display source
// (VerbDefinition.Code) is persisted, and the AST is rebuilt by
// reparsing on load, keeping the store record free of ast.Stmt's
// closed interface hierarchy.

type wireObject struct {
	ID                   []byte
	Parent               []byte
	Name                 string
	Properties           map[string]wireValue
	PropertyCapabilities map[string][]string
	Verbs                map[string]*wireVerb
	Queries              map[string]string
	Meta                 MetaObject
}

type wireVerb struct {
	Name                 string
	Signature            VerbSignature
	Code                 string
	Params               []wireParam
	Permissions          VerbPermissions
	RequiredCapabilities []string
}

type wireParam struct {
	Name    string
	Kind    value.ParamKind
	Default *wireValue
}

type wireValue struct {
	Type string
	Int  int64
	Flt  float64
	Str  string
	Bool bool
	Obj  []byte
	List []wireValue
	Map  []wireMapEntry
}

type wireMapEntry struct {
	Key string
	Val wireValue
}

func encodeValue(v value.Value) (wireValue, error) {
	switch val := v.(type) {
	case value.NullValue:
		return wireValue{Type: "null"}, nil
	case value.BoolValue:
		return wireValue{Type: "bool", Bool: val.Val}, nil
	case value.IntValue:
		return wireValue{Type: "int", Int: val.Val}, nil
	case value.FloatValue:
		return wireValue{Type: "float", Flt: val.Val}, nil
	case value.StringValue:
		return wireValue{Type: "str", Str: val.Val}, nil
	case value.ObjValue:
		return wireValue{Type: "obj", Obj: val.ID.Bytes()}, nil
	case value.ListValue:
		items := make([]wireValue, len(val.Items))
		for i, item := range val.Items {
			wv, err := encodeValue(item)
			if err != nil {
				return wireValue{}, err
			}
			items[i] = wv
		}
		return wireValue{Type: "list", List: items}, nil
	case value.MapValue:
		entries := make([]wireMapEntry, len(val.Entries))
		for i, e := range val.Entries {
			wv, err := encodeValue(e.Val)
			if err != nil {
				return wireValue{}, err
			}
			entries[i] = wireMapEntry{Key: e.Key, Val: wv}
		}
		return wireValue{Type: "map", Map: entries}, nil
	default:
		return wireValue{}, fmt.Errorf("objstore: value of type %T is not persistable", v)
	}
}

func decodeValue(wv wireValue) (value.Value, error) {
	switch wv.Type {
	case "null":
		return value.NullValue{}, nil
	case "bool":
		return value.BoolValue{Val: wv.Bool}, nil
	case "int":
		return value.IntValue{Val: wv.Int}, nil
	case "float":
		return value.FloatValue{Val: wv.Flt}, nil
	case "str":
		return value.StringValue{Val: wv.Str}, nil
	case "obj":
		id, ok := objid.FromBytes(wv.Obj)
		if !ok {
			return nil, fmt.Errorf("objstore: malformed object id in record")
		}
		return value.NewObj(id), nil
	case "list":
		items := make([]value.Value, len(wv.List))
		for i, item := range wv.List {
			v, err := decodeValue(item)
			if err != nil {
				return nil, err
			}
			items[i] = v
		}
		return value.NewList(items), nil
	case "map":
		entries := make(map[string]value.Value, len(wv.Map))
		for _, e := range wv.Map {
			v, err := decodeValue(e.Val)
			if err != nil {
				return nil, err
			}
			entries[e.Key] = v
		}
		return value.NewMap(entries), nil
	default:
		return nil, fmt.Errorf("objstore: unknown wire value type %q", wv.Type)
	}
}

func encodeObject(obj *Object) ([]byte, error) {
	w := wireObject{
		ID:                   obj.ID.Bytes(),
		Name:                 obj.Name,
		PropertyCapabilities: obj.PropertyCapabilities,
		Queries:              obj.Queries,
		Meta:                 obj.Meta,
	}
	if obj.Parent != nil {
		w.Parent = obj.Parent.Bytes()
	}
	if len(obj.Properties) > 0 {
		w.Properties = make(map[string]wireValue, len(obj.Properties))
		for k, v := range obj.Properties {
			wv, err := encodeValue(v)
			if err != nil {
				return nil, err
			}
			w.Properties[k] = wv
		}
	}
	if len(obj.Verbs) > 0 {
		w.Verbs = make(map[string]*wireVerb, len(obj.Verbs))
		for k, v := range obj.Verbs {
			wv := &wireVerb{
				Name:                 v.Name,
				Signature:            v.Signature,
				Code:                 v.Code,
				Permissions:          v.Permissions,
				RequiredCapabilities: v.RequiredCapabilities,
			}
			for _, p := range v.Params {
				wp := wireParam{Name: p.Name, Kind: p.Kind}
				if dv, ok := p.Default.(value.Value); ok && dv != nil {
					encoded, err := encodeValue(dv)
					if err != nil {
						return nil, err
					}
					wp.Default = &encoded
				}
				wv.Params = append(wv.Params, wp)
			}
			w.Verbs[k] = wv
		}
	}
	return json.Marshal(w)
}

func decodeObject(data []byte) (*Object, error) {
	var w wireObject
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, err
	}
	id, ok := objid.FromBytes(w.ID)
	if !ok {
		return nil, fmt.Errorf("objstore: malformed object id in record")
	}
	obj := NewObject(id, w.Name)
	obj.Meta = w.Meta
	obj.Queries = w.Queries
	if obj.Queries == nil {
		obj.Queries = make(map[string]string)
	}
	if w.Parent != nil {
		pid, ok := objid.FromBytes(w.Parent)
		if !ok {
			return nil, fmt.Errorf("objstore: malformed parent id in record")
		}
		obj.Parent = &pid
	}
	if w.PropertyCapabilities != nil {
		obj.PropertyCapabilities = w.PropertyCapabilities
	}
	for k, wv := range w.Properties {
		v, err := decodeValue(wv)
		if err != nil {
			return nil, err
		}
		obj.Properties[k] = v
	}
	for k, wv := range w.Verbs {
		vd := &VerbDefinition{
			Name:                 wv.Name,
			Signature:            wv.Signature,
			Code:                 wv.Code,
			Permissions:          wv.Permissions,
			RequiredCapabilities: wv.RequiredCapabilities,
		}
		if wv.Code != "" {
			prog, err := parser.ParseProgram(wv.Code)
			if err != nil {
				return nil, fmt.Errorf("objstore: reparsing verb %q on %s: %w", k, obj.ID, err)
			}
			vd.AST = prog.Stmts
		}
		for _, wp := range wv.Params {
			p := value.Parameter{Name: wp.Name, Kind: wp.Kind}
			if wp.Default != nil {
				dv, err := decodeValue(*wp.Default)
				if err != nil {
					return nil, err
				}
				p.Default = dv
			}
			vd.Params = append(vd.Params, p)
		}
		obj.Verbs[k] = vd
	}
	return obj, nil
}
