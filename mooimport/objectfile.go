package mooimport

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"echo/ast"
	"echo/objid"
	"echo/objstore"
	"echo/value"
)

// PropertyDef is one `property` or `override` declaration inside an
// object file. Owner/Flags are zero/empty for an `override`, which
// carries no metadata of its own.
type PropertyDef struct {
	Name  string
	Owner int64
	Flags string
	Value value.Value
}

// VerbDef is one `verb` declaration. Body is the verbatim source
// between the declaration line and `endverb`, left unparsed here so
// callers can choose Echo or MOO-compat parsing.
type VerbDef struct {
	Name  string
	Dobj  string
	Prep  string
	Iobj  string
	Owner int64
	Flags string
	Body  string
}

// ObjectDef is the parsed form of one `object NAME ... endobject` block.
// Ref is the identifier on the `object` line itself (normally a `#N`
// MOO reference); Name is the display name set by the `name:` special
// inside the block, defaulting to Ref when the block omits it.
type ObjectDef struct {
	Ref        string
	Name       string
	Parent     string
	Properties []PropertyDef
	Verbs      []VerbDef
}

// ParseObjectFile parses a single object-file block. src must contain
// exactly one `object NAME` ... `endobject` form (after Preprocess has
// already resolved any `define` constants).
func ParseObjectFile(src string) (*ObjectDef, error) {
	scanner := bufio.NewScanner(strings.NewReader(src))
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	def := &ObjectDef{}
	opened := false
	closed := false

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}

		switch {
		case !opened:
			name, ok := strings.CutPrefix(line, "object ")
			if !ok {
				return nil, fmt.Errorf("mooimport: expected 'object NAME', got %q", line)
			}
			def.Ref = strings.TrimSpace(name)
			def.Name = def.Ref
			opened = true

		case line == "endobject":
			closed = true

		case strings.HasPrefix(line, "name:"):
			def.Name = strings.TrimSpace(strings.TrimPrefix(line, "name:"))

		case strings.HasPrefix(line, "parent:"):
			def.Parent = strings.TrimSpace(strings.TrimPrefix(line, "parent:"))

		case strings.HasPrefix(line, "property "):
			prop, err := parsePropertyLine(strings.TrimPrefix(line, "property "), true)
			if err != nil {
				return nil, err
			}
			def.Properties = append(def.Properties, prop)

		case strings.HasPrefix(line, "override "):
			prop, err := parsePropertyLine(strings.TrimPrefix(line, "override "), false)
			if err != nil {
				return nil, err
			}
			def.Properties = append(def.Properties, prop)

		case strings.HasPrefix(line, "verb "):
			verb, err := parseVerbHeader(strings.TrimPrefix(line, "verb "))
			if err != nil {
				return nil, err
			}
			var body strings.Builder
			found := false
			for scanner.Scan() {
				bodyLine := scanner.Text()
				if strings.TrimSpace(bodyLine) == "endverb" {
					found = true
					break
				}
				body.WriteString(bodyLine)
				body.WriteByte('\n')
			}
			if !found {
				return nil, fmt.Errorf("mooimport: verb %q missing endverb", verb.Name)
			}
			verb.Body = body.String()
			def.Verbs = append(def.Verbs, verb)

		default:
			return nil, fmt.Errorf("mooimport: unrecognized object-file line: %q", line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("mooimport: scanning object file: %w", err)
	}
	if !opened || !closed {
		return nil, fmt.Errorf("mooimport: object file missing object/endobject bracketing")
	}
	return def, nil
}

// parsePropertyLine parses `name (owner:#N, flags:"rxd") = value;` (for
// a property declaration) or `name = value;` (for an override, where
// withMeta is false).
func parsePropertyLine(line string, withMeta bool) (PropertyDef, error) {
	line = strings.TrimSuffix(strings.TrimSpace(line), ";")
	eq := strings.IndexByte(line, '=')
	if eq < 0 {
		return PropertyDef{}, fmt.Errorf("mooimport: malformed property line: %q", line)
	}
	head := strings.TrimSpace(line[:eq])
	valSrc := strings.TrimSpace(line[eq+1:])

	prop := PropertyDef{}
	if withMeta {
		open := strings.IndexByte(head, '(')
		if open < 0 {
			return PropertyDef{}, fmt.Errorf("mooimport: property missing metadata: %q", head)
		}
		prop.Name = strings.TrimSpace(head[:open])
		meta := strings.TrimSuffix(strings.TrimSpace(head[open+1:]), ")")
		for _, field := range strings.Split(meta, ",") {
			field = strings.TrimSpace(field)
			if owner, ok := strings.CutPrefix(field, "owner:"); ok {
				n, err := parseMooRef(strings.TrimSpace(owner))
				if err == nil {
					prop.Owner = n
				}
			} else if flags, ok := strings.CutPrefix(field, "flags:"); ok {
				prop.Flags = strings.Trim(strings.TrimSpace(flags), `"`)
			}
		}
	} else {
		prop.Name = head
	}

	v, err := parseValueExpr(valSrc)
	if err != nil {
		return PropertyDef{}, fmt.Errorf("mooimport: property %s: %w", prop.Name, err)
	}
	prop.Value = v
	return prop, nil
}

// parseVerbHeader parses `"name1 name2" (dobj prep iobj) owner:#N flags:"rxd"`.
func parseVerbHeader(line string) (VerbDef, error) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, `"`) {
		return VerbDef{}, fmt.Errorf("mooimport: verb header missing quoted name: %q", line)
	}
	end := strings.IndexByte(line[1:], '"')
	if end < 0 {
		return VerbDef{}, fmt.Errorf("mooimport: unterminated verb name: %q", line)
	}
	name := line[1 : end+1]
	rest := strings.TrimSpace(line[end+2:])

	verb := VerbDef{Name: name}

	if strings.HasPrefix(rest, "(") {
		close := strings.IndexByte(rest, ')')
		if close < 0 {
			return VerbDef{}, fmt.Errorf("mooimport: verb %q missing ')' in signature", name)
		}
		sig := strings.Fields(rest[1:close])
		if len(sig) == 3 {
			verb.Dobj, verb.Prep, verb.Iobj = sig[0], sig[1], sig[2]
		}
		rest = strings.TrimSpace(rest[close+1:])
	}

	for _, field := range strings.Fields(rest) {
		if owner, ok := strings.CutPrefix(field, "owner:"); ok {
			n, err := parseMooRef(owner)
			if err == nil {
				verb.Owner = n
			}
		} else if flags, ok := strings.CutPrefix(field, "flags:"); ok {
			verb.Flags = strings.Trim(flags, `"`)
		}
	}
	return verb, nil
}

func parseMooRef(s string) (int64, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	return strconv.ParseInt(s, 10, 64)
}

// parseValueExpr parses the small literal grammar used by property
// and override values: strings, integers, floats, booleans, object
// refs, an empty list `{}`, or a bare identifier (left as a string,
// since by this point Preprocess should have substituted any define
// that was meant to resolve it).
func parseValueExpr(src string) (value.Value, error) {
	src = strings.TrimSpace(src)
	switch {
	case src == "":
		return value.Null, nil
	case src == "true":
		return value.NewBool(true), nil
	case src == "false":
		return value.NewBool(false), nil
	case src == "{}":
		return value.NewList(nil), nil
	case strings.HasPrefix(src, `"`) && strings.HasSuffix(src, `"`) && len(src) >= 2:
		return value.NewString(unescapeMOOString(src[1 : len(src)-1])), nil
	case strings.HasPrefix(src, "#"):
		n, err := parseMooRef(src)
		if err != nil {
			return nil, fmt.Errorf("bad object ref %q: %w", src, err)
		}
		return objRefPlaceholder{n}, nil
	default:
		if n, err := strconv.ParseInt(src, 10, 64); err == nil {
			return value.NewInt(n), nil
		}
		if f, err := strconv.ParseFloat(src, 64); err == nil {
			return value.NewFloat(f), nil
		}
		return value.NewString(src), nil
	}
}

// objRefPlaceholder carries a raw MOO number through parsing; the
// importer resolves it against the store's bimap once every object in
// the file has been registered, since forward references (an object
// pointing at one not yet created) are common in textdumps.
type objRefPlaceholder struct{ MooNum int64 }

func (objRefPlaceholder) Type() value.TypeCode { return value.TypeObj }
func (o objRefPlaceholder) String() string     { return fmt.Sprintf("#%d", o.MooNum) }
func (o objRefPlaceholder) Equal(v value.Value) bool {
	other, ok := v.(objRefPlaceholder)
	return ok && other.MooNum == o.MooNum
}
func (objRefPlaceholder) Truthy() bool { return true }

func unescapeMOOString(s string) string {
	s = strings.ReplaceAll(s, `\"`, `"`)
	s = strings.ReplaceAll(s, `\\`, `\`)
	return s
}

// Import resolves def against store: NAME and PARENT are first tried
// as `#N` MOO references, falling back to a freshly allocated
// ObjectId carrying the literal text as its display name. Every
// objRefPlaceholder left over from parseValueExpr is resolved against
// the bimap at this point, after the whole file (and therefore every
// forward reference) has been read. Verb bodies are parsed with
// parseBody, which the caller supplies so it can choose Echo or
// MOO-compat grammar.
func Import(store *objstore.Store, def *ObjectDef, parseBody func(src string) ([]ast.Stmt, error)) (*objstore.Object, error) {
	id, err := resolveOrCreate(store, def.Ref)
	if err != nil {
		return nil, fmt.Errorf("mooimport: resolving %q: %w", def.Ref, err)
	}

	obj := objstore.NewObject(id, def.Name)
	if def.Parent != "" {
		parentID, err := resolveOrCreate(store, def.Parent)
		if err != nil {
			return nil, fmt.Errorf("mooimport: resolving parent %q: %w", def.Parent, err)
		}
		obj.Parent = &parentID
	}

	for _, prop := range def.Properties {
		v, err := resolvePlaceholder(store, prop.Value)
		if err != nil {
			return nil, fmt.Errorf("mooimport: property %s: %w", prop.Name, err)
		}
		obj.Properties[prop.Name] = v
		if prop.Flags != "" {
			obj.PropertyCapabilities[prop.Name] = strings.Split(prop.Flags, "")
		}
	}

	for _, v := range def.Verbs {
		stmts, err := parseBody(v.Body)
		if err != nil {
			return nil, fmt.Errorf("mooimport: verb %q: %w", v.Name, err)
		}
		obj.Verbs[v.Name] = &objstore.VerbDefinition{
			Name:        v.Name,
			Signature:   objstore.VerbSignature{Dobj: v.Dobj, Prep: v.Prep, Iobj: v.Iobj},
			Code:        v.Body,
			AST:         stmts,
			Permissions: permissionsFromFlags(v.Flags),
		}
	}

	if err := store.Store(obj); err != nil {
		return nil, fmt.Errorf("mooimport: storing %s: %w", def.Name, err)
	}
	return obj, nil
}

// resolveOrCreate treats name as a `#N` MOO reference when it parses
// as one, otherwise allocates a fresh ObjectId carrying name as its
// display name (used for the rare object-file that names objects
// symbolically rather than by number).
func resolveOrCreate(store *objstore.Store, name string) (objid.ObjectId, error) {
	if n, err := parseMooRef(name); err == nil {
		return store.GetOrCreateMooID(n)
	}
	if existing, ok := store.FindByName(name); ok {
		return existing, nil
	}
	return objid.New(), nil
}

func resolvePlaceholder(store *objstore.Store, v value.Value) (value.Value, error) {
	ref, ok := v.(objRefPlaceholder)
	if !ok {
		return v, nil
	}
	id, err := store.GetOrCreateMooID(ref.MooNum)
	if err != nil {
		return nil, err
	}
	return value.NewObj(id), nil
}

// permissionsFromFlags maps a LambdaMOO-style "rxd" flag string onto
// the three boolean permission bits.
func permissionsFromFlags(flags string) objstore.VerbPermissions {
	return objstore.VerbPermissions{
		Read:    strings.ContainsRune(flags, 'r'),
		Execute: strings.ContainsRune(flags, 'x'),
		Write:   strings.ContainsRune(flags, 'd'),
	}
}
