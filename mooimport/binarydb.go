package mooimport

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"echo/objid"
	"echo/objstore"
	"echo/value"
)

// Type tags for the LambdaMOO binary-db value encoding (§4.9.1).
const (
	tagInt     = 0
	tagObj     = 1
	tagStr     = 2
	tagErr     = 3
	tagList    = 4
	tagClear   = 5
	tagNone    = 6
	tagCatch   = 7
	tagFinally = 8
	tagFloat   = 9
)

// rawVerb is one verb-table entry read from an object's header section
// before the trailing verb-program section supplies its body.
type rawVerb struct {
	Name  string
	Owner int64
	Perms string
	Prep  string
}

// rawObject is one object exactly as laid out in the textdump, with
// MOO numbers still unresolved to ObjectIds.
type rawObject struct {
	MooNum   int64
	Name     string
	Flags    string
	Owner    int64
	Location int64
	Parent   int64
	Verbs    []rawVerb
	PropDefs []string
	PropVals []value.Value
}

// ImportBinaryDB reads a LambdaMOO textdump from r and populates store:
// header counts, player list, the fixed per-object layout, then the
// trailing `#O:V` verb-program sections. Every object and MOO number is
// registered in store's bimap so later references by `#N` resolve
// correctly; property values referencing other objects are resolved
// once all objects are known.
func ImportBinaryDB(r io.Reader, store *objstore.Store) error {
	sc := newLineScanner(r)

	if _, err := sc.line(); err != nil { // magic/header line
		return fmt.Errorf("mooimport: reading header: %w", err)
	}
	totalObjects, err := sc.intLine()
	if err != nil {
		return fmt.Errorf("mooimport: reading object count: %w", err)
	}
	totalVerbs, err := sc.intLine()
	if err != nil {
		return fmt.Errorf("mooimport: reading verb count: %w", err)
	}
	if _, err := sc.intLine(); err != nil { // dummy
		return fmt.Errorf("mooimport: reading dummy line: %w", err)
	}
	totalPlayers, err := sc.intLine()
	if err != nil {
		return fmt.Errorf("mooimport: reading player count: %w", err)
	}

	players := make([]int64, 0, totalPlayers)
	for i := int64(0); i < totalPlayers; i++ {
		n, err := sc.intLine()
		if err != nil {
			return fmt.Errorf("mooimport: reading player %d: %w", i, err)
		}
		players = append(players, n)
	}

	raws := make(map[int64]*rawObject, totalObjects)
	order := make([]int64, 0, totalObjects)
	for i := int64(0); i < totalObjects; i++ {
		obj, err := readRawObject(sc)
		if err != nil {
			return fmt.Errorf("mooimport: reading object %d: %w", i, err)
		}
		raws[obj.MooNum] = obj
		order = append(order, obj.MooNum)
	}

	verbPrograms, err := readVerbPrograms(sc, totalVerbs)
	if err != nil {
		return fmt.Errorf("mooimport: reading verb programs: %w", err)
	}

	// Register every MOO number first so parent/location/value
	// references resolve regardless of textdump ordering.
	ids := make(map[int64]objid.ObjectId, len(raws))
	for _, n := range order {
		id, err := store.GetOrCreateMooID(n)
		if err != nil {
			return fmt.Errorf("mooimport: registering #%d: %w", n, err)
		}
		ids[n] = id
	}

	for _, n := range order {
		raw := raws[n]
		obj := objstore.NewObject(ids[n], raw.Name)
		if raw.Parent >= 0 {
			if pid, ok := ids[raw.Parent]; ok {
				obj.Parent = &pid
			}
		}
		obj.Meta.Player = containsInt(players, n)

		for idx, name := range raw.PropDefs {
			if idx >= len(raw.PropVals) {
				break
			}
			obj.Properties[name] = resolveRawValue(raw.PropVals[idx], ids)
		}

		for _, v := range raw.Verbs {
			key := fmt.Sprintf("%d:%s", n, v.Name)
			code := verbPrograms[key]
			obj.Verbs[v.Name] = &objstore.VerbDefinition{
				Name:        v.Name,
				Signature:   objstore.VerbSignature{Prep: v.Prep},
				Code:        code,
				Permissions: permissionsFromFlags(v.Perms),
			}
		}

		if err := store.Store(obj); err != nil {
			return fmt.Errorf("mooimport: storing #%d: %w", n, err)
		}
	}

	return nil
}

func containsInt(xs []int64, v int64) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}

// resolveRawValue walks a decoded value tree replacing any tagObj leaf
// holding a still-raw MOO number with a resolved ObjectId-backed Value.
func resolveRawValue(v value.Value, ids map[int64]objid.ObjectId) value.Value {
	switch val := v.(type) {
	case objRefPlaceholder:
		if id, ok := ids[val.MooNum]; ok {
			return value.NewObj(id)
		}
		return value.NewInt(val.MooNum)
	case value.ListValue:
		items := make([]value.Value, len(val.Items))
		for i, item := range val.Items {
			items[i] = resolveRawValue(item, ids)
		}
		return value.NewList(items)
	default:
		return v
	}
}

func readRawObject(sc *lineScanner) (*rawObject, error) {
	idLine, err := sc.line()
	if err != nil {
		return nil, err
	}
	n, err := parseMooRef(strings.TrimSpace(idLine))
	if err != nil {
		return nil, fmt.Errorf("bad object id line %q: %w", idLine, err)
	}
	raw := &rawObject{MooNum: n}

	if raw.Name, err = sc.line(); err != nil {
		return nil, err
	}
	if _, err := sc.line(); err != nil { // old handles blank line
		return nil, err
	}
	if raw.Flags, err = sc.line(); err != nil {
		return nil, err
	}
	if raw.Owner, err = sc.intLine(); err != nil {
		return nil, err
	}
	if raw.Location, err = sc.intLine(); err != nil {
		return nil, err
	}
	if _, err := sc.intLine(); err != nil { // contents
		return nil, err
	}
	if _, err := sc.intLine(); err != nil { // next
		return nil, err
	}
	if raw.Parent, err = sc.intLine(); err != nil {
		return nil, err
	}
	if _, err := sc.intLine(); err != nil { // child
		return nil, err
	}
	if _, err := sc.intLine(); err != nil { // sibling
		return nil, err
	}

	verbCount, err := sc.intLine()
	if err != nil {
		return nil, err
	}
	for i := int64(0); i < verbCount; i++ {
		v, err := readRawVerb(sc)
		if err != nil {
			return nil, err
		}
		raw.Verbs = append(raw.Verbs, v)
	}

	propDefCount, err := sc.intLine()
	if err != nil {
		return nil, err
	}
	for i := int64(0); i < propDefCount; i++ {
		name, err := sc.line()
		if err != nil {
			return nil, err
		}
		raw.PropDefs = append(raw.PropDefs, name)
	}

	propValCount, err := sc.intLine()
	if err != nil {
		return nil, err
	}
	for i := int64(0); i < propValCount; i++ {
		v, err := readValue(sc)
		if err != nil {
			return nil, err
		}
		raw.PropVals = append(raw.PropVals, v)
	}

	return raw, nil
}

func readRawVerb(sc *lineScanner) (rawVerb, error) {
	name, err := sc.line()
	if err != nil {
		return rawVerb{}, err
	}
	owner, err := sc.intLine()
	if err != nil {
		return rawVerb{}, err
	}
	perms, err := sc.line()
	if err != nil {
		return rawVerb{}, err
	}
	prep, err := sc.line()
	if err != nil {
		return rawVerb{}, err
	}
	return rawVerb{Name: name, Owner: owner, Perms: perms, Prep: prep}, nil
}

// readValue decodes one type-tagged value and its payload.
func readValue(sc *lineScanner) (value.Value, error) {
	tag, err := sc.intLine()
	if err != nil {
		return nil, err
	}
	switch tag {
	case tagInt:
		n, err := sc.intLine()
		return value.NewInt(n), err
	case tagObj:
		n, err := sc.intLine()
		return objRefPlaceholder{n}, err
	case tagStr:
		s, err := sc.line()
		return value.NewString(s), err
	case tagErr:
		n, err := sc.intLine()
		return value.NewErrorValue(value.ErrorCode(n), ""), err
	case tagList:
		count, err := sc.intLine()
		if err != nil {
			return nil, err
		}
		items := make([]value.Value, 0, count)
		for i := int64(0); i < count; i++ {
			item, err := readValue(sc)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
		return value.NewList(items), nil
	case tagClear:
		return value.Null, nil
	case tagNone:
		return value.Null, nil
	case tagCatch, tagFinally:
		return value.Null, nil
	case tagFloat:
		line, err := sc.line()
		if err != nil {
			return nil, err
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(line), 64)
		if err != nil {
			return nil, fmt.Errorf("bad float literal %q: %w", line, err)
		}
		return value.NewFloat(f), nil
	default:
		return nil, fmt.Errorf("mooimport: unknown value type tag %d", tag)
	}
}

// readVerbPrograms reads the trailing `#O:V` sections, each terminated
// by a line containing a single period, keyed by "O:V".
func readVerbPrograms(sc *lineScanner, count int64) (map[string]string, error) {
	programs := make(map[string]string, count)
	for {
		header, err := sc.line()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		header = strings.TrimSpace(header)
		if header == "" {
			continue
		}
		key := strings.TrimPrefix(header, "#")
		var body strings.Builder
		for {
			line, err := sc.line()
			if err != nil {
				return nil, fmt.Errorf("verb program %s: %w", key, err)
			}
			if line == "." {
				break
			}
			body.WriteString(line)
			body.WriteByte('\n')
		}
		programs[key] = body.String()
	}
	return programs, nil
}

// lineScanner is a thin bufio.Scanner wrapper returning io.EOF once
// exhausted, matching the error contract the rest of this file expects.
type lineScanner struct {
	sc *bufio.Scanner
}

func newLineScanner(r io.Reader) *lineScanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	return &lineScanner{sc: sc}
}

func (l *lineScanner) line() (string, error) {
	if !l.sc.Scan() {
		if err := l.sc.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return l.sc.Text(), nil
}

func (l *lineScanner) intLine() (int64, error) {
	line, err := l.line()
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(strings.TrimSpace(line), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("expected integer, got %q: %w", line, err)
	}
	return n, nil
}
