package eval

import "echo/objid"
import "echo/value"

// Frame is one entry of the Environment's frame stack: the player on
// whose behalf code in this frame runs, its local bindings, and which
// of those bindings are const. const-reassignment is checked per
// frame, so a let in an inner frame may shadow a const in an outer one
// without conflict.
type Frame struct {
	PlayerID  objid.ObjectId
	Variables map[string]value.Value
	Const     map[string]bool
}

func newFrame(playerID objid.ObjectId) *Frame {
	return &Frame{
		PlayerID:  playerID,
		Variables: make(map[string]value.Value),
		Const:     make(map[string]bool),
	}
}

// Lookup implements jit.VarLookup so hot arithmetic subtrees can read
// identifiers without the jit package depending on eval.
func (f *Frame) Lookup(name string) (value.Value, bool) {
	v, ok := f.Variables[name]
	return v, ok
}

// Environment is a stack of Frames. Assignment to an existing name
// searches frames top-down; `let`/`const` always bind into the
// current (innermost) frame.
type Environment struct {
	frames []*Frame
}

// NewEnvironment starts a fresh stack with a single frame for player.
func NewEnvironment(player objid.ObjectId) *Environment {
	return &Environment{frames: []*Frame{newFrame(player)}}
}

// Push adds a new frame on top, owned by player, and returns it.
func (e *Environment) Push(player objid.ObjectId) *Frame {
	f := newFrame(player)
	e.frames = append(e.frames, f)
	return f
}

// Pop removes the innermost frame.
func (e *Environment) Pop() {
	if len(e.frames) > 0 {
		e.frames = e.frames[:len(e.frames)-1]
	}
}

// Current returns the innermost frame.
func (e *Environment) Current() *Frame {
	return e.frames[len(e.frames)-1]
}

// Snapshot returns a new Environment sharing the same Frame pointers —
// used when a lambda captures its defining frame chain by reference.
func (e *Environment) Snapshot() *Environment {
	frames := make([]*Frame, len(e.frames))
	copy(frames, e.frames)
	return &Environment{frames: frames}
}

// Lookup searches frames from innermost to outermost.
func (e *Environment) Lookup(name string) (value.Value, bool) {
	for i := len(e.frames) - 1; i >= 0; i-- {
		if v, ok := e.frames[i].Variables[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Define binds name in the innermost frame, recording constness.
func (e *Environment) Define(name string, v value.Value, isConst bool) {
	f := e.Current()
	f.Variables[name] = v
	if isConst {
		f.Const[name] = true
	} else {
		delete(f.Const, name)
	}
}

// Assign rebinds name in the innermost frame that already binds it and
// reports the outcome via its bool results rather than a Go error:
// ok=false, isConst=true when that binding is const. A name bound in no
// frame is defined as a mutable local in the innermost frame.
func (e *Environment) Assign(name string, v value.Value) (ok bool, isConst bool) {
	for i := len(e.frames) - 1; i >= 0; i-- {
		f := e.frames[i]
		if _, bound := f.Variables[name]; bound {
			if f.Const[name] {
				return false, true
			}
			f.Variables[name] = v
			return true, false
		}
	}
	e.Define(name, v, false)
	return true, false
}
