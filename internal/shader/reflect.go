package shader

import "github.com/gogpu/naga/ir"

// inputs returns the entry point's location-bound inputs by name.
// Struct-typed arguments contribute their members.
func (m *Module) inputs() map[string]uint32 {
	out := make(map[string]uint32)
	for _, arg := range m.entry.Function.Arguments {
		if arg.Binding != nil {
			if loc, ok := location(arg.Binding); ok {
				out[arg.Name] = loc
			}
			continue
		}
		for _, mem := range m.members(arg.Type) {
			if loc, ok := location(mem.Binding); ok {
				out[mem.Name] = loc
			}
		}
	}
	return out
}

// outputs returns the entry point's location-bound outputs keyed by
// location and whether it writes @builtin(position).
func (m *Module) outputs() (map[uint32]string, bool) {
	out := make(map[uint32]string)
	res := m.entry.Function.Result
	if res == nil {
		return out, false
	}
	if res.Binding != nil {
		if loc, ok := location(res.Binding); ok {
			out[loc] = ""
		}
		return out, isPosition(res.Binding)
	}
	position := false
	for _, mem := range m.members(res.Type) {
		if loc, ok := location(mem.Binding); ok {
			out[loc] = mem.Name
		}
		if isPosition(mem.Binding) {
			position = true
		}
	}
	return out, position
}

// resource looks up a bound module-scope variable by name.
func (m *Module) resource(name string) (ir.ResourceBinding, bool) {
	for _, gv := range m.module.GlobalVariables {
		if gv.Name == name && gv.Binding != nil {
			return *gv.Binding, true
		}
	}
	return ir.ResourceBinding{}, false
}

func (m *Module) members(h ir.TypeHandle) []ir.StructMember {
	if int(h) >= len(m.module.Types) {
		return nil
	}
	switch st := m.module.Types[h].Inner.(type) {
	case ir.StructType:
		return st.Members
	case *ir.StructType:
		return st.Members
	}
	return nil
}

func location(b *ir.Binding) (uint32, bool) {
	if b == nil || *b == nil {
		return 0, false
	}
	switch lb := (*b).(type) {
	case ir.LocationBinding:
		return lb.Location, true
	case *ir.LocationBinding:
		return lb.Location, true
	}
	return 0, false
}

func isPosition(b *ir.Binding) bool {
	if b == nil || *b == nil {
		return false
	}
	switch bb := (*b).(type) {
	case ir.BuiltinBinding:
		return bb.Builtin == ir.BuiltinPosition
	case *ir.BuiltinBinding:
		return bb.Builtin == ir.BuiltinPosition
	}
	return false
}
