package source

import "fmt"

// NodeID identifies a top-level declaration (module, function, struct,
// enum or enum constructor) for the lifetime of one compilation.
type NodeID int

// RootID is the id of the synthetic root namespace.
const RootID NodeID = 0

// Reserved NodeIDs for the builtin type declarations. User ids are
// allocated above firstUserNodeID so the reserved range never collides.
const firstUserNodeID NodeID = 64

var builtinNodeIDs = map[string]NodeID{
	"never": 1,
	"bool":  2,
	"order": 3,
	"u8":    4,
	"u16":   5,
	"u32":   6,
	"u64":   7,
	"usize": 8,
	"i8":    9,
	"i16":   10,
	"i32":   11,
	"i64":   12,
	"isize": 13,
}

// BuiltinNodeID returns the reserved id of a builtin type declaration.
func BuiltinNodeID(name string) (NodeID, bool) {
	id, ok := builtinNodeIDs[name]
	return id, ok
}

func (id NodeID) String() string {
	return fmt.Sprintf("N#%d", int(id))
}

// NodeIDAlloc hands out fresh NodeIDs. It is owned by the pipeline
// context so allocation order is deterministic and testable.
type NodeIDAlloc struct {
	next NodeID
}

func NewNodeIDAlloc() *NodeIDAlloc {
	return &NodeIDAlloc{next: firstUserNodeID}
}

// Fresh returns a new, globally unique NodeID.
func (a *NodeIDAlloc) Fresh() NodeID {
	id := a.next
	a.next++
	return id
}
