// Package lww implements last-write-wins merging of timestamped values.
//
// A Value is a tagged variant: a Register holding a scalar payload, a Map
// of named child values, or a Tombstone standing in for an erased value.
// Merge combines two replicas of the same value: the side with the later
// (stamp, writer) pair wins, field by field for maps, recursively for
// nested maps. Because the decision is a total order over (stamp, writer),
// Merge is commutative, idempotent and associative, so replicas converge
// to the same state no matter in which order or grouping they exchange
// updates.
//
// The production change-log store resolves conflicts with the coarser
// row-level rule (see the server clocks repository); this package is the
// field-level model the convergence guarantees are reasoned against.
package lww

// Kind discriminates the variant held by a Value.
type Kind int

const (
	// KindRegister is a scalar value with a timestamp.
	KindRegister Kind = iota
	// KindMap is a set of named child values.
	KindMap
	// KindTombstone marks an erased value. It competes on its timestamp
	// like any other write.
	KindTombstone
)

// Value is one replica's view of a register, map or deletion.
//
// Stamp is the client-supplied modification timestamp in the fixed-width
// UTC form (see timex.StampLayout); Writer identifies the device that
// produced the write and breaks timestamp ties. Two writes from the same
// device never share a stamp, so equal (Stamp, Writer) pairs imply equal
// values.
type Value struct {
	Kind   Kind
	Str    string           // register payload
	Fields map[string]Value // map payload
	Stamp  string
	Writer string
}

// Register returns a scalar value.
func Register(s, stamp, writer string) Value {
	return Value{Kind: KindRegister, Str: s, Stamp: stamp, Writer: writer}
}

// Map returns a map value over the given fields.
func Map(fields map[string]Value, stamp, writer string) Value {
	return Value{Kind: KindMap, Fields: fields, Stamp: stamp, Writer: writer}
}

// Tombstone returns an erased value.
func Tombstone(stamp, writer string) Value {
	return Value{Kind: KindTombstone, Stamp: stamp, Writer: writer}
}

// Erased reports whether v represents a deletion.
func (v Value) Erased() bool { return v.Kind == KindTombstone }

// before reports whether a's write strictly precedes b's, comparing the
// stamp first and the writer identity as a tie-break.
func before(a, b Value) bool {
	if a.Stamp != b.Stamp {
		return a.Stamp < b.Stamp
	}
	return a.Writer < b.Writer
}

// Merge combines two replicas of the same value.
//
// When both sides are maps the result is the union of their fields with
// every shared field merged recursively; the map's own (stamp, writer)
// metadata comes from the later side. In every other pairing the later
// write wins outright, so a newer tombstone erases an older map or
// register and a newer register replaces an older tombstone.
func Merge(a, b Value) Value {
	if a.Kind == KindMap && b.Kind == KindMap {
		fields := make(map[string]Value, len(a.Fields)+len(b.Fields))
		for name, v := range a.Fields {
			fields[name] = v
		}
		for name, v := range b.Fields {
			if cur, ok := fields[name]; ok {
				fields[name] = Merge(cur, v)
			} else {
				fields[name] = v
			}
		}
		out := a
		if before(a, b) {
			out = b
		}
		out.Fields = fields
		return out
	}
	if before(a, b) {
		return b
	}
	return a
}
