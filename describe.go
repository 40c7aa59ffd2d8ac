package logbook

// Field is one named value in a Describable's dump.
type Field struct {
	Key   string
	Value any
}

// Describable is implemented by values whose fields should be written to
// the VARIABLES section of the log header. Fields returns the values in
// the order they should appear.
//
// Every element of a variables collection must implement Describable; the
// header writer applies no reflection and no per-element mode switching.
type Describable interface {
	TypeName() string
	Fields() []Field
}
