package contacts

// KeyKind is the field class an identity key was derived from.
type KeyKind string

// Key kinds in precedence order.
const (
	KeyEmail      KeyKind = "email"
	KeyPhone      KeyKind = "phone"
	KeyName       KeyKind = "name"
	KeyUnresolved KeyKind = "unresolved"
)

// Key is a deterministic deduplication key. Two normalized contacts with
// equal keys are treated as the same real-world contact. Unresolved keys
// carry a per-record value and never match another record.
type Key struct {
	Kind  KeyKind
	Value string
}

// Resolvable reports whether the key identifies a real-world contact, as
// opposed to the per-record unresolved sentinel.
func (k Key) Resolvable() bool {
	return k.Kind != KeyUnresolved && k.Kind != ""
}

// String renders the key as "kind:value".
func (k Key) String() string {
	return string(k.Kind) + ":" + k.Value
}
