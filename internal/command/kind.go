package command

// Kind enumerates the slash commands the bot serves. Dispatch goes through
// ParseKind first, so an interaction naming anything else never reaches a
// handler.
type Kind uint8

const (
	KindCreateInvisibleRole Kind = iota + 1
	KindCreateInvisibleRoom
	KindAssignInvisibleRole
	KindListInvisible

	kindEnd
)

var kindNames = [kindEnd]string{
	KindCreateInvisibleRole: "create-invisible-role",
	KindCreateInvisibleRoom: "create-invisible-room",
	KindAssignInvisibleRole: "assign-invisible-role",
	KindListInvisible:       "list-invisible",
}

func (k Kind) String() string {
	if k == 0 || k >= kindEnd {
		return "unknown"
	}
	return kindNames[k]
}

// Kinds returns every command kind in declaration order.
func Kinds() []Kind {
	out := make([]Kind, 0, kindEnd-1)
	for k := Kind(1); k < kindEnd; k++ {
		out = append(out, k)
	}
	return out
}

// ParseKind maps a slash command name to its Kind.
func ParseKind(name string) (Kind, bool) {
	for k := Kind(1); k < kindEnd; k++ {
		if kindNames[k] == name {
			return k, true
		}
	}
	return 0, false
}
