package plugin

// QueryType identifies a broadcast query.
type QueryType string

// Well-known query types.
const (
	// QueryColumnMovable asks whether the column in Context (a column key
	// string) may be moved. A boolean false response anywhere vetoes.
	QueryColumnMovable QueryType = "column.movable"

	// QueryContextMenu asks for context-menu contributions. Responses are
	// []MenuItem values, concatenated in attach order.
	QueryContextMenu QueryType = "contextmenu.items"
)

// Query is a typed request broadcast to all attached plugins. Its lifetime
// is a single dispatch.
type Query struct {
	Type    QueryType
	Context any
}

// Response is one plugin's answer to a query.
type Response struct {
	// Plugin is the responder's name.
	Plugin string
	// Value is the answer; its shape depends on the query type.
	Value any
}

// MenuItem is a context-menu contribution.
type MenuItem struct {
	Label   string
	Command string
}

// Vetoed reports whether any response is a boolean false. Callers use this
// for permission-style queries such as QueryColumnMovable.
func Vetoed(responses []Response) bool {
	for _, r := range responses {
		if v, ok := r.Value.(bool); ok && !v {
			return true
		}
	}
	return false
}

// CollectMenuItems concatenates []MenuItem responses in attach order,
// ignoring responses of other shapes.
func CollectMenuItems(responses []Response) []MenuItem {
	var items []MenuItem
	for _, r := range responses {
		if v, ok := r.Value.([]MenuItem); ok {
			items = append(items, v...)
		}
	}
	return items
}
