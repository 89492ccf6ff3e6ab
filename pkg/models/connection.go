package models

// Common connector labels reported by node executors and matched against
// connection connector types during edge resolution.
const (
	ConnectorDefault  = "default"
	ConnectorSuccess  = "success"
	ConnectorTrue     = "true"
	ConnectorFalse    = "false"
	ConnectorError    = "error"
	ConnectorApproved = "approved"
	ConnectorDeclined = "declined"
	ConnectorReview   = "review"
)

// Connection is a directed, optionally labeled and conditioned edge between
// two nodes. The engine matches ConnectorType against the executing node's
// reported next connector to pick the next hop.
type Connection struct {
	ID             string `json:"id"`
	Source         string `json:"source"          validate:"required"`
	Target         string `json:"target"          validate:"required"`
	ConnectorType  string `json:"connector_type,omitempty"`
	Condition      string `json:"condition,omitempty"`
	Priority       int    `json:"priority"`
	IsErrorHandler bool   `json:"is_error_handler"`
}

// Matches reports whether this connection is a candidate edge for the given
// connector label. Connections without a connector type behave as default.
func (c *Connection) Matches(connector string) bool {
	if c.ConnectorType == "" || c.ConnectorType == ConnectorDefault {
		return true
	}

	return c.ConnectorType == connector
}

// HandlesErrors reports whether this connection may be followed after a node
// failure.
func (c *Connection) HandlesErrors() bool {
	return c.IsErrorHandler || c.ConnectorType == ConnectorError
}
