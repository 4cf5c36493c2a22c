package ports

import "context"

// Caller roles recognized by the HTTP surface.
const (
	RoleAdmin    = "admin"
	RoleOperator = "operator"
	RoleViewer   = "viewer"
)

// RoleResolver maps an opaque caller identity to a role. The core only
// consumes the resolved role; how identity is established is the adapter's
// concern.
type RoleResolver interface {
	Resolve(ctx context.Context, callerID string) (string, error)
}
