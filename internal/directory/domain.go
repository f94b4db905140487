// Package directory provides read-only access to the user and organization
// records maintained by the main application.
package directory

// Membership types stored on user records.
const (
	MembershipAdmin = "admin"
	MembershipBasic = "basic"
	MembershipPro   = "pro"
)

// User is the slice of a user record the permission engine needs.
type User struct {
	ID             string
	MembershipType string
	OrganizationID *int64
}

// Organization represents a competitor club or retailer organization.
type Organization struct {
	ID   int64
	Name string
}
