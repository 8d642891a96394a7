package constants

// Roles carried in the JWT role claim.
const (
	RoleAdmin    = "admin"
	RoleCourier  = "courier"
	RoleCustomer = "customer"
)

// Roles allowed to move a booking through the delivery pipeline.
var DeliveryRoles = []string{
	RoleAdmin,
	RoleCourier,
}
