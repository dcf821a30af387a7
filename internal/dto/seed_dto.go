package dto

// SeedUser describes a user directory entry provisioned by the seed endpoint.
type SeedUser struct {
	FirstName string `json:"first_name" validate:"required,max=128"`
	LastName  string `json:"last_name" validate:"max=128"`
	Email     string `json:"email" validate:"required,email"`
	Role      string `json:"role" validate:"required,oneof=student instructor admin"`
}

// SeedUsersRequest wraps a batch of users to upsert.
type SeedUsersRequest struct {
	Items []SeedUser `json:"items" validate:"required,min=1,max=500,dive"`
}

// SeedResponse reports how many rows a seed call touched.
type SeedResponse struct {
	Affected int64 `json:"affected"`
}
