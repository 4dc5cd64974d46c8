package common

// AuthorizationHeaderName is the HTTP header carrying the bearer token.
const AuthorizationHeaderName = "Authorization"

// BearerScheme prefixes the token inside the Authorization header.
const BearerScheme = "Bearer"

// Seeded role names.
const (
	RoleReader = "Reader"
	RoleWriter = "Writer"
)
