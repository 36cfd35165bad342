package common

// AuthorizationHeaderName carries the bearer access token on HTTP requests.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix precedes the token in the Authorization header.
const BearerPrefix = "Bearer "

// SingletonSubject owns every entry and entitlement when the server runs
// without accounts.
const SingletonSubject = "local"
