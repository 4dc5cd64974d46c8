// Package session caches the signed-in identity on the client.
//
// The email and roles are stored under "user-email" and "user-roles" and the
// access token under "token" in the local metadata store. Observers are
// plain callbacks invoked synchronously, in subscription order, whenever the
// cached identity changes. A storage failure is reported as "signed out".
package session
