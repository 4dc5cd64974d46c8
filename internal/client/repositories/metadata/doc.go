// Package metadata is the client's durable key/value store. The session
// cache keeps the signed-in user and the access token here.
package metadata
