// Package jwt issues and verifies the bearer tokens returned by login.
//
// Tokens are HS512-signed and carry the user id and email next to the
// registered claims. SetAuth/GetAuth move verified claims through a request
// context.
package jwt
