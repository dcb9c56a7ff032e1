// Package jwt issues and verifies the access tokens handed out after a
// login code is consumed. It carries a typed Claims payload, an HS512
// signer, and context helpers used by the authentication middleware.
package jwt
