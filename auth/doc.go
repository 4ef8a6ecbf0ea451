// Package auth provides the credential and identity core for bookmarkd:
// bcrypt password hashing, HS256 session-token issuance and validation,
// and the signup/signin orchestration over a uniqueness-enforcing user
// store.
//
// Composition:
//   - Users is the Bun-backed identity store; the unique email constraint
//     lives in the schema and is the only arbiter of duplicate signups.
//   - UserProvider adapts the store into IdentityProvider and
//     IdentityRegisterer for the Auther.
//   - Auther composes hashing, store access, and the TokenService into
//     the Signup and Signin flows.
//   - RouteAuthenticator guards HTTP routes, re-resolving the full user
//     record into the request context so handlers never touch the token.
package auth
