// Package accounts implements the client side of an account management
// surface: session state, a remote user registry client, and a local
// fallback registry, coordinated so the application keeps working when
// the registry service is down.
//
// Session state:
//   - TokenStore holds the access token in memory and mirrors it to a
//     durable storage.Store under a stable key. Tokens are tagged with a
//     TokenKind so locally minted placeholder tokens are distinguishable
//     from registry-issued ones.
//   - IdentityStore holds the signed-in Identity the same way and lets
//     interested parties Subscribe to changes.
//   - SessionState bundles both plus a per-session marker of the current
//     identity.
//
// Registries:
//   - RemoteRegistry talks HTTP to the registry service with a bounded
//     timeout. Failures are classified: no response at all means the
//     registry is unavailable; an explicit rejection is terminal.
//   - LocalRegistry keeps records as a JSON list in durable storage and
//     serves as the fallback when the remote registry is unreachable.
//
// Coordinator runs the login, signup, and delete protocols across both
// registries. Only unavailability triggers the fallback; duplicate
// identities, rejected requests, and missing records are surfaced as-is.
package accounts
