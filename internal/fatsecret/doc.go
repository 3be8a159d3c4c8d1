// Package fatsecret implements the FatSecret MCP server.
//
// The package covers OAuth 1.0a request signing (HMAC-SHA1 per RFC 5849),
// the three-legged authentication handshake, durable token storage, a signed
// API client for the FatSecret platform, and an MCP server exposing the API
// as callable tools.
//
// # Authentication
//
// Two-legged (consumer-only) credentials are enough for food and recipe
// lookups. Personal features (food diary, weight tracking) need a user access
// token obtained through the three-legged flow:
//
//  1. FlowManager.GetRequestToken obtains a temporary request token.
//  2. FlowManager.AuthorizationURL builds the URL the user must visit.
//  3. FlowManager.ExchangeForAccessToken trades the user's verifier code for
//     a long-lived user token.
//
// Tokens are persisted by a TokenStore: FileTokenStore keeps them in a JSON
// file with owner-only permissions, EnvTokenStore reads them from the
// environment for deployments without a writable filesystem.
//
// # Key Components
//
//   - Signer: OAuth 1.0a HMAC-SHA1 request signing
//   - TokenStore / FileTokenStore / EnvTokenStore: credential persistence
//   - FlowManager: the three-step OAuth handshake
//   - Client: signed calls to the FatSecret REST API
//   - MCPServer: exposes the API as MCP tools over stdio or streamable-http
//   - Logger: formatted logging with color support and API tracing
package fatsecret
