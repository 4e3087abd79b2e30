// Package webhook implements the inbound GitHub webhook boundary: an HTTP
// listener plus the request verifier that authenticates each delivery before
// it is relayed anywhere.
//
// # Security Model
//
// - HMAC-SHA256 signatures verified using crypto/subtle (constant-time comparison)
// - The signing key is selected by the source identity the payload itself
//   claims (organization login, else repository full name), resolved once and
//   reused for destination lookup
// - User-Agent must identify GitHub's webhook dispatcher (GitHub-Hookshot)
// - Content-Type must be exactly application/json
// - Body size limits enforced to prevent DoS
// - No verification details leaked in responses (always a generic 403)
//
// # Request Flow
//
//  1. HTTP POST arrives at /
//  2. Body size checked (reject with 413 if too large)
//  3. Verifier runs its checks in order: user agent, content type, JSON
//     parse, source identity resolution, registry lookup, HMAC signature
//  4. On any failure: 403 Forbidden, specific reason logged at warn only
//  5. On success the delivery handler formats and forwards the event, and the
//     response is always 200 with a short outcome description
//
// Any method other than POST gets a 405.
package webhook
