// Package http implements the REST API of the storage server.
//
// The server only ever sees ciphertext, nonces, salts and public keys.
// Handlers decode JSON, call the service layer and map service and store
// errors onto status codes. Tracing, access logging, metrics,
// authentication and the share-link rate limit are middlewares.
package http
