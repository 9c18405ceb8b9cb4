// Package dockerfile renders the image definition for a disposable
// PostgreSQL fixture and computes the signature of the data baked into it.
package dockerfile
