// Package docker provides Docker image and container management for dockerdb.
//
// It builds fixture images from a streamed build context, creates containers
// that publish their exposed ports, discovers the published host ports and
// removes containers when a fixture is torn down. The Client type is the main
// entry point for all Docker operations.
package docker
