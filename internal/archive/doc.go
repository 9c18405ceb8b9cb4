// Package archive assembles Docker build contexts.
//
// A Context holds the rendered Dockerfile and the data files it copies into
// the image, and streams them as a tar archive suitable for the Engine's
// image build endpoint.
package archive
