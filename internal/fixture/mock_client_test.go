package fixture_test

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/moby/moby/client"
)

// mockDockerClient is a mock implementation of docker.DockerClient that
// records container removals.
type mockDockerClient struct {
	imageBuildFunc      func(ctx context.Context, buildContext io.Reader, options client.ImageBuildOptions) (client.ImageBuildResult, error)
	containerCreateFunc func(ctx context.Context, options client.ContainerCreateOptions) (client.ContainerCreateResult, error)
	containerStartFunc  func(ctx context.Context, containerID string, options client.ContainerStartOptions) (client.ContainerStartResult, error)
	containerStopFunc   func(ctx context.Context, containerID string, options client.ContainerStopOptions) (client.ContainerStopResult, error)
	containerListFunc   func(ctx context.Context, options client.ContainerListOptions) (client.ContainerListResult, error)
	containerRemoveFunc func(ctx context.Context, containerID string, options client.ContainerRemoveOptions) (client.ContainerRemoveResult, error)

	mu      sync.Mutex
	created []client.ContainerCreateOptions
	stopped []string
	removed []string
	forced  []bool
}

func (m *mockDockerClient) ImageBuild(ctx context.Context, buildContext io.Reader, options client.ImageBuildOptions) (client.ImageBuildResult, error) {
	if m.imageBuildFunc != nil {
		return m.imageBuildFunc(ctx, buildContext, options)
	}
	if _, err := io.Copy(io.Discard, buildContext); err != nil {
		return client.ImageBuildResult{}, err
	}
	return client.ImageBuildResult{Body: io.NopCloser(&emptyReader{})}, nil
}

func (m *mockDockerClient) ContainerCreate(ctx context.Context, options client.ContainerCreateOptions) (client.ContainerCreateResult, error) {
	m.mu.Lock()
	m.created = append(m.created, options)
	m.mu.Unlock()

	if m.containerCreateFunc != nil {
		return m.containerCreateFunc(ctx, options)
	}
	return client.ContainerCreateResult{ID: "container123"}, nil
}

func (m *mockDockerClient) ContainerStart(ctx context.Context, containerID string, options client.ContainerStartOptions) (client.ContainerStartResult, error) {
	if m.containerStartFunc != nil {
		return m.containerStartFunc(ctx, containerID, options)
	}
	return client.ContainerStartResult{}, nil
}

func (m *mockDockerClient) ContainerStop(ctx context.Context, containerID string, options client.ContainerStopOptions) (client.ContainerStopResult, error) {
	if m.containerStopFunc != nil {
		if result, err := m.containerStopFunc(ctx, containerID, options); err != nil {
			return result, err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopped = append(m.stopped, containerID)
	return client.ContainerStopResult{}, nil
}

func (m *mockDockerClient) ContainerRemove(ctx context.Context, containerID string, options client.ContainerRemoveOptions) (client.ContainerRemoveResult, error) {
	if m.containerRemoveFunc != nil {
		if result, err := m.containerRemoveFunc(ctx, containerID, options); err != nil {
			return result, err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.removed = append(m.removed, containerID)
	m.forced = append(m.forced, options.Force)
	return client.ContainerRemoveResult{}, nil
}

func (m *mockDockerClient) ContainerList(ctx context.Context, options client.ContainerListOptions) (client.ContainerListResult, error) {
	if m.containerListFunc != nil {
		return m.containerListFunc(ctx, options)
	}
	return client.ContainerListResult{}, errors.New("not implemented")
}

func (m *mockDockerClient) Ping(ctx context.Context, options client.PingOptions) (client.PingResult, error) {
	return client.PingResult{APIVersion: "1.52"}, nil
}

func (m *mockDockerClient) Close() error {
	return nil
}

func (m *mockDockerClient) Removed() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.removed...)
}

func (m *mockDockerClient) Forced() []bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]bool(nil), m.forced...)
}

func (m *mockDockerClient) Stopped() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.stopped...)
}

func (m *mockDockerClient) Created() []client.ContainerCreateOptions {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]client.ContainerCreateOptions(nil), m.created...)
}

type emptyReader struct{}

func (emptyReader) Read([]byte) (int, error) { return 0, io.EOF }
