package docker

import (
	"context"
	"errors"
	"fmt"

	"github.com/moby/moby/client"
)

// ErrPortNotPublished is returned by HostPort when the container has no host
// binding for the requested port.
var ErrPortNotPublished = errors.New("port not published")

type Container struct {
	client DockerClient

	ID          string
	Name        string
	StopTimeout int
}

// Start starts the container. Returns an error if the container fails to start,
// which may indicate a misconfiguration or an unhealthy Docker daemon.
func (c Container) Start(ctx context.Context) error {
	_, err := c.client.ContainerStart(ctx, c.ID, client.ContainerStartOptions{})
	if err != nil {
		return fmt.Errorf("failed to start container %q: %w\nContainer may be misconfigured or Docker daemon may be unhealthy", c.Name, err)
	}

	return nil
}

// HostPort returns the host port the container's TCP privatePort is published on.
// Returns ErrPortNotPublished if the container is not found or has no binding for the port.
func (c Container) HostPort(ctx context.Context, privatePort int) (int, error) {
	result, err := c.client.ContainerList(ctx, client.ContainerListOptions{All: true})
	if err != nil {
		return 0, fmt.Errorf("failed to list containers while looking up %q: %w", c.Name, err)
	}

	for _, item := range result.Items {
		if item.ID != c.ID {
			continue
		}

		for _, port := range item.Ports {
			if int(port.PrivatePort) != privatePort || port.PublicPort == 0 {
				continue
			}
			if port.Type != "" && port.Type != "tcp" {
				continue
			}
			return int(port.PublicPort), nil
		}

		return 0, fmt.Errorf("container %q port %d/tcp: %w\nCheck that the image exposes the port", c.Name, privatePort, ErrPortNotPublished)
	}

	return 0, fmt.Errorf("container %q not found: %w\nThe container may have exited during startup", c.Name, ErrPortNotPublished)
}

// Stop stops the container, waiting up to StopTimeout seconds before the daemon kills it.
func (c Container) Stop(ctx context.Context) error {
	timeout := c.StopTimeout
	_, err := c.client.ContainerStop(ctx, c.ID, client.ContainerStopOptions{Timeout: &timeout})
	if err != nil {
		return fmt.Errorf("failed to stop container %q: %w", c.Name, err)
	}

	return nil
}

// Remove removes the container from the Docker daemon.
// Returns an error if the container is still running or cannot be removed.
// Use ForceRemove to remove a running container.
func (c Container) Remove(ctx context.Context) error {
	_, err := c.client.ContainerRemove(ctx, c.ID, client.ContainerRemoveOptions{
		RemoveVolumes: true,
	})
	if err != nil {
		return fmt.Errorf("failed to remove container %q: %w\nContainer may still be running - use ForceRemove if needed", c.Name, err)
	}

	return nil
}

// ForceRemove forcibly removes the container and its anonymous volumes, even if it is still running.
// Returns an error if the container cannot be removed, which may indicate an inconsistent state.
func (c Container) ForceRemove(ctx context.Context) error {
	_, err := c.client.ContainerRemove(ctx, c.ID, client.ContainerRemoveOptions{
		Force:         true,
		RemoveVolumes: true,
	})
	if err != nil {
		return fmt.Errorf("failed to force remove container %q: %w\nContainer may be in an inconsistent state", c.Name, err)
	}

	return nil
}
