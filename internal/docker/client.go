package docker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/moby/moby/api/types/container"
	"github.com/moby/moby/client"
	"golang.org/x/sync/errgroup"

	"github.com/ryanmoran/dockerdb/internal"
)

// Image is a built image. ID pins the exact build even when another build
// later moves the Name tag.
type Image struct {
	Name string
	ID   string
}

// Ref returns the reference containers are created from.
func (i Image) Ref() string {
	if i.ID != "" {
		return i.ID
	}
	return i.Name
}

type Client struct {
	client DockerClient
}

// NewClient creates a Client that wraps the provided Docker client interface.
func NewClient(dockerClient DockerClient) Client {
	return Client{
		client: dockerClient,
	}
}

// NewDefaultClient creates a Client with a real Docker client from the environment.
func NewDefaultClient() (Client, error) {
	cli, err := client.New(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return Client{}, fmt.Errorf("failed to create docker client: %w\nEnsure Docker is running and DOCKER_HOST is set correctly", err)
	}

	return NewClient(cli), nil
}

// Close closes the underlying Docker client connection.
func (c Client) Close() error {
	return c.client.Close()
}

// BuildImage builds a Docker image from a build context and tags it with the specified image name.
// The build context is streamed to the Docker daemon as it is written, and the build output is
// relayed to the provided Writer. Returns an error if the build context cannot be written, the
// image build fails, or the build output cannot be decoded.
func (c Client) BuildImage(ctx context.Context, buildContext io.WriterTo, imageName internal.ImageName, noCache bool, w internal.Writer) (Image, error) {
	pr, pw := io.Pipe()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		_, err := buildContext.WriteTo(pw)
		pw.CloseWithError(err)
		// A closed reader means the build already finished or failed; the
		// build goroutine reports why.
		if err != nil && !errors.Is(err, io.ErrClosedPipe) {
			return fmt.Errorf("failed to write build context: %w", err)
		}
		return nil
	})

	var image Image
	g.Go(func() error {
		defer pr.Close()

		var err error
		image, err = c.build(gctx, pr, imageName, noCache, w)
		return err
	})

	if err := g.Wait(); err != nil {
		return Image{}, err
	}

	return image, nil
}

func (c Client) build(ctx context.Context, buildContext io.Reader, imageName internal.ImageName, noCache bool, w internal.Writer) (Image, error) {
	response, err := c.client.ImageBuild(ctx, buildContext, client.ImageBuildOptions{
		Dockerfile: "Dockerfile",
		Tags:       []string{string(imageName)},
		Remove:     true,
		NoCache:    noCache,
	})
	if err != nil {
		return Image{}, fmt.Errorf("failed to build image %q: %w\nCheck Docker daemon logs for details", imageName, err)
	}
	defer response.Body.Close()

	var id string
	decoder := json.NewDecoder(response.Body)
	for decoder.More() {
		select {
		case <-ctx.Done():
			return Image{}, ctx.Err()
		default:
		}

		var output struct {
			Stream      string          `json:"stream"`
			Aux         json.RawMessage `json:"aux"`
			ErrorDetail struct {
				Code    int    `json:"code"`
				Message string `json:"message"`
			} `json:"errorDetail"`
		}
		err := decoder.Decode(&output)
		if err != nil {
			return Image{}, fmt.Errorf("failed to decode build output: %w\nDocker may have returned malformed JSON", err)
		}

		if output.ErrorDetail.Code != 0 || output.ErrorDetail.Message != "" {
			return Image{}, fmt.Errorf("docker build failed: %s\nCheck the Dockerfile template, data files and base image availability", output.ErrorDetail.Message)
		}

		if len(output.Aux) > 0 {
			var aux struct {
				ID string `json:"ID"`
			}
			if json.Unmarshal(output.Aux, &aux) == nil && aux.ID != "" {
				id = aux.ID
			}
		}

		w.Print(output.Stream)
	}

	return Image{
		Name: string(imageName),
		ID:   id,
	}, nil
}

// CreateContainer creates a new Docker container from image. Every port the image exposes is
// published to a random host port, so concurrent fixtures never collide. Returns a Container
// handle or an error if creation fails.
func (c Client) CreateContainer(ctx context.Context, name internal.ContainerName, image Image, labels map[string]string, stopTimeout int) (Container, error) {
	response, err := c.client.ContainerCreate(ctx, client.ContainerCreateOptions{
		Config: &container.Config{
			Image:  image.Ref(),
			Labels: labels,
		},
		HostConfig: &container.HostConfig{
			PublishAllPorts: true,
		},
		Name: string(name),
	})
	if err != nil {
		return Container{}, fmt.Errorf("failed to create container %q from image %q: %w\nEnsure image exists and no container with the same name is running", name, image.Name, err)
	}

	return Container{
		ID:          response.ID,
		Name:        string(name),
		client:      c.client,
		StopTimeout: stopTimeout,
	}, nil
}

// Ping pings the Docker daemon and returns the API version if successful.
func (c Client) Ping(ctx context.Context) (string, error) {
	ping, err := c.client.Ping(ctx, client.PingOptions{})
	if err != nil {
		return "", fmt.Errorf("failed to ping docker daemon: %w\nMake sure Docker is installed and running (try 'docker ps')", err)
	}
	return ping.APIVersion, nil
}

// ListContainers lists all containers, running or not, that carry the given label.
func (c Client) ListContainers(ctx context.Context, label string) ([]Container, error) {
	result, err := c.client.ContainerList(ctx, client.ContainerListOptions{All: true})
	if err != nil {
		return nil, fmt.Errorf("failed to list containers: %w", err)
	}

	var containers []Container
	for _, item := range result.Items {
		if _, ok := item.Labels[label]; !ok {
			continue
		}

		name := item.ID
		if len(item.Names) > 0 {
			name = strings.TrimPrefix(item.Names[0], "/")
		}

		containers = append(containers, Container{
			ID:     item.ID,
			Name:   name,
			client: c.client,
		})
	}
	return containers, nil
}
