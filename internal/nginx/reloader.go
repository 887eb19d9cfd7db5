package nginx

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
)

// Reloader validates and applies a regenerated nginx configuration. Reload
// signals nginx to re-read its config without dropping active connections.
type Reloader interface {
	// Test runs a syntax check against the on-disk configuration.
	Test(ctx context.Context) error
	// Reload signals the running nginx to apply the configuration.
	Reload(ctx context.Context) error
}

// CommandReloader drives a locally installed nginx binary.
type CommandReloader struct {
	Binary string

	// runFunc is a test hook around exec.
	runFunc func(ctx context.Context, name string, args ...string) ([]byte, error)
}

func NewCommandReloader(binary string) *CommandReloader {
	if binary == "" {
		binary = "nginx"
	}
	return &CommandReloader{
		Binary: binary,
		runFunc: func(ctx context.Context, name string, args ...string) ([]byte, error) {
			return exec.CommandContext(ctx, name, args...).CombinedOutput()
		},
	}
}

func (r *CommandReloader) Test(ctx context.Context) error {
	out, err := r.runFunc(ctx, r.Binary, "-t")
	if err != nil {
		return fmt.Errorf("nginx -t: %s: %w", strings.TrimSpace(string(out)), err)
	}
	return nil
}

func (r *CommandReloader) Reload(ctx context.Context) error {
	out, err := r.runFunc(ctx, r.Binary, "-s", "reload")
	if err != nil {
		return fmt.Errorf("nginx -s reload: %s: %w", strings.TrimSpace(string(out)), err)
	}
	return nil
}

// dockerAPI is the slice of the Docker client the reloader needs.
type dockerAPI interface {
	ContainerExecCreate(ctx context.Context, container string, options container.ExecOptions) (types.IDResponse, error)
	ContainerExecAttach(ctx context.Context, execID string, options container.ExecAttachOptions) (types.HijackedResponse, error)
	ContainerExecInspect(ctx context.Context, execID string) (container.ExecInspect, error)
	ContainerKill(ctx context.Context, container, signal string) error
}

// DockerReloader drives an nginx container over the Docker API: the syntax
// check runs as an exec inside the container and the reload is a SIGHUP to
// the container's main process.
type DockerReloader struct {
	Container string

	cli dockerAPI
}

func NewDockerReloader(containerName string) (*DockerReloader, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("docker client: %w", err)
	}
	return &DockerReloader{Container: containerName, cli: cli}, nil
}

func (r *DockerReloader) Test(ctx context.Context) error {
	execID, err := r.cli.ContainerExecCreate(ctx, r.Container, container.ExecOptions{
		Cmd:          []string{"nginx", "-t"},
		AttachStdout: true,
		AttachStderr: true,
	})
	if err != nil {
		return fmt.Errorf("create nginx -t exec: %w", err)
	}

	attach, err := r.cli.ContainerExecAttach(ctx, execID.ID, container.ExecAttachOptions{})
	if err != nil {
		return fmt.Errorf("attach nginx -t exec: %w", err)
	}
	defer attach.Close()

	var stdout, stderr bytes.Buffer
	if _, err := stdcopy.StdCopy(&stdout, &stderr, attach.Reader); err != nil {
		return fmt.Errorf("read nginx -t output: %w", err)
	}

	inspect, err := r.cli.ContainerExecInspect(ctx, execID.ID)
	if err != nil {
		return fmt.Errorf("inspect nginx -t exec: %w", err)
	}
	if inspect.ExitCode != 0 {
		return fmt.Errorf("nginx -t exited %d: %s", inspect.ExitCode, strings.TrimSpace(stderr.String()+stdout.String()))
	}
	return nil
}

func (r *DockerReloader) Reload(ctx context.Context) error {
	if err := r.cli.ContainerKill(ctx, r.Container, "HUP"); err != nil {
		return fmt.Errorf("signal nginx container %q: %w", r.Container, err)
	}
	return nil
}
