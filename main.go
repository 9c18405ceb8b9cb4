package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"syscall"

	"github.com/docker/cli/cli/streams"
	"github.com/moby/term"
	"go.uber.org/multierr"

	"github.com/ryanmoran/dockerdb/internal"
	"github.com/ryanmoran/dockerdb/internal/docker"
	"github.com/ryanmoran/dockerdb/internal/fixture"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("panic occurred: %v", r)
			os.Exit(1)
		}
	}()

	_, stdout, stderr := term.StdStreams()

	if err := run(os.Args, os.Environ(), stdout, stderr); err != nil {
		fmt.Fprintln(stderr, err)

		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() > 0 {
			os.Exit(exitErr.ExitCode())
		}
		os.Exit(1)
	}
}

func run(args, env []string, stdout, stderr io.Writer) (err error) {
	env, err = internal.LoadEnvironment(env, ".env")
	if err != nil {
		return err
	}

	config, err := internal.ParseConfig(args[1:], env)
	if err != nil {
		return err
	}

	color := streams.NewOut(stderr).IsTerminal() && !hasVariable(env, "NO_COLOR")
	logger := internal.NewLogger(stderr, config.LogLevel, color)

	// Build output shares stderr with the logs so stdout only carries the
	// DSN or the command's own output.
	w := internal.NewStandardWriter(stderr, logger)

	if config.Render {
		content, _, err := fixture.Dockerfile(config)
		if err != nil {
			return err
		}
		_, err = stdout.Write(content)
		return err
	}

	cleanupMgr := internal.NewCleanupManager(logger)
	defer func() {
		err = multierr.Append(err, cleanupMgr.Execute())
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := docker.NewDefaultClient()
	if err != nil {
		return err
	}
	cleanupMgr.Add("docker-client", client.Close)

	version, err := client.Ping(ctx)
	if err != nil {
		return err
	}
	logger.Debug("connected to docker", "api_version", version)

	if config.Prune {
		removed, err := fixture.Prune(ctx, client, w)
		logger.Info("pruned containers", "count", removed)
		return err
	}

	f, err := fixture.Start(ctx, client, config, w)
	if err != nil {
		return fmt.Errorf("failed to start database fixture: %w", err)
	}
	cleanupMgr.Add("fixture", func() error {
		return f.Close(context.WithoutCancel(ctx))
	})
	logger.Info("database ready", "container", f.ContainerName(), "url", f.URL())

	if len(config.Command) > 0 {
		return runCommand(ctx, config.Command, append(env, f.Env()...), stdout, stderr)
	}

	fmt.Fprintln(stdout, f.DSN())
	logger.Info("waiting for interrupt to tear down")
	<-ctx.Done()

	return nil
}

// runCommand runs command with env, forwarding its output. The returned error
// wraps *exec.ExitError when the command exits non-zero.
func runCommand(ctx context.Context, command internal.Command, env []string, stdout, stderr io.Writer) error {
	cmd := exec.CommandContext(ctx, command[0], command[1:]...)
	cmd.Env = env
	cmd.Stdin = os.Stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("command %q failed: %w", strings.Join(command, " "), err)
	}
	return nil
}

func hasVariable(env []string, name string) bool {
	for _, variable := range env {
		if key, value, ok := strings.Cut(variable, "="); ok && key == name && value != "" {
			return true
		}
	}
	return false
}
