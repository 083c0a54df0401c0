package synth

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// runWithStdin executes a command with the text wired to stdin. Stdin is
// set up before the process starts; attaching it after Start races with
// engines that read input immediately (observed with piper).
func runWithStdin(ctx context.Context, input, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = strings.NewReader(input)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	duration := time.Since(start)

	if ctxErr := ctx.Err(); ctxErr != nil {
		log.Debug("subprocess cancelled", "command", name, "duration", duration, "cause", ctxErr)
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return fmt.Errorf("%s: %w", name, context.DeadlineExceeded)
		}
		return fmt.Errorf("%s cancelled: %w", name, ctxErr)
	}

	if err != nil {
		log.Debug("subprocess failed", "command", name, "args", args, "duration", duration, "error", err)
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%s failed: %w: %s", name, err, msg)
		}
		return fmt.Errorf("%s failed: %w", name, err)
	}

	log.Debug("subprocess completed", "command", name, "duration", duration)
	return nil
}

// runCommand executes a command without stdin input, capturing combined
// output for error reporting.
func runCommand(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	output, err := cmd.CombinedOutput()

	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return fmt.Errorf("%s: %w", name, context.DeadlineExceeded)
		}
		return fmt.Errorf("%s cancelled: %w", name, ctxErr)
	}

	if err != nil {
		if msg := strings.TrimSpace(string(output)); msg != "" {
			return fmt.Errorf("%s failed: %w: %s", name, err, msg)
		}
		return fmt.Errorf("%s failed: %w", name, err)
	}
	return nil
}

func binaryOnPath(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}
