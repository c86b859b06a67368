package indexer

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// GitHead returns the commit checked out in dir, or "" when dir is not a
// git work tree or git is unavailable
func GitHead(ctx context.Context, dir string) string {
	out, err := exec.CommandContext(ctx, "git", "-C", dir, "rev-parse", "HEAD").Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}

// SyncRepo clones remote into dir when dir does not exist and then
// fast-forwards it. Git output goes to w.
func SyncRepo(ctx context.Context, remote, dir string, w io.Writer) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(filepath.Dir(dir), 0o755); err != nil {
			return fmt.Errorf("create clone parent: %w", err)
		}
		if err := runGit(ctx, w, "clone", remote, dir); err != nil {
			return err
		}
	} else if err != nil {
		return fmt.Errorf("stat %s: %w", dir, err)
	}
	return runGit(ctx, w, "-C", dir, "pull", "--ff-only")
}

func runGit(ctx context.Context, w io.Writer, args ...string) error {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Stdout = w
	cmd.Stderr = w
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("git %s: %w", strings.Join(args, " "), err)
	}
	return nil
}
