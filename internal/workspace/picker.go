package workspace

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"runtime"
	"strings"

	apperrors "flowboard/internal/errors"
)

// DialogTitle is shown by every native folder picker
const DialogTitle = "Select a folder to save workflows"

// PickResult is the outcome of a folder dialog
type PickResult struct {
	Cancelled bool   `json:"cancelled"`
	Path      string `json:"path,omitempty"`
}

// command is one way of asking the desktop for a folder
type command struct {
	name string
	args []string
}

// DirectoryPicker opens the platform's native folder dialog
type DirectoryPicker struct {
	goos     string
	lookPath func(file string) (string, error)
	run      func(ctx context.Context, path string, args ...string) ([]byte, error)
}

// NewDirectoryPicker creates a picker for the running platform
func NewDirectoryPicker() *DirectoryPicker {
	return &DirectoryPicker{
		goos:     runtime.GOOS,
		lookPath: exec.LookPath,
		run: func(ctx context.Context, path string, args ...string) ([]byte, error) {
			return exec.CommandContext(ctx, path, args...).Output()
		},
	}
}

// candidates lists dialog commands to try, in order, for a platform
func candidates(goos, home string) []command {
	switch goos {
	case "darwin":
		return []command{{
			name: "osascript",
			args: []string{
				"-e", `set folderPath to POSIX path of (choose folder with prompt "` + DialogTitle + `")`,
				"-e", "return folderPath",
			},
		}}
	case "windows":
		return []command{{
			name: "powershell",
			args: []string{
				"-NoProfile", "-Command",
				"Add-Type -AssemblyName System.Windows.Forms; " +
					"$dialog = New-Object System.Windows.Forms.FolderBrowserDialog; " +
					"$dialog.Description = '" + DialogTitle + "'; " +
					"if ($dialog.ShowDialog() -eq 'OK') { $dialog.SelectedPath } else { '' }",
			},
		}}
	case "linux", "freebsd", "openbsd", "netbsd":
		return []command{
			{name: "zenity", args: []string{"--file-selection", "--directory", "--title=" + DialogTitle}},
			{name: "kdialog", args: []string{"--getexistingdirectory", home, "--title", DialogTitle}},
		}
	}
	return nil
}

// Pick blocks until the user chooses a folder or dismisses the dialog
func (p *DirectoryPicker) Pick(ctx context.Context) (*PickResult, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}

	cmds := candidates(p.goos, home)
	if cmds == nil {
		return nil, apperrors.New(apperrors.ErrCodeUnsupported, "Unsupported platform: %s", p.goos)
	}

	for _, c := range cmds {
		path, err := p.lookPath(c.name)
		if err != nil {
			continue
		}

		out, err := p.run(ctx, path, c.args...)
		if err != nil {
			if isCancel(err) {
				return &PickResult{Cancelled: true}, nil
			}
			return nil, apperrors.Wrap(apperrors.ErrCodeInternal, err, "Failed to open dialog")
		}
		return parseSelection(string(out)), nil
	}

	return nil, apperrors.New(apperrors.ErrCodeUnsupported, "No supported dialog tool found. Please install zenity or kdialog.")
}

// parseSelection trims dialog output; empty output means the dialog was dismissed
func parseSelection(out string) *PickResult {
	selected := strings.TrimSpace(out)
	if selected == "" {
		return &PickResult{Cancelled: true}
	}
	if len(selected) > 1 && strings.HasSuffix(selected, "/") {
		selected = strings.TrimSuffix(selected, "/")
	}
	return &PickResult{Path: selected}
}

// isCancel recognises a dismissed dialog. osascript reports "User canceled"
// (-128); zenity and kdialog exit with status 1.
func isCancel(err error) bool {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if exitErr.ExitCode() == 1 {
			return true
		}
		if strings.Contains(string(exitErr.Stderr), "-128") {
			return true
		}
	}
	msg := err.Error()
	return strings.Contains(msg, "User canceled") || strings.Contains(msg, "-128")
}
