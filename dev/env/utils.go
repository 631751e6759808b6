package devenv

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sunbridge-backend/lib/configutil"
)

var modName = regexp.MustCompile(`(?m)^module *([\w\-_]+)$`)

func isWorkspaceRoot(currentdir string) bool {
	mod, err := os.ReadFile(filepath.Join(currentdir, "go.mod"))
	if err != nil {
		return false
	}
	matches := modName.FindSubmatch(mod)
	return len(matches) >= 2 && string(matches[1]) == "sunbridge-backend"
}

func GetWorkspaceRoot() (string, error) {
	currentdir, err := filepath.Abs(".")
	if err != nil {
		return "", err
	}
	root, err := filepath.Abs("/")
	if err != nil {
		return "", err
	}

	for currentdir != root {
		if !isWorkspaceRoot(currentdir) {
			currentdir = filepath.Join(currentdir, "..")
			continue
		}
		return currentdir, nil
	}

	return "", os.ErrNotExist
}

func GetStateFile(path string) ([]byte, error) {
	root, err := GetWorkspaceRoot()
	if err != nil {
		return nil, err
	}
	statepath := filepath.Join(root, "dev/.state", path)
	contents, err := os.ReadFile(statepath)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("no file at %s", statepath)
	}
	return contents, err
}

func GetStateConfig[T any](path string) (T, error) {
	root, err := GetWorkspaceRoot()
	if err != nil {
		var out T
		return out, err
	}
	return configutil.ReadConfig[T](filepath.Join(root, "dev/.state", path))
}

// ResolvePath expands paths prefixed with `<dev_state>` into the
// workspace-level dev/.state directory, creating it if necessary.
// All other paths pass through untouched.
func ResolvePath(path string) (string, error) {
	if !strings.HasPrefix(path, "<dev_state>") {
		return path, nil
	}

	root, err := GetWorkspaceRoot()
	if err != nil {
		return "", err
	}

	err = os.MkdirAll(filepath.Join(root, "dev", ".state"), 0777)
	if err != nil {
		return "", err
	}

	subpath := filepath.Join(strings.Split(path, string(os.PathSeparator))[1:]...)
	return filepath.Join(root, "dev", ".state", subpath), nil
}
