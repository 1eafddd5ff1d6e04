package platform

import (
	"fmt"
	"os"
	"path/filepath"
)

// WorkspaceMarkers are the entries that mark a directory as a jotter workspace root.
var WorkspaceMarkers = []string{".jotter", EnvFile}

// FindRoot looks upwards from startDir for a workspace marker and returns
// the absolute path of the first directory holding one.
func FindRoot(startDir string) (string, error) {
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	dir := abs
	for {
		for _, marker := range WorkspaceMarkers {
			if hasFile(dir, marker) {
				return dir, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("workspace root not found from %s", abs)
}

func hasFile(dir, name string) bool {
	_, err := os.Stat(filepath.Join(dir, name))
	return err == nil
}
