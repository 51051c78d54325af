package config

import (
	"io"
	"log"
	"os"
	"path/filepath"
)

// Paths is the layered set of locations a config file may live in, checked in
// descending priority: the user-writable config directory, the read-only
// resource directory shipped next to the executable, and the working
// directory.
type Paths struct {
	ConfigDir   string
	ResourceDir string
	WorkDir     string
}

// DefaultPaths builds the standard lookup set for this application.
func DefaultPaths() Paths {
	p := Paths{WorkDir: "."}
	if dir, err := os.UserConfigDir(); err == nil {
		p.ConfigDir = filepath.Join(dir, AppName)
	}
	if execPath, err := os.Executable(); err == nil {
		p.ResourceDir = filepath.Dir(execPath)
	}
	return p
}

// Resolve finds filename in the layered locations. A bundled copy found only
// in the resource directory is copied into the config directory so later
// edits persist; if the copy fails the resource path is returned read-only.
// The boolean reports whether the file exists at the returned path.
func (p Paths) Resolve(filename string) (string, bool) {
	if p.ConfigDir != "" {
		if err := os.MkdirAll(p.ConfigDir, 0o755); err != nil {
			log.Printf("Config: cannot create config dir %s: %v", p.ConfigDir, err)
		}
		userPath := filepath.Join(p.ConfigDir, filename)
		if fileExists(userPath) {
			return userPath, true
		}

		if p.ResourceDir != "" {
			resourcePath := filepath.Join(p.ResourceDir, filename)
			if fileExists(resourcePath) {
				if err := copyFile(resourcePath, userPath); err != nil {
					log.Printf("Config: failed to copy bundled %s to %s: %v", filename, userPath, err)
					return resourcePath, true
				}
				log.Printf("Config: copied bundled %s to %s", filename, userPath)
				return userPath, true
			}
		}
	}

	localPath := filepath.Join(p.WorkDir, filename)
	if fileExists(localPath) {
		return localPath, true
	}

	// Nothing found anywhere; report the location a future save should use.
	return p.WritablePath(filename), false
}

// WritablePath returns where filename should be written, preferring the user
// config directory and falling back to the working directory.
func (p Paths) WritablePath(filename string) string {
	if p.ConfigDir != "" {
		return filepath.Join(p.ConfigDir, filename)
	}
	return filepath.Join(p.WorkDir, filename)
}

func fileExists(path string) bool {
	st, err := os.Stat(path)
	return err == nil && !st.IsDir()
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
