package commands

import (
	"embed"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

//go:embed all:templates
var templateFS embed.FS

// copyTemplate copies an embedded template directory into targetDir.
// Existing files are kept unless force is set. It returns the files
// written, relative to targetDir.
func copyTemplate(name, targetDir string, force bool) ([]string, error) {
	root := path.Join("templates", name)
	var written []string

	err := fs.WalkDir(templateFS, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel := strings.TrimPrefix(strings.TrimPrefix(p, root), "/")
		if rel == "" {
			return nil
		}
		target := filepath.Join(targetDir, filepath.FromSlash(renameSpecialFiles(rel)))

		if d.IsDir() {
			return os.MkdirAll(target, 0o750)
		}
		if !force {
			if _, err := os.Stat(target); err == nil {
				return nil
			}
		}
		content, err := templateFS.ReadFile(p)
		if err != nil {
			return err
		}
		if err := os.WriteFile(target, content, 0o600); err != nil {
			return err
		}
		written = append(written, renameSpecialFiles(rel))
		return nil
	})
	return written, err
}

// renameSpecialFiles maps template names to dotfiles ("gitignore" to ".gitignore").
func renameSpecialFiles(p string) string {
	dir, base := path.Split(p)
	if base == "gitignore" {
		return dir + ".gitignore"
	}
	return p
}
