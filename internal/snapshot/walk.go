package snapshot

import (
	"path/filepath"
	"sort"

	"github.com/karrick/godirwalk"
	gitignore "github.com/sabhiram/go-gitignore"

	"github.com/rcm-dev/rcm/internal/rcmpath"
)

// Directories never captured in a snapshot: installed package trees are
// reproducible from the lockfile, and .git is not workspace state.
var defaultExcludes = map[string]bool{
	".git":         true,
	"node_modules": true,
	"target":       true,
	"vendor":       true,
	".rcm":         true,
}

func safeCompileIgnoreFile(path rcmpath.AbsoluteSystemPath) (*gitignore.GitIgnore, error) {
	if path.FileExists() {
		return gitignore.CompileIgnoreFile(path.ToString())
	}
	// no op
	return gitignore.CompileIgnoreLines([]string{}...), nil
}

// CollectFiles walks the workspace and returns the anchored paths that
// belong in a snapshot, honoring .gitignore, in a stable order.
func CollectFiles(root rcmpath.AbsoluteSystemPath) ([]rcmpath.AnchoredSystemPath, error) {
	ignore, err := safeCompileIgnoreFile(root.Join(".gitignore"))
	if err != nil {
		return nil, err
	}

	var files []rcmpath.AnchoredSystemPath
	err = godirwalk.Walk(root.ToString(), &godirwalk.Options{
		Unsorted: true,
		Callback: func(name string, info *godirwalk.Dirent) error {
			rel, relErr := filepath.Rel(root.ToString(), name)
			if relErr != nil {
				return relErr
			}
			if rel == "." {
				return nil
			}
			if info.IsDir() {
				if defaultExcludes[info.Name()] || ignore.MatchesPath(rel+string(filepath.Separator)) {
					return filepath.SkipDir
				}
				files = append(files, rcmpath.AnchoredSystemPath(rel))
				return nil
			}
			if ignore.MatchesPath(rel) {
				return nil
			}
			files = append(files, rcmpath.AnchoredSystemPath(rel))
			return nil
		},
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(files, func(i, j int) bool { return files[i] < files[j] })
	return files, nil
}
