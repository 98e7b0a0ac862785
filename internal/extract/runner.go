package extract

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/hargabyte/cfx/internal/facts"
	"github.com/hargabyte/cfx/internal/parser"
	"github.com/hargabyte/cfx/internal/typesys"
)

// Options configure one extraction run.
type Options struct {
	// Targets are the fact output paths.
	Targets Targets
	// Exclude is a list of glob patterns matched against each candidate
	// file's path and base name; matches are skipped.
	Exclude []string
	// Workers caps the number of concurrent per-file extractors;
	// 0 means one per CPU.
	Workers int
	// Progress, when non-nil, receives one line per processed file.
	Progress io.Writer
}

// Run parses every supported source file under the given paths, builds the
// type index across all of them, then extracts facts file by file with a
// pool of workers sharing one session. It returns the number of files
// processed.
func Run(session *facts.Session, paths []string, opts Options) (int, error) {
	files, err := CollectFiles(paths, opts.Exclude)
	if err != nil {
		return 0, err
	}

	results, err := parseAll(files)
	defer func() {
		for _, r := range results {
			r.Close()
		}
	}()
	if err != nil {
		return 0, err
	}

	index := typesys.Build(results...)

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(results) {
		workers = len(results)
	}

	queue := make(chan *parser.ParseResult)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for result := range queue {
				err := NewExtractor(result, index, session, opts.Targets).Run()
				mu.Lock()
				if err != nil && firstErr == nil {
					firstErr = fmt.Errorf("extract %s: %w", result.FilePath, err)
				}
				if err == nil && opts.Progress != nil {
					fmt.Fprintln(opts.Progress, result.FilePath)
				}
				mu.Unlock()
			}
		}()
	}

	for _, r := range results {
		queue <- r
	}
	close(queue)
	wg.Wait()

	return len(results), firstErr
}

// parseAll parses each file with a per-language parser. Parsing is
// sequential; tree-sitter parsers are not safe for concurrent use and
// parsing is not the bottleneck.
func parseAll(files []string) ([]*parser.ParseResult, error) {
	parsers := make(map[parser.Language]*parser.Parser)
	defer func() {
		for _, p := range parsers {
			p.Close()
		}
	}()

	var results []*parser.ParseResult
	for _, file := range files {
		lang := parser.LanguageFromExtension(filepath.Ext(file))
		if lang == "" {
			continue
		}
		p, ok := parsers[lang]
		if !ok {
			var err error
			p, err = parser.NewParser(lang)
			if err != nil {
				return results, err
			}
			parsers[lang] = p
		}
		result, err := p.ParseFile(file)
		if err != nil {
			return results, err
		}
		results = append(results, result)
	}
	return results, nil
}

// CollectFiles expands the given paths into the list of supported source
// files, walking directories recursively and applying exclude patterns.
func CollectFiles(paths []string, exclude []string) ([]string, error) {
	var files []string

	add := func(path string) {
		if parser.LanguageFromExtension(filepath.Ext(path)) == "" {
			return
		}
		if excluded(path, exclude) {
			return
		}
		files = append(files, path)
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", path, err)
		}
		if !info.IsDir() {
			add(path)
			continue
		}
		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if excluded(p, exclude) && p != path {
					return filepath.SkipDir
				}
				return nil
			}
			add(p)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", path, err)
		}
	}

	return files, nil
}

// excluded matches a path against the exclude patterns, trying the full
// slash path and the base name.
func excluded(path string, patterns []string) bool {
	slashed := filepath.ToSlash(path)
	base := filepath.Base(path)
	for _, pattern := range patterns {
		if ok, _ := filepath.Match(pattern, slashed); ok {
			return true
		}
		if ok, _ := filepath.Match(pattern, base); ok {
			return true
		}
	}
	return false
}
