package driver

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"slices"

	"golang.org/x/sync/errgroup"

	"dtl/internal/ast"
	"dtl/internal/diag"
	"dtl/internal/source"
)

// DefaultExtensions are the template suffixes picked up from directories.
var DefaultExtensions = []string{".html", ".txt", ".dtl"}

// DirOptions controls directory expansion.
type DirOptions struct {
	Extensions []string // пусто - DefaultExtensions
	Exclude    []string // glob-шаблоны по базовому имени
}

func (o DirOptions) matches(path string) bool {
	exts := o.Extensions
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	if !slices.Contains(exts, filepath.Ext(path)) {
		return false
	}
	return !o.excluded(filepath.Base(path))
}

func (o DirOptions) excluded(name string) bool {
	for _, pattern := range o.Exclude {
		if ok, _ := filepath.Match(pattern, name); ok {
			return true
		}
	}
	return false
}

// ListTemplates возвращает отсортированный список шаблонов в директории.
// Excluded directories are skipped entirely.
func ListTemplates(dir string, opts DirOptions) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && opts.excluded(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if opts.matches(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Сортируем для детерминированного порядка
	slices.Sort(files)
	return files, nil
}

// ExpandPaths turns command-line arguments into a deduplicated file list.
// Directories are walked; files are taken as given, whatever their suffix.
func ExpandPaths(paths []string, opts DirOptions) ([]string, error) {
	seen := make(map[string]struct{}, len(paths))
	var out []string
	add := func(p string) {
		key := filepath.Clean(p)
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		out = append(out, p)
	}
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			// отсутствующий файл станет IO-диагностикой при загрузке
			add(p)
			continue
		}
		if !info.IsDir() {
			add(p)
			continue
		}
		files, err := ListTemplates(p, opts)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", p, err)
		}
		for _, f := range files {
			add(f)
		}
	}
	return out, nil
}

// loadAll reads every file into fileSet sequentially. Files that fail to load
// are registered as empty virtual files so diagnostics can point at them.
func loadAll(fileSet *source.FileSet, files []string) ([]source.FileID, []error) {
	ids := make([]source.FileID, len(files))
	errs := make([]error, len(files))
	for i, path := range files {
		id, err := fileSet.Load(path)
		if err != nil {
			logger.Warningf("load %s: %v", path, err)
			id = fileSet.AddVirtual(path, nil)
			errs[i] = err
		}
		ids[i] = id
	}
	return ids, errs
}

func loadFailure(id source.FileID, err error, maxDiagnostics int) *diag.Bag {
	bag := diag.NewBag(maxDiagnostics)
	bag.Add(diag.NewError(diag.IOLoadFailed, source.Span{File: id}, err.Error()))
	return bag
}

func workerLimit(jobs, files int) int {
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	return max(min(jobs, files), 1)
}

// ParseDirResult содержит результат разбора одного файла
type ParseDirResult struct {
	Path   string
	FileID source.FileID
	Nodes  []ast.Node
	Bag    *diag.Bag
	Err    error // ошибка загрузки или первая ошибка разбора
}

// ParseDir разбирает все шаблоны в директории параллельно.
// Results follow the sorted file order regardless of scheduling.
func ParseDir(ctx context.Context, dir string, opts ParseOptions, dirOpts DirOptions, jobs int) (*source.FileSet, []ParseDirResult, error) {
	files, err := ListTemplates(dir, dirOpts)
	if err != nil {
		return nil, nil, err
	}
	fileSet := source.NewFileSetWithBase(dir)
	if len(files) == 0 {
		return fileSet, nil, nil
	}
	ids, loadErrs := loadAll(fileSet, files)

	// Результаты (индексы уникальны для каждой горутины, мьютекс не нужен)
	results := make([]ParseDirResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workerLimit(jobs, len(files)))
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if loadErrs[i] != nil {
				results[i] = ParseDirResult{
					Path:   path,
					FileID: ids[i],
					Bag:    loadFailure(ids[i], loadErrs[i], opts.maxDiagnostics()),
					Err:    loadErrs[i],
				}
				return nil
			}
			res := parseFile(fileSet, fileSet.Get(ids[i]), opts)
			results[i] = ParseDirResult{
				Path:   path,
				FileID: ids[i],
				Nodes:  res.Nodes,
				Bag:    res.Bag,
				Err:    res.Err,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return fileSet, results, nil
}
