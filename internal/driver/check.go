package driver

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"dtl/internal/diag"
	"dtl/internal/observ"
	"dtl/internal/source"
)

// CheckOptions configures Check.
type CheckOptions struct {
	ParseOptions
	Dir      DirOptions
	Jobs     int
	BaseDir  string
	Cache    *DiskCache   // nil - без кеша
	Progress ProgressSink // nil - без событий
	Timer    *observ.Timer
}

// CheckResult holds the diagnostics of one template.
type CheckResult struct {
	Path    string
	FileID  source.FileID
	Bag     *diag.Bag
	Cached  bool
	Elapsed time.Duration
}

// Failed reports whether the file has error diagnostics.
func (r *CheckResult) Failed() bool {
	return r.Bag != nil && r.Bag.HasErrors()
}

// Check parses and lints every template reachable from paths.
// Unchanged templates reuse diagnostics from opts.Cache.
func Check(ctx context.Context, paths []string, opts CheckOptions) (*source.FileSet, []CheckResult, error) {
	var files []string
	var err error
	opts.Timer.Measure("discover", func() string {
		files, err = ExpandPaths(paths, opts.Dir)
		return fmt.Sprintf("%d files", len(files))
	})
	if err != nil {
		return nil, nil, err
	}

	fileSet := source.NewFileSetWithBase(opts.BaseDir)
	var (
		ids      []source.FileID
		loadErrs []error
	)
	opts.Timer.Measure("load", func() string {
		ids, loadErrs = loadAll(fileSet, files)
		return ""
	})
	for _, path := range files {
		emit(opts.Progress, Event{File: path, Stage: StageLoad, Status: StatusQueued})
	}

	results := make([]CheckResult, len(files))
	idx := opts.Timer.Begin("check")

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workerLimit(opts.Jobs, len(files)))
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			if loadErrs[i] != nil {
				results[i] = CheckResult{Path: path, FileID: ids[i], Bag: loadFailure(ids[i], loadErrs[i], opts.maxDiagnostics())}
				emit(opts.Progress, Event{File: path, Stage: StageLoad, Status: StatusError, Err: loadErrs[i]})
				return nil
			}
			results[i] = checkOne(fileSet, fileSet.Get(ids[i]), path, opts)
			results[i].Elapsed = time.Since(start)

			status := StatusDone
			switch {
			case results[i].Failed():
				status = StatusError
			case results[i].Cached:
				status = StatusCached
			}
			emit(opts.Progress, Event{File: path, Stage: StageLint, Status: status, Elapsed: results[i].Elapsed})
			return nil
		})
	}
	err = g.Wait()
	opts.Timer.End(idx, fmt.Sprintf("jobs=%d", workerLimit(opts.Jobs, len(files))))
	if err != nil {
		return nil, nil, err
	}
	return fileSet, results, nil
}

func checkOne(fileSet *source.FileSet, file *source.File, path string, opts CheckOptions) CheckResult {
	res := CheckResult{Path: path, FileID: file.ID}

	var key Digest
	if opts.Cache != nil {
		key = cacheKey(file.Content, opts.ParseOptions)
		var payload DiskPayload
		hit, err := opts.Cache.Get(key, &payload)
		switch {
		case err != nil:
			logger.Warningf("cache read %s: %v", path, err)
		case hit:
			logger.Debugf("cache hit %s (%s)", path, key)
			res.Bag = diskPayloadToBag(&payload, file.ID, opts.maxDiagnostics())
			res.Cached = true
			return res
		}
		logger.Debugf("cache miss %s", path)
	}

	emit(opts.Progress, Event{File: path, Stage: StageParse, Status: StatusWorking})
	parsed := parseFile(fileSet, file, opts.ParseOptions)
	res.Bag = parsed.Bag

	if opts.Cache != nil {
		if err := opts.Cache.Put(key, bagToDiskPayload(path, res.Bag)); err != nil {
			logger.Warningf("cache write %s: %v", path, err)
		}
	}
	return res
}

// Collect merges per-file diagnostics into one sorted bag, capped at maxDiagnostics.
func Collect(results []CheckResult, maxDiagnostics int) *diag.Bag {
	if maxDiagnostics <= 0 {
		maxDiagnostics = defaultMaxDiagnostics
	}
	bag := diag.NewBag(maxDiagnostics)
	for i := range results {
		if results[i].Bag == nil {
			continue
		}
		for _, d := range results[i].Bag.Items() {
			if !bag.Add(d) {
				bag.Sort()
				return bag
			}
		}
	}
	bag.Sort()
	return bag
}
