// Package builder runs the full documentation pipeline: discover Python
// sources, extract their models in parallel, render pages and persist them.
package builder

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jamescalam/autodocs/internal/assets"
	"github.com/jamescalam/autodocs/internal/extract"
	"github.com/jamescalam/autodocs/internal/model"
	"github.com/jamescalam/autodocs/internal/output"
	"github.com/jamescalam/autodocs/internal/render"
	"github.com/jamescalam/autodocs/internal/site"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
)

// Output formats.
const (
	FormatHTML     = "html"
	FormatMarkdown = "markdown"
)

// ErrDuplicateModule is returned when two files declare the same module page id.
var ErrDuplicateModule = errors.New("duplicate module")

// FileError ties a failure to the source file it came from.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// Options configures a build.
type Options struct {
	RootDir        string
	Include        []string
	Ignore         []string
	OutputDir      string
	OnConflict     output.ConflictPolicy
	Formats        []string
	Workers        int
	Readme         bool
	ReadmeTitle    string
	Navbar         bool
	DownloadAssets bool
	AssetsBaseURL  string
	AssetsTimeout  time.Duration
}

// Source is one successfully extracted file.
type Source struct {
	Path     string
	Checksum string
	Module   *model.Module
}

// Result summarises one build.
type Result struct {
	BuildID  string
	Sources  []Source
	Written  []string
	Failures []*FileError
	Fetched  []string
	Site     *site.Report
	Stats    BuildStats
}

// Builder turns a source tree into a documentation directory.
type Builder struct {
	fs          afero.Fs
	opts        Options
	renderer    *render.Renderer
	markdown    *render.MarkdownConverter
	cache       *ModuleCache
	provisioner *assets.Provisioner
	progress    ProgressReporter
}

// Option customizes a Builder.
type Option func(*Builder)

// WithProgress sets the progress reporter.
func WithProgress(p ProgressReporter) Option {
	return func(b *Builder) { b.progress = p }
}

// WithCache shares an extraction cache across builds.
func WithCache(c *ModuleCache) Option {
	return func(b *Builder) { b.cache = c }
}

// WithDownloader replaces the HTTP asset downloader.
func WithDownloader(d assets.Downloader) Option {
	return func(b *Builder) {
		b.provisioner = assets.NewProvisioner(b.fs, d, b.opts.AssetsBaseURL)
	}
}

// New creates a builder over fs.
func New(fs afero.Fs, opts Options, options ...Option) (*Builder, error) {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if len(opts.Formats) == 0 {
		opts.Formats = []string{FormatHTML}
	}
	if opts.ReadmeTitle == "" {
		opts.ReadmeTitle = "Documentation"
	}
	if opts.AssetsTimeout <= 0 {
		opts.AssetsTimeout = 30 * time.Second
	}
	if _, err := output.ParsePolicy(string(opts.OnConflict)); err != nil {
		return nil, err
	}

	renderer, err := render.New()
	if err != nil {
		return nil, err
	}

	b := &Builder{
		fs:          fs,
		opts:        opts,
		renderer:    renderer,
		markdown:    render.NewMarkdownConverter(),
		provisioner: assets.NewProvisioner(fs, assets.NewHTTPDownloader(opts.AssetsTimeout), opts.AssetsBaseURL),
		progress:    &NoOpProgressReporter{},
	}
	for _, o := range options {
		o(b)
	}
	if b.cache == nil {
		if b.cache, err = NewModuleCache(defaultCacheCapacity); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// Discovery returns the file discovery used by Build, for callers such as
// the watcher that need the same include and ignore rules.
func (b *Builder) Discovery() (*FileDiscovery, error) {
	return NewFileDiscovery(b.fs, b.opts.RootDir, b.opts.Include, b.opts.Ignore)
}

// Build runs the pipeline once. A file that fails to extract or render does
// not stop the others: successful modules are written, and every failure is
// returned joined in the error.
func (b *Builder) Build(ctx context.Context) (*Result, error) {
	start := time.Now()
	result := &Result{BuildID: uuid.New().String()}

	discovery, err := b.Discovery()
	if err != nil {
		return nil, fmt.Errorf("invalid file patterns: %w", err)
	}
	files, err := discovery.Discover()
	if err != nil {
		return nil, fmt.Errorf("failed to discover files: %w", err)
	}
	result.Stats.FilesDiscovered = len(files)
	b.progress.OnDiscoveryComplete(len(files))

	sources, failures, err := b.extractAll(ctx, files)
	if err != nil {
		return nil, err
	}
	result.Failures = failures

	writer, err := output.NewWriter(b.fs, b.opts.OutputDir, b.opts.OnConflict)
	if err != nil {
		return nil, err
	}
	defer writer.Close()
	regenerated, err := output.NewWriter(b.fs, b.opts.OutputDir, output.PolicyOverwrite)
	if err != nil {
		return nil, err
	}
	defer regenerated.Close()

	graph := site.New()
	manifest := &Manifest{BuildID: result.BuildID, GeneratedAt: start.UTC()}
	seen := map[string]string{}
	if b.opts.Readme {
		seen[render.ReadmeID] = "the readme page"
	}

	// Pages reference templates/, so assets go in first.
	if b.opts.DownloadAssets {
		fetched, err := b.provisioner.Ensure(ctx, b.opts.OutputDir, render.Assets)
		if err != nil {
			log.Printf("Warning: failed to provision assets: %v", err)
		}
		result.Fetched = fetched
	}

	b.progress.OnWritingPages(len(sources))
	for _, src := range sources {
		id := render.ModuleID(src.Module.Name)
		if prev, dup := seen[id]; dup {
			result.Failures = append(result.Failures, &FileError{
				Path: src.Path,
				Err:  fmt.Errorf("%w: %q already generated from %s", ErrDuplicateModule, src.Module.Name, prev),
			})
			continue
		}
		seen[id] = src.Path

		pages, err := b.renderer.Render(src.Module)
		if err != nil {
			result.Failures = append(result.Failures, &FileError{Path: src.Path, Err: err})
			continue
		}

		entry := ManifestModule{Source: src.Path, Name: src.Module.Name, Checksum: src.Checksum}
		for _, p := range pages {
			written, err := b.writePage(writer, p)
			if err != nil {
				return nil, err
			}
			names := b.relativeNames(written)
			if err := graph.AddPage(storedAs(p, names)); err != nil {
				return nil, err
			}
			result.Written = append(result.Written, written...)
			entry.Pages = append(entry.Pages, names...)
		}
		manifest.Modules = append(manifest.Modules, entry)
		result.Sources = append(result.Sources, src)
	}

	root, err := b.writeIndex(writer, regenerated, graph, result)
	if err != nil {
		return nil, err
	}
	if result.Site, err = graph.Validate(root); err != nil {
		return nil, err
	}
	for _, l := range result.Site.Broken {
		log.Printf("Warning: %s links to missing page %s.html", l.From, l.To)
	}

	result.Stats.ModulesExtracted = len(result.Sources)
	result.Stats.FilesFailed = len(result.Failures)
	result.Stats.CacheHits = b.cache.Hits()
	result.Stats.ProcessingTimeSeconds = time.Since(start).Seconds()
	result.Stats.PagesWritten = len(result.Written)

	manifest.Stats = result.Stats
	if len(result.Failures) > 0 {
		manifest.Failures = make(map[string]string, len(result.Failures))
		for _, f := range result.Failures {
			manifest.Failures[f.Path] = f.Err.Error()
		}
	}
	data, err := manifest.marshal()
	if err != nil {
		return nil, err
	}
	if _, err := regenerated.Write(ManifestFile, data); err != nil {
		return nil, fmt.Errorf("failed to write manifest: %w", err)
	}

	b.progress.OnComplete(result)

	errs := make([]error, 0, len(result.Failures))
	for _, f := range result.Failures {
		errs = append(errs, f)
	}
	return result, errors.Join(errs...)
}

// extractAll parses every file with a bounded worker pool. Results keep the
// order of files.
func (b *Builder) extractAll(ctx context.Context, files []string) ([]Source, []*FileError, error) {
	type outcome struct {
		src Source
		err *FileError
	}
	outcomes := make([]outcome, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.opts.Workers)
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			src, err := b.extractFile(path)
			if err != nil {
				outcomes[i].err = &FileError{Path: path, Err: err}
			} else {
				outcomes[i].src = src
			}
			b.progress.OnFileExtracted(path, err)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	var sources []Source
	var failures []*FileError
	for _, o := range outcomes {
		if o.err != nil {
			failures = append(failures, o.err)
			continue
		}
		sources = append(sources, o.src)
	}
	return sources, failures, nil
}

func (b *Builder) extractFile(path string) (Source, error) {
	data, err := afero.ReadFile(b.fs, path)
	if err != nil {
		return Source{}, fmt.Errorf("failed to read file: %w", err)
	}

	src := Source{Path: path, Checksum: checksum(data)}
	if mod, ok := b.cache.Get(data); ok {
		src.Module = mod
		return src, nil
	}

	mod, err := extract.Extract(string(data))
	if err != nil {
		return Source{}, err
	}
	b.cache.Set(data, mod)
	src.Module = mod
	return src, nil
}

func (b *Builder) writePage(w *output.Writer, p render.Page) ([]string, error) {
	var written []string
	if slices.Contains(b.opts.Formats, FormatHTML) {
		path, err := w.Write(p.Filename(), p.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", p.Filename(), err)
		}
		written = append(written, path)
		b.progress.OnPageWritten(path)
	}
	if slices.Contains(b.opts.Formats, FormatMarkdown) {
		data, err := b.markdown.Convert(p)
		if err != nil {
			return nil, err
		}
		path, err := w.Write(b.markdown.Filename(p), data)
		if err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", b.markdown.Filename(p), err)
		}
		written = append(written, path)
		b.progress.OnPageWritten(path)
	}
	return written, nil
}

// relativeNames turns written paths into slash-separated names relative to
// the output directory.
func (b *Builder) relativeNames(paths []string) []string {
	names := make([]string, 0, len(paths))
	for _, path := range paths {
		rel, err := filepath.Rel(b.opts.OutputDir, path)
		if err != nil {
			rel = filepath.Base(path)
		}
		names = append(names, filepath.ToSlash(rel))
	}
	return names
}

// storedAs returns p with the id of the HTML file it was written to, which
// differs from p.ID when the rename policy picked a free name.
func storedAs(p render.Page, names []string) render.Page {
	for _, name := range names {
		if id, ok := strings.CutSuffix(name, ".html"); ok {
			p.ID = id
		}
	}
	return p
}

// writeIndex writes the readme page and the navbar script linking every
// module written in this build. It returns the readme's page id, or "" when
// no readme is generated.
func (b *Builder) writeIndex(pages, regenerated *output.Writer, graph *site.Graph, result *Result) (string, error) {
	mods := make([]*model.Module, 0, len(result.Sources))
	for _, src := range result.Sources {
		mods = append(mods, src.Module)
	}

	root := ""
	if b.opts.Readme {
		readme, err := b.renderer.Readme(b.opts.ReadmeTitle, mods)
		if err != nil {
			return "", err
		}
		written, err := b.writePage(pages, readme)
		if err != nil {
			return "", err
		}
		readme = storedAs(readme, b.relativeNames(written))
		root = readme.ID
		if err := graph.AddPage(readme); err != nil {
			return "", err
		}
		result.Written = append(result.Written, written...)
	}

	if b.opts.Navbar {
		js, err := b.renderer.Navbar(mods)
		if err != nil {
			return "", err
		}
		path, err := regenerated.Write(filepath.Join(assets.TemplatesDir, render.NavbarFile), js)
		if err != nil {
			return "", fmt.Errorf("failed to write navbar: %w", err)
		}
		result.Written = append(result.Written, path)
		b.progress.OnPageWritten(path)
	}
	return root, nil
}
