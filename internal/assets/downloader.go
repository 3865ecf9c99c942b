// Package assets provisions the static files generated pages reference
// under templates/.
package assets

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"
)

// DefaultBaseURL hosts the Bootstrap and jQuery builds the pages were designed against.
const DefaultBaseURL = "https://raw.githubusercontent.com/jamescalam/autodocs/master/documentation/templates"

// TemplatesDir is the asset directory inside the output directory.
const TemplatesDir = "templates"

// Downloader fetches one asset into a writer.
type Downloader interface {
	Download(ctx context.Context, url string, w io.Writer) (int64, error)
}

// HTTPDownloader implements Downloader using real HTTP requests.
type HTTPDownloader struct {
	client *http.Client
}

// NewHTTPDownloader creates a downloader with the given request timeout.
func NewHTTPDownloader(timeout time.Duration) *HTTPDownloader {
	return &HTTPDownloader{client: &http.Client{Timeout: timeout}}
}

// Download streams url into w.
func (d *HTTPDownloader) Download(ctx context.Context, url string, w io.Writer) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("download request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("download failed with status %d: %s", resp.StatusCode, resp.Status)
	}

	written, err := io.Copy(w, resp.Body)
	if err != nil {
		return written, fmt.Errorf("download failed: %w", err)
	}
	if resp.ContentLength > 0 && written != resp.ContentLength {
		return written, fmt.Errorf("incomplete download: got %d bytes, expected %d", written, resp.ContentLength)
	}
	return written, nil
}

// Provisioner makes sure every named asset exists under <dir>/templates.
type Provisioner struct {
	fs         afero.Fs
	downloader Downloader
	baseURL    string
}

// NewProvisioner creates a provisioner. A nil downloader uses HTTPDownloader
// with a 30 second timeout.
func NewProvisioner(fs afero.Fs, downloader Downloader, baseURL string) *Provisioner {
	if downloader == nil {
		downloader = NewHTTPDownloader(30 * time.Second)
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Provisioner{fs: fs, downloader: downloader, baseURL: strings.TrimRight(baseURL, "/")}
}

// Ensure downloads the missing assets and returns the names it fetched.
// Existing assets are never re-downloaded.
func (p *Provisioner) Ensure(ctx context.Context, dir string, names []string) ([]string, error) {
	targetDir := filepath.Join(dir, TemplatesDir)
	if err := p.fs.MkdirAll(targetDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create templates directory: %w", err)
	}

	missing, err := p.Missing(dir, names)
	if err != nil {
		return nil, fmt.Errorf("failed to check assets: %w", err)
	}

	var fetched []string
	for _, name := range missing {
		if err := p.fetch(ctx, p.baseURL+"/"+name, filepath.Join(targetDir, name)); err != nil {
			return fetched, fmt.Errorf("failed to fetch %s: %w", name, err)
		}
		fetched = append(fetched, name)
	}
	return fetched, nil
}

// Missing returns the assets not yet present under <dir>/templates.
func (p *Provisioner) Missing(dir string, names []string) ([]string, error) {
	var missing []string
	for _, name := range names {
		exists, err := afero.Exists(p.fs, filepath.Join(dir, TemplatesDir, name))
		if err != nil {
			return nil, err
		}
		if !exists {
			missing = append(missing, name)
		}
	}
	return missing, nil
}

func (p *Provisioner) fetch(ctx context.Context, url, target string) error {
	tmpFile, err := afero.TempFile(p.fs, filepath.Dir(target), filepath.Base(target)+".*.part")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, err = p.downloader.Download(ctx, url, tmpFile)
	tmpFile.Close()
	if err != nil {
		p.fs.Remove(tmpPath)
		return err
	}

	if err := p.fs.Rename(tmpPath, target); err != nil {
		p.fs.Remove(tmpPath)
		return fmt.Errorf("failed to move asset into place: %w", err)
	}
	return nil
}
