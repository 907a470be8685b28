package infra

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
)

// IconDownloader fetches and caches item thumbnails for the display
// layer. Images are resized to a uniform size so the table renders
// consistently.
type IconDownloader struct {
	basePath string
	cdnURL   string
	client   *http.Client
}

// NewIconDownloader creates a downloader writing under the user config
// directory.
func NewIconDownloader(cdnURL string) (*IconDownloader, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve assets path: %w", err)
	}
	basePath := filepath.Join(configDir, "PlatWatch", "icons")

	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create assets directory: %w", err)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConns = 100
	transport.MaxConnsPerHost = 10
	transport.IdleConnTimeout = 30 * time.Second

	return &IconDownloader{
		basePath: basePath,
		cdnURL:   strings.TrimRight(cdnURL, "/"),
		client: &http.Client{
			Timeout:   10 * time.Second,
			Transport: transport,
		},
	}, nil
}

// EnsureIcon downloads the thumbnail for an item unless it is already
// cached, and returns the local file path.
func (d *IconDownloader) EnsureIcon(urlName, thumb string) (string, error) {
	safeName := sanitizeName(urlName)
	if safeName == "" {
		return "", fmt.Errorf("invalid item name: %s", urlName)
	}
	if thumb == "" {
		return "", fmt.Errorf("no thumbnail for item: %s", urlName)
	}

	filePath := filepath.Join(d.basePath, safeName+".png")
	if _, err := os.Stat(filePath); err == nil {
		return filePath, nil
	}

	resp, err := d.client.Get(d.cdnURL + "/" + strings.TrimLeft(thumb, "/"))
	if err != nil {
		return "", fmt.Errorf("failed to download icon: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("icon download status %d", resp.StatusCode)
	}

	img, err := imaging.Decode(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to decode icon: %w", err)
	}

	resized := imaging.Resize(img, 32, 32, imaging.Lanczos)
	if err := imaging.Save(resized, filePath); err != nil {
		return "", fmt.Errorf("failed to save icon: %w", err)
	}

	return filePath, nil
}

// sanitizeName keeps only characters safe for a file name, preventing
// path traversal from remote-supplied item names.
func sanitizeName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		}
	}
	return b.String()
}
