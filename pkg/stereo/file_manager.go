package stereo

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"  // Register BMP decoder
	_ "golang.org/x/image/tiff" // Register TIFF decoder
	_ "golang.org/x/image/webp" // Register WebP decoder

	"github.com/dixieflatline76/Pano/util/log"
)

// OutputSuffix is appended to the base name of every projected image.
const OutputSuffix = "_stereo"

// FileManager handles all file system operations for source and projected images.
type FileManager struct {
	rootDir string
}

// NewFileManager creates a FileManager writing into rootDir.
func NewFileManager(rootDir string) *FileManager {
	return &FileManager{
		rootDir: rootDir,
	}
}

// OutputDir returns the directory projected images are written to.
func (fm *FileManager) OutputDir() string {
	return fm.rootDir
}

// EnsureDirs creates the output directory.
func (fm *FileManager) EnsureDirs() error {
	if err := os.MkdirAll(fm.rootDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", fm.rootDir, err)
	}
	return nil
}

// OutputPath returns where the projection of srcPath is written, e.g.
// "frames/pano.jpg" with ext "png" becomes "<root>/pano_stereo.png".
func (fm *FileManager) OutputPath(srcPath, ext string) (string, error) {
	ext = strings.TrimPrefix(strings.ToLower(ext), ".")
	if !isOutputFormat(ext) {
		return "", fmt.Errorf("unsupported output format %q", ext)
	}
	base := filepath.Base(srcPath)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" || base == "." || base == ".." || base == string(filepath.Separator) {
		return "", fmt.Errorf("invalid source path %q", srcPath)
	}
	return filepath.Join(fm.rootDir, base+OutputSuffix+"."+ext), nil
}

// Load opens an image file, applying its EXIF orientation. Any format
// registered with the image package can be read, WebP included.
func (fm *FileManager) Load(path string) (image.Image, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return img, nil
}

// Save writes img to path in the format named by its extension.
func (fm *FileManager) Save(img image.Image, path string) error {
	if err := imaging.Save(img, path, imaging.JPEGQuality(95)); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	log.Debugf("stereo: wrote %s", path)
	return nil
}

// ListImages returns the image files directly inside dir, sorted by name.
func ListImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !isImageFile(e.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// isImageFile reports whether path has an extension Load can decode.
func isImageFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg", ".png", ".bmp", ".tif", ".tiff", ".webp", ".gif":
		return true
	}
	return false
}

// isOutputFormat reports whether Save can write ext.
func isOutputFormat(ext string) bool {
	switch ext {
	case "png", "jpg", "jpeg", "bmp", "tif", "tiff":
		return true
	}
	return false
}
