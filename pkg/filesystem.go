package pkg

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// imageExtensions maps image file extensions handled by the EXIF
// property-store reader.
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".heic": true,
	".heif": true,
	".tif":  true,
	".tiff": true,
	".dng":  true,
}

// containerExtensions maps ISO-media container extensions handled by the
// mvhd reader.
var containerExtensions = map[string]bool{
	".mp4": true,
	".m4v": true,
	".m4a": true,
	".mov": true,
	".3gp": true,
}

// audioExtensions maps plain audio extensions that carry no container
// header but still go through the date cascade.
var audioExtensions = map[string]bool{
	".mp3":  true,
	".wav":  true,
	".flac": true,
}

// ScanMediaDirectory recursively scans sourceDir for media files whose
// extension is recognized by one of the readers. Unreadable entries are
// warned about and skipped; the walk continues.
func ScanMediaDirectory(sourceDir string) ([]string, error) {
	var mediaFiles []string

	info, err := os.Stat(sourceDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("source directory '%s' does not exist", sourceDir)
		}
		return nil, fmt.Errorf("error accessing source directory '%s': %w", sourceDir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("source path '%s' is not a directory", sourceDir)
	}

	err = filepath.Walk(sourceDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			fmt.Printf("Warning: Error accessing path %q: %v\n", path, err)
			return nil // Returning nil continues the walk
		}
		if !info.IsDir() && IsMediaExtension(path) {
			mediaFiles = append(mediaFiles, path)
		}
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("error walking through source directory '%s': %w", sourceDir, err)
	}

	if mediaFiles == nil {
		return []string{}, nil // Return empty slice instead of nil
	}
	return mediaFiles, nil
}

// IsImageExtension checks whether filePath names an image handled by the
// EXIF reader.
func IsImageExtension(filePath string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(filePath))]
}

// IsContainerExtension checks whether filePath names an ISO-media container
// handled by the mvhd reader.
func IsContainerExtension(filePath string) bool {
	return containerExtensions[strings.ToLower(filepath.Ext(filePath))]
}

// IsMediaExtension checks whether filePath names any recognized media file.
func IsMediaExtension(filePath string) bool {
	ext := strings.ToLower(filepath.Ext(filePath))
	return imageExtensions[ext] || containerExtensions[ext] || audioExtensions[ext]
}

// FileTimes returns the file-system modification time of path. The creation
// (birth) time is returned as zero; not every platform records one, and the
// timezone cascade treats a zero value as absent.
func FileTimes(path string) (created, modified time.Time, err error) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	return time.Time{}, info.ModTime(), nil
}

// GetImageResolution decodes the image configuration to get its width and
// height. Decoders are registered by the importing command (JPEG, PNG, GIF
// and HEIF).
func GetImageResolution(filePath string) (width int, height int, err error) {
	file, err := os.Open(filePath)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to open image file %s for resolution: %w", filePath, err)
	}
	defer file.Close()

	config, _, err := image.DecodeConfig(file)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to decode image config for %s: %w", filePath, err)
	}

	return config.Width, config.Height, nil
}
