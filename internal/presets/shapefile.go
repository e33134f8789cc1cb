package presets

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonas-p/go-shp"
	"go.uber.org/zap"

	"github.com/ngmaloney/divevis/internal/models"
)

// NameField is the attribute holding a site's name.
const NameField = "NAME"

// ReadShapefile reads dive sites from a shapefile (.shp, or a .zip holding
// one). Each shape becomes a preset at the center of its bounding box, so
// point layers give the exact site and polygon layers their middle. Shapes
// without a name are skipped.
func ReadShapefile(path string, logger *zap.Logger) ([]models.Preset, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if strings.EqualFold(filepath.Ext(path), ".zip") {
		dir, err := os.MkdirTemp("", "divevis-presets")
		if err != nil {
			return nil, fmt.Errorf("creating extraction directory: %w", err)
		}
		defer os.RemoveAll(dir)

		if err := unzipFile(path, dir); err != nil {
			return nil, fmt.Errorf("extracting shapefile: %w", err)
		}
		path, err = findShapefile(dir)
		if err != nil {
			return nil, err
		}
	}

	shape, err := shp.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening shapefile: %w", err)
	}
	defer shape.Close()

	nameIdx := -1
	for i, f := range shape.Fields() {
		if strings.EqualFold(fieldName(f), NameField) {
			nameIdx = i
			break
		}
	}
	if nameIdx < 0 {
		return nil, fmt.Errorf("shapefile has no %s attribute", NameField)
	}

	var presets []models.Preset
	for shape.Next() {
		n, p := shape.Shape()
		if _, null := p.(*shp.Null); null {
			continue
		}

		name := strings.TrimSpace(strings.Trim(shape.ReadAttribute(n, nameIdx), "\x00"))
		if name == "" {
			logger.Debug("Skipping unnamed shape", zap.Int("row", n))
			continue
		}

		box := p.BBox()
		presets = append(presets, models.Preset{
			Name:      name,
			Latitude:  (box.MinY + box.MaxY) / 2,
			Longitude: (box.MinX + box.MaxX) / 2,
			Source:    models.PresetSourceShapefile,
		})
	}

	logger.Info("Read presets from shapefile", zap.String("path", path), zap.Int("count", len(presets)))
	return presets, nil
}

// Import reads a shapefile and saves every named site, replacing presets with
// the same name. It returns the number of presets saved.
func (r *Repository) Import(path string, logger *zap.Logger) (int, error) {
	sites, err := ReadShapefile(path, logger)
	if err != nil {
		return 0, err
	}

	for i := range sites {
		if err := r.Save(&sites[i]); err != nil {
			return i, err
		}
	}
	return len(sites), nil
}

func fieldName(f shp.Field) string {
	return strings.TrimRight(string(f.Name[:]), "\x00")
}

func findShapefile(dir string) (string, error) {
	var found string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if found == "" && !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".shp") {
			found = path
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("searching extracted files: %w", err)
	}
	if found == "" {
		return "", fmt.Errorf("no .shp file in archive")
	}
	return found, nil
}

// unzipFile extracts a zip file to a destination directory
func unzipFile(src, dest string) error {
	r, err := zip.OpenReader(src)
	if err != nil {
		return err
	}
	defer r.Close()

	for _, f := range r.File {
		fpath := filepath.Join(dest, f.Name)

		// Check for ZipSlip vulnerability
		if !strings.HasPrefix(fpath, filepath.Clean(dest)+string(os.PathSeparator)) {
			return fmt.Errorf("illegal file path: %s", fpath)
		}

		if f.FileInfo().IsDir() {
			os.MkdirAll(fpath, os.ModePerm)
			continue
		}

		if err = os.MkdirAll(filepath.Dir(fpath), os.ModePerm); err != nil {
			return err
		}

		outFile, err := os.OpenFile(fpath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, f.Mode())
		if err != nil {
			return err
		}

		rc, err := f.Open()
		if err != nil {
			outFile.Close()
			return err
		}

		_, err = io.Copy(outFile, rc)
		outFile.Close()
		rc.Close()

		if err != nil {
			return err
		}
	}
	return nil
}
