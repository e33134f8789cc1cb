package presets

import (
	"archive/zip"
	"database/sql"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/jonas-p/go-shp"

	"github.com/ngmaloney/divevis/internal/config"
	"github.com/ngmaloney/divevis/internal/database"
	"github.com/ngmaloney/divevis/internal/models"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

type site struct {
	name     string
	lat, lon float64
}

func writeShapefile(t *testing.T, dir string, fields []shp.Field, sites []site) string {
	t.Helper()
	path := filepath.Join(dir, "sites.shp")

	w, err := shp.Create(path, shp.POINT)
	if err != nil {
		t.Fatalf("Failed to create shapefile: %v", err)
	}
	if err := w.SetFields(fields); err != nil {
		t.Fatalf("Failed to set fields: %v", err)
	}
	for _, s := range sites {
		n := w.Write(&shp.Point{X: s.lon, Y: s.lat})
		if err := w.WriteAttribute(int(n), 0, s.name); err != nil {
			t.Fatalf("Failed to write attribute: %v", err)
		}
	}
	w.Close()
	return path
}

func TestRepository_SaveAndList(t *testing.T) {
	repo := NewRepository(openTestDB(t))

	p := &models.Preset{Name: "Portelet", Latitude: 49.169, Longitude: -2.174}
	if err := repo.Save(p); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if p.ID == 0 {
		t.Error("Save() should set ID")
	}
	if p.Source != models.PresetSourceConfig {
		t.Errorf("Source = %q, want config default", p.Source)
	}

	// Same name updates in place
	moved := &models.Preset{Name: "Portelet", Latitude: 49.17, Longitude: -2.18, Source: models.PresetSourceShapefile}
	if err := repo.Save(moved); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if moved.ID != p.ID {
		t.Errorf("upsert ID = %d, want %d", moved.ID, p.ID)
	}

	if err := repo.Save(&models.Preset{Name: "Bouley Bay", Latitude: 49.25, Longitude: -2.08}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	list, err := repo.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("len(List()) = %d, want 2", len(list))
	}
	if list[0].Name != "Bouley Bay" || list[1].Name != "Portelet" {
		t.Errorf("List() order = %s, %s; want by name", list[0].Name, list[1].Name)
	}
	if list[1].Latitude != 49.17 || list[1].Source != models.PresetSourceShapefile {
		t.Errorf("updated preset = %+v", list[1])
	}

	if err := repo.Delete("Portelet"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	list, _ = repo.List()
	if len(list) != 1 {
		t.Errorf("len(List()) after delete = %d, want 1", len(list))
	}
}

func TestRepository_Provision(t *testing.T) {
	repo := NewRepository(openTestDB(t))
	configured := []config.PresetConfig{
		{Name: "A", Lat: 1, Lon: 1},
		{Name: "B", Lat: 2, Lon: 2},
	}

	added, err := repo.Provision(configured)
	if err != nil {
		t.Fatalf("Provision() error = %v", err)
	}
	if added != 2 {
		t.Errorf("added = %d, want 2", added)
	}

	// An edited preset is not overwritten by the next run
	if err := repo.Save(&models.Preset{Name: "A", Latitude: 10, Longitude: 10}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	added, err = repo.Provision(configured)
	if err != nil {
		t.Fatalf("Provision() error = %v", err)
	}
	if added != 0 {
		t.Errorf("second Provision() added = %d, want 0", added)
	}

	list, _ := repo.List()
	if list[0].Latitude != 10 {
		t.Errorf("A latitude = %v, want edited value 10", list[0].Latitude)
	}
}

func TestReadShapefile(t *testing.T) {
	dir := t.TempDir()
	path := writeShapefile(t, dir, []shp.Field{shp.StringField("NAME", 40)}, []site{
		{"Noirmont Point", 49.165, -2.169},
		{"", 49.0, -2.0},
		{"La Rocque", 49.160, -2.030},
	})

	sites, err := ReadShapefile(path, nil)
	if err != nil {
		t.Fatalf("ReadShapefile() error = %v", err)
	}
	if len(sites) != 2 {
		t.Fatalf("len(sites) = %d, want 2 (unnamed skipped)", len(sites))
	}
	if sites[0].Name != "Noirmont Point" || sites[0].Latitude != 49.165 || sites[0].Longitude != -2.169 {
		t.Errorf("sites[0] = %+v", sites[0])
	}
	if sites[1].Source != models.PresetSourceShapefile {
		t.Errorf("Source = %q, want shapefile", sites[1].Source)
	}
}

func TestReadShapefile_NoNameField(t *testing.T) {
	path := writeShapefile(t, t.TempDir(), []shp.Field{shp.StringField("SITE", 40)}, []site{{"x", 1, 1}})

	if _, err := ReadShapefile(path, nil); err == nil {
		t.Error("expected error when NAME attribute is missing")
	}
}

func TestRepository_ImportZip(t *testing.T) {
	dir := t.TempDir()
	writeShapefile(t, dir, []shp.Field{shp.StringField("name", 40)}, []site{
		{"Gorey Pier", 49.198, -2.018},
	})

	zipPath := filepath.Join(t.TempDir(), "sites.zip")
	zf, err := os.Create(zipPath)
	if err != nil {
		t.Fatalf("Failed to create zip: %v", err)
	}
	zw := zip.NewWriter(zf)
	for _, ext := range []string{".shp", ".shx", ".dbf"} {
		src, err := os.Open(filepath.Join(dir, "sites"+ext))
		if err != nil {
			t.Fatalf("Failed to open %s: %v", ext, err)
		}
		dst, _ := zw.Create("layer/sites" + ext)
		io.Copy(dst, src)
		src.Close()
	}
	zw.Close()
	zf.Close()

	repo := NewRepository(openTestDB(t))
	n, err := repo.Import(zipPath, nil)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if n != 1 {
		t.Errorf("Import() = %d, want 1", n)
	}

	list, _ := repo.List()
	if len(list) != 1 || list[0].Name != "Gorey Pier" {
		t.Errorf("List() = %+v", list)
	}
}

func TestUnzipFile_RejectsTraversal(t *testing.T) {
	zipPath := filepath.Join(t.TempDir(), "evil.zip")
	zf, _ := os.Create(zipPath)
	zw := zip.NewWriter(zf)
	w, _ := zw.Create("../escape.shp")
	w.Write([]byte("x"))
	zw.Close()
	zf.Close()

	if err := unzipFile(zipPath, t.TempDir()); err == nil {
		t.Error("expected illegal file path error")
	}
}
