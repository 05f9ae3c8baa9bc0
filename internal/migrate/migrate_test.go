package migrate

import (
	"database/sql"
	"testing"
	"testing/fstest"

	_ "github.com/mattn/go-sqlite3"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("close db: %v", err)
		}
	})
	return db
}

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, name).Scan(&n)
	if err != nil {
		t.Fatalf("query sqlite_master: %v", err)
	}
	return n == 1
}

func TestRun_AppliesEmbeddedSchema(t *testing.T) {
	db := openTestDB(t)

	if err := Run(db); err != nil {
		t.Fatalf("Run: %v", err)
	}
	for _, table := range []string{"schema_migrations", "observations", "dataset_meta"} {
		if !tableExists(t, db, table) {
			t.Errorf("table %s missing after Run", table)
		}
	}

	versions, err := Applied(db)
	if err != nil {
		t.Fatalf("Applied: %v", err)
	}
	if len(versions) == 0 || versions[0] != "0001" {
		t.Errorf("Applied = %v, want to start with 0001", versions)
	}
}

func TestRun_Idempotent(t *testing.T) {
	db := openTestDB(t)

	if err := Run(db); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	n, err := run(db, sqlFS)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if n != 0 {
		t.Errorf("second run applied %d migrations, want 0", n)
	}
}

func TestRun_OrdersByVersionAndSkipsOtherFiles(t *testing.T) {
	db := openTestDB(t)
	fsys := fstest.MapFS{
		"sql/0002_b.sql":  {Data: []byte(`ALTER TABLE a ADD COLUMN extra TEXT;`)},
		"sql/0001_a.sql":  {Data: []byte(`CREATE TABLE a (id INTEGER);`)},
		"sql/README.md":   {Data: []byte(`not a migration`)},
		"sql/1_short.sql": {Data: []byte(`SELECT 1;`)},
	}

	n, err := run(db, fsys)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if n != 2 {
		t.Errorf("applied %d, want 2", n)
	}
}

func TestRun_FailedMigrationRollsBack(t *testing.T) {
	db := openTestDB(t)
	fsys := fstest.MapFS{
		"sql/0001_ok.sql":  {Data: []byte(`CREATE TABLE ok (id INTEGER);`)},
		"sql/0002_bad.sql": {Data: []byte(`CREATE TABLE half (id INTEGER); THIS IS NOT SQL;`)},
	}

	n, err := run(db, fsys)
	if err == nil {
		t.Fatal("run: want error for broken migration")
	}
	if n != 1 {
		t.Errorf("applied %d before failure, want 1", n)
	}

	versions, err := Applied(db)
	if err != nil {
		t.Fatalf("Applied: %v", err)
	}
	if len(versions) != 1 || versions[0] != "0001" {
		t.Errorf("Applied = %v, want [0001]", versions)
	}
	if tableExists(t, db, "half") {
		t.Error("table from failed migration survived the rollback")
	}
}

func TestParseMigrationFilename(t *testing.T) {
	tests := []struct {
		in          string
		wantVersion string
		wantName    string
		wantOK      bool
	}{
		{in: "0001_schema.sql", wantVersion: "0001", wantName: "schema", wantOK: true},
		{in: "0010_add_index.sql", wantVersion: "0010", wantName: "add_index", wantOK: true},
		{in: "001_short.sql"},
		{in: "0001_schema.txt"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			v, n, ok := parseMigrationFilename(tt.in)
			if ok != tt.wantOK || v != tt.wantVersion || n != tt.wantName {
				t.Errorf("parseMigrationFilename(%q) = (%q, %q, %v), want (%q, %q, %v)",
					tt.in, v, n, ok, tt.wantVersion, tt.wantName, tt.wantOK)
			}
		})
	}
}
