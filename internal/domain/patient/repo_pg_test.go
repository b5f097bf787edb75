package patient

import (
	"os"
	"regexp"
	"strings"
	"testing"
)

var (
	createTableRe = regexp.MustCompile(`CREATE TABLE IF NOT EXISTS (\w+)`)
	sqlTargetRe   = regexp.MustCompile(`(?:FROM|INTO|UPDATE)\s+(\w+)`)
)

// The repository and the migration describe the same relation. A rename on
// either side must fail here, not as SQLSTATE 42P01 at the first request.
func TestQueriesMatchSchema(t *testing.T) {
	raw, err := os.ReadFile("../../../migrations/001_core.sql")
	if err != nil {
		t.Fatalf("read migration: %v", err)
	}
	schema := string(raw)

	tables := map[string]bool{}
	for _, m := range createTableRe.FindAllStringSubmatch(schema, -1) {
		tables[m[1]] = true
	}

	src, err := os.ReadFile("repo_pg.go")
	if err != nil {
		t.Fatalf("read repository source: %v", err)
	}
	for _, m := range sqlTargetRe.FindAllStringSubmatch(string(src), -1) {
		if !tables[m[1]] {
			t.Errorf("repository targets table %q which the migration never creates", m[1])
		}
	}

	start := strings.Index(schema, "CREATE TABLE IF NOT EXISTS patients (")
	if start < 0 {
		t.Fatal("migration does not create the patients table")
	}
	end := strings.Index(schema[start:], ");")
	if end < 0 {
		t.Fatal("unterminated patients table definition")
	}
	ddl := schema[start : start+end]

	for _, col := range strings.Split(patientCols, ", ") {
		if !strings.Contains(ddl, col) {
			t.Errorf("column %q selected by the repository is missing from the patients table", col)
		}
	}
}
