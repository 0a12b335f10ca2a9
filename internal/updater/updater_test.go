package updater

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/harrison/repricer/internal/document"
	"github.com/harrison/repricer/internal/filelock"
	"github.com/harrison/repricer/internal/pricing"
)

func TestUpdateFileJSON(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "dog-tag-prices.json")

	writeFile(t, path, `{
  "product": "dog-tag",
  "pricable": ["small", "large"],
  "rows": [
    {"size": "S", "small": 10.00, "large": 20.00, "other": 5}
  ]
}`)

	result, err := UpdateFile(path, mustMultiplier(t, "10"))
	if err != nil {
		t.Fatalf("UpdateFile failed: %v", err)
	}

	content := readFile(t, path)
	if !strings.Contains(content, `"small": 11`) {
		t.Errorf("expected small to become 11, got:\n%s", content)
	}
	if !strings.Contains(content, `"large": 22`) {
		t.Errorf("expected large to become 22, got:\n%s", content)
	}
	if !strings.Contains(content, `"other": 5`) {
		t.Errorf("expected other to stay 5, got:\n%s", content)
	}
	if !strings.Contains(content, `"product": "dog-tag"`) {
		t.Errorf("expected unrelated fields to survive, got:\n%s", content)
	}

	if got, want := result.Tiers, []string{"small", "large"}; !equalStrings(got, want) {
		t.Errorf("Tiers = %v, want %v", got, want)
	}
	if got, want := result.RowLabels, []string{"S"}; !equalStrings(got, want) {
		t.Errorf("RowLabels = %v, want %v", got, want)
	}
	if len(result.Changes) != 2 {
		t.Fatalf("Changes = %d, want 2", len(result.Changes))
	}
	first := result.Changes[0]
	if first.Tier != "small" || first.Row != 0 {
		t.Errorf("first change = %+v, want row 0 tier small", first)
	}
	if !first.From.Equal(decimal.RequireFromString("10.00")) {
		t.Errorf("first change From = %s, want 10.00", first.From)
	}
	if !first.To.Equal(decimal.RequireFromString("11")) {
		t.Errorf("first change To = %s, want 11", first.To)
	}
}

func TestUpdateFileYAML(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "leash-prices.yaml")

	writeFile(t, path, `# quarterly price sheet
product: leash
pricable:
  - small
rows:
  - size: 1.5m
    small: 10
    notes: clearance
`)

	if _, err := UpdateFile(path, mustMultiplier(t, "6%")); err != nil {
		t.Fatalf("UpdateFile failed: %v", err)
	}

	content := readFile(t, path)
	if !strings.Contains(content, "small: 10.6") {
		t.Errorf("expected small to become 10.6, got:\n%s", content)
	}
	if !strings.Contains(content, "# quarterly price sheet") {
		t.Errorf("expected comment to survive, got:\n%s", content)
	}
	if !strings.Contains(content, "notes: clearance") {
		t.Errorf("expected unrelated fields to survive, got:\n%s", content)
	}
}

func TestUpdateFileCeilsExactCentBoundaries(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "prices.json")

	writeFile(t, path, `{"pricable": ["small"], "rows": [{"size": "S", "small": 9.995}]}`)

	result, err := UpdateFile(path, mustMultiplier(t, "0"))
	if err != nil {
		t.Fatalf("UpdateFile failed: %v", err)
	}

	if !strings.Contains(readFile(t, path), `"small": 10`) {
		t.Errorf("expected 9.995 to ceil to 10, got:\n%s", readFile(t, path))
	}
	if !result.Changes[0].To.Equal(decimal.RequireFromString("10")) {
		t.Errorf("To = %s, want 10", result.Changes[0].To)
	}
}

func TestUpdateFileSkipsNonNumericAndMissingFields(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "prices.json")

	writeFile(t, path, `{
  "pricable": ["small", "medium", "large"],
  "rows": [
    {"size": "S", "small": "call us", "large": 20.00}
  ]
}`)

	result, err := UpdateFile(path, mustMultiplier(t, "10"))
	if err != nil {
		t.Fatalf("UpdateFile failed: %v", err)
	}

	if len(result.Changes) != 1 {
		t.Fatalf("Changes = %d, want only the numeric large field", len(result.Changes))
	}
	if result.Changes[0].Tier != "large" {
		t.Errorf("changed tier = %s, want large", result.Changes[0].Tier)
	}

	content := readFile(t, path)
	if !strings.Contains(content, `"small": "call us"`) {
		t.Errorf("expected non-numeric field untouched, got:\n%s", content)
	}
	if !strings.Contains(content, `"large": 22`) {
		t.Errorf("expected large to become 22, got:\n%s", content)
	}
}

func TestApplyEmptyPricableIsNoOp(t *testing.T) {
	doc, err := document.Parse("prices.json", document.FormatJSON,
		[]byte(`{"pricable": [], "rows": [{"size": "S", "small": 10.50}]}`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	result, err := Apply(doc, mustMultiplier(t, "10"))
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	if len(result.Changes) != 0 {
		t.Errorf("Changes = %d, want 0", len(result.Changes))
	}
	if got, want := result.RowLabels, []string{"S"}; !equalStrings(got, want) {
		t.Errorf("RowLabels = %v, want %v", got, want)
	}

	data, err := doc.Bytes()
	if err != nil {
		t.Fatalf("Bytes failed: %v", err)
	}
	if !strings.Contains(string(data), `"small": 10.50`) {
		t.Errorf("expected original literal preserved, got:\n%s", data)
	}
}

func TestApplyObserverSeesChangesInRowMajorOrder(t *testing.T) {
	doc, err := document.Parse("prices.json", document.FormatJSON,
		[]byte(`{
  "pricable": ["small", "large"],
  "rows": [
    {"size": "S", "small": 1, "large": 2},
    {"size": "M", "large": 4}
  ]
}`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	var seen []Change
	_, err = Apply(doc, mustMultiplier(t, "10"), WithObserver(func(c Change) {
		seen = append(seen, c)
	}))
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	want := []struct {
		row  int
		tier string
	}{
		{0, "small"},
		{0, "large"},
		{1, "large"},
	}
	if len(seen) != len(want) {
		t.Fatalf("observer saw %d changes, want %d", len(seen), len(want))
	}
	for i, w := range want {
		if seen[i].Row != w.row || seen[i].Tier != w.tier {
			t.Errorf("change %d = row %d tier %s, want row %d tier %s",
				i, seen[i].Row, seen[i].Tier, w.row, w.tier)
		}
	}
}

func TestApplyLabelFieldOverride(t *testing.T) {
	doc, err := document.Parse("prices.json", document.FormatJSON,
		[]byte(`{"pricable": [], "rows": [{"sku": "A1"}, {"size": "S"}]}`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	result, err := Apply(doc, mustMultiplier(t, "0"), WithLabelField("sku"))
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	if got, want := result.RowLabels, []string{"A1", "Unknown sku"}; !equalStrings(got, want) {
		t.Errorf("RowLabels = %v, want %v", got, want)
	}
}

func TestUpdateFileMalformedJSON(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "prices.json")
	writeFile(t, path, `{not json`)

	result, err := UpdateFile(path, mustMultiplier(t, "6"))
	if !errors.Is(err, document.ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
	if result == nil || result.Err == nil {
		t.Fatal("expected a result carrying the error")
	}

	// The broken file must be left exactly as it was
	if readFile(t, path) != `{not json` {
		t.Error("malformed file was modified")
	}
}

func TestUpdateFileMissingFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "gone.json")

	_, err := UpdateFile(path, mustMultiplier(t, "6"))
	if err == nil {
		t.Fatal("expected an error for a missing file")
	}

	// No lock file may be left behind
	if _, statErr := os.Stat(path + ".lock"); !os.IsNotExist(statErr) {
		t.Errorf("lock file %s was not deleted", path+".lock")
	}
}

func TestUpdateFileDeletesLockFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "prices.json")
	lockPath := path + ".lock"

	writeFile(t, path, `{"pricable": ["small"], "rows": [{"size": "S", "small": 10}]}`)

	if _, err := UpdateFile(path, mustMultiplier(t, "6")); err != nil {
		t.Fatalf("UpdateFile failed: %v", err)
	}

	if _, err := os.Stat(lockPath); !os.IsNotExist(err) {
		t.Errorf("lock file %s was not deleted", lockPath)
	}
}

func TestUpdateFileLockTimeout(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "prices.json")
	writeFile(t, path, `{"pricable": [], "rows": []}`)

	lock := filelock.NewFileLock(path + ".lock")
	if err := lock.Lock(); err != nil {
		t.Fatalf("failed to pre-lock: %v", err)
	}
	defer lock.Unlock()

	_, err := UpdateFile(path, mustMultiplier(t, "6"), WithLockTimeout(100*time.Millisecond))
	if !errors.Is(err, filelock.ErrLockTimeout) {
		t.Fatalf("expected lock timeout error, got %v", err)
	}
}

func mustMultiplier(t *testing.T, expr string) pricing.Multiplier {
	t.Helper()
	m, err := pricing.ParsePercent(expr)
	if err != nil {
		t.Fatalf("failed to parse percentage %q: %v", expr, err)
	}
	return m
}

func equalStrings(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write file %s: %v", path, err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read file %s: %v", path, err)
	}
	return string(data)
}
