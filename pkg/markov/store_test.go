package markov

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"slices"
	"strings"
	"testing"
)

// assertTablesEqual compares the observable content of two tables.
func assertTablesEqual(t *testing.T, want, got *Table) {
	t.Helper()
	if want.Order() != got.Order() {
		t.Fatalf("order mismatch: want %d, got %d", want.Order(), got.Order())
	}
	if !slices.Equal(want.Starts(), got.Starts()) {
		t.Errorf("starts mismatch: want %+v, got %+v", want.Starts(), got.Starts())
	}
	if len(want.chains) != len(got.chains) {
		t.Fatalf("context count mismatch: want %d, got %d", len(want.chains), len(got.chains))
	}
	for key := range want.chains {
		wc, wt := want.NextTokens(key)
		gc, gt := got.NextTokens(key)
		if wt != gt || !slices.Equal(wc, gc) {
			t.Errorf("chain mismatch for %q: want %+v, got %+v", key, wc, gc)
		}
	}
	for word := range want.words {
		if !got.HasWord(word) {
			t.Errorf("word %q missing after round trip", word)
		}
	}
}

func TestSaveAndLoadModel(t *testing.T) {
	_, s := setupTestStore(t)
	ctx := context.Background()
	table := buildTestTable(t, 2, testWords...)

	if err := s.SaveModel(ctx, "names", table); err != nil {
		t.Fatalf("SaveModel() failed: %v", err)
	}

	loaded, err := s.LoadModel(ctx, "names")
	if err != nil {
		t.Fatalf("LoadModel() failed: %v", err)
	}
	assertTablesEqual(t, table, loaded)

	info, err := s.ModelInfo(ctx, "names")
	if err != nil {
		t.Fatalf("ModelInfo() failed: %v", err)
	}
	if info.Name != "names" || info.Order != 2 {
		t.Errorf("got unexpected model info: %+v", info)
	}

	// Test failure case (nonexistent)
	if _, err = s.LoadModel(ctx, "nonexistent_model"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("expected sql.ErrNoRows for nonexistent model, got %v", err)
	}
}

func TestSaveModelReplaces(t *testing.T) {
	_, s := setupTestStore(t)
	ctx := context.Background()

	if err := s.SaveModel(ctx, "names", buildTestTable(t, 2, testWords...)); err != nil {
		t.Fatalf("SaveModel() failed: %v", err)
	}
	replacement := buildTestTable(t, 1, "cat")
	if err := s.SaveModel(ctx, "names", replacement); err != nil {
		t.Fatalf("second SaveModel() failed: %v", err)
	}

	loaded, err := s.LoadModel(ctx, "names")
	if err != nil {
		t.Fatalf("LoadModel() failed: %v", err)
	}
	assertTablesEqual(t, replacement, loaded)
	if loaded.HasWord("stack") {
		t.Error("words of the replaced model leaked into the new one")
	}
}

func TestModelInfos(t *testing.T) {
	_, s := setupTestStore(t)
	ctx := context.Background()

	_ = s.SaveModel(ctx, "test_model", buildTestTable(t, 2, testWords...))
	_ = s.SaveModel(ctx, "another_model", buildTestTable(t, 1, "cat"))

	models, err := s.ModelInfos(ctx)
	if err != nil {
		t.Fatalf("ModelInfos failed: %v", err)
	}
	if len(models) != 2 {
		t.Errorf("expected 2 models, got %d", len(models))
	}
	if m, ok := models["test_model"]; !ok || m.Order != 2 {
		t.Errorf("expected to find 'test_model' with order 2, got %+v", m)
	}
	if m, ok := models["another_model"]; !ok || m.Order != 1 {
		t.Errorf("expected to find 'another_model' with order 1, got %+v", m)
	}
}

func TestRemoveModel(t *testing.T) {
	db, s := setupTestStore(t)
	ctx := context.Background()

	if err := s.SaveModel(ctx, "names", buildTestTable(t, 2, testWords...)); err != nil {
		t.Fatalf("SaveModel() failed: %v", err)
	}
	if err := s.RemoveModel(ctx, "names"); err != nil {
		t.Fatalf("RemoveModel() failed: %v", err)
	}

	if _, err := s.ModelInfo(ctx, "names"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("expected sql.ErrNoRows after removal, got %v", err)
	}
	for _, table := range []string{"markov_chains", "markov_starts", "markov_words"} {
		var count int
		if err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&count); err != nil {
			t.Fatalf("failed to count %s: %v", table, err)
		}
		if count != 0 {
			t.Errorf("expected %s to be empty, found %d rows", table, count)
		}
	}

	// Removing again is a no-op.
	if err := s.RemoveModel(ctx, "names"); err != nil {
		t.Errorf("RemoveModel() on a missing model failed: %v", err)
	}
}

func TestExportAndImportModel(t *testing.T) {
	_, s := setupTestStore(t)
	ctx := context.Background()
	table := buildTestTable(t, 2, testWords...)

	if err := s.SaveModel(ctx, "names", table); err != nil {
		t.Fatalf("SaveModel() failed: %v", err)
	}

	var buf bytes.Buffer
	if err := s.ExportModel(ctx, "names", &buf); err != nil {
		t.Fatalf("ExportModel() failed: %v", err)
	}
	if !strings.Contains(buf.String(), EOWText) {
		t.Error("exported JSON does not contain the EOW token")
	}

	if err := s.RemoveModel(ctx, "names"); err != nil {
		t.Fatalf("RemoveModel() failed: %v", err)
	}

	name, err := s.ImportModel(ctx, &buf)
	if err != nil {
		t.Fatalf("ImportModel() failed: %v", err)
	}
	if name != "names" {
		t.Errorf("ImportModel() name got = %q, want %q", name, "names")
	}

	loaded, err := s.LoadModel(ctx, "names")
	if err != nil {
		t.Fatalf("LoadModel() failed: %v", err)
	}
	assertTablesEqual(t, table, loaded)
}

func TestImportModelErrors(t *testing.T) {
	_, s := setupTestStore(t)
	ctx := context.Background()

	testCases := []struct {
		name  string
		input string
	}{
		{"Malformed JSON", `{"name": "x",`},
		{"Missing name", `{"order": 1, "starts": {"c": 1}, "chains": {"c": {"<EOW>": 1}}}`},
		{"Zero order", `{"name": "x", "order": 0, "starts": {"c": 1}}`},
		{"No starts", `{"name": "x", "order": 1, "starts": {}}`},
		{"Invalid token", `{"name": "x", "order": 1, "starts": {"c": 1}, "chains": {"c": {"ab": 1}}}`},
		{"Short start", `{"name": "x", "order": 3, "starts": {"ab": 1}, "chains": {}}`},
		{"Long chain key", `{"name": "x", "order": 1, "starts": {"c": 1}, "chains": {"ca": {"<EOW>": 1}}}`},
		{"Zero start frequency", `{"name": "x", "order": 1, "starts": {"c": 0}, "chains": {"c": {"<EOW>": 1}}}`},
		{"Negative transition", `{"name": "x", "order": 1, "starts": {"c": 1}, "chains": {"c": {"<EOW>": -2}}}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := s.ImportModel(ctx, strings.NewReader(tc.input)); err == nil {
				t.Error("expected an error, got nil")
			}
		})
	}

	models, err := s.ModelInfos(ctx)
	if err != nil {
		t.Fatalf("ModelInfos failed: %v", err)
	}
	if len(models) != 0 {
		t.Errorf("failed imports left %d models behind", len(models))
	}
}

func TestReadJSONContextLength(t *testing.T) {
	testCases := []struct {
		name  string
		input string
	}{
		{"Short start", `{"name": "x", "order": 3, "starts": {"ab": 1}, "chains": {}}`},
		{"Long start", `{"name": "x", "order": 2, "starts": {"abc": 1}, "chains": {}}`},
		{"Short chain key", `{"name": "x", "order": 2, "starts": {"ab": 1}, "chains": {"b": {"<EOW>": 1}}}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, table, err := ReadJSON(strings.NewReader(tc.input))
			if !errors.Is(err, ErrDegenerateOrder) {
				t.Errorf("ReadJSON() error = %v, want ErrDegenerateOrder", err)
			}
			if table != nil {
				t.Error("ReadJSON() returned a table for an inconsistent model")
			}
		})
	}

	// Multi-byte runes count once.
	_, table, err := ReadJSON(strings.NewReader(`{"name": "x", "order": 2, "starts": {"zé": 1}, "chains": {"zé": {"<EOW>": 1}}}`))
	if err != nil {
		t.Fatalf("ReadJSON() failed: %v", err)
	}
	if table.Order() != 2 {
		t.Errorf("Order() = %d, want 2", table.Order())
	}
}

func TestSetupSchemaIdempotent(t *testing.T) {
	db, _ := setupTestStore(t)
	if err := SetupSchema(db); err != nil {
		t.Errorf("second SetupSchema() failed: %v", err)
	}
}
