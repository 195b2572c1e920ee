package markov

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"unicode/utf8"
)

// ModelInfo holds the essential metadata for a stored model, including its
// unique ID, name, and the order of the chain.
type ModelInfo struct {
	Id    int
	Name  string
	Order int
}

// ExportedModel is the serializable representation of a Table, used for
// JSON-based import and export.
type ExportedModel struct {
	Name   string                    `json:"name"`
	Order  int                       `json:"order"`
	Starts map[string]int            `json:"starts"` // context -> frequency
	Chains map[string]map[string]int `json:"chains"` // context -> next token text -> frequency
	Words  []string                  `json:"words"`
}

// Export converts the table into its serializable form.
func (t *Table) Export(name string) ExportedModel {
	exported := ExportedModel{
		Name:   name,
		Order:  t.order,
		Starts: make(map[string]int, len(t.starts)),
		Chains: make(map[string]map[string]int, len(t.chains)),
		Words:  make([]string, 0, len(t.words)),
	}
	for _, start := range t.starts {
		exported.Starts[start.Context] = start.Freq
	}
	for key, c := range t.chains {
		links := make(map[string]int, len(c.choices))
		for _, choice := range c.choices {
			links[TokenText(choice.Next)] = choice.Freq
		}
		exported.Chains[key] = links
	}
	for word := range t.words {
		exported.Words = append(exported.Words, word)
	}
	slices.Sort(exported.Words)
	return exported
}

// WriteJSON serializes the table as an ExportedModel to w.
func (t *Table) WriteJSON(name string, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(t.Export(name))
}

// ReadJSON decodes an ExportedModel from r and rebuilds its Table. The model
// name is returned alongside.
func ReadJSON(r io.Reader) (string, *Table, error) {
	var imported ExportedModel
	if err := json.NewDecoder(r).Decode(&imported); err != nil {
		return "", nil, fmt.Errorf("failed to decode json model: %w", err)
	}
	table, err := imported.Table()
	if err != nil {
		return "", nil, err
	}
	return imported.Name, table, nil
}

// Table rebuilds a Table from the exported form. Every start context and
// chain key must be exactly order runes long and every frequency positive.
func (m ExportedModel) Table() (*Table, error) {
	if m.Order < 1 {
		return nil, fmt.Errorf("%w: order %d", ErrDegenerateOrder, m.Order)
	}
	if len(m.Starts) == 0 {
		return nil, fmt.Errorf("%w: model %q has no start contexts", ErrEmptyLexicon, m.Name)
	}
	for start, freq := range m.Starts {
		if n := utf8.RuneCountInString(start); n != m.Order {
			return nil, fmt.Errorf("%w: start context %q has %d runes, model order is %d", ErrDegenerateOrder, start, n, m.Order)
		}
		if freq < 1 {
			return nil, fmt.Errorf("import consistency error: start context %q has frequency %d", start, freq)
		}
	}

	chains := make(map[string]map[rune]int, len(m.Chains))
	for key, links := range m.Chains {
		if n := utf8.RuneCountInString(key); n != m.Order {
			return nil, fmt.Errorf("%w: context %q has %d runes, model order is %d", ErrDegenerateOrder, key, n, m.Order)
		}
		next := make(map[rune]int, len(links))
		for text, freq := range links {
			r, ok := ParseToken(text)
			if !ok {
				return nil, fmt.Errorf("import consistency error: invalid token %q after context %q", text, key)
			}
			if freq < 1 {
				return nil, fmt.Errorf("import consistency error: token %q after context %q has frequency %d", text, key, freq)
			}
			next[r] = freq
		}
		chains[key] = next
	}

	words := make(map[string]struct{}, len(m.Words))
	for _, word := range m.Words {
		words[word] = struct{}{}
	}
	return newTable(m.Order, m.Starts, chains, words), nil
}

// ModelInfos retrieves metadata for all models currently in the database,
// returning them in a map keyed by model name.
func (s *Store) ModelInfos(ctx context.Context) (map[string]ModelInfo, error) {
	rows, err := s.stmtGetModels.QueryContext(ctx)
	if err != nil {
		return nil, err
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	models := make(map[string]ModelInfo)
	for rows.Next() {
		var model ModelInfo
		if err = rows.Scan(&model.Id, &model.Name, &model.Order); err != nil {
			return nil, err
		}
		models[model.Name] = model
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return models, nil
}

// ModelInfo retrieves the metadata for a single model specified by name.
// It returns sql.ErrNoRows if no such model exists.
func (s *Store) ModelInfo(ctx context.Context, modelName string) (ModelInfo, error) {
	var modelId, modelOrder int
	err := s.stmtGetModelInfo.QueryRowContext(ctx, modelName).Scan(&modelId, &modelOrder)
	if err != nil {
		return ModelInfo{}, err
	}
	return ModelInfo{
		Id:    modelId,
		Name:  modelName,
		Order: modelOrder,
	}, nil
}

// SaveModel stores table under name, replacing any model that already has
// that name. The operation is performed within a transaction.
func (s *Store) SaveModel(ctx context.Context, name string, table *Table) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction for save: %w", err)
	}
	defer func(tx *sql.Tx) {
		_ = tx.Rollback()
	}(tx)

	var oldID int
	err = tx.QueryRowContext(ctx, "SELECT model_id FROM markov_models WHERE model_name = ?", name).Scan(&oldID)
	if err == nil {
		if err = deleteModelRows(ctx, tx, oldID); err != nil {
			return err
		}
	} else if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to query for model '%s': %w", name, err)
	}

	res, err := tx.ExecContext(ctx, "INSERT INTO markov_models (model_name, model_order) VALUES (?, ?)", name, table.order)
	if err != nil {
		return fmt.Errorf("failed to insert model '%s': %w", name, err)
	}
	newID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read id of model '%s': %w", name, err)
	}
	modelID := int(newID)

	stmtInsertChain, err := tx.PrepareContext(ctx, `INSERT INTO markov_chains (model_id, context, next_token, frequency) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare chain insert statement: %w", err)
	}
	defer func(stmt *sql.Stmt) {
		_ = stmt.Close()
	}(stmtInsertChain)

	var links int
	for key, c := range table.chains {
		for _, choice := range c.choices {
			if _, err = stmtInsertChain.ExecContext(ctx, modelID, key, TokenText(choice.Next), choice.Freq); err != nil {
				return fmt.Errorf("failed to insert chain link (%q -> %q): %w", key, TokenText(choice.Next), err)
			}
			links++
		}
	}

	for _, start := range table.starts {
		if _, err = tx.ExecContext(ctx, `INSERT INTO markov_starts (model_id, context, frequency) VALUES (?, ?, ?)`, modelID, start.Context, start.Freq); err != nil {
			return fmt.Errorf("failed to insert start context %q: %w", start.Context, err)
		}
	}

	for word := range table.words {
		if _, err = tx.ExecContext(ctx, `INSERT INTO markov_words (model_id, word) VALUES (?, ?)`, modelID, word); err != nil {
			return fmt.Errorf("failed to insert word %q: %w", word, err)
		}
	}

	s.logger.InfoContext(ctx, "Model saved",
		slog.String("model_name", name),
		slog.Int("model_id", modelID),
		slog.Int("order", table.order),
		slog.Int("chains_saved", links),
		slog.Int("starts_saved", len(table.starts)),
		slog.Int("words_saved", len(table.words)),
	)

	return tx.Commit()
}

// LoadModel reads the model stored under name back into a Table. It returns
// sql.ErrNoRows if no such model exists.
func (s *Store) LoadModel(ctx context.Context, name string) (*Table, error) {
	info, err := s.ModelInfo(ctx, name)
	if err != nil {
		return nil, err
	}

	chains := make(map[string]map[rune]int)
	rows, err := s.stmtGetChains.QueryContext(ctx, info.Id)
	if err != nil {
		return nil, fmt.Errorf("could not query chains for model '%s': %w", name, err)
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)
	for rows.Next() {
		var key, text string
		var freq int
		if err = rows.Scan(&key, &text, &freq); err != nil {
			return nil, err
		}
		r, ok := ParseToken(text)
		if !ok {
			return nil, fmt.Errorf("consistency error: invalid token %q stored for model '%s'", text, name)
		}
		next, ok := chains[key]
		if !ok {
			next = make(map[rune]int)
			chains[key] = next
		}
		next[r] = freq
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	starts := make(map[string]int)
	sRows, err := s.stmtGetStarts.QueryContext(ctx, info.Id)
	if err != nil {
		return nil, fmt.Errorf("could not query starts for model '%s': %w", name, err)
	}
	for sRows.Next() {
		var key string
		var freq int
		if err = sRows.Scan(&key, &freq); err != nil {
			_ = sRows.Close()
			return nil, err
		}
		starts[key] = freq
	}
	_ = sRows.Close()
	if err = sRows.Err(); err != nil {
		return nil, err
	}

	words := make(map[string]struct{})
	wRows, err := s.stmtGetWords.QueryContext(ctx, info.Id)
	if err != nil {
		return nil, fmt.Errorf("could not query words for model '%s': %w", name, err)
	}
	for wRows.Next() {
		var word string
		if err = wRows.Scan(&word); err != nil {
			_ = wRows.Close()
			return nil, err
		}
		words[word] = struct{}{}
	}
	_ = wRows.Close()
	if err = wRows.Err(); err != nil {
		return nil, err
	}

	if len(starts) == 0 {
		return nil, fmt.Errorf("%w: model '%s' has no start contexts", ErrEmptyLexicon, name)
	}

	s.logger.DebugContext(ctx, "Model loaded",
		slog.String("model_name", name),
		slog.Int("model_id", info.Id),
		slog.Int("contexts", len(chains)),
	)

	return newTable(info.Order, starts, chains, words), nil
}

// RemoveModel deletes a model and all of its associated data from the
// database. Removing a model that does not exist is not an error.
func (s *Store) RemoveModel(ctx context.Context, name string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func(tx *sql.Tx) {
		_ = tx.Rollback()
	}(tx)

	var modelID int
	err = tx.QueryRowContext(ctx, "SELECT model_id FROM markov_models WHERE model_name = ?", name).Scan(&modelID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to query for model '%s': %w", name, err)
	}

	if err = deleteModelRows(ctx, tx, modelID); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "Model removed successfully",
		slog.String("model_name", name),
		slog.Int("model_id", modelID),
	)

	return tx.Commit()
}

// ExportModel loads the named model and writes it to w as JSON.
func (s *Store) ExportModel(ctx context.Context, name string, w io.Writer) error {
	table, err := s.LoadModel(ctx, name)
	if err != nil {
		return fmt.Errorf("could not load model '%s' for export: %w", name, err)
	}
	s.logger.InfoContext(ctx, "Model exported", slog.String("model_name", name))
	return table.WriteJSON(name, w)
}

// ImportModel reads a JSON model from r and saves it under its exported name,
// replacing any model with the same name. The imported name is returned.
func (s *Store) ImportModel(ctx context.Context, r io.Reader) (string, error) {
	name, table, err := ReadJSON(r)
	if err != nil {
		return "", err
	}
	if name == "" {
		return "", errors.New("imported model has no name")
	}
	if err = s.SaveModel(ctx, name, table); err != nil {
		return "", err
	}
	return name, nil
}

// deleteModelRows removes every row belonging to modelID inside tx.
func deleteModelRows(ctx context.Context, tx *sql.Tx, modelID int) error {
	for _, table := range []string{"markov_chains", "markov_starts", "markov_words", "markov_models"} {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE model_id = ?", table), modelID); err != nil {
			return fmt.Errorf("failed to remove %s rows for model %d: %w", table, modelID, err)
		}
	}
	return nil
}
