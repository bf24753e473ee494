package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/DeusData/netlogo-intel/internal/lint"
)

// ErrNotFound is returned when no cached result exists.
var ErrNotFound = errors.New("store: not found")

// Project represents a linted project.
type Project struct {
	Name      string
	IndexedAt string
	RootPath  string
}

// UpsertProject creates or updates a project record.
func (s *Store) UpsertProject(name, rootPath string) error {
	_, err := s.q.Exec(`
		INSERT INTO projects (name, indexed_at, root_path) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET indexed_at=excluded.indexed_at, root_path=excluded.root_path`,
		name, Now(), rootPath)
	return err
}

// GetProject returns a project by name.
func (s *Store) GetProject(name string) (*Project, error) {
	var p Project
	err := s.q.QueryRow("SELECT name, indexed_at, root_path FROM projects WHERE name=?", name).
		Scan(&p.Name, &p.IndexedAt, &p.RootPath)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("project %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListProjects returns all known projects.
func (s *Store) ListProjects() ([]*Project, error) {
	rows, err := s.q.Query("SELECT name, indexed_at, root_path FROM projects ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []*Project
	for rows.Next() {
		var p Project
		if err := rows.Scan(&p.Name, &p.IndexedAt, &p.RootPath); err != nil {
			return nil, err
		}
		result = append(result, &p)
	}
	return result, rows.Err()
}

// DeleteProject deletes a project and its cached results (CASCADE).
func (s *Store) DeleteProject(name string) error {
	_, err := s.q.Exec("DELETE FROM projects WHERE name=?", name)
	return err
}

// PutResult stores the lint outcome of one file.
func (s *Store) PutResult(project string, r *Result) error {
	diags, err := marshalDiagnostics(r.Diagnostics)
	if err != nil {
		return err
	}
	linted := r.LintedAt
	if linted == "" {
		linted = Now()
	}
	_, err = s.q.Exec(`
		INSERT INTO lint_results (project, rel_path, hash, context, diagnostics, linted_at) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(project, rel_path) DO UPDATE SET
			hash=excluded.hash, context=excluded.context,
			diagnostics=excluded.diagnostics, linted_at=excluded.linted_at`,
		project, r.RelPath, r.Hash, r.Context, diags, linted)
	if err != nil {
		return fmt.Errorf("put result %s: %w", r.RelPath, err)
	}
	return nil
}

// GetResult returns the cached outcome of one file.
func (s *Store) GetResult(project, relPath string) (*Result, error) {
	var r Result
	var diags string
	err := s.q.QueryRow(`SELECT rel_path, hash, context, diagnostics, linted_at
		FROM lint_results WHERE project=? AND rel_path=?`, project, relPath).
		Scan(&r.RelPath, &r.Hash, &r.Context, &diags, &r.LintedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("result %s: %w", relPath, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get result %s: %w", relPath, err)
	}
	if r.Diagnostics, err = unmarshalDiagnostics(diags); err != nil {
		return nil, err
	}
	return &r, nil
}

// Lookup returns the cached diagnostics when both hashes still match.
func (s *Store) Lookup(project, relPath, hash, context string) ([]lint.Diagnostic, bool) {
	r, err := s.GetResult(project, relPath)
	if err != nil || r.Hash != hash || r.Context != context {
		return nil, false
	}
	return r.Diagnostics, true
}

// FileHashes returns the content hash of every cached file of a project.
func (s *Store) FileHashes(project string) (map[string]string, error) {
	rows, err := s.q.Query("SELECT rel_path, hash FROM lint_results WHERE project=?", project)
	if err != nil {
		return nil, fmt.Errorf("get file hashes: %w", err)
	}
	defer rows.Close()
	result := make(map[string]string)
	for rows.Next() {
		var path, hash string
		if err := rows.Scan(&path, &hash); err != nil {
			return nil, err
		}
		result[path] = hash
	}
	return result, rows.Err()
}

// DeleteResult drops the cached outcome of one file.
func (s *Store) DeleteResult(project, relPath string) error {
	_, err := s.q.Exec("DELETE FROM lint_results WHERE project=? AND rel_path=?", project, relPath)
	return err
}

// Prune drops cached results of files not in keep and reports how many
// were removed.
func (s *Store) Prune(project string, keep []string) (int, error) {
	hashes, err := s.FileHashes(project)
	if err != nil {
		return 0, err
	}
	alive := make(map[string]bool, len(keep))
	for _, p := range keep {
		alive[p] = true
	}
	n := 0
	for path := range hashes {
		if alive[path] {
			continue
		}
		if err := s.DeleteResult(project, path); err != nil {
			return n, fmt.Errorf("prune %s: %w", path, err)
		}
		n++
	}
	return n, nil
}
