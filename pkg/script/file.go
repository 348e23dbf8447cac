package script

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	apperrors "github.com/linguamesh/constellation/pkg/errors"
)

// FileProvider serves course scripts from JSON documents on disk, one file
// per course: <dir>/<courseID>.json. Used by the CLI and in tests.
type FileProvider struct {
	dir string
}

// NewFileProvider creates a provider rooted at dir.
func NewFileProvider(dir string) *FileProvider {
	return &FileProvider{dir: dir}
}

// Script implements Provider.
func (p *FileProvider) Script(ctx context.Context, courseID string) (Script, error) {
	if err := ctx.Err(); err != nil {
		return Script{}, err
	}
	if strings.ContainsAny(courseID, `/\`) || courseID == "" {
		return Script{}, fmt.Errorf("invalid course id %q", courseID)
	}

	path := filepath.Join(p.dir, courseID+".json")
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Script{}, apperrors.New(apperrors.ErrCodeCourseNotFound, "course %q not found", courseID)
	}
	if err != nil {
		return Script{}, fmt.Errorf("read script %s: %w", path, err)
	}

	var s Script
	if err := json.Unmarshal(data, &s); err != nil {
		return Script{}, fmt.Errorf("decode script %s: %w", path, err)
	}
	if s.CourseID == "" {
		s.CourseID = courseID
	}
	if err := s.Validate(); err != nil {
		return Script{}, err
	}
	return s, nil
}

// ReadScriptFile loads a script straight from an explicit path, bypassing the
// course-id naming convention. Convenience for CLI --script flags.
func ReadScriptFile(path string) (Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Script{}, fmt.Errorf("read script %s: %w", path, err)
	}
	var s Script
	if err := json.Unmarshal(data, &s); err != nil {
		return Script{}, fmt.Errorf("decode script %s: %w", path, err)
	}
	if s.CourseID == "" {
		base := filepath.Base(path)
		s.CourseID = strings.TrimSuffix(base, filepath.Ext(base))
	}
	if err := s.Validate(); err != nil {
		return Script{}, err
	}
	return s, nil
}
