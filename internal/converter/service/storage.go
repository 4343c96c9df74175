package service

import (
	"fmt"
	"os"
	"path/filepath"
)

// ============================================================
// File Storage
// ============================================================

// FileStorage хранит артефакты конвертаций: <root>/<id>/{source.dxf,model.txt,preview.dxf}.
type FileStorage struct {
	root string
}

func NewFileStorage(root string) *FileStorage {
	return &FileStorage{root: root}
}

func (s *FileStorage) Dir(id string) string {
	return filepath.Join(s.root, filepath.Base(id))
}

func (s *FileStorage) SourcePath(id string) string {
	return filepath.Join(s.Dir(id), "source.dxf")
}

func (s *FileStorage) LiraPath(id string) string {
	return filepath.Join(s.Dir(id), "model.txt")
}

func (s *FileStorage) PreviewPath(id string) string {
	return filepath.Join(s.Dir(id), "preview.dxf")
}

func (s *FileStorage) EnsureDir(id string) error {
	if err := os.MkdirAll(s.Dir(id), 0o755); err != nil {
		return fmt.Errorf("mkdir conversion dir: %w", err)
	}
	return nil
}

func (s *FileStorage) SaveFile(id, target string, data []byte) error {
	if err := s.EnsureDir(id); err != nil {
		return err
	}
	return os.WriteFile(target, data, 0o644)
}

// Exists сообщает, сохранён ли файл.
func (s *FileStorage) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
