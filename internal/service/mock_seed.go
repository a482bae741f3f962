package service

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"go.uber.org/zap"

	"scope-chat/internal/repository"
)

// LoadMockResponses carga el archivo de respuestas (una por linea) si el pool esta vacio.
// Devuelve la cantidad de respuestas disponibles despues de la carga.
func LoadMockResponses(ctx context.Context, repo repository.MockResponseRepository, path string, logger *zap.Logger) (int, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	count, err := repo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count mock responses: %w", err)
	}
	if count > 0 {
		logger.Info("mock responses already loaded", zap.Int("count", count))
		return count, nil
	}

	lines, err := readMockFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Warn("mock responses file not found", zap.String("path", path))
			return 0, nil
		}
		return 0, err
	}
	if len(lines) == 0 {
		logger.Warn("mock responses file is empty", zap.String("path", path))
		return 0, nil
	}

	if err := repo.InsertAll(ctx, lines); err != nil {
		return 0, fmt.Errorf("insert mock responses: %w", err)
	}
	logger.Info("mock responses loaded", zap.Int("count", len(lines)), zap.String("path", path))
	return len(lines), nil
}

func readMockFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return lines, nil
}
