package engine

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/jingweichess/jingwei/pkg/board"
	"github.com/seekerror/logw"
)

// LoadPersonality applies parameter overrides from a file. Each line holds a
// parameter name and a score; blank lines and '#' comments are ignored. The
// overrides are applied in order and the derived tables rebuilt once per line.
func (e *Engine) LoadPersonality(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open personality: %w", err)
	}
	defer f.Close()

	applied := 0
	scanner := bufio.NewScanner(f)
	for line := 1; scanner.Scan(); line++ {
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		parts := strings.Fields(text)
		if len(parts) != 2 {
			return fmt.Errorf("invalid personality line %v: '%v'", line, text)
		}
		value, err := strconv.Atoi(parts[1])
		if err != nil {
			return fmt.Errorf("invalid personality value at line %v: '%v'", line, text)
		}

		if err := e.SetParameter(ctx, parts[0], board.Score(value)); err != nil {
			return fmt.Errorf("personality line %v: %w", line, err)
		}
		applied++
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read personality: %w", err)
	}

	logw.Infof(ctx, "Loaded personality %v: %v overrides", path, applied)
	return nil
}
