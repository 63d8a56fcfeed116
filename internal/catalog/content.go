package catalog

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/flexigpt/skillrouter-go/spec"
)

const (
	skillFileName   = "SKILL.md"
	maxSkillMDBytes = 2 << 20 // 2 MiB
)

// LoadBody reads the Markdown body for a skill from
// <contentDir>/<name>/SKILL.md. Frontmatter must parse as YAML but its
// fields are not authoritative; the rules file is.
func LoadBody(ctx context.Context, contentDir, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	dir := strings.TrimSpace(contentDir)
	if dir == "" {
		return "", errors.New("empty content dir")
	}

	loc := filepath.Join(dir, name, skillFileName)

	// Disallow SKILL.md being a symlink.
	if lst, lerr := os.Lstat(loc); lerr == nil {
		if lst.Mode()&os.ModeSymlink != 0 {
			return "", errors.New("SKILL.md must not be a symlink")
		}
	}

	b, err := readAllLimited(loc)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: no %s for %s", spec.ErrSkillNotFound, skillFileName, name)
		}
		return "", err
	}

	fm, body, hasFM, err := splitFrontmatter(string(b))
	if err != nil {
		return "", err
	}
	if hasFM {
		props := map[string]any{}
		if err := yaml.Unmarshal([]byte(fm), &props); err != nil {
			return "", fmt.Errorf("invalid frontmatter YAML in %s: %w", loc, err)
		}
	}

	// Preserve body content as much as possible; remove only the leading
	// newline after the delimiter.
	return strings.TrimLeft(body, "\r\n"), nil
}

func readAllLimited(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, int64(maxSkillMDBytes)+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxSkillMDBytes {
		return nil, fmt.Errorf("SKILL.md too large (max %d bytes)", maxSkillMDBytes)
	}
	return data, nil
}

func splitFrontmatter(s string) (frontmatter, body string, has bool, err error) {
	br := bufio.NewReader(strings.NewReader(s))

	first, ferr := br.ReadString('\n')
	if ferr != nil && !errors.Is(ferr, io.EOF) {
		return "", "", false, ferr
	}
	first = strings.TrimRight(first, "\r\n")
	if strings.TrimSpace(first) != "---" {
		// No frontmatter.
		return "", s, false, nil
	}

	var fmLines []string
	foundEnd := false
	for {
		line, lerr := br.ReadString('\n')
		if lerr != nil && !errors.Is(lerr, io.EOF) {
			return "", "", false, lerr
		}
		lineTrim := strings.TrimRight(line, "\r\n")
		if strings.TrimSpace(lineTrim) == "---" {
			foundEnd = true
			break
		}
		fmLines = append(fmLines, lineTrim)
		if errors.Is(lerr, io.EOF) {
			break
		}
	}

	if !foundEnd {
		return "", "", false, errors.New("unterminated frontmatter (missing closing ---)")
	}

	rest, err := io.ReadAll(br)
	if err != nil {
		return "", "", false, err
	}

	return strings.Join(fmLines, "\n"), string(rest), true, nil
}
