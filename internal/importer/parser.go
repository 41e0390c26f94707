package importer

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Passage is one piece of text ready to be added to a store
type Passage struct {
	Source string
	Title  string
	Tags   []string
	Text   string
}

// Frontmatter represents the optional YAML header of a passage file
type Frontmatter struct {
	Title string   `yaml:"title"`
	Tags  []string `yaml:"tags"`
	Skip  bool     `yaml:"skip"`
}

// Parser handles parsing passage files with YAML frontmatter
type Parser struct{}

// NewParser creates a new parser
func NewParser() *Parser {
	return &Parser{}
}

// Parse reads a single passage file. skipped is true when the frontmatter
// asks for the file to be ignored.
func (p *Parser) Parse(path string) (passage *Passage, skipped bool, err error) {
	lines, err := readLines(path)
	if err != nil {
		return nil, false, err
	}

	fm, content, err := p.parseFrontmatter(lines)
	if err != nil {
		return nil, false, fmt.Errorf("failed to parse frontmatter: %w", err)
	}
	if fm.Skip {
		return nil, true, nil
	}

	title := fm.Title
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	text := strings.TrimSpace(content)
	if text == "" {
		return nil, false, fmt.Errorf("no text after frontmatter")
	}

	return &Passage{Source: path, Title: title, Tags: fm.Tags, Text: text}, false, nil
}

// ParseLines returns one passage per non-empty line of a plain text file
func (p *Parser) ParseLines(path string) ([]Passage, error) {
	lines, err := readLines(path)
	if err != nil {
		return nil, err
	}

	var passages []Passage
	for i, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		passages = append(passages, Passage{
			Source: fmt.Sprintf("%s:%d", path, i+1),
			Title:  fmt.Sprintf("%s line %d", filepath.Base(path), i+1),
			Text:   line,
		})
	}
	return passages, nil
}

// parseFrontmatter extracts YAML frontmatter and returns it with the remaining content
func (p *Parser) parseFrontmatter(lines []string) (*Frontmatter, string, error) {
	if len(lines) == 0 {
		return nil, "", fmt.Errorf("empty file")
	}

	// Check for frontmatter delimiter
	if strings.TrimSpace(lines[0]) != "---" {
		return &Frontmatter{}, strings.Join(lines, "\n"), nil
	}

	// Find end of frontmatter
	endIdx := -1
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			endIdx = i
			break
		}
	}

	if endIdx == -1 {
		return nil, "", fmt.Errorf("unclosed frontmatter")
	}

	var fm Frontmatter
	if err := yaml.Unmarshal([]byte(strings.Join(lines[1:endIdx], "\n")), &fm); err != nil {
		return nil, "", fmt.Errorf("failed to parse YAML: %w", err)
	}

	return &fm, strings.Join(lines[endIdx+1:], "\n"), nil
}

func readLines(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return lines, nil
}
