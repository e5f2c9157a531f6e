package storage

import (
	"bufio"
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"gopkg.in/yaml.v3"

	"github.com/dpshade/character-template/internal/errors"
	"github.com/dpshade/character-template/internal/models"
)

// DefaultFilename is used when the character name has no usable characters
const DefaultFilename = "character_template.txt"

// Storage writes rendered templates to a directory. It keeps no history; saving the
// same name twice overwrites the file.
type Storage struct {
	rootPath string
}

// SaveResult describes a written file
type SaveResult struct {
	Path   string `json:"path"`
	Bytes  int    `json:"bytes"`
	SHA256 string `json:"sha256"`
}

// DocumentMeta is the YAML frontmatter written by SaveDocument
type DocumentMeta struct {
	Name          string               `yaml:"name"`
	Format        models.Format        `yaml:"format"`
	Populate      bool                 `yaml:"example"`
	CharacterType models.CharacterType `yaml:"character_type,omitempty"`
	Tokens        int                  `yaml:"tokens"`
	Strategy      string               `yaml:"token_strategy"`
	SavedAt       time.Time            `yaml:"saved_at"`
}

// NewStorage creates a storage rooted at rootPath. An empty rootPath uses the
// current working directory.
func NewStorage(rootPath string) (*Storage, error) {
	if rootPath == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, errors.StorageError("resolve export directory", err)
		}
		rootPath = wd
	}
	return &Storage{rootPath: rootPath}, nil
}

// GetBaseDir returns the root path of the storage
func (s *Storage) GetBaseDir() string {
	return s.rootPath
}

// Filename returns the suggested file name for a character: the lowercased name
// with every run of other characters collapsed to "_" and "_template.txt" appended.
func Filename(name string) string {
	slug := Slug(name)
	if slug == "" {
		return DefaultFilename
	}
	return slug + "_template.txt"
}

// Slug lowercases name and keeps letters and digits, joining the rest with "_"
func Slug(name string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
			continue
		}
		pendingSep = true
	}
	return b.String()
}

// SaveTemplate writes text unchanged to Filename(name) inside the root path
func (s *Storage) SaveTemplate(name, text string) (*SaveResult, error) {
	return s.write(Filename(name), []byte(text))
}

// SaveTemplate writes text to dir using the suggested file name for name
func SaveTemplate(dir, name, text string) (string, error) {
	s, err := NewStorage(dir)
	if err != nil {
		return "", err
	}
	res, err := s.SaveTemplate(name, text)
	if err != nil {
		return "", err
	}
	return res.Path, nil
}

// SaveTo writes text to an explicit path. Relative paths resolve against the root path.
func (s *Storage) SaveTo(path, text string) (*SaveResult, error) {
	return s.write(path, []byte(text))
}

// SaveDocument writes text with YAML frontmatter describing how it was produced.
// The file name is Filename(name) with a .md extension.
func (s *Storage) SaveDocument(doc models.TemplateDocument, count models.TokenCount) (*SaveResult, error) {
	meta := DocumentMeta{
		Name:          doc.Request.Name,
		Format:        doc.Request.Format,
		Populate:      doc.Request.Populate,
		CharacterType: doc.Request.CharacterType,
		Tokens:        count.Count,
		Strategy:      count.Strategy,
		SavedAt:       time.Now().UTC().Truncate(time.Second),
	}

	content, err := serializeDocument(meta, doc.Text)
	if err != nil {
		return nil, errors.StorageError("serialize document", err)
	}

	name := strings.TrimSuffix(Filename(doc.Request.Name), ".txt") + ".md"
	return s.write(name, content)
}

// LoadDocument reads a file written by SaveDocument
func (s *Storage) LoadDocument(path string) (*DocumentMeta, string, error) {
	content, err := os.ReadFile(s.resolve(path))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", errors.NewAppError(errors.ErrCodeFileNotFound, "Template file not found").
				WithContext("path", path)
		}
		return nil, "", errors.StorageError("read document", err)
	}

	meta, text, err := parseDocument(content)
	if err != nil {
		return nil, "", errors.StorageError("parse document", err)
	}
	return meta, text, nil
}

// ReadText reads a plain template file. Relative paths resolve against the root path.
func (s *Storage) ReadText(path string) (string, error) {
	content, err := os.ReadFile(s.resolve(path))
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.NewAppError(errors.ErrCodeFileNotFound, "Template file not found").
				WithContext("path", path)
		}
		return "", errors.StorageError("read template", err)
	}
	return string(content), nil
}

func (s *Storage) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(s.rootPath, path)
}

func (s *Storage) write(path string, content []byte) (*SaveResult, error) {
	fullPath := s.resolve(path)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return nil, errors.StorageError("create directory", err)
	}
	if err := os.WriteFile(fullPath, content, 0644); err != nil {
		return nil, errors.StorageError("write template file", err)
	}

	return &SaveResult{
		Path:   fullPath,
		Bytes:  len(content),
		SHA256: calculateHash(content),
	}, nil
}

func serializeDocument(meta DocumentMeta, text string) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("---\n")
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(meta); err != nil {
		return nil, fmt.Errorf("failed to encode frontmatter: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode frontmatter: %w", err)
	}
	buf.WriteString("---\n\n")
	buf.WriteString(text)
	if !strings.HasSuffix(text, "\n") {
		buf.WriteString("\n")
	}

	return buf.Bytes(), nil
}

func parseDocument(content []byte) (*DocumentMeta, string, error) {
	scanner := bufio.NewScanner(bytes.NewReader(content))

	if !scanner.Scan() || scanner.Text() != "---" {
		return nil, "", fmt.Errorf("missing frontmatter delimiter")
	}

	var frontmatterLines []string
	closed := false
	for scanner.Scan() {
		line := scanner.Text()
		if line == "---" {
			closed = true
			break
		}
		frontmatterLines = append(frontmatterLines, line)
	}
	if !closed {
		return nil, "", fmt.Errorf("unterminated frontmatter")
	}

	var meta DocumentMeta
	if err := yaml.Unmarshal([]byte(strings.Join(frontmatterLines, "\n")), &meta); err != nil {
		return nil, "", fmt.Errorf("failed to parse frontmatter: %w", err)
	}

	var contentLines []string
	for scanner.Scan() {
		contentLines = append(contentLines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, "", err
	}

	text := strings.TrimLeft(strings.Join(contentLines, "\n"), "\n")
	return &meta, text, nil
}

func calculateHash(content []byte) string {
	hash := sha256.Sum256(content)
	return hex.EncodeToString(hash[:])
}
