// Package file loads question banks from YAML documents.
package file

import (
	"fmt"
	"io"
	"os"

	"trivia-quiz/internal/domain"
	"trivia-quiz/internal/infra/memory"

	"gopkg.in/yaml.v3"
)

// document is the on-disk layout:
//
//	categories:
//	  science:
//	    - prompt: What planet is known as the Red Planet?
//	      choices: [Mars, Venus, Jupiter, Neptune]
//	      answer: Mars
type document struct {
	Categories map[string][]domain.Question `yaml:"categories"`
}

// LoadBank reads a YAML question file into a validated static bank.
func LoadBank(path string) (*memory.StaticBank, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open question file: %w", err)
	}
	defer f.Close()
	return DecodeBank(f)
}

// DecodeBank parses a YAML question document.
func DecodeBank(r io.Reader) (*memory.StaticBank, error) {
	var doc document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode question file: %w", err)
	}
	if len(doc.Categories) == 0 {
		return nil, fmt.Errorf("question file defines no categories")
	}
	return memory.NewStaticBank(doc.Categories)
}

// Categories returns the raw category map of a YAML question file, used for seeding databases.
func Categories(path string) (map[string][]domain.Question, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read question file: %w", err)
	}
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode question file: %w", err)
	}
	return doc.Categories, nil
}
