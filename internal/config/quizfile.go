package config

import (
	"bytes"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// QuizFile is the per-quiz YAML overlay. Set fields win over the environment.
type QuizFile struct {
	Title            string `yaml:"title"`
	BankFile         string `yaml:"bank_file"`
	RosterFile       string `yaml:"roster_file"`
	QuestionsPerPage int    `yaml:"questions_per_page"`
	ParseMode        string `yaml:"parse_mode"`
	PromptFallback   string `yaml:"prompt_fallback"`
	SubmitURL        string `yaml:"submit_url"`
}

// ParseQuizFile decodes a single YAML document, rejecting unknown fields.
func ParseQuizFile(data []byte) (QuizFile, error) {
	var qf QuizFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&qf); err != nil {
		if err == io.EOF {
			return QuizFile{}, nil
		}
		return QuizFile{}, fmt.Errorf("parse quiz file: %w", err)
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return QuizFile{}, fmt.Errorf("parse quiz file: multiple YAML documents are not supported")
		}
		return QuizFile{}, fmt.Errorf("parse quiz file: %w", err)
	}
	if qf.QuestionsPerPage < 0 {
		return QuizFile{}, fmt.Errorf("parse quiz file: questions_per_page must be positive")
	}
	return qf, nil
}

func (q QuizFile) Apply(c *Config) {
	if q.Title != "" {
		c.Title = q.Title
	}
	if q.BankFile != "" {
		c.BankFile = q.BankFile
	}
	if q.RosterFile != "" {
		c.RosterFile = q.RosterFile
	}
	if q.QuestionsPerPage > 0 {
		c.QuestionsPerPage = q.QuestionsPerPage
	}
	if q.ParseMode != "" {
		c.ParseMode = q.ParseMode
	}
	if q.PromptFallback != "" {
		c.PromptFallback = q.PromptFallback
	}
	if q.SubmitURL != "" {
		c.SubmitURL = q.SubmitURL
	}
}
