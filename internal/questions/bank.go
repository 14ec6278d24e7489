// Package questions serves the coding question bank, one JSON file per
// company, embedded at compile time.
package questions

import (
	"embed"
	"encoding/json"
	"fmt"
	"math/rand"
	"sort"
	"strings"

	"github.com/rammohanpatel/AI-Interviewer/internal/models"
)

//go:embed data/*.json
var questionFS embed.FS

// ErrCompanyNotFound is returned for companies without a question file.
var ErrCompanyNotFound = fmt.Errorf("company questions not found")

type Bank struct {
	companies map[string][]models.Question
}

// NewBank loads every embedded company file.
func NewBank() (*Bank, error) {
	b := &Bank{companies: make(map[string][]models.Question)}

	entries, err := questionFS.ReadDir("data")
	if err != nil {
		return nil, fmt.Errorf("failed to read question data: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		raw, err := questionFS.ReadFile("data/" + entry.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", entry.Name(), err)
		}
		var qs []models.Question
		if err := json.Unmarshal(raw, &qs); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", entry.Name(), err)
		}
		company := strings.TrimSuffix(entry.Name(), ".json")
		b.companies[company] = qs
	}
	return b, nil
}

// Companies lists the companies with a question file, sorted.
func (b *Bank) Companies() []string {
	out := make([]string, 0, len(b.companies))
	for company := range b.companies {
		out = append(out, company)
	}
	sort.Strings(out)
	return out
}

// Random picks a random question for a company.
func (b *Bank) Random(company string) (*models.Question, error) {
	qs, ok := b.companies[strings.ToLower(company)]
	if !ok || len(qs) == 0 {
		return nil, ErrCompanyNotFound
	}
	q := qs[rand.Intn(len(qs))]
	return &q, nil
}
