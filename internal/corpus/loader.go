// Package corpus loads the static knowledge sources consumed at startup:
// the category catalog, the narrative knowledge base, the structured
// troubleshooting and installation databases, and the company policies.
package corpus

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"helpdesk-triage/internal/models"
	"helpdesk-triage/pkg/config"

	"go.uber.org/zap"
)

// CategoryInfo is one entry of the category catalog.
type CategoryInfo struct {
	Description        string   `json:"description"`
	EscalationTriggers []string `json:"escalation_triggers"`
}

// Catalog maps every request category to its natural-language description
// and its escalation trigger phrases. Loaded once at startup, immutable.
type Catalog map[models.RequestCategory]CategoryInfo

// Entry is a single indexable passage extracted from one of the corpora.
type Entry struct {
	Source   string
	Content  string
	Category models.RequestCategory
}

type Loader struct {
	cfg    *config.DataConfig
	logger *zap.Logger
}

func NewLoader(cfg *config.DataConfig, logger *zap.Logger) *Loader {
	return &Loader{
		cfg:    cfg,
		logger: logger,
	}
}

// LoadCatalog reads and validates the category catalog. An empty or
// unrecognized catalog is a configuration error.
func (l *Loader) LoadCatalog() (Catalog, error) {
	data, err := os.ReadFile(l.cfg.CategoriesFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read categories file: %w", err)
	}

	var raw struct {
		Categories map[string]CategoryInfo `json:"categories"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse categories file: %w", err)
	}
	if len(raw.Categories) == 0 {
		return nil, fmt.Errorf("category catalog %s is empty", l.cfg.CategoriesFile)
	}

	catalog := make(Catalog, len(raw.Categories))
	for name, info := range raw.Categories {
		category, ok := models.ParseCategory(name)
		if !ok {
			return nil, fmt.Errorf("unknown category %q in %s", name, l.cfg.CategoriesFile)
		}
		if strings.TrimSpace(info.Description) == "" {
			return nil, fmt.Errorf("category %q has no description", name)
		}
		catalog[category] = info
	}

	l.logger.Info("Category catalog loaded", zap.Int("categories", len(catalog)))
	return catalog, nil
}

// LoadEntries parses all four corpora into indexable entries. Entry order
// is deterministic: sources are processed in a fixed order and JSON keys
// are sorted.
func (l *Loader) LoadEntries() ([]Entry, error) {
	var entries []Entry

	kbEntries, err := l.loadNarrative(l.cfg.KnowledgeBaseFile, false)
	if err != nil {
		return nil, fmt.Errorf("failed to load knowledge base: %w", err)
	}
	entries = append(entries, kbEntries...)

	tsEntries, err := l.loadTroubleshooting()
	if err != nil {
		return nil, fmt.Errorf("failed to load troubleshooting database: %w", err)
	}
	entries = append(entries, tsEntries...)

	guideEntries, err := l.loadInstallationGuides()
	if err != nil {
		return nil, fmt.Errorf("failed to load installation guides: %w", err)
	}
	entries = append(entries, guideEntries...)

	policyEntries, err := l.loadNarrative(l.cfg.PoliciesFile, true)
	if err != nil {
		return nil, fmt.Errorf("failed to load company policies: %w", err)
	}
	entries = append(entries, policyEntries...)

	l.logger.Info("Knowledge corpus loaded", zap.Int("entries", len(entries)))
	return entries, nil
}

// loadNarrative splits a markdown document on second-level section headers;
// each section becomes one entry. Policy documents are always categorized
// as policy questions, other documents infer a category from the title.
func (l *Loader) loadNarrative(path string, forcePolicy bool) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	source := filepath.Base(path)
	sections := strings.Split(string(data), "## ")

	var entries []Entry
	for _, section := range sections[1:] {
		lines := strings.SplitN(section, "\n", 2)
		title := strings.TrimSpace(lines[0])
		body := ""
		if len(lines) > 1 {
			body = strings.TrimSpace(lines[1])
		}
		if title == "" || body == "" {
			continue
		}

		category := models.CategoryPolicyQuestion
		if !forcePolicy {
			category = InferCategory(title)
		}
		entries = append(entries, Entry{
			Source:   source + "#" + title,
			Content:  body,
			Category: category,
		})
	}
	return entries, nil
}

func (l *Loader) loadTroubleshooting() ([]Entry, error) {
	data, err := os.ReadFile(l.cfg.TroubleshootingFile)
	if err != nil {
		return nil, err
	}

	var raw struct {
		TroubleshootingSteps map[string]struct {
			Steps []string `json:"steps"`
		} `json:"troubleshooting_steps"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	source := filepath.Base(l.cfg.TroubleshootingFile)
	var entries []Entry
	for _, key := range sortedKeys(raw.TroubleshootingSteps) {
		item := raw.TroubleshootingSteps[key]
		entries = append(entries, Entry{
			Source:   source + "#" + key,
			Content:  "Steps: " + strings.Join(item.Steps, " "),
			Category: InferCategory(key),
		})
	}
	return entries, nil
}

func (l *Loader) loadInstallationGuides() ([]Entry, error) {
	data, err := os.ReadFile(l.cfg.InstallationGuidesFile)
	if err != nil {
		return nil, err
	}

	var raw struct {
		SoftwareGuides map[string]struct {
			Title        string   `json:"title"`
			Steps        []string `json:"steps"`
			CommonIssues []struct {
				Issue    string `json:"issue"`
				Solution string `json:"solution"`
			} `json:"common_issues"`
		} `json:"software_guides"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	source := filepath.Base(l.cfg.InstallationGuidesFile)
	var entries []Entry
	for _, key := range sortedKeys(raw.SoftwareGuides) {
		guide := raw.SoftwareGuides[key]

		var sb strings.Builder
		sb.WriteString(guide.Title)
		sb.WriteString(": ")
		sb.WriteString(strings.Join(guide.Steps, " "))
		for _, ci := range guide.CommonIssues {
			sb.WriteString(fmt.Sprintf(" Issue: %s Solution: %s", ci.Issue, ci.Solution))
		}

		entries = append(entries, Entry{
			Source:   source + "#" + key,
			Content:  sb.String(),
			Category: models.CategorySoftwareInstallation,
		})
	}
	return entries, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
