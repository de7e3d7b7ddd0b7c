package corpus

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Folder maps a category/subcategory pair onto a corpus-relative directory.
type Folder struct {
	Category    string `yaml:"category"`
	Subcategory string `yaml:"subcategory"`
	Path        string `yaml:"path"`
}

// DefaultFolders returns the built-in corpus layout table.
func DefaultFolders() []Folder {
	return []Folder{
		// Supreme Court
		{Category: "supreme_court", Subcategory: "decisions", Path: "Supreme Court/Decisions & Signed Resolutions"},
		{Category: "supreme_court", Subcategory: "case_index", Path: "Supreme Court/SC Case Index"},
		// Laws
		{Category: "laws", Subcategory: "acts", Path: "Laws/Acts"},
		{Category: "laws", Subcategory: "batas_pambansa", Path: "Laws/Batas Pambansa"},
		{Category: "laws", Subcategory: "commonwealth_act", Path: "Laws/Commonwealth Acts"},
		{Category: "laws", Subcategory: "constitutions", Path: "Laws/Philippine Constitutions"},
		{Category: "laws", Subcategory: "general_order", Path: "Executive Issuances/General Orders"},
		{Category: "laws", Subcategory: "letter_of_implementation", Path: "Laws/Letter of Implementation"},
		{Category: "laws", Subcategory: "letter_of_instruction", Path: "Laws/Letter of Instruction"},
		{Category: "laws", Subcategory: "presidential_decree", Path: "Laws/Presidential Decree"},
		{Category: "laws", Subcategory: "republic_acts", Path: "Laws/Republic Acts"},
		{Category: "laws", Subcategory: "rules_of_court", Path: "Laws/Rules of Court"},
		// Executive Issuances
		{Category: "executive_issuances", Subcategory: "administrative_orders", Path: "Executive Issuances/Administrative Orders"},
		{Category: "executive_issuances", Subcategory: "executive_orders", Path: "Executive Issuances/Executive Orders"},
		{Category: "executive_issuances", Subcategory: "memorandum_circulars", Path: "Executive Issuances/Memorandum Circulars"},
		{Category: "executive_issuances", Subcategory: "memorandum_orders", Path: "Executive Issuances/Memorandum Orders"},
		{Category: "executive_issuances", Subcategory: "national_admin_register", Path: "Executive Issuances/National Administrative Register"},
		{Category: "executive_issuances", Subcategory: "presidential_proclamations", Path: "Executive Issuances/Presidential Proclamations"},
		// References
		{Category: "references", Subcategory: "judicial_forms", Path: "References/Revised Book of Judicial Forms"},
		{Category: "references", Subcategory: "benchbooks", Path: "References/Benchbooks"},
		{Category: "references", Subcategory: "election_cases", Path: "References/Election Cases"},
		{Category: "references", Subcategory: "official_gazette", Path: "References/Official Gazette"},
		// Treaties
		{Category: "treaties", Subcategory: "bilateral", Path: "Treaties/Bilateral"},
		{Category: "treaties", Subcategory: "regional", Path: "Treaties/Regional ~ Multilateral"},
		// International Laws (flat)
		{Category: "international_laws", Subcategory: "international", Path: "International Laws"},
	}
}

// LoadFolders reads a folder table from a yaml file. An empty path returns
// the built-in table.
func LoadFolders(path string) ([]Folder, error) {
	if path == "" {
		return DefaultFolders(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read folder file: %w", err)
	}
	var folders []Folder
	if err := yaml.Unmarshal(raw, &folders); err != nil {
		return nil, fmt.Errorf("failed to parse folder file: %w", err)
	}
	if len(folders) == 0 {
		return nil, fmt.Errorf("folder file %s contains no entries", path)
	}
	return folders, nil
}

// sourceCategories maps user-facing source filters onto folder categories.
var sourceCategories = map[string][]string{
	"law":           {"laws"},
	"jurisprudence": {"supreme_court"},
	"issuance":      {"executive_issuances"},
	"reference":     {"references"},
	"treaty":        {"treaties"},
	"international": {"international_laws"},
}

// FilterFolders narrows the folder table by source filter names. Unknown
// filters are ignored; if nothing matches, the full table is returned.
func FilterFolders(folders []Folder, sourceFilters []string) []Folder {
	if len(sourceFilters) == 0 {
		return folders
	}
	allowed := make(map[string]bool)
	for _, sf := range sourceFilters {
		for _, cat := range sourceCategories[sf] {
			allowed[cat] = true
		}
	}
	if len(allowed) == 0 {
		return folders
	}
	out := make([]Folder, 0, len(folders))
	for _, f := range folders {
		if allowed[f.Category] {
			out = append(out, f)
		}
	}
	return out
}
