package parsers

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/triggerNode/BuxTax/src/logger"
	"github.com/triggerNode/BuxTax/src/models"
)

// CategoryConfig is one entry of the category mappings YAML file.
type CategoryConfig struct {
	Name     models.TransactionCategory `yaml:"name"`
	Keywords []string                   `yaml:"keywords"`
}

// CategoriesConfig is the structure of the category mappings YAML file:
//
//	categories:
//	  - name: adSpend
//	    keywords: ["sponsored", "boost"]
type CategoriesConfig struct {
	Categories []CategoryConfig `yaml:"categories"`
}

type categorySynonym struct {
	keyword  string
	category models.TransactionCategory
}

var defaultSynonyms = []categorySynonym{
	{"sale", models.CategorySale},
	{"marketplace fee", models.CategoryMarketplaceFee},
	{"ad spend", models.CategoryAdSpend},
	{"advertising", models.CategoryAdSpend},
	{"group split", models.CategoryGroupSplit},
	{"affiliate fee", models.CategoryAffiliateFee},
	{"affiliate payout", models.CategoryAffiliateFee},
	{"refund", models.CategoryRefund},
	{"chargeback", models.CategoryRefund},
	{"other", models.CategoryOtherCost},
	{"misc", models.CategoryOtherCost},
}

type categorizerImpl struct {
	synonyms []categorySynonym
}

// NewCategorizer returns a Categorizer using the built-in synonym table. Keywords from
// extra are consulted before the built-in ones, in the order given.
func NewCategorizer(extra ...CategoryConfig) Categorizer {
	var synonyms []categorySynonym
	for _, cfg := range extra {
		for _, kw := range cfg.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw == "" {
				continue
			}
			synonyms = append(synonyms, categorySynonym{keyword: kw, category: cfg.Name})
		}
	}
	synonyms = append(synonyms, defaultSynonyms...)
	return &categorizerImpl{synonyms: synonyms}
}

// Categorize tries an exact (case-insensitive) keyword match first, then substring
// containment in table order. Anything unrecognized is treated as a sale.
func (c *categorizerImpl) Categorize(description string) models.TransactionCategory {
	d := strings.ToLower(strings.TrimSpace(description))
	for _, s := range c.synonyms {
		if d == s.keyword {
			return s.category
		}
	}
	for _, s := range c.synonyms {
		if strings.Contains(d, s.keyword) {
			return s.category
		}
	}
	return models.CategorySale
}

// LoadCategoryMappings reads extra category keywords from a YAML file.
func LoadCategoryMappings(filePath string) ([]CategoryConfig, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("error reading category mappings '%s': %w", filePath, err)
	}

	var cfg CategoriesConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("error parsing category mappings '%s': %w", filePath, err)
	}

	for i, c := range cfg.Categories {
		if !c.Name.Valid() {
			return nil, fmt.Errorf("category mappings '%s': entry %d has unknown category %q", filePath, i+1, c.Name)
		}
	}
	logger.L.Info("Category mappings loaded", "path", filePath, "categories", len(cfg.Categories))
	return cfg.Categories, nil
}
