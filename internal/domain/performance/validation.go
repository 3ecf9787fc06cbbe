package performance

import (
	"fmt"
	"strings"

	"okr/internal/domain/scoring"
)

// ValidateTemplate checks the weight trees, star mappings and evaluator
// weights of a template.
func ValidateTemplate(tpl Template) []FieldIssue {
	var issues []FieldIssue
	add := func(field, format string, args ...any) {
		issues = append(issues, FieldIssue{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if strings.TrimSpace(tpl.Name) == "" {
		add("name", "is required")
	}
	if err := tpl.Weights.Validate(); err != nil {
		add("weightConfig", "%v", err)
	}
	if len(tpl.Categories) == 0 {
		add("categories", "at least one category is required")
		return issues
	}

	categoryIDs := map[string]bool{}
	categoryWeights := make([]float64, 0, len(tpl.Categories))
	for i, category := range tpl.Categories {
		field := fmt.Sprintf("categories[%d]", i)
		if strings.TrimSpace(category.Name) == "" {
			add(field+".name", "is required")
		}
		if category.ID != "" {
			if categoryIDs[category.ID] {
				add(field+".id", "duplicate id %q", category.ID)
			}
			categoryIDs[category.ID] = true
		}
		if category.Weight < 0 || category.Weight > 100 {
			add(field+".weight", "must be between 0 and 100")
		}
		categoryWeights = append(categoryWeights, category.Weight)
		if category.StarMapping != nil {
			if err := category.StarMapping.Validate(); err != nil {
				add(field+".starMapping", "%v", err)
			}
		}
		issues = append(issues, validateItems(field, category.Items)...)
	}
	if err := scoring.ValidatePercentWeights(categoryWeights); err != nil {
		add("categories", "%v", err)
	}
	return issues
}

func validateItems(field string, items []TemplateItem) []FieldIssue {
	var issues []FieldIssue
	if len(items) == 0 {
		return append(issues, FieldIssue{Field: field + ".items", Message: "at least one item is required"})
	}
	itemIDs := map[string]bool{}
	weights := make([]float64, 0, len(items))
	unweighted := true
	for j, item := range items {
		itemField := fmt.Sprintf("%s.items[%d]", field, j)
		if strings.TrimSpace(item.Name) == "" {
			issues = append(issues, FieldIssue{Field: itemField + ".name", Message: "is required"})
		}
		if item.ID != "" {
			if itemIDs[item.ID] {
				issues = append(issues, FieldIssue{Field: itemField + ".id", Message: fmt.Sprintf("duplicate id %q", item.ID)})
			}
			itemIDs[item.ID] = true
		}
		if item.Weight < 0 || item.Weight > 100 {
			issues = append(issues, FieldIssue{Field: itemField + ".weight", Message: "must be between 0 and 100"})
		}
		if item.Weight != 0 {
			unweighted = false
		}
		weights = append(weights, item.Weight)
	}
	// All-zero item weights mean the category score is a plain mean.
	if unweighted {
		return issues
	}
	if err := scoring.ValidatePercentWeights(weights); err != nil {
		issues = append(issues, FieldIssue{Field: field + ".items", Message: err.Error()})
	}
	return issues
}

// validateStarMode checks that every category can convert stars for the
// given boss mode.
func validateStarMode(tpl Template, mode BossMode) []FieldIssue {
	if mode != BossModeSimplified {
		return nil
	}
	var issues []FieldIssue
	for i, category := range tpl.Categories {
		if !category.StarMapping.Complete() {
			issues = append(issues, FieldIssue{
				Field:   fmt.Sprintf("template.categories[%d].starMapping", i),
				Message: "simplified boss mode needs a mapping for every star value",
			})
		}
	}
	return issues
}
