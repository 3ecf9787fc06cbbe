package performance

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"okr/internal/domain/scoring"
)

func (s *Service) SaveDraft(ctx context.Context, actor Actor, input EvaluationInput) (EvaluationRecord, error) {
	return s.write(ctx, actor, input, false)
}

// Submit validates completeness, recomputes every score from the item
// inputs and freezes the record.
func (s *Service) Submit(ctx context.Context, actor Actor, input EvaluationInput) (EvaluationRecord, error) {
	return s.write(ctx, actor, input, true)
}

type evaluationTarget struct {
	assessment  Assessment
	template    Template
	participant Participant
}

func (s *Service) prepare(ctx context.Context, actor Actor, assessmentID, evaluateeID string, evaluator scoring.EvaluatorType) (evaluationTarget, error) {
	if !evaluator.Valid() {
		return evaluationTarget{}, fmt.Errorf("%w: %q", ErrInvalidEvaluator, evaluator)
	}
	assessment, err := s.store.GetAssessment(ctx, actor.TenantID, assessmentID)
	if err != nil {
		return evaluationTarget{}, err
	}
	switch assessment.Status {
	case AssessmentStatusClosed:
		return evaluationTarget{}, ErrAssessmentClosed
	case AssessmentStatusDraft:
		return evaluationTarget{}, ErrAssessmentNotActive
	}
	participant, err := s.store.GetParticipant(ctx, actor.TenantID, assessmentID, evaluateeID)
	if err != nil {
		return evaluationTarget{}, err
	}
	if !canEvaluate(actor, participant, evaluator) {
		return evaluationTarget{}, ErrForbidden
	}
	tpl, err := s.store.GetTemplate(ctx, actor.TenantID, assessment.TemplateID)
	if err != nil {
		return evaluationTarget{}, err
	}
	if evaluator == scoring.EvaluatorBoss && !tpl.Weights.BossEnabled {
		return evaluationTarget{}, ErrBossDisabled
	}

	existing, err := s.store.GetRecord(ctx, actor.TenantID, assessmentID, evaluateeID, evaluator)
	switch {
	case err == nil && existing.Submitted():
		return evaluationTarget{}, ErrRecordSubmitted
	case err != nil && !errors.Is(err, ErrNotFound):
		return evaluationTarget{}, err
	}
	return evaluationTarget{assessment: assessment, template: tpl, participant: participant}, nil
}

func (s *Service) write(ctx context.Context, actor Actor, input EvaluationInput, submit bool) (EvaluationRecord, error) {
	target, err := s.prepare(ctx, actor, input.AssessmentID, input.EvaluateeID, input.EvaluatorType)
	if err != nil {
		return EvaluationRecord{}, err
	}
	if input.EvaluatorType == scoring.EvaluatorBoss && target.assessment.BossMode.UsesStars() {
		return EvaluationRecord{}, fmt.Errorf("%w: assessment uses %s boss mode", ErrBossModeMismatch, target.assessment.BossMode)
	}

	categories, overall, err := scoreCategories(target.template, input.EvaluatorType, input.Categories, submit)
	if err != nil {
		return EvaluationRecord{}, err
	}
	feedback := strings.TrimSpace(input.Feedback)
	if submit && input.EvaluatorType == scoring.EvaluatorLeader && feedback == "" {
		return EvaluationRecord{}, ErrFeedbackRequired
	}

	record := EvaluationRecord{
		AssessmentID:  input.AssessmentID,
		EvaluateeID:   input.EvaluateeID,
		EvaluatorID:   actor.UserID,
		EvaluatorType: input.EvaluatorType,
		Overall:       overall,
		Status:        scoring.RecordStatusDraft,
		Categories:    categories,
		Feedback:      feedback,
	}
	return s.save(ctx, actor.TenantID, record, submit)
}

// SubmitBossSimplified converts one star rating per category into category
// scores and submits the boss record in a single step.
func (s *Service) SubmitBossSimplified(ctx context.Context, actor Actor, input BossStarsInput) (EvaluationRecord, error) {
	target, err := s.prepare(ctx, actor, input.AssessmentID, input.EvaluateeID, scoring.EvaluatorBoss)
	if err != nil {
		return EvaluationRecord{}, err
	}
	mode := target.assessment.BossMode
	if !mode.UsesStars() {
		return EvaluationRecord{}, fmt.Errorf("%w: assessment uses %s boss mode", ErrBossModeMismatch, mode)
	}

	categories, err := starCategories(target.template, mode, input.Stars)
	if err != nil {
		return EvaluationRecord{}, err
	}
	total, err := scoring.TotalScore(categories)
	if err != nil {
		return EvaluationRecord{}, err
	}

	stars := make(map[string]int, len(input.Stars))
	for id, value := range input.Stars {
		stars[id] = value
	}
	record := EvaluationRecord{
		AssessmentID:  input.AssessmentID,
		EvaluateeID:   input.EvaluateeID,
		EvaluatorID:   actor.UserID,
		EvaluatorType: scoring.EvaluatorBoss,
		Overall:       scoring.Round2(total),
		Categories:    categories,
		Feedback:      strings.TrimSpace(input.Feedback),
		Stars:         stars,
	}
	return s.save(ctx, actor.TenantID, record, true)
}

func (s *Service) save(ctx context.Context, tenantID string, record EvaluationRecord, submit bool) (EvaluationRecord, error) {
	now := s.now().UTC()
	record.Status = scoring.RecordStatusDraft
	if submit {
		record.Status = scoring.RecordStatusSubmitted
		record.SubmittedAt = &now
	}
	id, err := s.store.UpsertRecord(ctx, tenantID, record)
	if err != nil {
		return EvaluationRecord{}, err
	}
	record.ID = id
	record.UpdatedAt = now
	return record, nil
}

// GetRecords returns the records about one evaluatee that the actor may see.
// Drafts are only visible to their author.
func (s *Service) GetRecords(ctx context.Context, actor Actor, assessmentID, evaluateeID string) ([]EvaluationRecord, error) {
	if _, err := s.participant(ctx, actor, assessmentID, evaluateeID); err != nil {
		return nil, err
	}
	records, err := s.store.ListRecords(ctx, actor.TenantID, assessmentID, evaluateeID)
	if err != nil {
		return nil, err
	}
	visible := make([]EvaluationRecord, 0, len(records))
	for _, record := range records {
		if !record.Submitted() && record.EvaluatorID != actor.UserID {
			continue
		}
		visible = append(visible, record)
	}
	return visible, nil
}

// scoreCategories builds the category breakdown for an evaluator from item
// inputs. Categories the evaluator does not score are left out so they drop
// from the total. With requireComplete every applicable item must be scored;
// otherwise partially scored categories are kept with score 0.
func scoreCategories(tpl Template, evaluator scoring.EvaluatorType, inputs []CategoryInput, requireComplete bool) ([]scoring.CategoryScore, float64, error) {
	byID := make(map[string]TemplateCategory, len(tpl.Categories))
	for _, category := range tpl.Categories {
		byID[category.ID] = category
	}
	scored := map[string]map[string]ItemInput{}
	for _, in := range inputs {
		category, ok := byID[in.CategoryID]
		if !ok {
			return nil, 0, fmt.Errorf("%w: %s", ErrUnknownCategory, in.CategoryID)
		}
		if !category.AppliesTo(evaluator) {
			return nil, 0, fmt.Errorf("%w: %s", ErrLeaderOnlyCategory, category.Name)
		}
		items := scored[in.CategoryID]
		if items == nil {
			items = map[string]ItemInput{}
			scored[in.CategoryID] = items
		}
		for _, item := range in.Items {
			if item.Score < scoring.MinScore || item.Score > scoring.MaxScore {
				return nil, 0, fmt.Errorf("%w: item %s scored %v", scoring.ErrScoreOutOfRange, item.ItemID, item.Score)
			}
			items[item.ItemID] = item
		}
	}

	var out []scoring.CategoryScore
	for _, category := range tpl.Categories {
		if !category.AppliesTo(evaluator) {
			continue
		}
		given := scored[category.ID]
		known := make(map[string]bool, len(category.Items))
		items := make([]scoring.ItemScore, 0, len(category.Items))
		for _, item := range category.Items {
			known[item.ID] = true
			in, ok := given[item.ID]
			if !ok {
				continue
			}
			items = append(items, scoring.ItemScore{
				ItemID:  item.ID,
				Name:    item.Name,
				Weight:  item.Weight,
				Score:   in.Score,
				Comment: strings.TrimSpace(in.Comment),
			})
		}
		for itemID := range given {
			if !known[itemID] {
				return nil, 0, fmt.Errorf("%w: %s in category %s", ErrUnknownItem, itemID, category.Name)
			}
		}

		cs := scoring.CategoryScore{CategoryID: category.ID, Name: category.Name, Weight: category.Weight, Items: items}
		switch {
		case len(items) == len(category.Items):
			score, err := scoring.RollupCategory(items)
			if err != nil {
				return nil, 0, fmt.Errorf("category %s: %w", category.Name, err)
			}
			cs.Score = scoring.Round2(score)
		case requireComplete:
			return nil, 0, fmt.Errorf("%w: category %s has %d of %d items scored", ErrIncomplete, category.Name, len(items), len(category.Items))
		}
		out = append(out, cs)
	}

	total, err := scoring.TotalScore(out)
	if err != nil {
		return nil, 0, err
	}
	return out, scoring.Round2(total), nil
}

func starCategories(tpl Template, mode BossMode, stars map[string]int) ([]scoring.CategoryScore, error) {
	known := make(map[string]bool, len(tpl.Categories))
	for _, category := range tpl.Categories {
		known[category.ID] = true
	}
	for id := range stars {
		if !known[id] {
			return nil, fmt.Errorf("%w: %s", ErrUnknownCategory, id)
		}
	}

	out := make([]scoring.CategoryScore, 0, len(tpl.Categories))
	for _, category := range tpl.Categories {
		rating, ok := stars[category.ID]
		if !ok {
			return nil, fmt.Errorf("%w: category %s not rated", ErrIncomplete, category.Name)
		}
		mapping := category.StarMapping
		if mode == BossModeTraditional {
			mapping = scoring.TraditionalStarMapping
		}
		score, err := scoring.StarToScore(rating, mapping)
		if err != nil {
			return nil, fmt.Errorf("category %s: %w", category.Name, err)
		}
		out = append(out, scoring.CategoryScore{
			CategoryID: category.ID,
			Name:       category.Name,
			Weight:     category.Weight,
			Score:      score,
		})
	}
	return out, nil
}
