package domain

import (
	"fmt"
	"strings"
	"time"
)

type ScenarioCategory string

const (
	CategorySuturing     ScenarioCategory = "suturing"
	CategoryIntubation   ScenarioCategory = "intubation"
	CategoryVenipuncture ScenarioCategory = "venipuncture"
	CategoryCPR          ScenarioCategory = "cpr"
	CategoryAuscultation ScenarioCategory = "auscultation"
)

func IsScenarioCategory(v string) bool {
	switch ScenarioCategory(v) {
	case CategorySuturing, CategoryIntubation, CategoryVenipuncture, CategoryCPR, CategoryAuscultation:
		return true
	}
	return false
}

type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

func IsDifficulty(v string) bool {
	switch Difficulty(v) {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return true
	}
	return false
}

const (
	MinScenarioTitle   = 5
	MinScenarioMinutes = 5
	MaxScenarioMinutes = 120
)

type ScenarioStep struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type EvaluationCriterion struct {
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
}

// Scenario is an authored AR training procedure.
type Scenario struct {
	ID               string                `json:"id"`
	Title            string                `json:"title"`
	Description      string                `json:"description"`
	Category         ScenarioCategory      `json:"category"`
	Difficulty       Difficulty            `json:"difficulty"`
	ModelURL         string                `json:"model_url,omitempty"`
	ThumbnailURL     string                `json:"thumbnail_url,omitempty"`
	Steps            []ScenarioStep        `json:"steps"`
	Criteria         []EvaluationCriterion `json:"criteria,omitempty"`
	EstimatedMinutes int                   `json:"estimated_minutes"`
	CreatorID        string                `json:"creator_id"`
	Public           bool                  `json:"public"`
	Version          int                   `json:"version"`
	CompletionCount  int                   `json:"completion_count"`
	AverageScore     float64               `json:"average_score"`
	CreatedAt        time.Time             `json:"created_at"`
	UpdatedAt        time.Time             `json:"updated_at"`
}

func (s *Scenario) Validate() error {
	if len(strings.TrimSpace(s.Title)) < MinScenarioTitle {
		return WrapError(ErrInvalidInput, "scenario", fmt.Errorf("title must be at least %d characters", MinScenarioTitle))
	}
	if !IsScenarioCategory(string(s.Category)) {
		return WrapError(ErrInvalidInput, "scenario", fmt.Errorf("unknown category: %s", s.Category))
	}
	if !IsDifficulty(string(s.Difficulty)) {
		return WrapError(ErrInvalidInput, "scenario", fmt.Errorf("unknown difficulty: %s", s.Difficulty))
	}
	if len(s.Steps) == 0 {
		return WrapError(ErrInvalidInput, "scenario", fmt.Errorf("scenario must have at least one step"))
	}
	for i, step := range s.Steps {
		if strings.TrimSpace(step.Title) == "" || strings.TrimSpace(step.Description) == "" {
			return WrapError(ErrInvalidInput, "scenario", fmt.Errorf("step %d must have title and description", i+1))
		}
	}
	for i, c := range s.Criteria {
		if strings.TrimSpace(c.Name) == "" {
			return WrapError(ErrInvalidInput, "scenario", fmt.Errorf("criterion %d must have a name", i+1))
		}
		if c.Weight <= 0 {
			return WrapError(ErrInvalidInput, "scenario", fmt.Errorf("criterion %d weight must be positive", i+1))
		}
	}
	if s.EstimatedMinutes < MinScenarioMinutes || s.EstimatedMinutes > MaxScenarioMinutes {
		return WrapError(ErrInvalidInput, "scenario", fmt.Errorf("estimated duration must be within [%d, %d] minutes", MinScenarioMinutes, MaxScenarioMinutes))
	}
	if strings.TrimSpace(s.CreatorID) == "" {
		return WrapError(ErrInvalidInput, "scenario", fmt.Errorf("creator id is required"))
	}
	return nil
}

// RecordCompletion folds a completed run into the running average:
// avg' = (avg*count + score) / (count + 1).
func (s *Scenario) RecordCompletion(score float64, now time.Time) error {
	if score < 0 || score > 100 {
		return WrapError(ErrInvalidInput, "record completion", fmt.Errorf("score %.2f is outside [0, 100]", score))
	}
	s.AverageScore = (s.AverageScore*float64(s.CompletionCount) + score) / float64(s.CompletionCount+1)
	s.CompletionCount++
	s.UpdatedAt = now
	return nil
}

// Republish bumps the version. A re-published version always starts private.
func (s *Scenario) Republish(now time.Time) {
	s.Version++
	s.Public = false
	s.UpdatedAt = now
}
