// Package seed imports authored suites, cases and action groups from a JSON fixture.
package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/parthasarathygopu/orca/internal/apperr"
	"github.com/parthasarathygopu/orca/internal/log"
	"github.com/parthasarathygopu/orca/internal/models"
	"github.com/parthasarathygopu/orca/internal/repository"

	"github.com/sirupsen/logrus"
)

// Fixture is the import file layout.
type Fixture struct {
	ActionGroups []ActionGroupData `json:"actionGroups"`
	Cases        []CaseData        `json:"cases"`
	Suites       []SuiteData       `json:"suites"`
}

// ActionGroupData represents an action group from JSON
type ActionGroupData struct {
	ID          string           `json:"id"`
	AppID       string           `json:"appId"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Type        models.BlockType `json:"type"`
	Actions     []models.Action  `json:"actions"`
}

// CaseData represents a test case from JSON
type CaseData struct {
	ID          string             `json:"id"`
	AppID       string             `json:"appId"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Blocks      []models.CaseBlock `json:"blocks"`
}

// SuiteData represents a test suite from JSON. Cases lists case ids in run order.
type SuiteData struct {
	ID          string   `json:"id"`
	AppID       string   `json:"appId"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Cases       []string `json:"cases"`
}

// Report counts what an import did.
type Report struct {
	Created int
	Skipped int
}

// LoadFile reads a fixture from path.
func LoadFile(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read data file: %w", err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	return &f, nil
}

// Import creates every artifact of f that does not exist yet. Children are appended
// through the ordering engine, so execution orders are dense whatever the fixture says.
// Action groups go first, then cases, then suites, so references resolve.
func Import(ctx context.Context, store *repository.Store, f *Fixture) (Report, error) {
	var report Report
	logger := log.GetLogger()

	err := store.Transaction(ctx, func(tx *repository.Store) error {
		for _, g := range f.ActionGroups {
			entry := logger.WithFields(logrus.Fields{"action_group": g.ID, "name": g.Name})
			exists, err := found(tx.ActionGroups.GetByID(ctx, g.ID))
			if err != nil {
				return err
			}
			if exists {
				entry.Info("Action group already exists, skipping")
				report.Skipped++
				continue
			}
			groupType := g.Type
			if groupType == "" {
				groupType = models.BlockTypeActionGroup
			}
			if err := tx.ActionGroups.Create(ctx, &models.ActionGroup{
				ID: g.ID, AppID: g.AppID, Name: g.Name, Description: g.Description, Type: groupType,
			}); err != nil {
				return err
			}
			if _, err := tx.Actions.InsertMany(ctx, g.ID, pointers(g.Actions)); err != nil {
				return err
			}
			entry.WithField("actions", len(g.Actions)).Info("Created action group")
			report.Created++
		}

		for _, c := range f.Cases {
			entry := logger.WithFields(logrus.Fields{"case": c.ID, "name": c.Name})
			exists, err := found(tx.Cases.GetByID(ctx, c.ID))
			if err != nil {
				return err
			}
			if exists {
				entry.Info("Case already exists, skipping")
				report.Skipped++
				continue
			}
			if err := tx.Cases.Create(ctx, &models.Case{
				ID: c.ID, AppID: c.AppID, Name: c.Name, Description: c.Description,
			}); err != nil {
				return err
			}
			for i := range c.Blocks {
				if c.Blocks[i].Kind == "" {
					c.Blocks[i].Kind = models.BlockKindReference
				}
			}
			if _, err := tx.CaseBlocks.InsertMany(ctx, c.ID, pointers(c.Blocks)); err != nil {
				return err
			}
			entry.WithField("blocks", len(c.Blocks)).Info("Created case")
			report.Created++
		}

		for _, s := range f.Suites {
			entry := logger.WithFields(logrus.Fields{"suite": s.ID, "name": s.Name})
			exists, err := found(tx.Suites.GetByID(ctx, s.ID))
			if err != nil {
				return err
			}
			if exists {
				entry.Info("Suite already exists, skipping")
				report.Skipped++
				continue
			}
			if err := tx.Suites.Create(ctx, &models.Suite{
				ID: s.ID, AppID: s.AppID, Name: s.Name, Description: s.Description,
			}); err != nil {
				return err
			}
			blocks := make([]*models.SuiteBlock, 0, len(s.Cases))
			for _, caseID := range s.Cases {
				ref := caseID
				blocks = append(blocks, &models.SuiteBlock{Type: models.SuiteBlockTypeTestCase, Reference: &ref})
			}
			if _, err := tx.SuiteBlocks.InsertMany(ctx, s.ID, blocks); err != nil {
				return err
			}
			entry.WithField("blocks", len(blocks)).Info("Created suite")
			report.Created++
		}
		return nil
	})
	if err != nil {
		return Report{}, err
	}
	return report, nil
}

// found turns a lookup into an existence check.
func found[T any](v *T, err error) (bool, error) {
	if err == nil {
		return true, nil
	}
	if apperr.Is(err, apperr.KindNotFound) {
		return false, nil
	}
	return false, err
}

func pointers[T any](items []T) []*T {
	out := make([]*T, len(items))
	for i := range items {
		out[i] = &items[i]
	}
	return out
}
