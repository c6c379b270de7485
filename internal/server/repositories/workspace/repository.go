// Package workspace holds the per-user integrations and automations.
package workspace

import (
	"context"

	"github.com/dmitrijs2005/minutes/internal/models"
)

type Repository interface {
	ListIntegrations(ctx context.Context, userID string) ([]models.Integration, error)
	ListAutomations(ctx context.Context, userID string) ([]models.Automation, error)
}
