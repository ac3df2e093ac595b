package services

import (
	"context"
	"errors"
	"log"

	"github.com/dcode-github/homlet/models"
	"github.com/dcode-github/homlet/store"
)

type Admin struct {
	store store.Store
}

func NewAdmin(s store.Store) *Admin {
	return &Admin{store: s}
}

type DashboardStats struct {
	Clients      int64 `json:"clientsCount"`
	Agents       int64 `json:"agentsCount"`
	Properties   int64 `json:"propertiesCount"`
	PendingDeals int64 `json:"pendingDeals"`
	Contacts     int64 `json:"contactsCount"`
}

func (a *Admin) Stats(ctx context.Context) (*DashboardStats, error) {
	var (
		stats DashboardStats
		err   error
	)
	if stats.Clients, err = a.store.CountUsersByRole(ctx, models.RoleClient); err != nil {
		return nil, err
	}
	if stats.Agents, err = a.store.CountUsersByRole(ctx, models.RoleAgent); err != nil {
		return nil, err
	}
	if stats.Properties, err = a.store.CountProperties(ctx); err != nil {
		return nil, err
	}
	if stats.PendingDeals, err = a.store.CountDealsByStatus(ctx, models.DealPending); err != nil {
		return nil, err
	}
	if stats.Contacts, err = a.store.CountContacts(ctx); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (a *Admin) Users(ctx context.Context, role models.Role) ([]models.User, error) {
	return a.store.ListUsersByRole(ctx, role)
}

func (a *Admin) Properties(ctx context.Context) ([]models.Property, error) {
	return a.store.ListProperties(ctx, models.ListingFilter{})
}

func (a *Admin) Deals(ctx context.Context) ([]models.Deal, error) {
	return a.store.ListDeals(ctx, nil)
}

// ToggleAgentBlock flips the agent's blocked flag and returns the agent as
// stored afterwards.
func (a *Admin) ToggleAgentBlock(ctx context.Context, agentHex string) (*models.User, error) {
	agentID, err := parseID(agentHex, "agent")
	if err != nil {
		return nil, err
	}
	agent, err := a.store.ToggleAgentBlocked(ctx, agentID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.WrapError(models.ErrNotFound, "Agent not found", err)
		}
		return nil, err
	}
	log.Printf("Agent %s blocked=%t", agentHex, agent.IsBlocked)
	return agent, nil
}

func (a *Admin) CloseDeal(ctx context.Context, dealHex string) (*models.Deal, error) {
	return a.setDealStatus(ctx, dealHex, models.DealClosed)
}

func (a *Admin) FlagDeal(ctx context.Context, dealHex string) (*models.Deal, error) {
	return a.setDealStatus(ctx, dealHex, models.DealFlagged)
}

func (a *Admin) setDealStatus(ctx context.Context, dealHex string, status models.DealStatus) (*models.Deal, error) {
	dealID, err := parseID(dealHex, "deal")
	if err != nil {
		return nil, err
	}
	deal, err := a.store.SetDealStatus(ctx, dealID, status)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.WrapError(models.ErrNotFound, "Deal not found", err)
		}
		return nil, err
	}
	return deal, nil
}
