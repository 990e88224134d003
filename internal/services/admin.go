package services

import (
	"context"
	"net/http"
	"net/url"

	"github.com/desertthunder/marquee/internal/models"
)

type usersEnvelope struct {
	Users []models.UserRecord `json:"users"`
}

type userRecordEnvelope struct {
	User models.UserRecord `json:"user"`
}

type statsEnvelope struct {
	Stats models.DashboardStats `json:"stats"`
}

// AdminClient calls the admin-only user management endpoints.
//
// It does not check the caller's role; the admin slice guards every call client-side.
type AdminClient struct {
	gateway *Gateway
}

// NewAdminClient creates an [AdminClient].
func NewAdminClient(g *Gateway) *AdminClient {
	return &AdminClient{gateway: g}
}

// Users lists accounts matching filters.
func (c *AdminClient) Users(ctx context.Context, filters models.UserFilters) Result[[]models.UserRecord] {
	q := url.Values{}
	if filters.Query != "" {
		q.Set("query", filters.Query)
	}
	if filters.Role != "" {
		q.Set("role", filters.Role)
	}
	if filters.Status != "" {
		q.Set("status", filters.Status)
	}

	ep := endpoint("admin.users", http.MethodGet, "/api/admin/users", "Failed to fetch users").WithQuery(q)
	return Map(Call[usersEnvelope](ctx, c.gateway, ep, nil), func(e usersEnvelope) []models.UserRecord {
		if e.Users == nil {
			return []models.UserRecord{}
		}
		return e.Users
	})
}

// UpdateUser applies patch to the record and returns the updated record.
func (c *AdminClient) UpdateUser(ctx context.Context, recordID string, patch models.UserPatch) Result[models.UserRecord] {
	ep := endpoint("admin.update_user", http.MethodPut, "/api/admin/users/"+url.PathEscape(recordID), "Failed to update user")
	return Map(Call[userRecordEnvelope](ctx, c.gateway, ep, patch), func(e userRecordEnvelope) models.UserRecord { return e.User })
}

// DeleteUser removes the record.
func (c *AdminClient) DeleteUser(ctx context.Context, recordID string) Result[struct{}] {
	ep := endpoint("admin.delete_user", http.MethodDelete, "/api/admin/users/"+url.PathEscape(recordID), "Failed to delete user")
	return Call[struct{}](ctx, c.gateway, ep, nil)
}

// DashboardStats fetches aggregate counters.
func (c *AdminClient) DashboardStats(ctx context.Context) Result[models.DashboardStats] {
	ep := endpoint("admin.stats", http.MethodGet, "/api/admin/stats", "Failed to fetch dashboard stats")
	return Map(Call[statsEnvelope](ctx, c.gateway, ep, nil), func(e statsEnvelope) models.DashboardStats { return e.Stats })
}
