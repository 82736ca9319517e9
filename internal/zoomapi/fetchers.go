// Woodson Zoom Dashboard - Zoom Phone Operations Dashboard
// Copyright 2026 J. Hejl (jhejl10)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jhejl10/woodson-zoom-dashboard-sub000

package zoomapi

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/jhejl10/woodson-zoom-dashboard-sub000/internal/models"
)

// listPage is the shared pagination wrapper for Zoom list responses.
type listPage struct {
	NextPageToken string `json:"next_page_token"`
	TotalRecords  int    `json:"total_records"`

	Users       []models.PhoneUser  `json:"users"`
	Sites       []models.Site       `json:"sites"`
	CommonAreas []models.CommonArea `json:"common_areas"`
	Devices     []models.Device     `json:"devices"`
}

// listAll follows next_page_token until the listing is exhausted, handing
// each decoded page to collect.
func (c *Client) listAll(ctx context.Context, path string, collect func(*listPage)) error {
	token := ""
	for {
		query := url.Values{"page_size": {strconv.Itoa(c.pageSize)}}
		if token != "" {
			query.Set("next_page_token", token)
		}

		body, err := c.get(ctx, path, query)
		if err != nil {
			return err
		}

		var page listPage
		if err := json.Unmarshal(body, &page); err != nil {
			return fmt.Errorf("zoomapi: decode %s page: %w", path, err)
		}

		collect(&page)

		if page.NextPageToken == "" {
			return nil
		}
		token = page.NextPageToken
	}
}

// ListUsers fetches all Zoom Phone users.
func (c *Client) ListUsers(ctx context.Context) ([]models.PhoneUser, error) {
	var users []models.PhoneUser
	err := c.listAll(ctx, "/phone/users", func(p *listPage) {
		users = append(users, p.Users...)
	})
	if err != nil {
		return nil, err
	}
	return users, nil
}

// ListSites fetches all Zoom Phone sites.
func (c *Client) ListSites(ctx context.Context) ([]models.Site, error) {
	var sites []models.Site
	err := c.listAll(ctx, "/phone/sites", func(p *listPage) {
		sites = append(sites, p.Sites...)
	})
	if err != nil {
		return nil, err
	}
	return sites, nil
}

// ListCommonAreas fetches all common-area phones.
func (c *Client) ListCommonAreas(ctx context.Context) ([]models.CommonArea, error) {
	var areas []models.CommonArea
	err := c.listAll(ctx, "/phone/common_areas", func(p *listPage) {
		areas = append(areas, p.CommonAreas...)
	})
	if err != nil {
		return nil, err
	}
	return areas, nil
}

// ListDevices fetches all provisioned phone devices.
func (c *Client) ListDevices(ctx context.Context) ([]models.Device, error) {
	var devices []models.Device
	err := c.listAll(ctx, "/phone/devices", func(p *listPage) {
		devices = append(devices, p.Devices...)
	})
	if err != nil {
		return nil, err
	}
	return devices, nil
}

// presenceResponse is the shape of the presence status endpoint.
type presenceResponse struct {
	Status        string `json:"status"`
	PersonalNotes string `json:"personal_notes"`
}

// GetUserPresence fetches the presence status of one user.
func (c *Client) GetUserPresence(ctx context.Context, userID string) (*models.PhoneUserPresence, error) {
	body, err := c.get(ctx, "/users/"+url.PathEscape(userID)+"/presence_status", nil)
	if err != nil {
		return nil, err
	}

	var resp presenceResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("zoomapi: decode presence for %s: %w", userID, err)
	}

	return &models.PhoneUserPresence{
		UserID:        userID,
		Status:        resp.Status,
		PersonalNotes: resp.PersonalNotes,
	}, nil
}
