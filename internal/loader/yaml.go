// Package loader imports inventory seed files into the registry.
package loader

import (
	"context"
	"fmt"
	"os"

	"assetwatch/internal/domain"

	"gopkg.in/yaml.v3"
)

// InventoryYAML represents the seed file structure
type InventoryYAML struct {
	Version    string          `yaml:"version,omitempty"`
	Custodians []CustodianYAML `yaml:"custodians,omitempty"`
	Assets     []AssetYAML     `yaml:"assets"`
}

// CustodianYAML represents a custodian in YAML format
type CustodianYAML struct {
	Name       string `yaml:"name"`
	Email      string `yaml:"email,omitempty"`
	Department string `yaml:"department,omitempty"`
}

// AssetYAML represents an asset in YAML format
type AssetYAML struct {
	Tag      string `yaml:"tag"`
	Name     string `yaml:"name"`
	Category string `yaml:"category,omitempty"`
	Serial   string `yaml:"serial,omitempty"`
	MAC      string `yaml:"mac,omitempty"`
	Location string `yaml:"location,omitempty"`
	Notes    string `yaml:"notes,omitempty"`
}

// Repository is the subset of the registry the importer needs.
type Repository interface {
	GetAssetByTag(ctx context.Context, tag string) (*domain.Asset, error)
	CreateAsset(ctx context.Context, asset *domain.Asset) error
	UpdateAsset(ctx context.Context, asset *domain.Asset) error
	ListCustodians(ctx context.Context) ([]domain.Custodian, error)
	CreateCustodian(ctx context.Context, c *domain.Custodian) error
}

// ImportResult summarizes one import pass.
type ImportResult struct {
	AssetsCreated     int `json:"assets_created"`
	AssetsUpdated     int `json:"assets_updated"`
	CustodiansCreated int `json:"custodians_created"`
}

// LoadFile reads and parses an inventory seed file.
func LoadFile(path string) (*InventoryYAML, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read inventory: %w", err)
	}
	return Parse(data)
}

// Parse parses inventory from YAML bytes
func Parse(data []byte) (*InventoryYAML, error) {
	var inv InventoryYAML
	if err := yaml.Unmarshal(data, &inv); err != nil {
		return nil, fmt.Errorf("parse inventory: %w", err)
	}
	return &inv, nil
}

// Import upserts the inventory into the registry: assets are keyed by
// tag, custodians by name. Existing assets keep their status, network
// observations, and custody records; only the descriptive fields are
// rewritten.
func Import(ctx context.Context, repo Repository, inv *InventoryYAML) (*ImportResult, error) {
	result := &ImportResult{}

	existing, err := repo.ListCustodians(ctx)
	if err != nil {
		return nil, fmt.Errorf("list custodians: %w", err)
	}
	byName := make(map[string]bool, len(existing))
	for _, c := range existing {
		byName[c.Name] = true
	}

	for _, cy := range inv.Custodians {
		if cy.Name == "" {
			return nil, fmt.Errorf("custodian with empty name in inventory")
		}
		if byName[cy.Name] {
			continue
		}
		c := &domain.Custodian{Name: cy.Name, Email: cy.Email, Department: cy.Department}
		if err := repo.CreateCustodian(ctx, c); err != nil {
			return nil, fmt.Errorf("create custodian %s: %w", cy.Name, err)
		}
		byName[cy.Name] = true
		result.CustodiansCreated++
	}

	for _, ay := range inv.Assets {
		if ay.Tag == "" || ay.Name == "" {
			return nil, fmt.Errorf("asset with empty tag or name in inventory")
		}

		mac := ay.MAC
		if mac != "" {
			mac, err = domain.NormalizeMAC(mac)
			if err != nil {
				return nil, fmt.Errorf("asset %s: %w", ay.Tag, err)
			}
		}

		current, err := repo.GetAssetByTag(ctx, ay.Tag)
		if err != nil {
			return nil, fmt.Errorf("look up asset %s: %w", ay.Tag, err)
		}

		if current == nil {
			asset := &domain.Asset{
				Tag:          ay.Tag,
				Name:         ay.Name,
				Category:     ay.Category,
				SerialNumber: ay.Serial,
				MAC:          mac,
				Location:     ay.Location,
				Notes:        ay.Notes,
			}
			if err := repo.CreateAsset(ctx, asset); err != nil {
				return nil, fmt.Errorf("create asset %s: %w", ay.Tag, err)
			}
			result.AssetsCreated++
			continue
		}

		current.Name = ay.Name
		current.Category = ay.Category
		current.SerialNumber = ay.Serial
		current.MAC = mac
		if ay.Location != "" {
			current.Location = ay.Location
		}
		current.Notes = ay.Notes
		if err := repo.UpdateAsset(ctx, current); err != nil {
			return nil, fmt.Errorf("update asset %s: %w", ay.Tag, err)
		}
		result.AssetsUpdated++
	}

	return result, nil
}

// ImportFile loads and imports a seed file in one step.
func ImportFile(ctx context.Context, repo Repository, path string) (*ImportResult, error) {
	inv, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	return Import(ctx, repo, inv)
}
