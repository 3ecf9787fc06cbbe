package db

import (
	"context"
	_ "embed"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"gopkg.in/yaml.v3"

	"okr/internal/domain/auth"
	"okr/internal/domain/performance"
	"okr/internal/domain/scoring"
	"okr/internal/platform/config"
)

//go:embed default_template.yaml
var defaultTemplateYAML []byte

func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	tenantID, err := ensureTenant(ctx, pool, cfg.SeedTenantName)
	if err != nil {
		return err
	}

	if err := ensureAdminUser(ctx, pool, tenantID, cfg.SeedAdminEmail, cfg.SeedAdminPassword); err != nil {
		return err
	}

	if cfg.SeedDefaultTemplate {
		if err := ensureDefaultTemplate(ctx, performance.NewStore(pool), tenantID); err != nil {
			return err
		}
	}
	return nil
}

func ensureTenant(ctx context.Context, pool *pgxpool.Pool, name string) (string, error) {
	var id string
	err := pool.QueryRow(ctx, "SELECT id FROM tenants WHERE name = $1", name).Scan(&id)
	if err == nil {
		return id, nil
	}

	err = pool.QueryRow(ctx, "INSERT INTO tenants (name) VALUES ($1) RETURNING id", name).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func ensureAdminUser(ctx context.Context, pool *pgxpool.Pool, tenantID, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || strings.TrimSpace(password) == "" {
		return nil
	}

	var id string
	err := pool.QueryRow(ctx, "SELECT id FROM users WHERE tenant_id = $1 AND email = $2", tenantID, email).Scan(&id)
	if err == nil {
		return nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx, `
    INSERT INTO users (tenant_id, email, name, role, password_hash)
    VALUES ($1, $2, $3, $4, $5)
  `, tenantID, email, "Administrator", auth.RoleAdmin, hash)
	return err
}

type templateSeeder interface {
	ListTemplates(ctx context.Context, tenantID string) ([]performance.Template, error)
	CreateTemplate(ctx context.Context, tenantID string, tpl performance.Template) (string, error)
}

func ensureDefaultTemplate(ctx context.Context, store templateSeeder, tenantID string) error {
	existing, err := store.ListTemplates(ctx, tenantID)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	tpl, err := DefaultTemplate()
	if err != nil {
		return err
	}
	_, err = store.CreateTemplate(ctx, tenantID, tpl)
	return err
}

type templateFile struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Weights     struct {
		Mode        string  `yaml:"mode"`
		Self        float64 `yaml:"self"`
		Leader      float64 `yaml:"leader"`
		Boss        float64 `yaml:"boss"`
		BossEnabled bool    `yaml:"bossEnabled"`
	} `yaml:"weights"`
	Categories []struct {
		Name        string          `yaml:"name"`
		Weight      float64         `yaml:"weight"`
		LeaderOnly  bool            `yaml:"leaderOnly"`
		StarMapping map[int]float64 `yaml:"starMapping"`
		Items       []struct {
			Name        string  `yaml:"name"`
			Weight      float64 `yaml:"weight"`
			Description string  `yaml:"description"`
		} `yaml:"items"`
	} `yaml:"categories"`
}

// DefaultTemplate parses the embedded template definition and checks it with
// the same rules applied to templates saved through the API.
func DefaultTemplate() (performance.Template, error) {
	return parseTemplate(defaultTemplateYAML)
}

func parseTemplate(data []byte) (performance.Template, error) {
	var file templateFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return performance.Template{}, fmt.Errorf("parse template: %w", err)
	}

	tpl := performance.Template{
		Name:        file.Name,
		Description: file.Description,
		Weights: scoring.WeightConfig{
			Mode:        scoring.ScoringMode(file.Weights.Mode),
			Simple:      &scoring.SimpleWeights{Self: file.Weights.Self, Leader: file.Weights.Leader, Boss: file.Weights.Boss},
			BossEnabled: file.Weights.BossEnabled,
		},
	}
	for ci, c := range file.Categories {
		category := performance.TemplateCategory{
			ID:         fmt.Sprintf("cat-%d", ci+1),
			Name:       c.Name,
			Weight:     c.Weight,
			LeaderOnly: c.LeaderOnly,
		}
		if len(c.StarMapping) > 0 {
			category.StarMapping = scoring.StarMapping{}
			for stars, score := range c.StarMapping {
				category.StarMapping[strconv.Itoa(stars)] = score
			}
		}
		for ii, item := range c.Items {
			category.Items = append(category.Items, performance.TemplateItem{
				ID:          fmt.Sprintf("%s-item-%d", category.ID, ii+1),
				Name:        item.Name,
				Weight:      item.Weight,
				Description: item.Description,
			})
		}
		tpl.Categories = append(tpl.Categories, category)
	}

	if issues := performance.ValidateTemplate(tpl); len(issues) > 0 {
		return performance.Template{}, fmt.Errorf("%w: %s: %s", performance.ErrInvalidTemplate, issues[0].Field, issues[0].Message)
	}
	return tpl, nil
}
