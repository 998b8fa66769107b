package repository

import (
	"context"
	"errors"
	"fmt"
	"log"

	"ad-aid-platform/models"
)

type seedTemplate struct {
	ID         string
	App        string
	Category   string
	Name       string
	Checked    bool
	Dimensions string
}

// initialTemplates is the template catalogue the platform starts with
var initialTemplates = []seedTemplate{
	{ID: "mt-s-1", App: "美图秀秀", Category: "开屏", Name: "动态开屏", Checked: false, Dimensions: "1440 x 2340"},
	{ID: "mt-s-2", App: "美图秀秀", Category: "开屏", Name: "上滑开屏", Checked: false, Dimensions: "1440 x 2340"},
	{ID: "mt-s-3", App: "美图秀秀", Category: "开屏", Name: "扭动开屏", Checked: false, Dimensions: "1440 x 2340"},
	{ID: "mt-s-4", App: "美图秀秀", Category: "开屏", Name: "气泡开屏", Checked: false, Dimensions: "1440 x 2340"},
	{ID: "mt-f-1", App: "美图秀秀", Category: "焦点视窗", Name: "动态焦点视窗", Checked: true, Dimensions: "1126 x 2436"},
	{ID: "mt-f-2", App: "美图秀秀", Category: "焦点视窗", Name: "静态焦点视窗", Checked: true, Dimensions: "1126 x 2436"},
	{ID: "mt-f-3", App: "美图秀秀", Category: "焦点视窗", Name: "沉浸式焦点视窗", Checked: false, Dimensions: "1126 x 2436"},
	{ID: "mt-fe-1", App: "美图秀秀", Category: "信息流", Name: "一键配方图文", Checked: false, Dimensions: "1080 x 1920"},
	{ID: "mt-ib-1", App: "美图秀秀", Category: "icon/banner", Name: "热推第三位", Checked: false, Dimensions: "1080 x 1920"},
	{ID: "mt-ib-2", App: "美图秀秀", Category: "icon/banner", Name: "热搜词第四位", Checked: false, Dimensions: "1080 x 1920"},
	{ID: "mt-ib-3", App: "美图秀秀", Category: "icon/banner", Name: "话题页背景板", Checked: false, Dimensions: "1080 x 1920"},
	{ID: "mt-ib-4", App: "美图秀秀", Category: "icon/banner", Name: "话题页banner", Checked: false, Dimensions: "1080 x 1920"},
	{ID: "mt-p-1", App: "美图秀秀", Category: "弹窗", Name: "保分页弹窗", Checked: false, Dimensions: "1080 x 1920"},
	{ID: "mt-p-2", App: "美图秀秀", Category: "弹窗", Name: "首页弹窗", Checked: false, Dimensions: "1080 x 1920"},
	{ID: "mt-p-3", App: "美图秀秀", Category: "弹窗", Name: "首页弹窗异形", Checked: false, Dimensions: "1080 x 1920"},
	{ID: "my-s-1", App: "美颜", Category: "开屏", Name: "动态开屏", Checked: false, Dimensions: "1440 x 2340"},
	{ID: "my-s-2", App: "美颜", Category: "开屏", Name: "上滑开屏", Checked: false, Dimensions: "1440 x 2340"},
	{ID: "my-s-3", App: "美颜", Category: "开屏", Name: "扭动开屏", Checked: false, Dimensions: "1440 x 2340"},
	{ID: "my-s-4", App: "美颜", Category: "开屏", Name: "气泡开屏", Checked: false, Dimensions: "1440 x 2340"},
	{ID: "my-f-1", App: "美颜", Category: "焦点视窗", Name: "动态焦点视窗", Checked: false, Dimensions: "1126 x 2436"},
	{ID: "my-f-2", App: "美颜", Category: "焦点视窗", Name: "静态焦点视窗", Checked: false, Dimensions: "1126 x 2436"},
	{ID: "my-p-1", App: "美颜", Category: "弹窗", Name: "弹窗精图", Checked: false, Dimensions: "1080 x 1920"},
	{ID: "my-ib-1", App: "美颜", Category: "icon/banner", Name: "百宝箱顶部banner", Checked: false, Dimensions: "1080 x 1920"},
	{ID: "wk-s-1", App: "wink", Category: "开屏", Name: "动态开屏", Checked: false, Dimensions: "1440 x 2340"},
	{ID: "wk-s-2", App: "wink", Category: "开屏", Name: "上滑开屏", Checked: false, Dimensions: "1440 x 2340"},
	{ID: "wk-s-3", App: "wink", Category: "开屏", Name: "扭动开屏", Checked: false, Dimensions: "1440 x 2340"},
	{ID: "wk-s-4", App: "wink", Category: "开屏", Name: "气泡开屏", Checked: false, Dimensions: "1440 x 2340"},
	{ID: "wk-f-1", App: "wink", Category: "焦点视窗", Name: "动态焦点视窗", Checked: false, Dimensions: "1126 x 2436"},
	{ID: "wk-f-2", App: "wink", Category: "焦点视窗", Name: "静态焦点视窗", Checked: false, Dimensions: "1126 x 2436"},
}

// SeedTemplates inserts the initial catalogue when the template store is empty.
// It returns the number of templates inserted.
func SeedTemplates(ctx context.Context, repo TemplateRepositoryInterface) (int, error) {
	existing, err := repo.List(ctx, 0, 1)
	if err != nil {
		return 0, fmt.Errorf("failed to check existing templates: %w", err)
	}
	if len(existing) > 0 {
		log.Printf("⏭️  Skipping seed: templates already present")
		return 0, nil
	}

	inserted := 0
	for _, s := range initialTemplates {
		dimensions := s.Dimensions
		_, err := repo.Create(ctx, &models.Template{
			ID:         s.ID,
			Name:       s.Name,
			App:        s.App,
			Category:   s.Category,
			Checked:    s.Checked,
			Dimensions: &dimensions,
		})
		if err != nil {
			if errors.Is(err, models.ErrConflict) {
				continue
			}
			return inserted, fmt.Errorf("failed to seed template %s: %w", s.ID, err)
		}
		inserted++
	}

	log.Printf("🌱 Seeded %d templates", inserted)
	return inserted, nil
}
