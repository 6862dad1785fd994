package memory

import (
	"context"
	"sort"

	"github.com/xiebiao/bookworld/internal/domain/site"
)

const (
	collSettings = "settings"
	collTeam     = "team"
)

type siteRepository struct {
	store *Store
}

// NewSiteRepository 创建站点数据仓储（内存文档存储）
func NewSiteRepository(store *Store) site.Repository {
	return &siteRepository{store: store}
}

func (r *siteRepository) Settings(ctx context.Context) (map[string]string, error) {
	settings := make(map[string]string)
	err := r.store.do(ctx, func(t *tx) error {
		for _, v := range t.scan(collSettings) {
			kv := v.([2]string)
			settings[kv[0]] = kv[1]
		}
		return nil
	})
	return settings, err
}

func (r *siteRepository) SetSetting(ctx context.Context, key, value string) error {
	if !site.IsKnownSetting(key) {
		return site.ErrUnknownSetting
	}
	return r.store.do(ctx, func(t *tx) error {
		t.put(collSettings, key, [2]string{key, value})
		return nil
	})
}

func (r *siteRepository) ListTeam(ctx context.Context) ([]site.TeamMember, error) {
	var members []site.TeamMember
	err := r.store.do(ctx, func(t *tx) error {
		for _, v := range t.scan(collTeam) {
			members = append(members, v.(site.TeamMember))
		}
		return nil
	})
	sort.SliceStable(members, func(i, j int) bool {
		if members[i].Position != members[j].Position {
			return members[i].Position < members[j].Position
		}
		return members[i].ID < members[j].ID
	})
	return members, err
}

func (r *siteRepository) SaveMember(ctx context.Context, m site.TeamMember) error {
	return r.store.do(ctx, func(t *tx) error {
		t.put(collTeam, m.ID, m)
		return nil
	})
}

func (r *siteRepository) DeleteMember(ctx context.Context, id string) error {
	return r.store.do(ctx, func(t *tx) error {
		if _, ok := t.get(collTeam, id); !ok {
			return site.ErrMemberNotFound
		}
		t.delete(collTeam, id)
		return nil
	})
}
