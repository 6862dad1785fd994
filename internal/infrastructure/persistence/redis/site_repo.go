package redis

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/redis/go-redis/v9"

	"github.com/xiebiao/bookworld/internal/domain/site"
)

// siteRepository 站点设置（site:settings）与团队成员（site:team，value为JSON）
type siteRepository struct {
	client *redis.Client
}

// NewSiteRepository 创建站点数据仓储
func NewSiteRepository(client *redis.Client) site.Repository {
	return &siteRepository{client: client}
}

func (r *siteRepository) Settings(ctx context.Context) (map[string]string, error) {
	settings, err := r.client.HGetAll(ctx, settingsKey).Result()
	if err != nil {
		return nil, redisErr(err, "读取站点设置失败")
	}
	return settings, nil
}

func (r *siteRepository) SetSetting(ctx context.Context, key, value string) error {
	if !site.IsKnownSetting(key) {
		return site.ErrUnknownSetting
	}
	if err := r.client.HSet(ctx, settingsKey, key, value).Err(); err != nil {
		return redisErr(err, "保存站点设置失败")
	}
	return nil
}

func (r *siteRepository) ListTeam(ctx context.Context) ([]site.TeamMember, error) {
	fields, err := r.client.HGetAll(ctx, teamKey).Result()
	if err != nil {
		return nil, redisErr(err, "读取团队成员失败")
	}
	return decodeMembers(fields), nil
}

func decodeMembers(fields map[string]string) []site.TeamMember {
	members := make([]site.TeamMember, 0, len(fields))
	for _, raw := range fields {
		var m site.TeamMember
		if err := json.Unmarshal([]byte(raw), &m); err != nil {
			continue
		}
		members = append(members, m)
	}
	sort.SliceStable(members, func(i, j int) bool {
		if members[i].Position != members[j].Position {
			return members[i].Position < members[j].Position
		}
		return members[i].ID < members[j].ID
	})
	return members
}

func (r *siteRepository) SaveMember(ctx context.Context, m site.TeamMember) error {
	raw, err := json.Marshal(m)
	if err != nil {
		return redisErr(err, "序列化团队成员失败")
	}
	if err := r.client.HSet(ctx, teamKey, m.ID, raw).Err(); err != nil {
		return redisErr(err, "保存团队成员失败")
	}
	return nil
}

func (r *siteRepository) DeleteMember(ctx context.Context, id string) error {
	n, err := r.client.HDel(ctx, teamKey, id).Result()
	if err != nil {
		return redisErr(err, "删除团队成员失败")
	}
	if n == 0 {
		return site.ErrMemberNotFound
	}
	return nil
}
