package queue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/xiebiao/bookworld/internal/infrastructure/config"
)

func TestNewCourierSyncTask(t *testing.T) {
	task := NewCourierSyncTask()
	assert.Equal(t, TypeCourierSync, task.Type())
	assert.Empty(t, task.Payload())
}

func TestRedisOpt(t *testing.T) {
	opt := RedisOpt(config.RedisConfig{Host: "redis", Port: 6380, Password: "pw", DB: 2, DialTimeout: time.Second})
	assert.Equal(t, "redis:6380", opt.Addr)
	assert.Equal(t, "pw", opt.Password)
	assert.Equal(t, 2, opt.DB)
	assert.Equal(t, time.Second, opt.DialTimeout)
}
