// Package limiter provides URI prefix based rate limiting buckets
// Package limiter 提供基于 URI 前缀的限流桶
package limiter

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/juju/ratelimit"
)

// Face limiter interface // 限流器接口
type Face interface {
	Key(c *gin.Context) string
	GetBucket(key string) (*ratelimit.Bucket, bool)
	AddBuckets(rules ...BucketRule) Face
}

// BucketRule bucket rule // 限流桶规则
type BucketRule struct {
	// Key URI 前缀
	Key string
	// FillInterval 填充间隔
	FillInterval time.Duration
	// Capacity 桶容量
	Capacity int64
	// Quantum 每次填充数量
	Quantum int64
}

// MethodLimiter URI 前缀限流器
type MethodLimiter struct {
	limiterBuckets map[string]*ratelimit.Bucket
}

func NewMethodLimiter() Face {
	return &MethodLimiter{
		limiterBuckets: make(map[string]*ratelimit.Bucket),
	}
}

// Key matches the request path against registered rule prefixes
// Key 用请求路径匹配已注册的规则前缀
func (l *MethodLimiter) Key(c *gin.Context) string {
	uri := c.Request.RequestURI
	for key := range l.limiterBuckets {
		if strings.Contains(uri, key) {
			return key
		}
	}
	return uri
}

func (l *MethodLimiter) GetBucket(key string) (*ratelimit.Bucket, bool) {
	bucket, ok := l.limiterBuckets[key]
	return bucket, ok
}

func (l *MethodLimiter) AddBuckets(rules ...BucketRule) Face {
	for _, rule := range rules {
		if _, ok := l.limiterBuckets[rule.Key]; !ok {
			l.limiterBuckets[rule.Key] = ratelimit.NewBucketWithQuantum(rule.FillInterval, rule.Capacity, rule.Quantum)
		}
	}
	return l
}
