package redis

import (
	"context"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"live-quiz-service/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// QuestionLoader fetches questions from the backing store.
type QuestionLoader interface {
	GetQuestion(ctx context.Context, questionID string) (domain.Question, error)
}

// QuestionCache keeps questions in Redis (one hash per question) and falls back
// to the loader on a miss:
//
//	HSET quiz:question:{id} text … a … b … c … d … correct B order 3
type QuestionCache struct {
	client *redis.Client
	loader QuestionLoader
	ttl    time.Duration
	sf     singleflight.Group
	rndMu  sync.Mutex
	rnd    *rand.Rand
}

func NewQuestionCache(client *redis.Client, loader QuestionLoader, ttl time.Duration) *QuestionCache {
	return &QuestionCache{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *QuestionCache) GetQuestion(ctx context.Context, questionID string) (domain.Question, error) {
	key := c.key(questionID)

	fields, err := c.client.HGetAll(ctx, key).Result()
	if err == nil && len(fields) > 0 {
		return questionFromHash(questionID, fields), nil
	}

	result, err, _ := c.sf.Do(questionID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		fields, err := c.client.HGetAll(ctx, key).Result()
		if err == nil && len(fields) > 0 {
			return questionFromHash(questionID, fields), nil
		}

		q, err := c.loader.GetQuestion(ctx, questionID)
		if err != nil {
			return domain.Question{}, err
		}

		pipe := c.client.Pipeline()
		pipe.HSet(ctx, key, questionToHash(q))
		if ttl := c.ttlWithJitter(); ttl > 0 {
			pipe.Expire(ctx, key, ttl)
		}
		_, _ = pipe.Exec(ctx)

		return q, nil
	})
	if err != nil {
		return domain.Question{}, err
	}
	return result.(domain.Question), nil
}

// Invalidate removes the cached hash so the next read reloads it.
func (c *QuestionCache) Invalidate(ctx context.Context, questionID string) {
	_ = c.client.Del(ctx, c.key(questionID)).Err()
	c.sf.Forget(questionID)
}

func (c *QuestionCache) key(questionID string) string {
	return "quiz:question:" + questionID
}

func questionToHash(q domain.Question) map[string]interface{} {
	return map[string]interface{}{
		"text":    q.Text,
		"a":       q.OptionA,
		"b":       q.OptionB,
		"c":       q.OptionC,
		"d":       q.OptionD,
		"correct": string(q.CorrectAnswer),
		"order":   q.OrderIndex,
		"created": q.CreatedAt.UnixNano(),
	}
}

func questionFromHash(questionID string, fields map[string]string) domain.Question {
	q := domain.Question{
		ID:            questionID,
		Text:          fields["text"],
		OptionA:       fields["a"],
		OptionB:       fields["b"],
		OptionC:       fields["c"],
		OptionD:       fields["d"],
		CorrectAnswer: domain.Choice(fields["correct"]),
	}
	if order, err := strconv.Atoi(fields["order"]); err == nil {
		q.OrderIndex = order
	}
	if created, err := strconv.ParseInt(fields["created"], 10, 64); err == nil && created > 0 {
		q.CreatedAt = time.Unix(0, created).UTC()
	}
	return q
}

func (c *QuestionCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
