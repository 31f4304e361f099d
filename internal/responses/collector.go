package responses

import (
	"sort"
	"sync"

	"wellbeing/internal/domain"
)

// Resolver maps response keys to catalog questions.
type Resolver interface {
	FindQuestion(ref string) (domain.Question, bool)
}

// Collector accumulates one selection per question for a single attempt.
// It does not check that an option belongs to its question; the scoring
// engine skips such responses with ReasonOptionMismatch.
type Collector struct {
	resolver Resolver

	mu    sync.Mutex
	byKey map[string]domain.Response
}

func NewCollector(resolver Resolver) *Collector {
	return &Collector{resolver: resolver, byKey: make(map[string]domain.Response)}
}

// Resume seeds a collector with previously stored responses, in write order.
func Resume(resolver Resolver, stored []domain.Response) *Collector {
	c := NewCollector(resolver)
	for _, r := range stored {
		c.Record(r.QuestionID, r.OptionID)
	}
	return c
}

// Record upserts the response for questionID. A key given as a question id
// and the same question's order index overwrite each other.
func (c *Collector) Record(questionID, optionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byKey[c.key(questionID)] = domain.Response{QuestionID: questionID, OptionID: optionID}
}

// All returns responses ordered by order index. Responses whose question is
// not in the catalog come last, ordered by key.
func (c *Collector) All() []domain.Response {
	c.mu.Lock()
	defer c.mu.Unlock()

	type row struct {
		order int
		key   string
		resp  domain.Response
	}
	rows := make([]row, 0, len(c.byKey))
	for k, r := range c.byKey {
		order := int(^uint(0) >> 1)
		if q, ok := c.resolver.FindQuestion(k); ok {
			order = q.OrderIndex
		}
		rows = append(rows, row{order: order, key: k, resp: r})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].order != rows[j].order {
			return rows[i].order < rows[j].order
		}
		return rows[i].key < rows[j].key
	})
	out := make([]domain.Response, len(rows))
	for i, r := range rows {
		out[i] = r.resp
	}
	return out
}

func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.byKey)
}

// Missing lists the order indexes 1..QuestionCount without a response.
func (c *Collector) Missing() []int {
	answered := c.answered()
	var out []int
	for i := 1; i <= domain.QuestionCount; i++ {
		if !answered[i] {
			out = append(out, i)
		}
	}
	return out
}

// IsComplete reports whether every order index 1..QuestionCount has a response.
func (c *Collector) IsComplete() bool {
	return len(c.Missing()) == 0
}

func (c *Collector) answered() map[int]bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[int]bool, len(c.byKey))
	for k := range c.byKey {
		if q, ok := c.resolver.FindQuestion(k); ok && q.OrderIndex >= 1 && q.OrderIndex <= domain.QuestionCount {
			out[q.OrderIndex] = true
		}
	}
	return out
}

// key canonicalises questionID to the catalog id when it resolves.
func (c *Collector) key(questionID string) string {
	if q, ok := c.resolver.FindQuestion(questionID); ok {
		return q.ID
	}
	return questionID
}
