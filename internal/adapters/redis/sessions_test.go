package redisad

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"tourbot/internal/domain"
)

func testSessions(t *testing.T, ttl time.Duration) (*Sessions, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { c.Close() })
	return NewWithClient(c, ttl), mr
}

func TestSessions_RoundTrip(t *testing.T) {
	s, _ := testSessions(t, 0)
	ctx := context.Background()

	key := domain.SessionKey{UserID: 1, ChatID: 10}
	in := &domain.Session{
		Key:  key,
		Step: domain.StepMaxPrice,
		Criteria: domain.SearchCriteria{
			Flow:       domain.FlowBestDeal,
			Command:    "/bestdeal",
			LocationID: "2114",
			PriceMin:   50,
			CreatedAt:  time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC),
		},
	}
	if err := s.Put(ctx, in); err != nil {
		t.Fatalf("put: %v", err)
	}

	out, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if out.Step != domain.StepMaxPrice || out.Criteria.LocationID != "2114" || out.Criteria.PriceMin != 50 {
		t.Fatalf("round trip mismatch: %+v", out)
	}
	if !out.Criteria.CreatedAt.Equal(in.Criteria.CreatedAt) {
		t.Fatalf("created at mismatch: %v", out.Criteria.CreatedAt)
	}
}

func TestSessions_GetMissing(t *testing.T) {
	s, _ := testSessions(t, 0)

	_, ok, err := s.Get(context.Background(), domain.SessionKey{UserID: 404, ChatID: 1})
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if ok {
		t.Fatal("missing session must report ok=false")
	}
}

func TestSessions_Clear(t *testing.T) {
	s, _ := testSessions(t, 0)
	ctx := context.Background()
	key := domain.SessionKey{UserID: 1, ChatID: 10}

	if err := s.Put(ctx, &domain.Session{Key: key, Step: domain.StepLocation}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := s.Clear(ctx, key); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, ok, _ := s.Get(ctx, key); ok {
		t.Fatal("session must be gone after clear")
	}
	// clearing again is a no-op
	if err := s.Clear(ctx, key); err != nil {
		t.Fatalf("clear absent: %v", err)
	}
}

func TestSessions_TTLExpires(t *testing.T) {
	s, mr := testSessions(t, time.Minute)
	ctx := context.Background()
	key := domain.SessionKey{UserID: 1, ChatID: 10}

	if err := s.Put(ctx, &domain.Session{Key: key, Step: domain.StepLocation}); err != nil {
		t.Fatalf("put: %v", err)
	}
	mr.FastForward(2 * time.Minute)
	if _, ok, _ := s.Get(ctx, key); ok {
		t.Fatal("session must expire after its TTL")
	}
}
