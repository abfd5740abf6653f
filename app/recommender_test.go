package app

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"perchfinder/advice"
	"perchfinder/cache"
	models "perchfinder/database/models_pkg"
	"perchfinder/stats"
)

type fakeKV struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newFakeKV() *fakeKV { return &fakeKV{data: make(map[string][]byte)} }

func (f *fakeKV) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.data[key] = b
	return nil
}

func (f *fakeKV) Get(ctx context.Context, key string, dest interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.data[key]
	if !ok {
		return errors.New("not found")
	}
	return json.Unmarshal(b, dest)
}

func (f *fakeKV) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.data, key)
	return nil
}

type fakeWaters struct {
	water *models.Water
}

func (f *fakeWaters) Get(ctx context.Context, id string) (*models.Water, error) {
	return f.water, nil
}

type fakeCatches struct {
	catches []models.Catch
}

func (f *fakeCatches) ListByWater(ctx context.Context, waterID string) ([]models.Catch, error) {
	return f.catches, nil
}

type fakeWeather struct {
	cond *stats.CurrentConditions
	err  error
}

func (f *fakeWeather) CurrentConditions(ctx context.Context, lat, lng float64) (*stats.CurrentConditions, error) {
	return f.cond, f.err
}

type fakeAdvice struct {
	mu        sync.Mutex
	responses []string
	err       error
	calls     int
	gotToken  string
	block     chan struct{} // when set, Fetch waits until closed
}

func (f *fakeAdvice) Fetch(ctx context.Context, idToken, appCheckToken string, payload *stats.WaterStatsPayload) (string, error) {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.gotToken = idToken
	if f.err != nil {
		return "", f.err
	}
	if len(f.responses) == 0 {
		return "default advice", nil
	}
	resp := f.responses[0]
	if len(f.responses) > 1 {
		f.responses = f.responses[1:]
	}
	return resp, nil
}

type fakeTokens struct {
	token string
	err   error
}

func (f *fakeTokens) IDToken() (string, error) { return f.token, f.err }

func testWater() *models.Water {
	return &models.Water{ID: "w1", Name: "Brunnsviken", Latitude: 59.37, Longitude: 18.05, Status: models.WaterStatusApproved}
}

func testCatch(hour int) models.Catch {
	return models.Catch{
		WaterID:  "w1",
		CaughtAt: time.Date(2025, 6, 14, hour, 0, 0, 0, time.UTC),
	}
}

func newTestRecommender(adviceSrc AdviceSource, catches []models.Catch, kv *fakeKV) *Recommender {
	return NewRecommender(
		&fakeCatches{catches: catches},
		&fakeWaters{water: testWater()},
		&fakeWeather{},
		adviceSrc,
		&fakeTokens{token: "tok-1"},
		cache.NewRecoCache(kv, time.Hour),
		"",
	)
}

func TestRequestRecommendationSuccess(t *testing.T) {
	adv := &fakeAdvice{responses: []string{"Fiska grunt med jigg."}}
	r := newTestRecommender(adv, []models.Catch{testCatch(8)}, newFakeKV())

	res, err := r.RequestRecommendation(context.Background(), "w1")
	if err != nil {
		t.Fatalf("RequestRecommendation() error = %v", err)
	}
	if res.State != StateSuccess || res.Recommendation != "Fiska grunt med jigg." {
		t.Errorf("result = %+v", res)
	}
	if res.FromCache {
		t.Errorf("first request should not be a cache hit")
	}
	if adv.gotToken != "tok-1" {
		t.Errorf("advice called with token %q", adv.gotToken)
	}
}

func TestRequestRecommendationNoCatches(t *testing.T) {
	kv := newFakeKV()
	adv := &fakeAdvice{}
	r := newTestRecommender(adv, nil, kv)

	// Seed a stale cache entry; an empty history must clear it.
	cache.NewRecoCache(kv, time.Hour).Write(context.Background(), "w1", "old-sig", "old advice")

	res, err := r.RequestRecommendation(context.Background(), "w1")
	if !errors.Is(err, ErrNoCatches) {
		t.Fatalf("error = %v, want ErrNoCatches", err)
	}
	if res.State != StateIdle {
		t.Errorf("state = %v, want Idle", res.State)
	}
	if adv.calls != 0 {
		t.Errorf("advice backend called %d times for empty history", adv.calls)
	}
	if cache.NewRecoCache(kv, time.Hour).Read(context.Background(), "w1") != nil {
		t.Errorf("cache entry should be invalidated on empty history")
	}
}

func TestRequestRecommendationCacheHit(t *testing.T) {
	kv := newFakeKV()
	adv := &fakeAdvice{responses: []string{"Fiska grunt med jigg."}}
	r := newTestRecommender(adv, []models.Catch{testCatch(8)}, kv)

	if _, err := r.RequestRecommendation(context.Background(), "w1"); err != nil {
		t.Fatalf("first request: %v", err)
	}
	res, err := r.RequestRecommendation(context.Background(), "w1")
	if err != nil {
		t.Fatalf("second request: %v", err)
	}
	if !res.FromCache {
		t.Errorf("unchanged history should hit the cache")
	}
	if adv.calls != 1 {
		t.Errorf("advice backend called %d times, want 1", adv.calls)
	}
}

func TestNewCatchInvalidatesSignature(t *testing.T) {
	kv := newFakeKV()
	adv := &fakeAdvice{responses: []string{"first advice", "second advice"}}
	catches := &fakeCatches{catches: []models.Catch{testCatch(8)}}
	r := NewRecommender(catches, &fakeWaters{water: testWater()}, &fakeWeather{}, adv, &fakeTokens{token: "t"}, cache.NewRecoCache(kv, time.Hour), "")

	if _, err := r.RequestRecommendation(context.Background(), "w1"); err != nil {
		t.Fatalf("first request: %v", err)
	}

	// History grows; signature changes; the cached answer no longer counts.
	catches.catches = append(catches.catches, testCatch(18))

	res, err := r.RequestRecommendation(context.Background(), "w1")
	if err != nil {
		t.Fatalf("second request: %v", err)
	}
	if res.FromCache {
		t.Errorf("changed history must bypass the cache")
	}
	if res.Recommendation != "second advice" {
		t.Errorf("recommendation = %q", res.Recommendation)
	}
	if adv.calls != 2 {
		t.Errorf("advice backend called %d times, want 2", adv.calls)
	}
}

func TestRequestRecommendationErrorMessages(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantMsg string
	}{
		{"rate limited", advice.ErrRateLimited, msgRateLimited},
		{"unauthenticated", advice.ErrUnauthenticated, msgUnauthenticated},
		{"generic failure", advice.ErrRequestFailed, msgRequestFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adv := &fakeAdvice{err: tt.err}
			r := newTestRecommender(adv, []models.Catch{testCatch(8)}, newFakeKV())

			res, err := r.RequestRecommendation(context.Background(), "w1")
			if !errors.Is(err, tt.err) {
				t.Fatalf("error = %v, want %v", err, tt.err)
			}
			if res.State != StateError || res.Message != tt.wantMsg {
				t.Errorf("result = %+v, want message %q", res, tt.wantMsg)
			}
		})
	}
}

func TestRequestRecommendationTokenFailure(t *testing.T) {
	adv := &fakeAdvice{}
	r := NewRecommender(
		&fakeCatches{catches: []models.Catch{testCatch(8)}},
		&fakeWaters{water: testWater()},
		&fakeWeather{},
		adv,
		&fakeTokens{err: errors.New("no session")},
		cache.NewRecoCache(newFakeKV(), time.Hour),
		"",
	)

	res, err := r.RequestRecommendation(context.Background(), "w1")
	if !errors.Is(err, advice.ErrUnauthenticated) {
		t.Fatalf("error = %v, want ErrUnauthenticated", err)
	}
	if res.State != StateError || res.Message != msgUnauthenticated {
		t.Errorf("result = %+v", res)
	}
	if adv.calls != 0 {
		t.Errorf("advice backend should not be called without a token")
	}
}

func TestWeatherFailureDegradesToHistoryOnly(t *testing.T) {
	adv := &fakeAdvice{responses: []string{"advice"}}
	r := NewRecommender(
		&fakeCatches{catches: []models.Catch{testCatch(8)}},
		&fakeWaters{water: testWater()},
		&fakeWeather{err: errors.New("provider down")},
		adv,
		&fakeTokens{token: "t"},
		cache.NewRecoCache(newFakeKV(), time.Hour),
		"",
	)

	res, err := r.RequestRecommendation(context.Background(), "w1")
	if err != nil {
		t.Fatalf("weather failure must not fail the request: %v", err)
	}
	if res.State != StateSuccess {
		t.Errorf("state = %v", res.State)
	}
}

func TestStaleResponseDiscarded(t *testing.T) {
	kv := newFakeKV()
	block := make(chan struct{})
	adv := &fakeAdvice{responses: []string{"slow advice"}, block: block}
	r := newTestRecommender(adv, []models.Catch{testCatch(8)}, kv)

	done := make(chan Result, 1)
	go func() {
		res, _ := r.RequestRecommendation(context.Background(), "w1")
		done <- res
	}()

	// Wait for the request to reach Loading, then invalidate underneath it.
	deadline := time.After(2 * time.Second)
	for r.Get("w1").State != StateLoading {
		select {
		case <-deadline:
			t.Fatal("request never reached Loading")
		case <-time.After(5 * time.Millisecond):
		}
	}
	r.InvalidateWater(context.Background(), "w1")
	close(block)

	<-done
	if got := r.Get("w1").State; got != StateIdle {
		t.Errorf("stale response overwrote state: %v", got)
	}
	if cache.NewRecoCache(kv, time.Hour).Read(context.Background(), "w1") != nil {
		t.Errorf("stale response must not be cached")
	}
}

func TestCanRequest(t *testing.T) {
	adv := &fakeAdvice{responses: []string{"advice"}}
	r := newTestRecommender(adv, []models.Catch{testCatch(8)}, newFakeKV())

	if !r.CanRequest("w1") {
		t.Errorf("idle water should be requestable")
	}
	if _, err := r.RequestRecommendation(context.Background(), "w1"); err != nil {
		t.Fatalf("request: %v", err)
	}
	if r.CanRequest("w1") {
		t.Errorf("water with a fresh result should not be requestable")
	}
	r.InvalidateWater(context.Background(), "w1")
	if !r.CanRequest("w1") {
		t.Errorf("invalidated water should be requestable again")
	}
}

func TestSetCachedRecommendation(t *testing.T) {
	r := newTestRecommender(&fakeAdvice{}, nil, newFakeKV())
	r.SetCachedRecommendation("w1", "stored advice")

	res := r.Get("w1")
	if res.State != StateSuccess || res.Recommendation != "stored advice" || !res.FromCache {
		t.Errorf("result = %+v", res)
	}
}
