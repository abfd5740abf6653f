package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"perchfinder/advice"
	"perchfinder/cache"
	models "perchfinder/database/models_pkg"
	"perchfinder/stats"
)

// State is the lifecycle of one water's recommendation request.
type State string

const (
	StateIdle    State = "IDLE"
	StateLoading State = "LOADING"
	StateSuccess State = "SUCCESS"
	StateError   State = "ERROR"
)

// User-facing messages, matching the app's Swedish UI.
const (
	msgUnauthenticated = "Du måste vara inloggad med verifierad e-post för att hämta AI-råd."
	msgRateLimited     = "Du har nått gränsen för AI-råd. Försök igen senare."
	msgRequestFailed   = "Kunde inte hämta AI-råd just nu. Försök igen om en stund."
)

var ErrNoCatches = errors.New("no catches logged for water")

// CatchSource loads the catch history the stats run over.
type CatchSource interface {
	ListByWater(ctx context.Context, waterID string) ([]models.Catch, error)
}

// WaterSource resolves water metadata.
type WaterSource interface {
	Get(ctx context.Context, id string) (*models.Water, error)
}

// WeatherSource fetches live conditions for a coordinate.
type WeatherSource interface {
	CurrentConditions(ctx context.Context, latitude, longitude float64) (*stats.CurrentConditions, error)
}

// AdviceSource calls the advice backend with a stats payload.
type AdviceSource interface {
	Fetch(ctx context.Context, idToken, appCheckToken string, payload *stats.WaterStatsPayload) (string, error)
}

// TokenSource mints the bearer token the advice call authenticates with.
type TokenSource interface {
	IDToken() (string, error)
}

// Result is the externally visible outcome for one water.
type Result struct {
	State          State  `json:"state"`
	Recommendation string `json:"recommendation,omitempty"`
	Message        string `json:"message,omitempty"`
	FromCache      bool   `json:"from_cache"`
}

type waterState struct {
	result     Result
	generation uint64
}

// Recommender drives the recommendation flow per water: aggregate the catch
// history, attach live weather, check the signature-keyed cache, and only
// call the advice backend on a miss. A generation counter guards against a
// slow response landing after the history changed underneath it.
type Recommender struct {
	catches       CatchSource
	waters        WaterSource
	weather       WeatherSource
	advice        AdviceSource
	tokens        TokenSource
	cache         *cache.RecoCache
	appCheckToken string

	mu     sync.Mutex
	states map[string]*waterState
}

// NewRecommender wires the recommendation flow. weather may be nil to skip
// live conditions entirely.
func NewRecommender(catches CatchSource, waters WaterSource, weather WeatherSource, adviceSrc AdviceSource, tokens TokenSource, recoCache *cache.RecoCache, appCheckToken string) *Recommender {
	return &Recommender{
		catches:       catches,
		waters:        waters,
		weather:       weather,
		advice:        adviceSrc,
		tokens:        tokens,
		cache:         recoCache,
		appCheckToken: appCheckToken,
		states:        make(map[string]*waterState),
	}
}

// Get returns the current result for a water. Waters never requested report
// Idle.
func (r *Recommender) Get(waterID string) Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ws, ok := r.states[waterID]; ok {
		return ws.result
	}
	return Result{State: StateIdle}
}

// CanRequest reports whether a new request for the water would do anything:
// not while one is already in flight, and not while a still-valid result is
// showing. Error results can always be retried.
func (r *Recommender) CanRequest(waterID string) bool {
	res := r.Get(waterID)
	return res.State != StateLoading && res.State != StateSuccess
}

// RequestRecommendation runs the full flow for one water and returns the
// final result. A cache hit with a matching signature short-circuits before
// any network call.
func (r *Recommender) RequestRecommendation(ctx context.Context, waterID string) (Result, error) {
	water, err := r.waters.Get(ctx, waterID)
	if err != nil {
		return r.Get(waterID), fmt.Errorf("failed to load water: %w", err)
	}

	catches, err := r.catches.ListByWater(ctx, waterID)
	if err != nil {
		return r.Get(waterID), fmt.Errorf("failed to load catches: %w", err)
	}
	if len(catches) == 0 {
		// Nothing to aggregate; any cached answer is from deleted history.
		r.cache.Invalidate(ctx, waterID)
		r.setState(waterID, Result{State: StateIdle})
		return Result{State: StateIdle}, ErrNoCatches
	}

	// Live weather is best-effort; stats degrade to history-only.
	var current *stats.CurrentConditions
	if r.weather != nil {
		current, err = r.weather.CurrentConditions(ctx, water.Latitude, water.Longitude)
		if err != nil {
			log.Printf("⚠️  Weather lookup failed for water %s: %v", waterID, err)
			current = nil
		}
	}

	payload := stats.BuildPayload(water.Name, catches, current)
	signature := payload.Signature()

	if cached := r.cache.Read(ctx, waterID); cached != nil && cached.Signature == signature {
		res := Result{State: StateSuccess, Recommendation: cached.Recommendation, FromCache: true}
		r.setState(waterID, res)
		return res, nil
	}

	gen := r.begin(waterID)

	idToken, err := r.tokens.IDToken()
	if err != nil {
		res := r.fail(waterID, gen, msgUnauthenticated)
		return res, fmt.Errorf("%w: %v", advice.ErrUnauthenticated, err)
	}

	recommendation, err := r.advice.Fetch(ctx, idToken, r.appCheckToken, payload)
	if err != nil {
		res := r.fail(waterID, gen, errorMessage(err))
		return res, err
	}

	res, fresh := r.complete(waterID, gen, recommendation)
	if fresh {
		r.cache.Write(ctx, waterID, signature, recommendation)
	}
	return res, nil
}

// SetCachedRecommendation seeds the state from a cache entry without running
// the flow, for showing a stored answer on first view.
func (r *Recommender) SetCachedRecommendation(waterID, recommendation string) {
	r.setState(waterID, Result{State: StateSuccess, Recommendation: recommendation, FromCache: true})
}

// InvalidateWater drops the cached recommendation and resets the water's
// state. Called when the catch history changes.
func (r *Recommender) InvalidateWater(ctx context.Context, waterID string) {
	r.cache.Invalidate(ctx, waterID)
	r.mu.Lock()
	defer r.mu.Unlock()
	if ws, ok := r.states[waterID]; ok {
		ws.generation++
		ws.result = Result{State: StateIdle}
	}
}

// Reset clears all per-water state.
func (r *Recommender) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ws := range r.states {
		ws.generation++
	}
	r.states = make(map[string]*waterState)
}

func (r *Recommender) setState(waterID string, res Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ws := r.ensure(waterID)
	ws.result = res
}

// begin moves the water to Loading and returns the generation the in-flight
// request belongs to.
func (r *Recommender) begin(waterID string) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	ws := r.ensure(waterID)
	ws.generation++
	ws.result = Result{State: StateLoading}
	return ws.generation
}

// fail records an error result unless the request went stale.
func (r *Recommender) fail(waterID string, gen uint64, message string) Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	ws := r.ensure(waterID)
	if ws.generation != gen {
		return ws.result
	}
	ws.result = Result{State: StateError, Message: message}
	return ws.result
}

// complete records a success result. The bool reports whether the response
// was still fresh; stale responses are discarded and must not reach the
// cache.
func (r *Recommender) complete(waterID string, gen uint64, recommendation string) (Result, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ws := r.ensure(waterID)
	if ws.generation != gen {
		return ws.result, false
	}
	ws.result = Result{State: StateSuccess, Recommendation: recommendation}
	return ws.result, true
}

func (r *Recommender) ensure(waterID string) *waterState {
	ws, ok := r.states[waterID]
	if !ok {
		ws = &waterState{}
		r.states[waterID] = ws
	}
	return ws
}

func errorMessage(err error) string {
	switch {
	case errors.Is(err, advice.ErrUnauthenticated):
		return msgUnauthenticated
	case errors.Is(err, advice.ErrRateLimited):
		return msgRateLimited
	default:
		return msgRequestFailed
	}
}
