package detail

import (
	"context"
	"errors"
	"testing"

	"github.com/ecochain/token-catalog/internal/apperr"
	"github.com/ecochain/token-catalog/internal/model"
	"github.com/ecochain/token-catalog/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	tokens map[string]model.Token
	err    error
	calls  int
	hook   func()
}

func (f *fakeFetcher) FetchToken(ctx context.Context, id string) (*model.Token, error) {
	f.calls++
	if f.hook != nil {
		f.hook()
	}
	if f.err != nil {
		return nil, f.err
	}
	t, ok := f.tokens[id]
	if !ok {
		return nil, apperr.NotFound("token")
	}
	return &t, nil
}

type fakeExtras struct {
	extras map[string]model.DetailExtras
	err    error
}

func (f *fakeExtras) FetchExtras(ctx context.Context, id string) (*model.DetailExtras, error) {
	if f.err != nil {
		return nil, f.err
	}
	e, ok := f.extras[id]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func TestResolve_PrefersStoreOverFetcher(t *testing.T) {
	s := store.NewTokenStore()
	s.SetTokens([]model.Token{{ID: "1", Name: "EcoChain Token", Description: "short"}})
	fetcher := &fakeFetcher{}

	r := NewResolver(s, fetcher, nil, nil)
	d, err := r.Resolve(context.Background(), "1")

	require.NoError(t, err)
	assert.Equal(t, "EcoChain Token", d.Name)
	assert.Equal(t, "short", d.FullDescription)
	assert.Equal(t, "0%", d.RaisePercentage)
	assert.Zero(t, fetcher.calls)
}

func TestResolve_FallsBackToFetcher(t *testing.T) {
	fetcher := &fakeFetcher{tokens: map[string]model.Token{"7": {ID: "7", Name: "Ocean Cleanup Token"}}}

	r := NewResolver(store.NewTokenStore(), fetcher, nil, nil)
	d, err := r.Resolve(context.Background(), "7")

	require.NoError(t, err)
	assert.Equal(t, "Ocean Cleanup Token", d.Name)
	assert.Equal(t, 1, fetcher.calls)
}

func TestResolve_NotFoundEverywhere(t *testing.T) {
	r := NewResolver(store.NewTokenStore(), &fakeFetcher{}, nil, nil)

	for _, id := range []string{"missing", "", "   "} {
		d, err := r.Resolve(context.Background(), id)
		assert.Nil(t, d)
		assert.True(t, errors.Is(err, apperr.ErrNotFound), "id %q", id)
	}
}

func TestResolve_NilCollaboratorsNeverPanic(t *testing.T) {
	r := NewResolver(nil, nil, nil, nil)

	d, err := r.Resolve(context.Background(), "1")

	assert.Nil(t, d)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestResolve_FetcherFailureIsTransport(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	r := NewResolver(nil, &fakeFetcher{err: cause}, nil, nil)

	_, err := r.Resolve(context.Background(), "1")

	assert.Equal(t, apperr.KindTransport, apperr.KindOf(err))
	assert.True(t, errors.Is(err, cause))
}

func TestResolve_ExtrasOverlayBaseFields(t *testing.T) {
	s := store.NewTokenStore()
	s.SetTokens([]model.Token{{ID: "1", Name: "EcoChain Token", Description: "short"}})
	extras := &fakeExtras{extras: map[string]model.DetailExtras{
		"1": {
			TokenID:         "1",
			FullDescription: "A much longer description",
			ChartURL:        "/charts/1.png",
			Raised:          "$3,600,000",
			RaiseTarget:     "$2,400,000",
			Creator:         &model.CreatorSummary{Username: "EcoChain Team"},
		},
	}}

	r := NewResolver(s, nil, extras, nil)
	d, err := r.Resolve(context.Background(), "1")

	require.NoError(t, err)
	assert.Equal(t, "A much longer description", d.FullDescription)
	assert.Equal(t, "short", d.Description)
	assert.Equal(t, "/charts/1.png", d.ChartURL)
	assert.Equal(t, "150%", d.RaisePercentage)
	require.NotNil(t, d.Creator)
	assert.Equal(t, "EcoChain Team", d.Creator.Username)
}

func TestResolve_ExtrasFailureIsTransport(t *testing.T) {
	s := store.NewTokenStore()
	s.SetTokens([]model.Token{{ID: "1"}})

	r := NewResolver(s, nil, &fakeExtras{err: errors.New("timeout")}, nil)
	_, err := r.Resolve(context.Background(), "1")

	assert.True(t, errors.Is(err, apperr.ErrTransport))
}

func TestResolve_DiscardsLateResultAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	fetcher := &fakeFetcher{
		tokens: map[string]model.Token{"1": {ID: "1"}},
		hook:   cancel,
	}

	r := NewResolver(nil, fetcher, nil, nil)
	d, err := r.Resolve(ctx, "1")

	assert.Nil(t, d)
	assert.ErrorIs(t, err, context.Canceled)
}
