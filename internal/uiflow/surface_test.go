package uiflow_test

import (
	"context"
	"sync"

	"reelforge/internal/uiflow"
)

// fakeElement implements uiflow.Element with fixed interactability.
type fakeElement struct {
	visible  bool
	enabled  bool
	clickErr error
	clicks   int
}

func (e *fakeElement) Visible(context.Context) (bool, error) { return e.visible, nil }

func (e *fakeElement) Enabled(context.Context) (bool, error) { return e.enabled, nil }

func (e *fakeElement) Click(context.Context) error {
	e.clicks++
	return e.clickErr
}

func clickable() *fakeElement { return &fakeElement{visible: true, enabled: true} }

// fakeSurface maps candidate keys to elements and counts every Find call.
type fakeSurface struct {
	mu       sync.Mutex
	elements map[string][]uiflow.Element
	findErr  map[string]error
	finds    int
}

func newFakeSurface() *fakeSurface {
	return &fakeSurface{
		elements: make(map[string][]uiflow.Element),
		findErr:  make(map[string]error),
	}
}

func (s *fakeSurface) add(c uiflow.Candidate, elements ...uiflow.Element) {
	s.elements[c.String()] = elements
}

func (s *fakeSurface) failWith(c uiflow.Candidate, err error) {
	s.findErr[c.String()] = err
}

func (s *fakeSurface) Find(_ context.Context, c uiflow.Candidate) ([]uiflow.Element, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finds++
	if err, ok := s.findErr[c.String()]; ok {
		return nil, err
	}
	return s.elements[c.String()], nil
}

func (s *fakeSurface) findCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finds
}
