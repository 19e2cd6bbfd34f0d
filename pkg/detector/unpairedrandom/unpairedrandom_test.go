package unpairedrandom_test

import (
	"context"
	"strings"
	"testing"

	"github.com/augurlint/augur/internal/testutil"
	"github.com/augurlint/augur/pkg/detector/unpairedrandom"
	"github.com/augurlint/augur/pkg/models"
)

func TestUnseededDrawWarns(t *testing.T) {
	cu := testutil.MustUnit(t, `{"name":"p","files":[{"path":"main.arc","decls":[
		{"node":"function","id":1,"name":"lottery",
		 "loc":{"file":"main.arc","line":1,"col":1},"body":[
			{"node":"let","id":2,"name":"n","value":{"node":"staticCall","id":3,"name":"random"}}]}]}]}`)

	ws, err := unpairedrandom.New().Check(context.Background(), cu)
	if err != nil {
		t.Fatalf("Check error: %v", err)
	}
	if len(ws) != 1 {
		t.Fatalf("warnings = %d, want 1", len(ws))
	}
	w := ws[0]
	if w.Severity != models.SeverityHigh {
		t.Errorf("severity = %v, want high", w.Severity)
	}
	if w.Sharing != models.ShareUnion {
		t.Errorf("sharing = %v, want union", w.Sharing)
	}
	if !strings.Contains(w.Message, "lottery") {
		t.Errorf("message %q should name the drawing callable", w.Message)
	}
	if w.Location.File != "main.arc" {
		t.Errorf("location = %+v, want declaration position", w.Location)
	}
}

func TestSeederReachingDrawIsClean(t *testing.T) {
	// seedAll calls draw, so the draw is reachable from a seeding
	// callable.
	cu := testutil.MustUnit(t, `{"name":"p","files":[{"path":"main.arc","decls":[
		{"node":"function","id":1,"name":"seedAll","body":[
			{"node":"expr","id":2,"x":{"node":"staticCall","id":3,"name":"setSeed"}},
			{"node":"expr","id":4,"x":{"node":"staticCall","id":5,"name":"draw"}}]},
		{"node":"function","id":10,"name":"draw","body":[
			{"node":"let","id":11,"name":"n","value":{"node":"staticCall","id":12,"name":"randomInt"}}]}]}]}`)

	ws, err := unpairedrandom.New().Check(context.Background(), cu)
	if err != nil {
		t.Fatalf("Check error: %v", err)
	}
	if len(ws) != 0 {
		t.Errorf("warnings = %v, want none", ws)
	}
}

func TestSeedAndUseInSameCallable(t *testing.T) {
	cu := testutil.MustUnit(t, `{"name":"p","files":[{"path":"main.arc","decls":[
		{"node":"function","id":1,"name":"roll","body":[
			{"node":"expr","id":2,"x":{"node":"staticCall","id":3,"name":"prepareRandom"}},
			{"node":"let","id":4,"name":"n","value":{"node":"staticCall","id":5,"name":"random"}}]}]}]}`)

	ws, err := unpairedrandom.New().Check(context.Background(), cu)
	if err != nil {
		t.Fatalf("Check error: %v", err)
	}
	if len(ws) != 0 {
		t.Errorf("warnings = %v, want none", ws)
	}
}

func TestSeedElsewhereDoesNotCover(t *testing.T) {
	// A seeder that never reaches the drawing callable does not pair it.
	cu := testutil.MustUnit(t, `{"name":"p","files":[{"path":"main.arc","decls":[
		{"node":"function","id":1,"name":"seedOnly","body":[
			{"node":"expr","id":2,"x":{"node":"staticCall","id":3,"name":"setSeed"}}]},
		{"node":"function","id":10,"name":"lottery","body":[
			{"node":"let","id":11,"name":"n","value":{"node":"staticCall","id":12,"name":"random"}}]}]}]}`)

	ws, err := unpairedrandom.New().Check(context.Background(), cu)
	if err != nil {
		t.Fatalf("Check error: %v", err)
	}
	if len(ws) != 1 {
		t.Errorf("warnings = %d, want 1", len(ws))
	}
}
