package sendinloop_test

import (
	"context"
	"testing"

	"github.com/augurlint/augur/internal/testutil"
	"github.com/augurlint/augur/pkg/detector/sendinloop"
	"github.com/augurlint/augur/pkg/models"
)

func TestDirectSendInWhile(t *testing.T) {
	cu := testutil.MustUnit(t, `{"name":"p","files":[{"path":"main.arc","decls":[
		{"node":"contract","id":1,"name":"Airdrop","methods":[
			{"node":"function","id":2,"name":"distribute","body":[
				{"node":"while","id":3,"cond":{"node":"var","id":4,"name":"more"},"body":[
					{"node":"expr","id":5,
					 "loc":{"file":"main.arc","line":4,"col":9},
					 "x":{"node":"methodCall","id":6,
					  "base":{"node":"var","id":7,"name":"self"},"method":"reply"}}]}]}]}]}]}`)

	ws, err := sendinloop.New().Check(context.Background(), cu)
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
	if w.Sharing != models.ShareIntersect {
		t.Errorf("sharing = %v, want intersect", w.Sharing)
	}
	if w.Location.Line != 4 {
		t.Errorf("location line = %d, want 4 (the send statement)", w.Location.Line)
	}
}

func TestTransitiveSendThroughCallee(t *testing.T) {
	// The loop body calls a function whose effects include Send.
	cu := testutil.MustUnit(t, `{"name":"p","files":[{"path":"main.arc","decls":[
		{"node":"function","id":1,"name":"payout","body":[
			{"node":"expr","id":2,"x":{"node":"staticCall","id":3,"name":"send"}}]},
		{"node":"function","id":10,"name":"drain","body":[
			{"node":"repeat","id":11,"count":{"node":"literal","id":12,"value":"10"},"body":[
				{"node":"expr","id":13,"x":{"node":"staticCall","id":14,"name":"payout"}}]}]}]}]}`)

	ws, err := sendinloop.New().Check(context.Background(), cu)
	if err != nil {
		t.Fatalf("Check error: %v", err)
	}
	if len(ws) != 1 {
		t.Fatalf("warnings = %d, want 1", len(ws))
	}
	if ws[0].Message == "" {
		t.Error("empty warning message")
	}
}

func TestSendOutsideLoopIsClean(t *testing.T) {
	cu := testutil.MustUnit(t, `{"name":"p","files":[{"path":"main.arc","decls":[
		{"node":"function","id":1,"name":"refund","body":[
			{"node":"expr","id":2,"x":{"node":"staticCall","id":3,"name":"send"}},
			{"node":"while","id":4,"cond":{"node":"var","id":5,"name":"more"},"body":[
				{"node":"let","id":6,"name":"n","value":{"node":"literal","id":7,"value":"1"}}]}]}]}]}`)

	ws, err := sendinloop.New().Check(context.Background(), cu)
	if err != nil {
		t.Fatalf("Check error: %v", err)
	}
	if len(ws) != 0 {
		t.Errorf("warnings = %d, want none", len(ws))
	}
}
