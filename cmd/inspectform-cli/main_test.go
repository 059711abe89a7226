package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-inspectform/pkg/submission"
)

const miniForm = "id: borne\nnom: Borne\nsections:\n  - id: s1\n    titre: Visuel\n    items:\n      - {id: i1, nom: Joint, type: oui_non}\n"

func TestCheckTarget(t *testing.T) {
	cases := []struct {
		name    string
		payload submission.Payload
		missing string
	}{
		{name: "complete", payload: submission.Payload{TargetID: "42", TargetType: "borne_seche"}},
		{name: "no id", payload: submission.Payload{TargetType: "borne_seche"}, missing: "-target-id"},
		{name: "blank type", payload: submission.Payload{TargetID: "42", TargetType: "  "}, missing: "-target-type"},
		{name: "nothing", missing: "-target-id, -target-type"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := checkTarget(tc.payload)
			if tc.missing == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, errMissingTarget) || !strings.HasSuffix(err.Error(), "missing "+tc.missing) {
				t.Fatalf("expected missing %s, got %v", tc.missing, err)
			}
		})
	}
}

func TestRun_RejectsMissingTargetBeforePrompting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "form.yaml")
	if err := os.WriteFile(path, []byte(miniForm), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	err := run(context.Background(), flags{form: path, targetType: "borne_seche"}, logger)
	if !errors.Is(err, errMissingTarget) {
		t.Fatalf("expected errMissingTarget, got %v", err)
	}
}
